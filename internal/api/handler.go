package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hydroguard/hydroguard/internal/alerts"
	"github.com/hydroguard/hydroguard/internal/anomaly"
	"github.com/hydroguard/hydroguard/internal/engine"
	"github.com/hydroguard/hydroguard/internal/financial"
	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/store"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// maxBodyBytes bounds POST payloads.
const maxBodyBytes = 1 << 20

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine
	engine *engine.Engine
	mux    *http.ServeMux
	now    func() time.Time
}

// New creates a Handler wired to the asset store, the alert engine and the
// evaluation engine, and registers all routes.
func New(st *store.Store, ae *alerts.Engine, eng *engine.Engine) *Handler {
	h := &Handler{
		store:  st,
		alerts: ae,
		engine: eng,
		mux:    http.NewServeMux(),
		now:    time.Now,
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/assets", h.listAssets)
	h.mux.HandleFunc("/api/v1/assets/", h.asset) // subtree, extracts {id}[/sub]
	h.mux.HandleFunc("/api/v1/anomalies", h.anomalies)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/appraise", h.appraise)
	h.mux.HandleFunc("/api/v1/maintenance-analysis", h.maintenanceAnalysis)
	h.mux.HandleFunc("/api/v1/lcoe", h.lcoe)
	h.mux.HandleFunc("/api/v1/streams", h.listStreams)
	h.mux.HandleFunc("/api/v1/profiles", h.listProfiles)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: worst status and per-status counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{AssetCount: len(entries), State: "unknown"}
	for _, e := range entries {
		if !h.store.Live(e) {
			resp.StaleCount++
		}
	}
	for _, a := range h.alerts.Active() {
		if a.State == alerts.StateFiring {
			resp.AlertCount++
		}
	}
	if len(entries) == 0 {
		jsonResp(w, http.StatusOK, resp)
		return
	}

	worst := -1
	for _, e := range entries {
		switch e.State.Risk.Status {
		case types.StatusNominal:
			resp.NominalCount++
		case types.StatusWarning:
			resp.WarningCount++
		case types.StatusCritical:
			resp.CriticalCount++
		default:
			resp.UnknownCount++
			continue
		}
		if rank := statusRank(e.State.Risk.Status); rank > worst {
			worst = rank
			resp.State = strings.ToLower(string(e.State.Risk.Status))
		}
		if f := e.State.Financials; f != nil {
			resp.TotalExposure += numeric.Float(f.TotalExposure)
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// listAssets returns GET /api/v1/assets: every asset, stale ones flagged.
func (h *Handler) listAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.assetResponses())
}

// asset dispatches /api/v1/assets/{id} and its sub-resources.
func (h *Handler) asset(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/assets/"), "/")
	if rest == "" {
		h.listAssets(w, r)
		return
	}
	id, sub, _ := strings.Cut(rest, "/")

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "asset not found")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		jsonResp(w, http.StatusOK, h.toAssetResponse(e))

	case sub == "truth" && r.Method == http.MethodGet:
		jsonResp(w, http.StatusOK, h.store.Truth(id))
	case sub == "truth" && r.Method == http.MethodDelete:
		if c := r.URL.Query().Get("component"); c != "" {
			h.engine.ResetTruthComponent(id, c)
			h.store.ClearTruthComponent(id, c)
			slog.Info("api: truth memory reset", "asset", id, "component", c)
		} else {
			h.engine.ResetTruth(id)
			h.store.ClearTruth(id)
			slog.Info("api: truth memory reset", "asset", id)
		}
		w.WriteHeader(http.StatusNoContent)

	case sub == "stream" && r.Method == http.MethodGet:
		jsonResp(w, http.StatusOK, h.engine.StreamStatus(id))
	case sub == "stream" && r.Method == http.MethodDelete:
		h.engine.ResetStream(id)
		slog.Info("api: anomaly stream reset", "asset", id)
		w.WriteHeader(http.StatusNoContent)

	case sub == "scan" && r.Method == http.MethodGet:
		out := h.engine.Anomalies(id)
		if out == nil {
			out = []types.DetectedAnomaly{}
		}
		jsonResp(w, http.StatusOK, out)

	case sub == "logs" && r.Method == http.MethodGet:
		jsonResp(w, http.StatusOK, h.store.Logs(id))
	case sub == "logs" && r.Method == http.MethodPost:
		h.addLog(w, r, id)

	case sub == "reset" && r.Method == http.MethodPost:
		jsonResp(w, http.StatusOK, h.resetStructural(id))

	case sub == "" || sub == "truth" || sub == "stream" || sub == "scan" || sub == "logs" || sub == "reset":
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		jsonErr(w, http.StatusNotFound, "unknown resource")
	}
}

// resetStructural applies a full overhaul under the asset's evaluation lock
// so that a poll in flight cannot store its older state over the reset.
func (h *Handler) resetStructural(id string) types.StructuralMetrics {
	var out types.StructuralMetrics
	h.engine.Update(id, func(op engine.Op) {
		e, ok := h.store.Get(id)
		if !ok {
			return
		}
		next := op.ResetStructural(e.State)
		h.store.Put(next)
		out = next.Structural
	})
	slog.Info("api: structural state reset", "asset", id)
	return out
}

// addLog records a maintenance log entry. It is reconciled against the
// machine diagnostics on the asset's next scrape.
func (h *Handler) addLog(w http.ResponseWriter, r *http.Request, id string) {
	var e types.LogEntry
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid log entry: "+err.Error())
		return
	}
	if strings.TrimSpace(e.Component) == "" || strings.TrimSpace(e.Text) == "" {
		jsonErr(w, http.StatusBadRequest, "component and text are required")
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = h.now().UTC()
	}
	h.store.AddLog(id, e)
	slog.Info("api: maintenance log added", "asset", id, "component", e.Component)
	jsonResp(w, http.StatusCreated, e)
}

// anomalies returns GET /api/v1/anomalies, optionally filtered by ?asset=.
func (h *Handler) anomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.store.Anomalies(r.URL.Query().Get("asset")))
}

// listAlerts returns GET /api/v1/alerts: firing alerts plus the past hour.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// appraise returns POST /api/v1/appraise: an investment appraisal of the
// posted criteria.
func (h *Handler) appraise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var c financial.Criteria
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid criteria: "+err.Error())
		return
	}
	if c.InitialInvestment <= 0 || len(c.AnnualCashFlows) == 0 {
		jsonErr(w, http.StatusBadRequest, "initial_investment must be > 0 and annual_cash_flows non-empty")
		return
	}
	if c.DiscountRate <= -1 {
		jsonErr(w, http.StatusBadRequest, "discount_rate must be > -1")
		return
	}
	jsonResp(w, http.StatusOK, financial.Appraise(c))
}

// maintenanceAnalysis returns POST /api/v1/maintenance-analysis: the
// maintenance versus do-nothing comparison.
func (h *Handler) maintenanceAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req MaintenanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MaintenanceCost < 0 || req.AvoidedFailureCost < 0 || req.PowerMW < 0 {
		jsonErr(w, http.StatusBadRequest, "costs and power_mw must not be negative")
		return
	}
	if req.DiscountRate <= -1 || req.AnalysisYears < 0 {
		jsonErr(w, http.StatusBadRequest, "discount_rate must be > -1 and analysis_years >= 0")
		return
	}
	jsonResp(w, http.StatusOK, financial.AnalyzeMaintenance(req.MaintenanceCase, req.DiscountRate, req.AnalysisYears))
}

// lcoe returns POST /api/v1/lcoe: the levelized cost of energy.
func (h *Handler) lcoe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req LCOERequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DiscountRate <= -1 {
		jsonErr(w, http.StatusBadRequest, "discount_rate must be > -1")
		return
	}
	v, err := financial.LCOE(req.InitialInvestment, req.AnnualOMCost, req.AnnualEnergyMWh, req.LifetimeYears, req.DiscountRate)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "annual_energy_mwh and lifetime_years must be > 0")
		return
	}
	jsonResp(w, http.StatusOK, LCOEResponse{LCOE: numeric.Round(v, 4)})
}

// decodeBody decodes a size-limited JSON body that has no unknown fields
// into v. It writes a 400 and reports false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// listStreams returns GET /api/v1/streams: the anomaly window of every
// monitored stream.
func (h *Handler) listStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ids := h.engine.Streams()
	out := make([]anomaly.Status, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.engine.StreamStatus(id))
	}
	jsonResp(w, http.StatusOK, out)
}

// listProfiles returns GET /api/v1/profiles: the coefficients and limits
// applied to each turbine type.
func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	reg := h.engine.Profiles()
	th := h.engine.Thresholds()
	kinds := reg.Types()
	out := make([]ProfileResponse, 0, len(kinds))
	for _, t := range kinds {
		p := reg.Lookup(t)
		eff := th.ForTurbine(p.Thresholds.VibrationMax)
		out = append(out, ProfileResponse{
			Type:         t,
			Strategy:     p.Strategy.Name(),
			Coefficients: p.Coefficients,
			Limits:       p.Thresholds,
			VibrationZones: VibrationZones{
				Good:           eff.VibrationGood,
				Satisfactory:   eff.VibrationSatisfactory,
				Unsatisfactory: eff.VibrationUnsatisfactory,
			},
		})
	}
	jsonResp(w, http.StatusOK, out)
}

// snapshot returns GET /api/v1/snapshot: full JSON dump of all assets.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, SnapshotResponse{
		Assets:      h.assetResponses(),
		Anomalies:   h.store.Anomalies(""),
		GeneratedAt: h.now().UTC().Format(time.RFC3339),
	})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func statusRank(s types.Status) int {
	switch s {
	case types.StatusCritical:
		return 2
	case types.StatusWarning:
		return 1
	default:
		return 0
	}
}

func (h *Handler) assetResponses() []AssetResponse {
	entries := h.store.List()
	out := make([]AssetResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, h.toAssetResponse(e))
	}
	return out
}

// toAssetResponse maps a store.Entry to its JSON representation.
func (h *Handler) toAssetResponse(e store.Entry) AssetResponse {
	avail := h.engine.Availability(e.State.ID)
	return AssetResponse{
		Asset:        e.State,
		Availability: avail,
		Stream:       h.engine.StreamStatus(e.State.ID),
		Diagnostics:  computeDiagnostics(e.State, avail),
		LastSeen:     e.UpdatedAt.UTC().Format(time.RFC3339),
		Stale:        !h.store.Live(e),
	}
}
