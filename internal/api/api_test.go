package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/alerts"
	"github.com/hydroguard/hydroguard/internal/api"
	"github.com/hydroguard/hydroguard/internal/config"
	"github.com/hydroguard/hydroguard/internal/engine"
	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/risk"
	"github.com/hydroguard/hydroguard/internal/store"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// --- test helpers -----------------------------------------------------------

type fixture struct {
	store  *store.Store
	alerts *alerts.Engine
	engine *engine.Engine
	h      http.Handler
}

func newFixture(t *testing.T, states ...types.AssetState) *fixture {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	f := &fixture{
		store: store.New(5 * time.Minute),
		alerts: alerts.New(config.AlertsConfig{Rules: []config.AlertRule{
			{Name: "critical-risk", Condition: "status == critical", Severity: "critical"},
		}}),
		engine: eng,
	}
	for _, st := range states {
		f.store.Put(st)
	}
	f.h = api.New(f.store, f.alerts, f.engine)
	return f
}

func asset(id string, status types.Status) types.AssetState {
	return types.AssetState{
		ID:          id,
		TurbineType: types.TurbineFrancis,
		Risk:        types.RiskAssessment{Status: status, Urgency: 1},
		Structural:  types.StructuralMetrics{RemainingLife: numeric.Hundred},
	}
}

// evaluated returns an asset with a physics snapshot and one critical
// vibration factor.
func evaluated(id string) types.AssetState {
	st := asset(id, types.StatusCritical)
	st.Physics = &types.PhysicsResult{PowerMW: numeric.F(38), Status: types.StatusNominal}
	st.Risk.Factors = []types.RiskFactor{
		{Name: risk.FactorVibration, Status: types.StatusCritical, Urgency: 5, Value: numeric.F(8.2), Band: "Unacceptable"},
		{Name: risk.FactorBearingTemp, Status: types.StatusNominal, Urgency: 1, Value: numeric.F(50)},
	}
	st.Structural = types.StructuralMetrics{WearIndex: numeric.F(40), RemainingLife: numeric.F(60)}
	st.Financials = &types.FinancialSummary{TotalExposure: numeric.F(125000)}
	return st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodGet, path, "")
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/v1/health ---------------------------------------------------------

func TestHealth_EmptyStore(t *testing.T) {
	f := newFixture(t)
	rr := get(t, f.h, "/api/v1/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.State != "unknown" || resp.AssetCount != 0 {
		t.Errorf("resp = %+v, want unknown with 0 assets", resp)
	}
}

func TestHealth_WorstStatusWins(t *testing.T) {
	crit := evaluated("u3")
	f := newFixture(t,
		asset("u1", types.StatusNominal),
		asset("u2", types.StatusWarning),
		crit,
		asset("u4", ""),
	)
	f.alerts.Evaluate(crit)

	var resp api.HealthResponse
	decode(t, get(t, f.h, "/api/v1/health"), &resp)

	if resp.State != "critical" {
		t.Errorf("state: got %q, want critical", resp.State)
	}
	if resp.AssetCount != 4 || resp.NominalCount != 1 || resp.WarningCount != 1 ||
		resp.CriticalCount != 1 || resp.UnknownCount != 1 {
		t.Errorf("counts = %+v", resp)
	}
	if resp.AlertCount != 1 {
		t.Errorf("alert_count: got %d, want 1", resp.AlertCount)
	}
	if resp.TotalExposure != 125000 {
		t.Errorf("total_exposure: got %v, want 125000", resp.TotalExposure)
	}
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	if rr := do(t, f.h, http.MethodPost, "/api/v1/health", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST health: got %d, want 405", rr.Code)
	}
}

// --- /api/v1/assets ---------------------------------------------------------

func TestListAssets_Sorted(t *testing.T) {
	f := newFixture(t, asset("u2", types.StatusNominal), asset("u1", types.StatusNominal))

	var out []api.AssetResponse
	decode(t, get(t, f.h, "/api/v1/assets"), &out)
	if len(out) != 2 || out[0].Asset.ID != "u1" || out[1].Asset.ID != "u2" {
		t.Fatalf("assets = %+v", out)
	}
	if out[0].Availability != 100 {
		t.Errorf("availability before any fetch: got %v, want 100", out[0].Availability)
	}
	if out[0].Stream.Stream != "u1" {
		t.Errorf("stream: got %q, want u1", out[0].Stream.Stream)
	}
}

func TestGetAsset(t *testing.T) {
	f := newFixture(t, evaluated("u1"))
	f.engine.RecordFetch("u1", true)
	f.engine.RecordFetch("u1", false)

	rr := get(t, f.h, "/api/v1/assets/u1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var out api.AssetResponse
	decode(t, rr, &out)

	if out.Availability != 50 {
		t.Errorf("availability: got %v, want 50", out.Availability)
	}
	if len(out.Diagnostics) == 0 {
		t.Fatal("expected diagnostics")
	}
	first := out.Diagnostics[0]
	if first.Key != "availability" && first.Key != risk.FactorVibration {
		t.Errorf("first hint: got %q, want a critical hint", first.Key)
	}
	keys := map[string]string{}
	for _, d := range out.Diagnostics {
		keys[d.Key] = d.Level
	}
	if keys[risk.FactorVibration] != "critical" {
		t.Errorf("vibration hint level: got %q, want critical", keys[risk.FactorVibration])
	}
	if keys["availability"] != "critical" {
		t.Errorf("availability hint level: got %q, want critical", keys["availability"])
	}
	if _, ok := keys[risk.FactorBearingTemp]; ok {
		t.Error("nominal factor must not produce a hint")
	}
	if keys["exposure"] != "info" {
		t.Errorf("exposure hint level: got %q, want info", keys["exposure"])
	}
}

func TestGetAsset_WarmingUp(t *testing.T) {
	f := newFixture(t, asset("u1", ""))
	var out api.AssetResponse
	decode(t, get(t, f.h, "/api/v1/assets/u1"), &out)
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Key != "warming_up" {
		t.Errorf("diagnostics = %+v, want warming_up", out.Diagnostics)
	}
}

func TestGetAsset_NotFound(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/v1/assets/nope", "/api/v1/assets/nope/truth"} {
		if rr := get(t, f.h, path); rr.Code != http.StatusNotFound {
			t.Errorf("GET %s: got %d, want 404", path, rr.Code)
		}
	}
}

func TestGetAsset_UnknownSubresource(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))
	if rr := get(t, f.h, "/api/v1/assets/u1/bogus"); rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
	if rr := do(t, f.h, http.MethodPut, "/api/v1/assets/u1/truth", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT truth: got %d, want 405", rr.Code)
	}
}

func TestAssets_TrailingSlashLists(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))
	var out []api.AssetResponse
	decode(t, get(t, f.h, "/api/v1/assets/"), &out)
	if len(out) != 1 {
		t.Errorf("got %d assets, want 1", len(out))
	}
}

func TestTruth_ListAndReset(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))
	f.store.PutTruth(types.TruthDelta{Asset: "u1", Component: "bearing", Agreement: types.AgreementSyncFault})
	f.store.PutTruth(types.TruthDelta{Asset: "u1", Component: "seal", Agreement: types.AgreementSyncHealthy})

	var deltas []types.TruthDelta
	decode(t, get(t, f.h, "/api/v1/assets/u1/truth"), &deltas)
	if len(deltas) != 2 || deltas[0].Component != "bearing" {
		t.Fatalf("truth = %+v", deltas)
	}

	if rr := do(t, f.h, http.MethodDelete, "/api/v1/assets/u1/truth", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE truth: got %d, want 204", rr.Code)
	}
	decode(t, get(t, f.h, "/api/v1/assets/u1/truth"), &deltas)
	if len(deltas) != 0 {
		t.Errorf("after reset: got %d deltas, want 0", len(deltas))
	}
}

func TestStream_StatusAndReset(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))
	f.engine.Ingest("u1", types.TelemetrySnapshot{Timestamp: time.Now(), Efficiency: 92, PowerMW: 40})

	var st struct {
		Stream     string `json:"stream"`
		WindowSize int    `json:"window_size"`
	}
	decode(t, get(t, f.h, "/api/v1/assets/u1/stream"), &st)
	if st.Stream != "u1" || st.WindowSize != 1 {
		t.Fatalf("stream = %+v, want u1 with 1 sample", st)
	}

	if rr := do(t, f.h, http.MethodDelete, "/api/v1/assets/u1/stream", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE stream: got %d, want 204", rr.Code)
	}
	decode(t, get(t, f.h, "/api/v1/assets/u1/stream"), &st)
	if st.WindowSize != 0 {
		t.Errorf("after reset: window %d, want 0", st.WindowSize)
	}
}

func TestReset_Structural(t *testing.T) {
	worn := evaluated("u1")
	worn.Operational.HoursSinceOverhaul = 52000
	f := newFixture(t, worn)

	rr := do(t, f.h, http.MethodPost, "/api/v1/assets/u1/reset", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("POST reset: got %d, want 200", rr.Code)
	}
	e, _ := f.store.Get("u1")
	if !e.State.Structural.WearIndex.IsZero() {
		t.Errorf("wear index: got %s, want 0", e.State.Structural.WearIndex)
	}
	if !e.State.Structural.RemainingLife.Equal(numeric.Hundred) {
		t.Errorf("remaining life: got %s, want 100", e.State.Structural.RemainingLife)
	}
	if e.State.Operational.HoursSinceOverhaul != 0 {
		t.Errorf("hours since overhaul: got %v, want 0", e.State.Operational.HoursSinceOverhaul)
	}
	if rr := get(t, f.h, "/api/v1/assets/u1/reset"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET reset: got %d, want 405", rr.Code)
	}
}

func TestLogs_AddAndList(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))

	rr := do(t, f.h, http.MethodPost, "/api/v1/assets/u1/logs",
		`{"component":"bearing","text":"Bearing noisy, inspect next shift","author":"ops"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST logs: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var created types.LogEntry
	decode(t, rr, &created)
	if created.Timestamp.IsZero() {
		t.Error("timestamp must default to now")
	}

	var logs []types.LogEntry
	decode(t, get(t, f.h, "/api/v1/assets/u1/logs"), &logs)
	if len(logs) != 1 || logs[0].Component != "bearing" || logs[0].Author != "ops" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestLogs_BadRequest(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))
	for _, body := range []string{`{"component":"bearing"}`, `{"text":"ok"}`, `not json`} {
		if rr := do(t, f.h, http.MethodPost, "/api/v1/assets/u1/logs", body); rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: got %d, want 400", body, rr.Code)
		}
	}
}

// --- /api/v1/anomalies, /api/v1/alerts ---------------------------------------

func TestAnomalies_Filter(t *testing.T) {
	f := newFixture(t)
	f.store.AddAnomaly(types.DetectedAnomaly{ID: "a1", Stream: "u1", Type: types.AnomalyCavitation})
	f.store.AddAnomaly(types.DetectedAnomaly{ID: "a2", Stream: "u2", Type: types.AnomalySilentLoss})
	f.store.AddAnomaly(types.DetectedAnomaly{ID: "a3", Stream: "u1", Type: types.AnomalyThermalRunaway})

	var all []types.DetectedAnomaly
	decode(t, get(t, f.h, "/api/v1/anomalies"), &all)
	if len(all) != 3 || all[0].ID != "a3" {
		t.Errorf("all = %+v, want 3 newest first", all)
	}

	var u1 []types.DetectedAnomaly
	decode(t, get(t, f.h, "/api/v1/anomalies?asset=u1"), &u1)
	if len(u1) != 2 {
		t.Errorf("asset=u1: got %d, want 2", len(u1))
	}
}

func TestAlerts(t *testing.T) {
	f := newFixture(t)
	rr := get(t, f.h, "/api/v1/alerts")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty alerts body: got %s, want []", rr.Body.String())
	}

	f.alerts.Evaluate(evaluated("u1"))
	var out []alerts.Alert
	decode(t, get(t, f.h, "/api/v1/alerts"), &out)
	if len(out) != 1 || out[0].RuleName != "critical-risk" || out[0].State != alerts.StateFiring {
		t.Errorf("alerts = %+v", out)
	}
}

// --- /api/v1/appraise -------------------------------------------------------

func TestAppraise(t *testing.T) {
	f := newFixture(t)
	rr := do(t, f.h, http.MethodPost, "/api/v1/appraise",
		`{"initial_investment":1000,"annual_cash_flows":[500,500,500],"discount_rate":0.1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		NPV    decimal.Decimal `json:"npv"`
		Accept bool            `json:"accept"`
		Years  []struct {
			Year int `json:"year"`
		} `json:"years"`
	}
	decode(t, rr, &out)
	if !out.Accept {
		t.Error("accept: got false, want true")
	}
	if npv := out.NPV.InexactFloat64(); npv < 243.42 || npv > 243.43 {
		t.Errorf("npv: got %v, want ~243.426", npv)
	}
	if len(out.Years) != 3 {
		t.Errorf("years: got %d, want 3", len(out.Years))
	}
}

func TestAppraise_BadRequest(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"initial_investment":`},
		{"unknown field", `{"initial_investment":1000,"annual_cash_flows":[1],"bogus":1}`},
		{"no investment", `{"annual_cash_flows":[500]}`},
		{"no flows", `{"initial_investment":1000}`},
		{"rate at -1", `{"initial_investment":1000,"annual_cash_flows":[500],"discount_rate":-1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rr := do(t, f.h, http.MethodPost, "/api/v1/appraise", tc.body); rr.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rr.Code)
			}
		})
	}
	if rr := get(t, f.h, "/api/v1/appraise"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET appraise: got %d, want 405", rr.Code)
	}
}

// --- /api/v1/maintenance-analysis, /api/v1/lcoe -----------------------------

func TestMaintenanceAnalysis(t *testing.T) {
	f := newFixture(t)
	rr := do(t, f.h, http.MethodPost, "/api/v1/maintenance-analysis",
		`{"maintenance_cost":300000,"avoided_failure_cost":500000,"extended_life_years":1,
		  "efficiency_gain":2,"energy_price_per_mwh":100,"power_mw":10,
		  "discount_rate":0.1,"analysis_years":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Recommendation string          `json:"recommendation"`
		NetBenefit     decimal.Decimal `json:"net_benefit"`
		Maintenance    struct {
			Years []struct {
				Year int `json:"year"`
			} `json:"years"`
		} `json:"maintenance"`
	}
	decode(t, rr, &out)
	if out.Recommendation != "MAINTENANCE" {
		t.Errorf("recommendation: got %q, want MAINTENANCE", out.Recommendation)
	}
	if nb := out.NetBenefit.InexactFloat64(); nb < 391008.26 || nb > 391008.27 {
		t.Errorf("net_benefit: got %v, want ~391008.26", nb)
	}
	if len(out.Maintenance.Years) != 2 {
		t.Errorf("years: got %d, want 2", len(out.Maintenance.Years))
	}
}

func TestLCOE(t *testing.T) {
	f := newFixture(t)
	rr := do(t, f.h, http.MethodPost, "/api/v1/lcoe",
		`{"initial_investment":1000,"annual_om_cost":100,"annual_energy_mwh":50,"lifetime_years":2,"discount_rate":0.1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out api.LCOEResponse
	decode(t, rr, &out)
	if got := out.LCOE.InexactFloat64(); got != 13.5238 {
		t.Errorf("lcoe: got %v, want 13.5238", got)
	}
}

func TestFinancialTools_BadRequest(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		path string
		body string
	}{
		{"maintenance unknown field", "/api/v1/maintenance-analysis", `{"bogus":1}`},
		{"maintenance negative cost", "/api/v1/maintenance-analysis", `{"maintenance_cost":-1}`},
		{"maintenance negative years", "/api/v1/maintenance-analysis", `{"analysis_years":-3}`},
		{"lcoe malformed", "/api/v1/lcoe", `{"initial_investment":`},
		{"lcoe no lifetime", "/api/v1/lcoe", `{"initial_investment":1000,"annual_energy_mwh":50}`},
		{"lcoe no energy", "/api/v1/lcoe", `{"initial_investment":1000,"lifetime_years":5}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rr := do(t, f.h, http.MethodPost, tc.path, tc.body); rr.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rr.Code)
			}
		})
	}
	for _, path := range []string{"/api/v1/maintenance-analysis", "/api/v1/lcoe"} {
		if rr := get(t, f.h, path); rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: got %d, want 405", path, rr.Code)
		}
	}
}

// --- stale assets, scan, streams, profiles ---------------------------------

func TestStaleAssetStillServed(t *testing.T) {
	eng, err := engine.New(engine.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(time.Millisecond)
	st.Put(evaluated("u1"))
	time.Sleep(5 * time.Millisecond)
	h := api.New(st, alerts.New(config.AlertsConfig{}), eng)

	rr := get(t, h, "/api/v1/assets/u1")
	if rr.Code != http.StatusOK {
		t.Fatalf("stale asset: got %d, want 200", rr.Code)
	}
	var out api.AssetResponse
	decode(t, rr, &out)
	if !out.Stale || !out.Asset.Structural.WearIndex.Equal(numeric.F(40)) {
		t.Errorf("stale=%v wear=%s, want stale with wear 40", out.Stale, out.Asset.Structural.WearIndex)
	}

	var list []api.AssetResponse
	decode(t, get(t, h, "/api/v1/assets"), &list)
	if len(list) != 1 || !list[0].Stale {
		t.Errorf("list = %+v, want one stale asset", list)
	}
	var health api.HealthResponse
	decode(t, get(t, h, "/api/v1/health"), &health)
	if health.AssetCount != 1 || health.StaleCount != 1 {
		t.Errorf("health = %+v", health)
	}
}

func TestTruth_ResetComponent(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))
	f.store.PutTruth(types.TruthDelta{Asset: "u1", Component: "bearing", Agreement: types.AgreementSyncFault})
	f.store.PutTruth(types.TruthDelta{Asset: "u1", Component: "seal", Agreement: types.AgreementSyncHealthy})

	if rr := do(t, f.h, http.MethodDelete, "/api/v1/assets/u1/truth?component=seal", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE truth component: got %d, want 204", rr.Code)
	}
	var deltas []types.TruthDelta
	decode(t, get(t, f.h, "/api/v1/assets/u1/truth"), &deltas)
	if len(deltas) != 1 || deltas[0].Component != "bearing" {
		t.Errorf("truth = %+v, want only bearing", deltas)
	}
}

func TestScan(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))

	rr := get(t, f.h, "/api/v1/assets/u1/scan")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty window: got %d %s, want []", rr.Code, rr.Body.String())
	}

	f.engine.SetBaseline("u1", 95, 12)
	f.engine.Ingest("u1", types.TelemetrySnapshot{Timestamp: time.Now(), Efficiency: 94, PowerMW: 12, VibrationMMS: 1})
	f.engine.Ingest("u1", types.TelemetrySnapshot{Timestamp: time.Now(), Efficiency: 86, PowerMW: 12, VibrationMMS: 3})

	var out []types.DetectedAnomaly
	decode(t, get(t, f.h, "/api/v1/assets/u1/scan"), &out)
	kinds := map[types.AnomalyType]bool{}
	for _, a := range out {
		kinds[a.Type] = true
	}
	if !kinds[types.AnomalySilentLoss] || !kinds[types.AnomalyCavitation] {
		t.Errorf("scan = %+v, want silent loss and cavitation", out)
	}
	if rr := do(t, f.h, http.MethodPost, "/api/v1/assets/u1/scan", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST scan: got %d, want 405", rr.Code)
	}
}

func TestStreams(t *testing.T) {
	f := newFixture(t)
	f.engine.Ingest("u2", types.TelemetrySnapshot{Timestamp: time.Now(), Efficiency: 92, PowerMW: 10})
	f.engine.Ingest("u1", types.TelemetrySnapshot{Timestamp: time.Now(), Efficiency: 92, PowerMW: 10})

	var out []struct {
		Stream     string `json:"stream"`
		WindowSize int    `json:"window_size"`
	}
	decode(t, get(t, f.h, "/api/v1/streams"), &out)
	if len(out) != 2 || out[0].Stream != "u1" || out[1].Stream != "u2" || out[0].WindowSize != 1 {
		t.Errorf("streams = %+v", out)
	}
}

func TestProfiles(t *testing.T) {
	f := newFixture(t)

	var out []api.ProfileResponse
	decode(t, get(t, f.h, "/api/v1/profiles"), &out)
	if len(out) != 4 {
		t.Fatalf("profiles: got %d, want 4", len(out))
	}
	byType := map[types.TurbineType]api.ProfileResponse{}
	for _, p := range out {
		byType[p.Type] = p
	}
	francis := byType[types.TurbineFrancis]
	if francis.Strategy != "francis" || francis.Limits.VibrationMax != 1.8 || francis.VibrationZones.Good != 1.8 {
		t.Errorf("francis = %+v", francis)
	}
	if francis.VibrationZones.Satisfactory != 4.5 {
		t.Errorf("francis satisfactory zone: got %v, want 4.5", francis.VibrationZones.Satisfactory)
	}
	if p := byType[types.TurbinePelton]; p.Coefficients.NominalPowerMW != 12 {
		t.Errorf("pelton nominal power: got %v, want 12", p.Coefficients.NominalPowerMW)
	}
}

// --- /api/v1/snapshot -------------------------------------------------------

func TestSnapshot(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))
	f.store.AddAnomaly(types.DetectedAnomaly{ID: "a1", Stream: "u1"})

	var out api.SnapshotResponse
	decode(t, get(t, f.h, "/api/v1/snapshot"), &out)
	if len(out.Assets) != 1 || len(out.Anomalies) != 1 {
		t.Errorf("snapshot = %d assets, %d anomalies", len(out.Assets), len(out.Anomalies))
	}
	if _, err := time.Parse(time.RFC3339, out.GeneratedAt); err != nil {
		t.Errorf("generated_at: %v", err)
	}
}

// --- APIKey -----------------------------------------------------------------

func TestAPIKey(t *testing.T) {
	f := newFixture(t, asset("u1", types.StatusNominal))

	tests := []struct {
		name   string
		mode   string
		key    string
		path   string
		header string
		want   int
	}{
		{"mode none passes", "none", "secret", "/api/v1/assets", "", http.StatusOK},
		{"empty key passes", "apikey", "", "/api/v1/assets", "", http.StatusOK},
		{"missing key", "apikey", "secret", "/api/v1/assets", "", http.StatusUnauthorized},
		{"wrong key", "apikey", "secret", "/api/v1/assets", "nope", http.StatusUnauthorized},
		{"correct key", "apikey", "secret", "/api/v1/assets", "secret", http.StatusOK},
		{"health exempt", "apikey", "secret", "/api/v1/health", "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := api.APIKey(tc.mode, "X-API-Key", tc.key, f.h)
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("X-API-Key", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Errorf("got %d, want %d", rr.Code, tc.want)
			}
		})
	}
}
