package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hydroguard/hydroguard/internal/config"
	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Context is the engineering picture attached to an alert: the asset's
// risk and wear when a rule changes state, or the anomaly evidence for a
// notification.
type Context struct {
	AssetName     string  `json:"asset_name,omitempty"`
	TurbineType   string  `json:"turbine_type,omitempty"`
	Status        string  `json:"status,omitempty"`
	Urgency       int     `json:"urgency,omitempty"`
	TopFactor     string  `json:"top_factor,omitempty"`
	TopFactorBand string  `json:"top_factor_band,omitempty"`
	WearIndex     float64 `json:"wear_index"`
	RemainingLife float64 `json:"remaining_life_pct"`
	Exposure      float64 `json:"total_exposure"`

	AnomalyType  string  `json:"anomaly_type,omitempty"`
	Probability  float64 `json:"probability,omitempty"`
	WindowDigest string  `json:"window_digest,omitempty"`
}

func assetContext(st types.AssetState) *Context {
	c := &Context{
		AssetName:     st.Name,
		TurbineType:   string(st.TurbineType),
		Status:        string(st.Risk.Status),
		Urgency:       st.Risk.Urgency,
		WearIndex:     numeric.Float(numeric.Round(st.Structural.WearIndex, 4)),
		RemainingLife: numeric.Float(numeric.Round(st.Structural.RemainingLife, 4)),
	}
	if f, ok := topFactor(st.Risk.Factors); ok {
		c.TopFactor, c.TopFactorBand = f.Name, f.Band
	}
	if fin := st.Financials; fin != nil {
		c.Exposure = numeric.Float(numeric.Round(fin.TotalExposure, 2))
	}
	return c
}

func anomalyContext(an types.DetectedAnomaly) *Context {
	return &Context{
		AnomalyType:  string(an.Type),
		Probability:  an.Probability,
		WindowDigest: an.WindowDigest,
	}
}

// topFactor returns the most urgent non-nominal risk factor.
func topFactor(fs []types.RiskFactor) (types.RiskFactor, bool) {
	var best types.RiskFactor
	found := false
	for _, f := range fs {
		if f.Status == types.StatusNominal {
			continue
		}
		if !found || f.Urgency > best.Urgency {
			best, found = f, true
		}
	}
	return best, found
}

type fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// facts lists the context as label/value pairs in display order.
func facts(a *Alert) []fact {
	out := []fact{{"Asset", a.Asset}, {"State", a.State}}
	c := a.Context
	if c == nil {
		return out
	}
	if c.AnomalyType != "" {
		return append(out,
			fact{"Anomaly", c.AnomalyType},
			fact{"Probability", strconv.FormatFloat(c.Probability, 'f', 0, 64) + "%"},
			fact{"Window digest", c.WindowDigest},
		)
	}
	if c.TurbineType != "" {
		out = append(out, fact{"Turbine", c.TurbineType})
	}
	out = append(out, fact{"Risk", fmt.Sprintf("%s (urgency %d)", c.Status, c.Urgency)})
	if c.TopFactor != "" {
		out = append(out, fact{"Driver", c.TopFactor + " " + c.TopFactorBand})
	}
	return append(out,
		fact{"Wear index", strconv.FormatFloat(c.WearIndex, 'f', 2, 64)},
		fact{"Remaining life", strconv.FormatFloat(c.RemainingLife, 'f', 1, 64) + "%"},
		fact{"Exposure", strconv.FormatFloat(c.Exposure, 'f', 0, 64)},
	)
}

// deliver sends a to every target that accepts its severity. Errors are
// logged and otherwise ignored.
func (e *Engine) deliver(hooks []config.WebhookConfig, a *Alert) {
	for _, wh := range hooks {
		url := wh.URL()
		if url == "" || !wh.Accepts(a.Severity) {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = e.sendSlack(url, a)
		case "teams":
			err = e.sendTeams(url, a)
		case "pagerduty", "http":
			err = e.sendHTTP(url, a)
		default:
			slog.Warn("alerts: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type, "rule", a.RuleName, "asset", a.Asset, "err", err)
			continue
		}
		slog.Debug("alerts: webhook delivered",
			"type", wh.Type, "rule", a.RuleName, "asset", a.Asset, "state", a.State)
	}
}

func (e *Engine) sendSlack(url string, a *Alert) error {
	fields := make([]map[string]interface{}, 0, 8)
	for _, f := range facts(a) {
		fields = append(fields, map[string]interface{}{"title": f.Name, "value": f.Value, "short": true})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"text": fmt.Sprintf("*%s* %s", severityLabel(a.Severity), a.Message),
		"attachments": []map[string]interface{}{{
			"color":  "#" + severityColor(a.Severity),
			"fields": fields,
		}},
	})
	return e.post(url, body)
}

func (e *Engine) sendTeams(url string, a *Alert) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(a.Severity),
		"summary":    a.RuleName,
		"title":      fmt.Sprintf("HydroGuard %s: %s (%s)", a.State, a.RuleName, a.Asset),
		"text":       a.Message,
		"sections":   []map[string]interface{}{{"facts": facts(a)}},
	}
	body, _ := json.Marshal(payload)
	return e.post(url, body)
}

func (e *Engine) sendHTTP(url string, a *Alert) error {
	body, _ := json.Marshal(map[string]interface{}{
		"event": "hydroguard.alert." + a.State,
		"alert": a,
	})
	return e.post(url, body)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(s string) string {
	switch s {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

// severityColor uses the same palette as truth-delta agreement colors.
func severityColor(s string) string {
	switch s {
	case "critical":
		return "EF4444"
	case "warning":
		return "F59E0B"
	default:
		return "64748B"
	}
}
