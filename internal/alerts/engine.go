package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hydroguard/hydroguard/internal/config"
	"github.com/hydroguard/hydroguard/pkg/types"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"

	// StateNotified marks a one-shot anomaly notification; it never resolves.
	StateNotified = "notified"
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Asset      string     `json:"asset"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"`
	Context    *Context   `json:"context,omitempty"`
}

// Engine evaluates alert rules against evaluated asset states and delivers
// webhook notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	rules    []config.AlertRule
	webhooks []config.WebhookConfig
	active   map[string]*Alert    // key: "ruleName:asset"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // resolved alerts and anomaly notifications
	client   *http.Client
	now      func() time.Time
	wg       sync.WaitGroup
}

// New creates an Engine from the alerts configuration. An Engine with no
// rules is valid; Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Reload swaps in new rules and webhooks. Firing alerts of removed rules
// are dropped without a resolution event.
func (e *Engine) Reload(cfg config.AlertsConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = cfg.Rules
	e.webhooks = cfg.Webhooks

	keep := make(map[string]bool, len(cfg.Rules))
	for _, r := range cfg.Rules {
		keep[r.Name] = true
	}
	for key, a := range e.active {
		if !keep[a.RuleName] {
			delete(e.active, key)
		}
	}
}

// Evaluate tests all configured rules against st. Firing alerts are stored
// and delivered asynchronously; alerts whose condition no longer holds are
// resolved.
func (e *Engine) Evaluate(st types.AssetState) {
	e.mu.Lock()
	rules := e.rules
	e.mu.Unlock()

	now := e.now()
	for _, rule := range rules {
		key := rule.Name + ":" + st.ID
		fires, value := evalCondition(rule.Condition, st)

		if fires {
			e.fire(key, rule, st, value, now)
		} else {
			e.resolve(key, rule, st, now)
		}
	}
}

func (e *Engine) fire(key string, rule config.AlertRule, st types.AssetState, value float64, now time.Time) {
	asset := st.ID
	e.mu.Lock()
	cooldown := rule.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	if _, firing := e.active[key]; firing || now.Sub(e.lastFire[key]) <= cooldown {
		e.mu.Unlock()
		return
	}
	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}
	a := &Alert{
		ID:       uuid.NewString(),
		RuleName: rule.Name,
		Asset:    asset,
		Severity: sev,
		Value:    value,
		Message:  fmt.Sprintf("[%s] %s fired on %s: %s (value %.2f)", sev, rule.Name, asset, rule.Condition, value),
		FiredAt:  now,
		State:    StateFiring,
		Context:  assetContext(st),
	}
	e.active[key] = a
	e.lastFire[key] = now
	cp := *a
	e.mu.Unlock()

	slog.Warn("alerts: alert fired",
		"rule", rule.Name, "asset", asset, "value", value, "severity", sev)
	e.dispatch(&cp)
}

func (e *Engine) resolve(key string, rule config.AlertRule, st types.AssetState, now time.Time) {
	asset := st.ID
	e.mu.Lock()
	a, ok := e.active[key]
	if !ok {
		e.mu.Unlock()
		return
	}
	resolved := now
	a.State = StateResolved
	a.ResolvedAt = &resolved
	a.Context = assetContext(st)
	delete(e.active, key)
	e.record(a)
	cp := *a
	e.mu.Unlock()

	slog.Info("alerts: alert resolved", "rule", rule.Name, "asset", asset)
	e.dispatch(&cp)
}

// NotifyAnomaly forwards HIGH and CRITICAL anomalies as one-shot alerts,
// at most once per asset and anomaly type within the default cooldown.
func (e *Engine) NotifyAnomaly(an types.DetectedAnomaly) {
	var sev string
	switch an.Severity {
	case types.SeverityCritical:
		sev = "critical"
	case types.SeverityHigh:
		sev = "warning"
	default:
		return
	}

	now := e.now()
	key := "anomaly:" + string(an.Type) + ":" + an.Stream

	e.mu.Lock()
	if now.Sub(e.lastFire[key]) <= defaultCooldown {
		e.mu.Unlock()
		return
	}
	a := &Alert{
		ID:       an.ID,
		RuleName: "anomaly:" + string(an.Type),
		Asset:    an.Stream,
		Severity: sev,
		Value:    an.Probability,
		Message:  fmt.Sprintf("[%s] %s on %s (probability %.0f%%): %s", sev, an.Type, an.Stream, an.Probability, an.Description),
		FiredAt:  now,
		State:    StateNotified,
		Context:  anomalyContext(an),
	}
	e.lastFire[key] = now
	e.record(a)
	cp := *a
	e.mu.Unlock()

	slog.Warn("alerts: anomaly notified",
		"asset", an.Stream, "type", an.Type, "severity", an.Severity)
	e.dispatch(&cp)
}

// record appends a to the bounded history. Callers hold e.mu.
func (e *Engine) record(a *Alert) {
	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
}

// Active returns copies of all firing alerts plus resolutions and anomaly
// notifications from the past hour, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))
	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		at := a.FiredAt
		if a.ResolvedAt != nil {
			at = *a.ResolvedAt
		}
		if at.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}

// Wait blocks until in-flight webhook deliveries finish.
func (e *Engine) Wait() { e.wg.Wait() }

func (e *Engine) dispatch(a *Alert) {
	e.mu.Lock()
	hooks := e.webhooks
	e.mu.Unlock()
	if len(hooks) == 0 {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.deliver(hooks, a)
	}()
}
