package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hydroguard/hydroguard/internal/anomaly"
	"github.com/hydroguard/hydroguard/internal/engine"
	"github.com/hydroguard/hydroguard/internal/financial"
	"github.com/hydroguard/hydroguard/internal/profile"
	"github.com/hydroguard/hydroguard/internal/risk"
	"github.com/hydroguard/hydroguard/internal/structural"
	"github.com/hydroguard/hydroguard/internal/truthdelta"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort       = 8080
	DefaultMetricsPath    = "/metrics"
	DefaultSnapshotTTL    = 10 * time.Minute
	DefaultScrapeInterval = 15 * time.Second
	DefaultTruthAlpha     = truthdelta.DefaultAlpha
	DefaultTruthMaxAssets = truthdelta.DefaultMaxAssets
)

// Config is the full configuration tree.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Engine  EngineConfig  `yaml:"engine"`
	Assets  []Asset       `yaml:"assets"`
	Sources []Source      `yaml:"sources"`
	Alerts  AlertsConfig  `yaml:"alerts"`

	// dir is the directory of the loaded file; asset files resolve against it.
	dir string
}

// ServiceConfig holds the HTTP surface settings.
type ServiceConfig struct {
	HTTPPort    int    `yaml:"http_port"`
	MetricsPath string `yaml:"metrics_path"`

	// SnapshotTTL evicts an asset from the store when no evaluation has
	// updated it for this long. Zero disables eviction.
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`

	Auth APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig controls REST API authentication.
type APIAuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`

	// Header defaults to "X-API-Key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a APIAuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or "X-API-Key".
func (a APIAuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "X-API-Key"
}

// EngineConfig holds the evaluation pipeline settings.
type EngineConfig struct {
	// MarketPrice in currency per MWh; zero uses each profile's revenue
	// coefficient.
	MarketPrice float64 `yaml:"market_price"`

	// Maintenance calibrates the expected maintenance cost model.
	Maintenance financial.MaintenanceOptions `yaml:"maintenance"`

	Anomaly    anomaly.Config    `yaml:"anomaly"`
	TruthDelta TruthDeltaConfig  `yaml:"truth_delta"`
	Structural structural.Config `yaml:"structural"`
	Risk       risk.Thresholds   `yaml:"risk"`

	// Profiles overrides coefficients per turbine type, keyed by type name
	// (francis, kaplan, pelton, crossflow). Zero fields keep the built-in
	// value.
	Profiles map[string]profile.Coefficients `yaml:"profiles"`
}

// TruthDeltaConfig configures machine/human reconciliation memory.
type TruthDeltaConfig struct {
	Alpha     float64 `yaml:"alpha"`
	MaxAssets int     `yaml:"max_assets"`
}

// Pipeline converts the section into the engine's configuration.
func (e EngineConfig) Pipeline() engine.Config {
	return engine.Config{
		MarketPrice:    e.MarketPrice,
		Maintenance:    e.Maintenance,
		Risk:           e.Risk,
		Structural:     e.Structural,
		Anomaly:        e.Anomaly,
		TruthAlpha:     e.TruthDelta.Alpha,
		TruthMaxAssets: e.TruthDelta.MaxAssets,
	}
}

// Asset registers one turbine unit.
type Asset struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	TurbineType types.TurbineType `yaml:"turbine_type"`

	// File is a YAML document describing the unit (hydraulics, penstock,
	// mechanical readings, ...). Relative paths resolve against the config
	// file's directory.
	File string `yaml:"file"`

	// Simulation enables the potential-damage band of the financial model.
	Simulation bool `yaml:"simulation"`
}

// Source is one asset's telemetry gateway exposing turbine_* gauges in
// Prometheus text format.
type Source struct {
	ID             string        `yaml:"id"`
	Asset          string        `yaml:"asset"`
	Endpoint       string        `yaml:"endpoint"`
	ScrapeInterval time.Duration `yaml:"scrape_interval"`
	Auth           AuthConfig    `yaml:"auth"`
	TLS            TLSConfig     `yaml:"tls"`
}

// AuthConfig specifies how to authenticate to a source.
type AuthConfig struct {
	// Mode is one of: apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the API key.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv is the name of the environment variable that holds the token.
	TokenEnv string `yaml:"token_env"`

	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds per-source TLS dial options.
type TLSConfig struct {
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression: "risk_score >= 50",
	// "remaining_life < 20", "status == critical".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | pagerduty | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`

	// MinSeverity drops alerts below it: info | warning | critical.
	// Empty accepts everything.
	MinSeverity string `yaml:"min_severity"`
}

// severityRank orders alert severities; unknown ones rank as info.
func severityRank(s string) int {
	switch s {
	case "critical":
		return 2
	case "warning":
		return 1
	default:
		return 0
	}
}

// Accepts reports whether an alert of severity sev is routed to w.
func (w WebhookConfig) Accepts(sev string) bool {
	return severityRank(sev) >= severityRank(w.MinSeverity)
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].ScrapeInterval == 0 {
			cfg.Sources[i].ScrapeInterval = DefaultScrapeInterval
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// LoadAsset reads the asset's file, if any, and returns its initial state.
// The registration's id, name, turbine type and simulation flag take
// precedence over the file.
func (c *Config) LoadAsset(a Asset) (types.AssetState, error) {
	var st types.AssetState
	if a.File != "" {
		path := a.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return st, fmt.Errorf("config: asset %q: read file: %w", a.ID, err)
		}
		if err := yaml.Unmarshal(data, &st); err != nil {
			return st, fmt.Errorf("config: asset %q: parse yaml: %w", a.ID, err)
		}
	}
	st.ID = a.ID
	if a.Name != "" {
		st.Name = a.Name
	}
	if a.TurbineType != types.TurbineUnknown {
		st.TurbineType = a.TurbineType
	}
	st.Simulation = st.Simulation || a.Simulation
	return st, nil
}

// SourceFor returns the source feeding asset, if any.
func (c *Config) SourceFor(asset string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Asset == asset {
			return s, true
		}
	}
	return Source{}, false
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			HTTPPort:    DefaultHTTPPort,
			MetricsPath: DefaultMetricsPath,
			SnapshotTTL: DefaultSnapshotTTL,
		},
		Engine: EngineConfig{
			Anomaly: anomaly.DefaultConfig(),
			TruthDelta: TruthDeltaConfig{
				Alpha:     DefaultTruthAlpha,
				MaxAssets: DefaultTruthMaxAssets,
			},
			Structural: structural.DefaultConfig(),
			Risk:       risk.DefaultThresholds(),
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Service.HTTPPort <= 0 || cfg.Service.HTTPPort > 65535 {
		return fmt.Errorf("service.http_port %d is out of range [1, 65535]", cfg.Service.HTTPPort)
	}
	if cfg.Service.SnapshotTTL < 0 {
		return fmt.Errorf("service.snapshot_ttl must not be negative")
	}
	switch cfg.Service.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("service.auth.mode %q unknown: want apikey|none", cfg.Service.Auth.Mode)
	}

	if err := validateEngine(cfg.Engine); err != nil {
		return err
	}

	assets := make(map[string]bool, len(cfg.Assets))
	for i, a := range cfg.Assets {
		if a.ID == "" {
			return fmt.Errorf("assets[%d]: id is required", i)
		}
		if assets[a.ID] {
			return fmt.Errorf("assets[%d]: duplicate id %q", i, a.ID)
		}
		assets[a.ID] = true
	}

	fed := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d]: id is required", i)
		}
		if src.Endpoint == "" {
			return fmt.Errorf("sources[%d] %q: endpoint is required", i, src.ID)
		}
		if !assets[src.Asset] {
			return fmt.Errorf("sources[%d] %q: unknown asset %q", i, src.ID, src.Asset)
		}
		if fed[src.Asset] {
			return fmt.Errorf("sources[%d] %q: asset %q already has a source", i, src.ID, src.Asset)
		}
		fed[src.Asset] = true
		if src.ScrapeInterval <= 0 {
			return fmt.Errorf("sources[%d] %q: scrape_interval must be positive", i, src.ID)
		}
		switch src.Auth.Mode {
		case "apikey", "bearer", "basic", "none", "":
		default:
			return fmt.Errorf("sources[%d] %q: unknown auth mode %q", i, src.ID, src.Auth.Mode)
		}
	}

	for i, r := range cfg.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if r.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, r.Name)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("alerts.rules[%d] %q: unknown severity %q", i, r.Name, r.Severity)
		}
	}
	for i, w := range cfg.Alerts.Webhooks {
		switch w.Type {
		case "teams", "slack", "pagerduty", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, w.Type)
		}
		switch w.MinSeverity {
		case "", "info", "warning", "critical":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown min_severity %q", i, w.MinSeverity)
		}
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	if e.MarketPrice < 0 {
		return fmt.Errorf("engine.market_price must not be negative")
	}
	if err := e.Maintenance.Validate(); err != nil {
		return fmt.Errorf("engine.maintenance: %w", err)
	}
	if err := e.Anomaly.Validate(); err != nil {
		return fmt.Errorf("engine.anomaly: %w", err)
	}
	if e.TruthDelta.Alpha <= 0 || e.TruthDelta.Alpha > 1 {
		return fmt.Errorf("engine.truth_delta.alpha must be within (0, 1]")
	}
	if e.TruthDelta.MaxAssets <= 0 {
		return fmt.Errorf("engine.truth_delta.max_assets must be > 0")
	}
	if err := e.Structural.Validate(); err != nil {
		return fmt.Errorf("engine.structural: %w", err)
	}
	if err := e.Risk.Validate(); err != nil {
		return fmt.Errorf("engine.risk: %w", err)
	}
	for name, c := range e.Profiles {
		if types.ParseTurbineType(name) == types.TurbineUnknown {
			return fmt.Errorf("engine.profiles: unknown turbine type %q", name)
		}
		if err := profile.ValidateCoefficients(c); err != nil {
			return fmt.Errorf("engine.profiles.%s: %w", name, err)
		}
	}
	return nil
}
