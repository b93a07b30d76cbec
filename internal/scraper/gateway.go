package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/hydroguard/hydroguard/internal/config"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Gateway metric names.
const (
	MetricEfficiency     = "turbine_efficiency_percent"
	MetricPower          = "turbine_power_mw"
	MetricHead           = "turbine_head_m"
	MetricFlow           = "turbine_flow_m3s"
	MetricVibrationX     = "turbine_vibration_x_mms"
	MetricVibrationY     = "turbine_vibration_y_mms"
	MetricRPM            = "turbine_rpm"
	MetricBearingTemp    = "turbine_bearing_temp_celsius"
	MetricInsulation     = "turbine_insulation_mohm"
	MetricAxialPlay      = "turbine_axial_play_mm"
	MetricOilWater       = "turbine_oil_water_ppm"
	MetricOilTAN         = "turbine_oil_tan"
	MetricGridFrequency  = "turbine_grid_frequency_hz"
	MetricSpiralCase     = "turbine_spiral_case_bar"
	MetricDraftTube      = "turbine_draft_tube_bar"
	MetricRunnerGap      = "turbine_runner_gap_mm"
	MetricLabyrinthGap   = "turbine_labyrinth_gap_mm"
	MetricHoursOverhaul  = "turbine_hours_since_overhaul"
	MetricStartStopTotal = "turbine_start_stop_total"

	// MetricDiagnostic carries machine diagnostics: one series per finding
	// with component, severity and message labels. Series with value 0 are
	// cleared findings and are skipped.
	MetricDiagnostic = "turbine_diagnostic"
)

// readings maps each gateway metric onto the asset field it updates.
var readings = map[string]func(*types.AssetState, float64){
	MetricEfficiency:     func(s *types.AssetState, v float64) { s.Hydraulic.Efficiency = v },
	MetricHead:           func(s *types.AssetState, v float64) { s.Hydraulic.HeadM = v },
	MetricFlow:           func(s *types.AssetState, v float64) { s.Hydraulic.FlowM3S = v },
	MetricVibrationX:     func(s *types.AssetState, v float64) { s.Mechanical.VibrationXMMS = v },
	MetricVibrationY:     func(s *types.AssetState, v float64) { s.Mechanical.VibrationYMMS = v },
	MetricRPM:            func(s *types.AssetState, v float64) { s.Mechanical.RPM = v },
	MetricBearingTemp:    func(s *types.AssetState, v float64) { s.Mechanical.BearingTempC = v },
	MetricInsulation:     func(s *types.AssetState, v float64) { s.Mechanical.InsulationMOhm = v },
	MetricAxialPlay:      func(s *types.AssetState, v float64) { s.Mechanical.AxialPlayMM = v },
	MetricOilWater:       func(s *types.AssetState, v float64) { s.Mechanical.Oil.WaterPPM = v },
	MetricOilTAN:         func(s *types.AssetState, v float64) { s.Mechanical.Oil.TAN = v },
	MetricGridFrequency:  func(s *types.AssetState, v float64) { s.Site.GridFrequencyHz = v },
	MetricSpiralCase:     func(s *types.AssetState, v float64) { s.Pressures.SpiralCaseBar = v },
	MetricDraftTube:      func(s *types.AssetState, v float64) { s.Pressures.DraftTubeBar = v },
	MetricRunnerGap:      func(s *types.AssetState, v float64) { s.Pressures.RunnerGapMM = v },
	MetricLabyrinthGap:   func(s *types.AssetState, v float64) { s.Pressures.LabyrinthGapMM = v },
	MetricHoursOverhaul:  func(s *types.AssetState, v float64) { s.Operational.HoursSinceOverhaul = v },
	MetricStartStopTotal: func(s *types.AssetState, v float64) { s.Operational.StartStopCount = int64(v) },
}

// ScrapeResult is the output of one scrape of a gateway.
type ScrapeResult struct {
	SourceID  string
	Asset     string
	ScrapedAt time.Time

	// Readings holds every recognised gauge that was present, keyed by
	// metric name. Absent readings leave the asset's value unchanged.
	Readings map[string]float64

	Diagnostics []types.Diagnostic

	// Err is non-nil if the scrape itself failed (connectivity, auth, parse).
	Err error
}

// Apply returns a copy of st with the scraped readings folded in.
func (r *ScrapeResult) Apply(st types.AssetState) types.AssetState {
	for name, v := range r.Readings {
		if set, ok := readings[name]; ok {
			set(&st, v)
		}
	}
	return st
}

// MeasuredPower returns the gateway's power reading, if present.
func (r *ScrapeResult) MeasuredPower() (float64, bool) {
	v, ok := r.Readings[MetricPower]
	return v, ok
}

// Gateway scrapes one source.
type Gateway struct {
	src    config.Source
	client *http.Client
	now    func() time.Time
}

// New returns a Gateway for src. The HTTP client is built once and reused
// across scrapes.
func New(src config.Source) *Gateway {
	return &Gateway{src: src, client: buildHTTPClient(src), now: time.Now}
}

// Source returns the gateway's configuration.
func (g *Gateway) Source() config.Source { return g.src }

// Scrape fetches the gateway's exposition. Fetch failures are reported in
// ScrapeResult.Err, never as the returned error.
func (g *Gateway) Scrape(ctx context.Context) (*ScrapeResult, error) {
	res := &ScrapeResult{
		SourceID:  g.src.ID,
		Asset:     g.src.Asset,
		ScrapedAt: g.now().UTC(),
		Readings:  make(map[string]float64),
	}

	mfs, err := fetchMetrics(ctx, g.client, g.src.Endpoint)
	if err != nil {
		res.Err = fmt.Errorf("gateway scrape %q: %w", g.src.ID, err)
		slog.Warn("scraper: gateway fetch failed", "source", g.src.ID, "err", err)
		return res, nil
	}

	for name := range readings {
		if v, ok := gaugeValue(mfs[name]); ok {
			res.Readings[name] = v
		}
	}
	if v, ok := gaugeValue(mfs[MetricPower]); ok {
		res.Readings[MetricPower] = v
	}
	res.Diagnostics = diagnostics(mfs[MetricDiagnostic])
	return res, nil
}

// diagnostics converts active turbine_diagnostic series, ordered by
// component then severity.
func diagnostics(mf *dto.MetricFamily) []types.Diagnostic {
	if mf == nil {
		return nil
	}
	var out []types.Diagnostic
	for _, m := range mf.GetMetric() {
		if v, _ := metricValue(m); v == 0 {
			continue
		}
		out = append(out, types.Diagnostic{
			Component: label(m, "component"),
			Severity:  label(m, "severity"),
			Message:   label(m, "message"),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Component != out[j].Component {
			return out[i].Component < out[j].Component
		}
		return out[i].Severity < out[j].Severity
	})
	return out
}
