// Package metrics exports pipeline outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Metrics holds the hydroguard collectors. It implements engine.Observer.
type Metrics struct {
	gatherer prometheus.Gatherer

	PowerMW         *prometheus.GaugeVec
	Efficiency      *prometheus.GaugeVec
	RiskUrgency     *prometheus.GaugeVec
	RiskStatus      *prometheus.GaugeVec // 1 for the current status, 0 otherwise
	WearIndex       *prometheus.GaugeVec
	RemainingLife   *prometheus.GaugeVec
	DRF             *prometheus.GaugeVec
	HoopSafety      *prometheus.GaugeVec
	EfficiencyGap   *prometheus.GaugeVec
	TotalExposure   *prometheus.GaugeVec
	Evaluations     *prometheus.CounterVec
	Anomalies       *prometheus.CounterVec
	TruthConfidence *prometheus.GaugeVec
	Scrapes         *prometheus.CounterVec
	ScrapeDuration  *prometheus.HistogramVec
}

var statuses = []types.Status{types.StatusNominal, types.StatusWarning, types.StatusCritical}

// New creates the collectors and registers them with reg. The gatherer is
// used by Handler; pass the same registry for both.
func New(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hydroguard", Name: name, Help: help,
		}, labels)
	}
	m := &Metrics{
		gatherer:      g,
		PowerMW:       gauge("power_mw", "Computed electrical output in MW", "asset"),
		Efficiency:    gauge("efficiency_percent", "Reported turbine efficiency in percent", "asset"),
		RiskUrgency:   gauge("risk_urgency", "Highest risk factor urgency (1-5)", "asset"),
		RiskStatus:    gauge("risk_status", "Current aggregated risk status", "asset", "status"),
		WearIndex:     gauge("wear_index", "Accumulated structural wear index (0-100)", "asset"),
		RemainingLife: gauge("remaining_life_percent", "Remaining structural life in percent", "asset"),
		DRF:           gauge("dynamic_risk_factor", "Normalised dynamic risk factor (0-100)", "asset"),
		HoopSafety:    gauge("penstock_hoop_safety_factor", "Penstock hoop stress safety factor", "asset"),
		EfficiencyGap: gauge("efficiency_gap_percent", "Typical efficiency for the turbine type and head minus reported efficiency", "asset"),
		TotalExposure: gauge("financial_exposure_total", "Total annual financial exposure", "asset"),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydroguard", Name: "evaluations_total", Help: "Completed asset evaluations",
		}, []string{"asset"}),
		Anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydroguard", Name: "anomalies_total", Help: "Detected anomalies",
		}, []string{"asset", "type", "severity"}),
		TruthConfidence: gauge("truth_confidence", "Smoothed machine/human agreement confidence", "asset", "component", "agreement"),
		Scrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydroguard", Name: "scrapes_total", Help: "Gateway scrapes by outcome",
		}, []string{"asset", "outcome"}),
		ScrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hydroguard", Name: "scrape_duration_seconds", Help: "Gateway scrape latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"asset"}),
	}
	reg.MustRegister(
		m.PowerMW, m.Efficiency, m.RiskUrgency, m.RiskStatus, m.WearIndex,
		m.RemainingLife, m.DRF, m.HoopSafety, m.EfficiencyGap, m.TotalExposure,
		m.Evaluations, m.Anomalies, m.TruthConfidence, m.Scrapes, m.ScrapeDuration,
	)
	return m
}

// StateComputed records the outcome of one evaluation.
func (m *Metrics) StateComputed(st types.AssetState) {
	id := st.ID
	m.Evaluations.WithLabelValues(id).Inc()
	m.Efficiency.WithLabelValues(id).Set(st.Hydraulic.Efficiency)
	m.RiskUrgency.WithLabelValues(id).Set(float64(st.Risk.Urgency))
	for _, s := range statuses {
		v := 0.0
		if st.Risk.Status == s {
			v = 1
		}
		m.RiskStatus.WithLabelValues(id, string(s)).Set(v)
	}
	m.WearIndex.WithLabelValues(id).Set(numeric.Float(st.Structural.WearIndex))
	m.RemainingLife.WithLabelValues(id).Set(numeric.Float(st.Structural.RemainingLife))
	m.DRF.WithLabelValues(id).Set(numeric.Float(st.Structural.DRF))
	if p := st.Physics; p != nil {
		m.PowerMW.WithLabelValues(id).Set(numeric.Float(p.PowerMW))
		m.HoopSafety.WithLabelValues(id).Set(numeric.Float(p.HoopSafety))
		m.EfficiencyGap.WithLabelValues(id).Set(numeric.Float(p.EfficiencyGap))
	}
	if f := st.Financials; f != nil {
		m.TotalExposure.WithLabelValues(id).Set(numeric.Float(f.TotalExposure))
	}
}

// AnomalyDetected counts a detected anomaly.
func (m *Metrics) AnomalyDetected(a types.DetectedAnomaly) {
	m.Anomalies.WithLabelValues(a.Stream, string(a.Type), string(a.Severity)).Inc()
}

// TruthReconciled publishes the component's confidence under its current
// agreement, clearing the other agreements.
func (m *Metrics) TruthReconciled(td types.TruthDelta) {
	for _, a := range []types.Agreement{
		types.AgreementSyncHealthy, types.AgreementSyncFault,
		types.AgreementFalsePositive, types.AgreementFalseNegative, types.AgreementUnknown,
	} {
		if a != td.Agreement {
			m.TruthConfidence.DeleteLabelValues(td.Asset, td.Component, string(a))
		}
	}
	m.TruthConfidence.WithLabelValues(td.Asset, td.Component, string(td.Agreement)).Set(td.Confidence)
}

// Scraped records one gateway scrape.
func (m *Metrics) Scraped(asset string, ok bool, d time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.Scrapes.WithLabelValues(asset, outcome).Inc()
	m.ScrapeDuration.WithLabelValues(asset).Observe(d.Seconds())
}

// Forget drops every series of an asset that is no longer configured.
func (m *Metrics) Forget(asset string) {
	l := prometheus.Labels{"asset": asset}
	for _, v := range []interface{ DeletePartialMatch(prometheus.Labels) int }{
		m.PowerMW, m.Efficiency, m.RiskUrgency, m.RiskStatus, m.WearIndex,
		m.RemainingLife, m.DRF, m.HoopSafety, m.EfficiencyGap, m.TotalExposure,
		m.Evaluations, m.Anomalies, m.TruthConfidence, m.Scrapes, m.ScrapeDuration,
	} {
		v.DeletePartialMatch(l)
	}
}

// Handler serves the registered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
