package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return New(reg, reg)
}

func evaluated() types.AssetState {
	return types.AssetState{
		ID:        "u1",
		Hydraulic: types.Hydraulic{Efficiency: 91.5},
		Risk:      types.RiskAssessment{Status: types.StatusWarning, Urgency: 3},
		Structural: types.StructuralMetrics{
			WearIndex: numeric.F(12.5), RemainingLife: numeric.F(87.5), DRF: numeric.F(20),
		},
		Physics:    &types.PhysicsResult{PowerMW: numeric.F(38.2), HoopSafety: numeric.F(2.1), EfficiencyGap: numeric.F(0.5)},
		Financials: &types.FinancialSummary{TotalExposure: numeric.F(250000)},
	}
}

func TestStateComputed(t *testing.T) {
	m := newMetrics()
	m.StateComputed(evaluated())
	m.StateComputed(evaluated())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("u1")))
	assert.Equal(t, 38.2, testutil.ToFloat64(m.PowerMW.WithLabelValues("u1")))
	assert.Equal(t, 91.5, testutil.ToFloat64(m.Efficiency.WithLabelValues("u1")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RiskUrgency.WithLabelValues("u1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RiskStatus.WithLabelValues("u1", "WARNING")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RiskStatus.WithLabelValues("u1", "CRITICAL")))
	assert.Equal(t, 87.5, testutil.ToFloat64(m.RemainingLife.WithLabelValues("u1")))
	assert.Equal(t, 250000.0, testutil.ToFloat64(m.TotalExposure.WithLabelValues("u1")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.EfficiencyGap.WithLabelValues("u1")))
}

func TestStateComputed_BeforePhysics(t *testing.T) {
	m := newMetrics()
	st := evaluated()
	st.Physics, st.Financials = nil, nil
	m.StateComputed(st)
	assert.Equal(t, 0, testutil.CollectAndCount(m.PowerMW))
	assert.Equal(t, 0, testutil.CollectAndCount(m.TotalExposure))
}

func TestAnomalyDetected(t *testing.T) {
	m := newMetrics()
	a := types.DetectedAnomaly{Stream: "u1", Type: types.AnomalyCavitation, Severity: types.SeverityHigh}
	m.AnomalyDetected(a)
	m.AnomalyDetected(a)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Anomalies.WithLabelValues("u1", "CAVITATION", "HIGH")))
}

func TestTruthReconciled_KeepsOneAgreement(t *testing.T) {
	m := newMetrics()
	m.TruthReconciled(types.TruthDelta{Asset: "u1", Component: "bearing", Agreement: types.AgreementSyncFault, Confidence: 95})
	m.TruthReconciled(types.TruthDelta{Asset: "u1", Component: "bearing", Agreement: types.AgreementFalsePositive, Confidence: 61})

	assert.Equal(t, 1, testutil.CollectAndCount(m.TruthConfidence))
	assert.Equal(t, 61.0, testutil.ToFloat64(m.TruthConfidence.WithLabelValues("u1", "bearing", "false_positive")))
}

func TestScrapedAndForget(t *testing.T) {
	m := newMetrics()
	m.Scraped("u1", true, 20*time.Millisecond)
	m.Scraped("u1", false, time.Second)
	m.Scraped("u2", true, 10*time.Millisecond)
	m.StateComputed(evaluated())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scrapes.WithLabelValues("u1", "failure")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ScrapeDuration))

	m.Forget("u1")
	assert.Equal(t, 1, testutil.CollectAndCount(m.Scrapes))
	assert.Equal(t, 0, testutil.CollectAndCount(m.PowerMW))
}

func TestHandler(t *testing.T) {
	m := newMetrics()
	m.StateComputed(evaluated())

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `hydroguard_power_mw{asset="u1"} 38.2`), string(body))
}
