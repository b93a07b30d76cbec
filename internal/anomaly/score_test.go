package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbability(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"below threshold", 1.99, 0},
		{"at threshold", 2.0, 0},
		{"just above threshold", 2.0001, 50},
		{"quarter way", 4.0, 73},
		{"at ceiling", 10, 98},
		{"far beyond ceiling", 1e6, 98},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Probability(tc.value, 2.0, 10))
		})
	}
}

func TestProbability_NeverReaches100(t *testing.T) {
	prev := 0.0
	for v := 2.1; v < 50; v += 0.1 {
		p := Probability(v, 2, 10)
		assert.Less(t, p, 100.0)
		assert.GreaterOrEqual(t, p, prev, "monotonic at %v", v)
		prev = p
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.WindowSize = 1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ThermalCeiling = 5
	assert.Error(t, cfg.Validate())
}
