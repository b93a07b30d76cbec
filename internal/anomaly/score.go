package anomaly

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Probability maps a detector metric to a 0–100 confidence. At or below
// threshold it is 0; above, 50 + 50·tanh(2·x) where x is the excess
// normalised against the ceiling and clamped to [0, 1].
func Probability(value, threshold, ceiling float64) float64 {
	if value <= threshold || ceiling <= threshold {
		return 0
	}
	x := numeric.Div(numeric.F(value-threshold), numeric.F(ceiling-threshold))
	x = numeric.Clamp(x, numeric.Zero, numeric.One)
	p := numeric.F(50).Add(numeric.F(50).Mul(numeric.Tanh(numeric.Two.Mul(x))))
	return numeric.Float(numeric.Round(p, 0))
}

// digest returns the hex SHA-256 of the JSON-serialized window.
func digest(window []types.TelemetrySnapshot) string {
	b, err := json.Marshal(window)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
