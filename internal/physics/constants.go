package physics

import "github.com/hydroguard/hydroguard/internal/numeric"

// Physical constants.
var (
	Density            = numeric.I(1000)    // kg/m³
	Gravity            = numeric.F(9.81)    // m/s²
	BulkModulus        = numeric.F(2.15e9)  // Pa, water
	KinematicViscosity = numeric.F(1.14e-6) // m²/s, water at ~15 °C
	LaminarLimit       = numeric.I(2300)    // Reynolds
	MetresPerBar       = numeric.I(10)      // hydrostatic rule of thumb
	pascalPerBar       = numeric.I(100000)
	pascalPerMPa       = numeric.I(1000000)
	wattsPerMW         = numeric.I(1000000)
	kilo               = numeric.I(1000)
	secondsPerHour     = numeric.I(3600)
)

// Defaults applied when an input field is zero.
const (
	DefaultElasticModulusGPa = 210.0
	DefaultYieldStrengthMPa  = 355.0
	DefaultBaselinePowerMW   = 100.0
	DefaultDesignFlowM3S     = 3.0
	DefaultDesignPowerMW     = 5.0
	DefaultBoltDiameterMM    = 36.0
	DefaultBoltCount         = 12
	DefaultBoltGrade         = "8.8"
	DefaultRunnerDiameterMM  = 1500.0
)

// roughnessMM is the absolute pipe roughness per penstock material.
var roughnessMM = map[string]float64{
	"STEEL":    0.045,
	"GRP":      0.01,
	"PEHD":     0.005,
	"CONCRETE": 1.5,
}

const defaultRoughnessMM = 0.045

// boltYieldMPa maps ISO 898-1 property classes to yield strength.
var boltYieldMPa = map[string]float64{
	"4.6":  240,
	"5.6":  300,
	"8.8":  640,
	"10.9": 940,
	"12.9": 1080,
}

const defaultBoltYieldMPa = 640.0
