// Package gaindb converts between decibel and linear amplitude, the
// conversion every Preamp:, Filter: Gain, and IIR: Gain directive needs
// at compile time.
package gaindb

import "math"

// LinearFromDB converts a decibel value to a linear amplitude multiplier.
// 0 dB maps to 1.0, -6.0206 dB maps to ~0.5.
func LinearFromDB(db float64) float64 {
	return math.Pow(10, db/20)
}

// DBFromLinear converts a linear amplitude multiplier to decibels.
// A non-positive input has no finite decibel value and returns
// math.Inf(-1), treating it as silence rather than erroring.
func DBFromLinear(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(x)
}
