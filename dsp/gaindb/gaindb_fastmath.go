//go:build fastmath

package gaindb

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

const ln10 = 2.30258509299404568402

// LinearFromDBFast is the fastmath-tagged dB-to-linear conversion, trading
// a little precision for avoiding math.Pow. The config compiler does not
// call it; its dB values always go through LinearFromDB.
// algo-approx has no direct pow10, so this goes through FastExp instead of
// a dedicated power-of-10 primitive.
func LinearFromDBFast(db float64) float64 {
	return approx.FastExp(db / 20 * ln10)
}

// DBFromLinearFast is the fastmath-tagged linear-to-dB conversion, via
// FastLog.
func DBFromLinearFast(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}

	return 20 * approx.FastLog(x) / ln10
}
