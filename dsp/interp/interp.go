package interp

// LagrangeInterpolator reads a fractional position out of a short run of
// samples, the operation a fractional-sample delay read needs once the
// requested delay in samples isn't an integer.
type LagrangeInterpolator struct {
	order int
}

// NewLagrangeInterpolator returns an interpolator of the given order.
// order 1 is linear (cheap, audible aliasing on fast modulation); order 3
// is cubic Hermite (the usual default for a delay line).
func NewLagrangeInterpolator(order int) *LagrangeInterpolator {
	return &LagrangeInterpolator{order: order}
}

// Interpolate reads the value at frac (in [0,1]) between two of the given
// samples.
// For order 1, samples must contain at least 2 values.
// For order 3, samples must contain at least 4 values; the result falls
// between samples[1] and samples[2].
func (l *LagrangeInterpolator) Interpolate(samples []float64, frac float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	if l.order == 1 {
		if len(samples) < 2 {
			return samples[0]
		}
		return samples[0] + frac*(samples[1]-samples[0])
	}
	if l.order == 3 {
		if len(samples) < 4 {
			if len(samples) < 2 {
				return samples[0]
			}
			return samples[0] + frac*(samples[1]-samples[0])
		}
		return Hermite4(frac, samples[0], samples[1], samples[2], samples[3])
	}
	if len(samples) < 2 {
		return samples[0]
	}
	return samples[0] + frac*(samples[1]-samples[0])
}

// Hermite4 interpolates between x0 and x1 at position t in [0,1], using
// the neighboring samples xm1 and x2 to shape the curve through the span.
// This is the 4-point cubic kernel a fractional delay-line read uses.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
