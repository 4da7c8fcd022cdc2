// Package interp provides the fractional-sample interpolation a delay line
// needs when a requested delay isn't a whole number of samples. The Delay:
// directive itself only uses whole-sample delays.
//
// [LagrangeInterpolator] wraps order-1 (linear) and order-3 (cubic Hermite)
// interpolation behind one type so a caller can pick the quality/cost
// tradeoff at construction time; [Hermite4] is the underlying 4-point
// kernel, usable directly when a caller already has its four neighboring
// samples in hand.
package interp
