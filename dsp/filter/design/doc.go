// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing. It includes both RBJ-style
// designers (Lowpass, Highpass, Peak, etc.) and Orfanidis-style peaking EQ
// with prescribed DC/Nyquist gain via functional options on [Peak], plus
// Butterworth cascades for higher-order filters via [ButterworthLP] and
// [ButterworthHP].
package design
