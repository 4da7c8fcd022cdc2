// Package biquad is the runtime every IIR:, BiQuad:, and Filter: directive
// ultimately compiles down to: a [Section] runs one second-order IIR stage
// in Direct Form II Transposed, and a [Chain] cascades several of them for
// the higher-order Butterworth designs an IIR: line can request.
//
// Coefficient design — turning "LP Fc 1000 Q 0.707" into the A1/A2/B0/B1/B2
// a Section needs — lives in dsp/filter/design; this package only runs the
// numbers once they're computed.
package biquad
