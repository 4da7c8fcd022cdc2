package design

import (
	"github.com/cwbudde/apoengine/dsp/filter/biquad"
	"github.com/cwbudde/apoengine/dsp/filter/design/pass"
)

// ButterworthLP designs a lowpass Butterworth cascade using the RBJ cookbook
// approach, for the IIR: directive's higher-order filters.
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return pass.ButterworthLP(freq, order, sampleRate)
}

// ButterworthHP designs a highpass Butterworth cascade using the RBJ
// cookbook approach, for the IIR: directive's higher-order filters.
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthHP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return pass.ButterworthHP(freq, order, sampleRate)
}
