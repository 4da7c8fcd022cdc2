package kernel

import (
	"github.com/cwbudde/apoengine/dsp/filter/biquad"
)

// Biquad runs the same coefficient set through one biquad.Chain per
// channel, in place, across every channel it was initialized with. It backs both the
// single-section Filter:/BiQuad: directives and the cascaded IIR:
// directive — the only difference between them is how many Coefficients
// design produced upstream.
type Biquad struct {
	coeffs []biquad.Coefficients
	gain   float64
	chains []*biquad.Chain
}

// NewBiquad returns a Biquad kernel that cascades coeffs (one or more
// sections) per channel, scaled by gain (linear) before the first section.
func NewBiquad(coeffs []biquad.Coefficients, gain float64) *Biquad {
	return &Biquad{coeffs: coeffs, gain: gain}
}

func (k *Biquad) Initialize(_ float64, _ int, inChannels []string) ([]string, error) {
	k.chains = make([]*biquad.Chain, len(inChannels))
	for i := range inChannels {
		k.chains[i] = biquad.NewChain(k.coeffs, biquad.WithGain(k.gain))
	}

	return inChannels, nil
}

func (k *Biquad) InPlace() bool        { return true }
func (k *Biquad) AllChannels() bool    { return false }
func (k *Biquad) SelectChannels() bool { return false }

func (k *Biquad) Process(buffers [][]float64, frames int) {
	for i, chain := range k.chains {
		if i >= len(buffers) {
			return
		}

		chain.ProcessBlock(buffers[i][:frames])
	}
}
