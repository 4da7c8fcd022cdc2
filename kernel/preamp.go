package kernel

import vecmath "github.com/cwbudde/algo-vecmath"

// Preamp scales every channel by a fixed linear gain, in place. It backs
// the Preamp: directive.
type Preamp struct {
	gain float64
}

// NewPreamp returns a Preamp kernel for the given linear gain (see
// dsp/gaindb for dB conversion at parse time).
func NewPreamp(gain float64) *Preamp {
	return &Preamp{gain: gain}
}

func (k *Preamp) Initialize(_ float64, _ int, inChannels []string) ([]string, error) {
	return inChannels, nil
}

func (k *Preamp) InPlace() bool        { return true }
func (k *Preamp) AllChannels() bool    { return false }
func (k *Preamp) SelectChannels() bool { return false }

func (k *Preamp) Process(buffers [][]float64, frames int) {
	if k.gain == 1 {
		return
	}

	for _, buf := range buffers {
		vecmath.ScaleBlockInPlace(buf[:frames], k.gain)
	}
}
