package kernel

import "github.com/cwbudde/apoengine/dsp/delay"

// Delay runs a per-channel integer-sample delay line, in place. It backs
// the Delay: directive; delaySamples is computed once at compile time from
// the directive's ms or samples value and the sample rate.
type Delay struct {
	delaySamples int
	lines        []*delay.Line
}

// NewDelay returns a Delay kernel for a fixed number of delay samples.
func NewDelay(delaySamples int) *Delay {
	return &Delay{delaySamples: delaySamples}
}

func (k *Delay) Initialize(_ float64, _ int, inChannels []string) ([]string, error) {
	size := k.delaySamples + 1
	if size < 1 {
		size = 1
	}

	k.lines = make([]*delay.Line, len(inChannels))
	for i := range inChannels {
		line, err := delay.New(size)
		if err != nil {
			return nil, err
		}

		k.lines[i] = line
	}

	return inChannels, nil
}

func (k *Delay) InPlace() bool        { return true }
func (k *Delay) AllChannels() bool    { return false }
func (k *Delay) SelectChannels() bool { return false }

func (k *Delay) Process(buffers [][]float64, frames int) {
	if k.delaySamples == 0 {
		return
	}

	for i, line := range k.lines {
		if i >= len(buffers) {
			return
		}

		buf := buffers[i]
		for n := 0; n < frames; n++ {
			line.Write(buf[n])
			buf[n] = line.Read(k.delaySamples)
		}
	}
}
