package kernel

// Passthrough is the identity kernel: it declares a channel selection
// without altering any samples. No config directive emits one directly
// today, but add_filters never needs a special case for "no-op filter" —
// a factory that only wants the select_channels side effect can return one.
type Passthrough struct{}

// NewPassthrough returns a Passthrough kernel.
func NewPassthrough() *Passthrough { return &Passthrough{} }

func (k *Passthrough) Initialize(_ float64, _ int, inChannels []string) ([]string, error) {
	return inChannels, nil
}

func (k *Passthrough) InPlace() bool        { return true }
func (k *Passthrough) AllChannels() bool    { return false }
func (k *Passthrough) SelectChannels() bool { return true }

func (k *Passthrough) Process(_ [][]float64, _ int) {}
