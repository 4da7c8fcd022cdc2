// Package graph compiles an ordered sequence of filter build requests into
// a runnable FilterConfiguration, and runs that configuration against a
// planar multi-channel buffer set on every audio callback.
package graph

import "github.com/cwbudde/apoengine/kernel"

// FilterInfo is one compiled filter: its kernel plus the channel-pool
// indices it reads from and writes to, resolved once at compile time so
// the audio-thread Process path never has to look anything up by name.
type FilterInfo struct {
	Kernel kernel.Kernel

	// InChannels holds pool indices for the kernel's declared inputs, in
	// the order Initialize was called with.
	InChannels []int

	// OutChannels holds pool indices for the kernel's declared outputs,
	// in the order Initialize returned them. When InPlace is true and the
	// output names were unchanged from the input names, this is the same
	// slice (by value) as InChannels.
	OutChannels []int

	// ExtraOutChannels holds pool indices for output channel names that
	// were not among InChannels — appended after InChannels when building
	// the buffer slice passed to Kernel.Process, per the convention
	// documented on kernel.Copy.
	ExtraOutChannels []int

	InPlace        bool
	AllChannels    bool
	SelectChannels bool

	// buf is the []float64 slice Kernel.Process expects, built once by
	// bind against the configuration's pool. Process reuses it on every
	// callback instead of rebuilding it, since the audio thread must not
	// allocate.
	buf [][]float64
}

// bind resolves this filter's pool indices against pool once, caching the
// result in buf. Called from FilterConfiguration.NewPool, never from the
// audio-thread Process path.
func (f *FilterInfo) bind(pool [][]float64) {
	n := len(f.InChannels) + len(f.ExtraOutChannels)
	if cap(f.buf) < n {
		f.buf = make([][]float64, n)
	}
	f.buf = f.buf[:n]

	for i, idx := range f.InChannels {
		f.buf[i] = pool[idx]
	}

	for i, idx := range f.ExtraOutChannels {
		f.buf[len(f.InChannels)+i] = pool[idx]
	}
}

// buffers returns the cached buffer slice built by bind.
func (f *FilterInfo) buffers() [][]float64 {
	return f.buf
}
