// Package kernel defines the uniform contract every filter implementation
// satisfies and provides the concrete kernels the config compiler wires up
// for the Filter:, BiQuad:, IIR:, Preamp:, Delay: and Copy: directives.
package kernel

import "fmt"

// Kernel is implemented by every filter. Initialize is called once, from
// the compile path, never from the audio thread; it is the only place a
// kernel is allowed to allocate. Process runs on every audio callback and
// must not allocate, block, or otherwise take unbounded time.
//
// AllChannels is read once, just before Initialize; InPlace and
// SelectChannels are read once, immediately after Initialize returns. The
// caller caches all three — a kernel must not change its answer to these
// after Initialize.
type Kernel interface {
	// Initialize prepares the kernel for the given sample rate and the
	// maximum number of frames any single Process call will receive, given
	// the ordered list of input channel names. It returns the ordered list
	// of output channel names the kernel produces from those inputs.
	Initialize(sampleRate float64, maxFrames int, inChannels []string) ([]string, error)

	// InPlace reports whether Process can write its output over its input
	// buffers (same slice backing), letting the caller reuse channel pool
	// slots instead of allocating new ones.
	InPlace() bool

	// AllChannels reports whether this kernel always operates on every
	// channel in the pool regardless of what Initialize was given, rather
	// than a fixed subset.
	AllChannels() bool

	// SelectChannels reports whether this kernel's output channel names
	// become the new active channel selection for directives that follow,
	// rather than leaving the previously active selection untouched.
	SelectChannels() bool

	// Process runs the kernel over frames samples in buffers, one slice
	// per channel in the order Initialize was given (or, when AllChannels
	// is true, one slice per channel in the full pool). Must not allocate.
	Process(buffers [][]float64, frames int)
}

// ErrChannelCountMismatch describes a kernel's Initialize being given a
// number of input channel names that doesn't match what the directive
// requires. None of the kernels in this package return it; Copy reports an
// unknown source channel with a plain error.
type ErrChannelCountMismatch struct {
	Kernel string
	Got    int
	Want   int
}

func (e *ErrChannelCountMismatch) Error() string {
	return fmt.Sprintf("%s: got %d input channels, want %d", e.Kernel, e.Got, e.Want)
}
