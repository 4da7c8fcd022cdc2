package graph

import (
	"fmt"

	"github.com/cwbudde/apoengine/kernel"
)

// FilterRequest is one filter the config compiler wants added to the
// configuration being built. InChannelNames, when empty, means "reuse
// whatever channel selection the previous filter left active" — the same
// shorthand every directive in the config language relies on when it
// doesn't name channels explicitly.
type FilterRequest struct {
	Kernel         kernel.Kernel
	InChannelNames []string
	AllChannels    bool
	SelectChannels bool
}

// Compiler holds the channel-pool bookkeeping AddFilters threads through
// a sequence of FilterRequests. Construct one with NewCompiler per
// configuration being built; it is not reusable across configurations.
type Compiler struct {
	sampleRate float64
	maxFrames  int

	allChannelNames     []string
	currentChannelNames []string
	lastChannelNames    []string
	lastNewChannelNames []string
	lastInPlace         bool

	filters []FilterInfo
}

// NewCompiler starts a fresh compilation with the given initial channel
// names (typically one name per physical device channel).
func NewCompiler(sampleRate float64, maxFrames int, initialChannelNames []string) *Compiler {
	names := make([]string, len(initialChannelNames))
	copy(names, initialChannelNames)

	return &Compiler{
		sampleRate:          sampleRate,
		maxFrames:           maxFrames,
		allChannelNames:     names,
		currentChannelNames: names,
	}
}

// channelIndex returns the pool index of name, or -1 if it isn't known yet.
func (c *Compiler) channelIndex(name string) int {
	for i, n := range c.allChannelNames {
		if n == name {
			return i
		}
	}

	return -1
}

// resolveIndices maps a list of channel names to pool indices, allocating
// a new pool slot for any name that hasn't appeared before.
func (c *Compiler) resolveIndices(names []string) []int {
	idx := make([]int, len(names))

	for i, name := range names {
		pos := c.channelIndex(name)
		if pos < 0 {
			c.allChannelNames = append(c.allChannelNames, name)
			pos = len(c.allChannelNames) - 1
		}

		idx[i] = pos
	}

	return idx
}

// AddFilters resolves a filter's input channel set, runs the kernel's
// Initialize to learn its output channel set, and records the pool-index
// mapping both sides need — the channel-routing step every directive in
// the config language goes through.
//
// When a directive gives no explicit channel names, the previous filter's
// output becomes this filter's input: its full output if the previous
// filter ran in place (so the active selection carried through unchanged),
// or just the channel names the previous filter newly introduced
// otherwise. This mirrors how consecutive directives in a config file
// implicitly chain without repeating channel names on every line.
func (c *Compiler) AddFilters(req FilterRequest) (*FilterInfo, error) {
	savedChannelNames := c.currentChannelNames

	// A kernel that reports AllChannels or SelectChannels is routed the
	// same way as a request that sets the flag.
	req.AllChannels = req.AllChannels || req.Kernel.AllChannels()

	inNames := c.resolveInputNames(req)

	outNames, err := req.Kernel.Initialize(c.sampleRate, c.maxFrames, inNames)
	if err != nil {
		return nil, fmt.Errorf("graph: initialize filter: %w", err)
	}

	req.SelectChannels = req.SelectChannels || req.Kernel.SelectChannels()

	inIndices := c.resolveIndices(inNames)

	inPlace := req.Kernel.InPlace() && sameNames(inNames, outNames)

	var outIndices []int
	var newNames []string

	if inPlace {
		outIndices = inIndices
	} else {
		outIndices = make([]int, len(outNames))
		for i, name := range outNames {
			pos := c.channelIndex(name)
			if pos < 0 {
				c.allChannelNames = append(c.allChannelNames, name)
				pos = len(c.allChannelNames) - 1
				newNames = append(newNames, name)
			}

			outIndices[i] = pos
		}
	}

	info := FilterInfo{
		Kernel:         req.Kernel,
		InChannels:     inIndices,
		OutChannels:    outIndices,
		InPlace:        inPlace,
		AllChannels:    req.AllChannels,
		SelectChannels: req.SelectChannels,
	}
	info.ExtraOutChannels = extraIndices(inIndices, outIndices)

	if req.SelectChannels {
		c.currentChannelNames = outNames
	} else {
		c.currentChannelNames = savedChannelNames
	}

	c.lastChannelNames = outNames
	c.lastNewChannelNames = newNames
	c.lastInPlace = inPlace

	c.filters = append(c.filters, info)

	return &c.filters[len(c.filters)-1], nil
}

// resolveInputNames decides which channel names feed this request,
// applying the "reuse the previous filter's output" shorthand when the
// request doesn't name channels explicitly.
func (c *Compiler) resolveInputNames(req FilterRequest) []string {
	if req.AllChannels {
		names := make([]string, len(c.allChannelNames))
		copy(names, c.allChannelNames)

		return names
	}

	if len(req.InChannelNames) > 0 {
		return req.InChannelNames
	}

	if len(c.filters) == 0 {
		return c.currentChannelNames
	}

	if c.lastInPlace {
		if len(c.lastChannelNames) > 0 {
			return c.lastChannelNames
		}

		return c.currentChannelNames
	}

	if len(c.lastNewChannelNames) > 0 {
		return c.lastNewChannelNames
	}

	return c.lastChannelNames
}

// CurrentChannelNames returns the channel selection active right now —
// what a directive with no explicit channel names would bind to next.
func (c *Compiler) CurrentChannelNames() []string {
	names := make([]string, len(c.currentChannelNames))
	copy(names, c.currentChannelNames)

	return names
}

// SetCurrentChannelNames overrides the active channel selection. Include:
// uses this to save the selection before compiling an included file and
// restore it afterwards, so the included file's own directives can't leak
// a channel selection change into the file that included it.
func (c *Compiler) SetCurrentChannelNames(names []string) {
	c.currentChannelNames = names
}

// Finish returns the compiled configuration. The channels the host's
// output stream reads from the pool are the channel selection active at
// the time of the call.
func (c *Compiler) Finish() *FilterConfiguration {
	selected := c.currentChannelNames
	selectedIndices := make([]int, len(selected))

	for i, name := range selected {
		selectedIndices[i] = c.channelIndex(name)
	}

	return &FilterConfiguration{
		Filters:          c.filters,
		ChannelNames:     c.allChannelNames,
		SelectedChannels: selectedIndices,
	}
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// extraIndices returns the entries of out that aren't in in, preserving
// order — the pool slots kernel.Copy-style kernels need appended after
// their declared inputs when building the buffer slice for Process.
func extraIndices(in, out []int) []int {
	inSet := make(map[int]bool, len(in))
	for _, i := range in {
		inSet[i] = true
	}

	var extra []int

	for _, o := range out {
		if !inSet[o] {
			extra = append(extra, o)
			inSet[o] = true
		}
	}

	return extra
}
