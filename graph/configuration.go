package graph

// FilterConfiguration is a fully compiled, immutable filter chain ready to
// run on the audio thread. Build one with Compiler, never construct it by
// hand — the pool-index bookkeeping in Filters only makes sense relative
// to the exact ChannelNames slice it was compiled against.
type FilterConfiguration struct {
	Filters []FilterInfo

	// ChannelNames is the full channel pool this configuration allocates
	// buffers for, device channels first, then every name introduced by a
	// filter along the way.
	ChannelNames []string

	// SelectedChannels holds pool indices for the channels the host's
	// output stream should read, in output-channel order.
	SelectedChannels []int
}

// IsEmpty reports whether this configuration has no filters and selects
// exactly the device's own channels unchanged — the case the audio thread
// short-circuits to a bare copy instead of walking the filter list.
func (fc *FilterConfiguration) IsEmpty(deviceChannelCount int) bool {
	return len(fc.Filters) == 0 && len(fc.SelectedChannels) == deviceChannelCount && isIdentitySelection(fc.SelectedChannels)
}

func isIdentitySelection(indices []int) bool {
	for i, idx := range indices {
		if idx != i {
			return false
		}
	}

	return true
}

// NewPool allocates one buffer per channel name, sized for maxFrames, and
// binds every filter's cached buffer slice against it — the only
// allocation this configuration's lifetime needs; every Process call
// afterwards reuses these slices without allocating.
func (fc *FilterConfiguration) NewPool(maxFrames int) [][]float64 {
	pool := make([][]float64, len(fc.ChannelNames))
	for i := range pool {
		pool[i] = make([]float64, maxFrames)
	}

	for i := range fc.Filters {
		fc.Filters[i].bind(pool)
	}

	return pool
}
