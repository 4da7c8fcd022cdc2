package graph

// Process runs every filter in order, in place, over the pool that was
// bound to this configuration by NewPool. pool must be that exact slice —
// every FilterInfo's cached buffer slice was built against it — and frames
// must not exceed the maxFrames the configuration was compiled with.
func (fc *FilterConfiguration) Process(pool [][]float64, frames int) {
	for i := range fc.Filters {
		f := &fc.Filters[i]
		f.Kernel.Process(f.buffers(), frames)
	}
}

// Write copies the selected output channels from pool into dst, one slice
// per output channel, matching SelectedChannels order.
func (fc *FilterConfiguration) Write(dst [][]float64, pool [][]float64, frames int) {
	for i, idx := range fc.SelectedChannels {
		if i >= len(dst) || idx < 0 || idx >= len(pool) {
			continue
		}

		copy(dst[i][:frames], pool[idx][:frames])
	}
}
