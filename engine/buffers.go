package engine

// newPlanarBuffer allocates a [channel][frame] scratch buffer sized for
// up to maxFrames frames. It is only ever called from Initialize, never
// from Process, so it's the one place in this package allowed to
// allocate on what would otherwise be the audio thread.
func newPlanarBuffer(numChannels, maxFrames int) [][]float64 {
	buf := make([][]float64, numChannels)
	for c := range buf {
		buf[c] = make([]float64, maxFrames)
	}

	return buf
}

// deinterleave copies frames samples for the first channels channels out
// of an interleaved float32 buffer (addressed with the given stride, the
// device's full channel count) into dst's per-channel float64 rows.
// channels is typically the real, filtered channel count; stride covers
// spare lanes deinterleave leaves untouched.
func deinterleave(dst [][]float64, src []float32, frames, channels, stride int) {
	for f := 0; f < frames; f++ {
		base := f * stride
		for c := 0; c < channels; c++ {
			dst[c][f] = float64(src[base+c])
		}
	}
}

// interleave is deinterleave's inverse: it writes src's per-channel
// float64 rows into dst as interleaved float32 samples.
func interleave(dst []float32, src [][]float64, frames, channels, stride int) {
	for f := 0; f < frames; f++ {
		base := f * stride
		for c := 0; c < channels; c++ {
			dst[base+c] = float32(src[c][f])
		}
	}
}

// copySpareChannels carries channels [from, to) straight from the
// interleaved src into dst's planar rows, unfiltered. Those lanes exist
// in the device's channel count but sit beyond realChannelCount, so the
// graph never names or touches them — they still have to reach the
// output untouched.
func copySpareChannels(dst [][]float64, src []float32, frames, stride, from, to int) {
	for c := from; c < to; c++ {
		for f := 0; f < frames; f++ {
			dst[c][f] = float64(src[f*stride+c])
		}
	}
}

func zeroFloat32(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}
