package kernel

import (
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// CopyTerm is one weighted source in a Copy: assignment, e.g. the "0.5*R"
// in "Copy: L=0.5*L+0.5*R".
type CopyTerm struct {
	Source string
	Weight float64
}

// CopyAssignment is one target="w1*src1+w2*src2+..." line of a Copy:
// directive.
type CopyAssignment struct {
	Target string
	Terms  []CopyTerm
}

// Copy computes one or more weighted sums of named channels. A target name
// may coincide with one of its own source names (e.g. "L=0.5*L+0.5*R"); to
// avoid corrupting a source mid-sum when that happens, each target is fully
// accumulated into a scratch buffer before anything is written to the
// destination slice.
//
// Process addresses its buffers slice by the convention the caller (the
// graph compiler) and Initialize agree on here: indices
// [0, len(inChannels)) are the declared inputs in order; any output
// channel name that isn't one of those inputs gets its own slot appended
// after, in first-occurrence order of the returned output list.
type Copy struct {
	assignments []CopyAssignment
	termIndices [][]int // per assignment, index into buffers for each term's source
	dstIndices  []int   // per assignment, index into buffers for the target
	scratch     []float64
}

// NewCopy returns a Copy kernel for the given assignments, evaluated in
// order against the channel pool.
func NewCopy(assignments []CopyAssignment) *Copy {
	return &Copy{assignments: assignments}
}

func (k *Copy) Initialize(_ float64, maxFrames int, inChannels []string) ([]string, error) {
	index := make(map[string]int, len(inChannels))
	for i, name := range inChannels {
		index[name] = i
	}

	out := make([]string, len(k.assignments))
	k.termIndices = make([][]int, len(k.assignments))
	k.dstIndices = make([]int, len(k.assignments))

	nextNewSlot := len(inChannels)

	for i, a := range k.assignments {
		out[i] = a.Target

		idxs := make([]int, len(a.Terms))
		for j, term := range a.Terms {
			idx, ok := index[term.Source]
			if !ok {
				return nil, fmt.Errorf("kernel.Copy: unknown source channel %q", term.Source)
			}

			idxs[j] = idx
		}

		k.termIndices[i] = idxs

		if dst, ok := index[a.Target]; ok {
			k.dstIndices[i] = dst
		} else {
			k.dstIndices[i] = nextNewSlot
			index[a.Target] = nextNewSlot
			nextNewSlot++
		}
	}

	k.scratch = make([]float64, maxFrames)

	return out, nil
}

func (k *Copy) InPlace() bool        { return true }
func (k *Copy) AllChannels() bool    { return false }
func (k *Copy) SelectChannels() bool { return false }

func (k *Copy) Process(buffers [][]float64, frames int) {
	scratch := k.scratch[:frames]

	for i, a := range k.assignments {
		for n := range scratch {
			scratch[n] = 0
		}

		for j, term := range a.Terms {
			srcIdx := k.termIndices[i][j]
			if srcIdx >= len(buffers) {
				continue
			}

			vecmath.AddMulBlock(scratch, scratch, buffers[srcIdx][:frames], term.Weight)
		}

		dstIdx := k.dstIndices[i]
		if dstIdx < 0 || dstIdx >= len(buffers) {
			continue
		}

		copy(buffers[dstIdx][:frames], scratch)
	}
}
