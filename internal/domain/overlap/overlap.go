// Package overlap maps detector-object positions across overlap removal.
//
// Input collections are stored before overlap removal together with a
// parallel survival-flag sequence. Analysis-level objects refer to the
// surviving subsequence, so positions have to be translated both ways.
// Nothing here mutates its arguments.
package overlap

// PostORIndex returns the position of the object at pre-removal position
// pos within the subsequence of survivors. ok is false when pos is out of
// range or the object did not survive; that is a normal "no match".
func PostORIndex(pos int, survived []bool) (idx int, ok bool) {
	if pos < 0 || pos >= len(survived) || !survived[pos] {
		return -1, false
	}
	for i := 0; i < pos; i++ {
		if survived[i] {
			idx++
		}
	}
	return idx, true
}

// PreORPosition is the inverse of PostORIndex: it scans the pre-removal
// positions and returns the one whose post-removal index equals idx.
func PreORPosition(idx int, survived []bool) (pos int, ok bool) {
	if idx < 0 {
		return -1, false
	}
	for p := range survived {
		if got, hit := PostORIndex(p, survived); hit && got == idx {
			return p, true
		}
	}
	return -1, false
}

// Survivors returns the pre-removal positions of every surviving object in
// their original order.
func Survivors(survived []bool) []int {
	out := make([]int, 0, len(survived))
	for p, s := range survived {
		if s {
			out = append(out, p)
		}
	}
	return out
}

// FromIndices builds a survival-flag sequence of length n from an explicit
// list of surviving positions. Positions outside [0, n) are ignored.
func FromIndices(n int, indices []int) []bool {
	if n < 0 {
		n = 0
	}
	out := make([]bool, n)
	for _, p := range indices {
		if p >= 0 && p < n {
			out[p] = true
		}
	}
	return out
}
