package render

import "strings"

// DiffKind classifies a segment of a typed-answer comparison.
type DiffKind int

const (
	DiffMatch   DiffKind = iota // typed and expected agree
	DiffExtra                   // typed but not expected
	DiffMissing                 // expected but not typed
)

// Segment is a run of runes sharing a DiffKind.
type Segment struct {
	Kind DiffKind
	Text string
}

// Comparison is the result of checking a typed answer.
type Comparison struct {
	Correct  bool
	Segments []Segment
}

// CompareAnswer diffs typed against expected rune by rune, ignoring case
// and surrounding whitespace.
func CompareAnswer(expected, typed string) Comparison {
	e := []rune(strings.TrimSpace(expected))
	t := []rune(strings.TrimSpace(typed))
	el, tl := []rune(strings.ToLower(string(e))), []rune(strings.ToLower(string(t)))
	if len(el) != len(e) || len(tl) != len(t) {
		// Lower-casing changed the rune count; compare as typed.
		el, tl = e, t
	}

	// Longest common subsequence table.
	lcs := make([][]int, len(t)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(e)+1)
	}
	for i := len(t) - 1; i >= 0; i-- {
		for j := len(e) - 1; j >= 0; j-- {
			if tl[i] == el[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var segs []Segment
	add := func(k DiffKind, r rune) {
		if n := len(segs); n > 0 && segs[n-1].Kind == k {
			segs[n-1].Text += string(r)
			return
		}
		segs = append(segs, Segment{Kind: k, Text: string(r)})
	}
	i, j := 0, 0
	for i < len(t) && j < len(e) {
		switch {
		case tl[i] == el[j]:
			add(DiffMatch, e[j])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			add(DiffExtra, t[i])
			i++
		default:
			add(DiffMissing, e[j])
			j++
		}
	}
	for ; i < len(t); i++ {
		add(DiffExtra, t[i])
	}
	for ; j < len(e); j++ {
		add(DiffMissing, e[j])
	}

	correct := len(e) > 0 || len(t) == 0
	for _, s := range segs {
		if s.Kind != DiffMatch {
			correct = false
			break
		}
	}
	return Comparison{Correct: correct, Segments: segs}
}
