// Package highlight implements the fragment-extraction / context-window
// highlighting engine (spec.md SS4.P, MODULE P): assembling match runs
// into fragments, ranking them by score or position, expanding context to
// separator boundaries without crossing into a neighboring kept fragment,
// and rendering writev-style byte-slice vectors instead of copying the
// document buffer. Grounded on the highlighting-adjacent windowed-read
// style used by the teacher's xact/xs list-objects scan (xact/xs/lso.go),
// generalized from a directory-page window to a byte-offset context
// window.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package highlight

import "sort"

// Match is one matched term occurrence, position-aligned against either
// the tokenizer's live output or the index's stored offset vectors
// (spec.md SS4.P: "walk the two iterators in lock-step").
type Match struct {
	TermID  int
	TokPos  int
	BytePos int
	Len     int
	Score   float64
}

// Fragment is a run of matches close enough together (within MaxDistance
// tokens) to be presented as one snippet.
type Fragment struct {
	Matches []Match
	Score   float64
}

// AssembleFragments walks matches (assumed sorted by TokPos) and extends
// a fragment while the token gap to the next match is <= maxDistance;
// otherwise starts a new one. A term's score counts once per fragment --
// repeats within the same fragment contribute zero (spec.md SS4.P.1).
func AssembleFragments(matches []Match, maxDistance int) []Fragment {
	if len(matches) == 0 {
		return nil
	}
	var frags []Fragment
	seen := map[int]bool{matches[0].TermID: true}
	cur := Fragment{Matches: []Match{matches[0]}, Score: matches[0].Score}

	for _, m := range matches[1:] {
		last := cur.Matches[len(cur.Matches)-1]
		if m.TokPos-last.TokPos <= maxDistance {
			cur.Matches = append(cur.Matches, m)
			if !seen[m.TermID] {
				cur.Score += m.Score
				seen[m.TermID] = true
			}
			continue
		}
		frags = append(frags, cur)
		seen = map[int]bool{m.TermID: true}
		cur = Fragment{Matches: []Match{m}, Score: m.Score}
	}
	frags = append(frags, cur)
	return frags
}

// RankFragments sorts frags in place, descending by score (stable) or by
// first-match byte position, per spec.md SS4.P.2.
func RankFragments(frags []Fragment, byScore bool) {
	if byScore {
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].Score > frags[j].Score })
		return
	}
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].Matches[0].BytePos < frags[j].Matches[0].BytePos })
}

func baseRange(f Fragment) (start, end int) {
	start = f.Matches[0].BytePos
	last := f.Matches[len(f.Matches)-1]
	end = last.BytePos + last.Len
	return
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '.', ',', ';', ':', '!', '?', '(', ')', '[', ']', '{', '}', '"', '\'':
		return true
	default:
		return false
	}
}

// expandContext grows [start,end) by up to contextSize/2 bytes each side,
// snapping to a separator boundary, and never crosses into any of
// neighbors' base ranges (spec.md SS4.P.3).
func expandContext(buf []byte, start, end, contextSize int, neighbors [][2]int) (int, int) {
	half := contextSize / 2

	left := start - half
	if left < 0 {
		left = 0
	}
	for left < start && !isSeparator(buf[left]) {
		left++
	}

	right := end + half
	if right > len(buf) {
		right = len(buf)
	}
	for right > end && !isSeparator(buf[right-1]) {
		right--
	}

	for _, nb := range neighbors {
		if nb[1] <= start && nb[1] > left {
			left = nb[1]
		}
		if nb[0] >= end && nb[0] < right {
			right = nb[0]
		}
	}
	return left, right
}

// Emit renders the top-K ranked fragments as writev-style byte-slice
// vectors: leading context, then open-tag/match/close-tag interleaved
// with the in-between text, then trailing context, per fragment in rank
// order (spec.md SS4.P.4). Document slices alias buf; no document bytes
// are copied (the tags are converted to fresh byte slices).
func Emit(buf []byte, frags []Fragment, topK int, contextSize int, openTag, closeTag string) [][]byte {
	if topK < len(frags) {
		frags = frags[:topK]
	}
	bases := make([][2]int, len(frags))
	for i, f := range frags {
		s, e := baseRange(f)
		bases[i] = [2]int{s, e}
	}

	var out [][]byte
	for i, f := range frags {
		neighbors := make([][2]int, 0, len(bases)-1)
		for j, b := range bases {
			if j != i {
				neighbors = append(neighbors, b)
			}
		}
		s, e := bases[i]
		left, right := expandContext(buf, s, e, contextSize, neighbors)

		if left < s {
			out = append(out, buf[left:s])
		}
		pos := s
		for _, m := range f.Matches {
			if m.BytePos > pos {
				out = append(out, buf[pos:m.BytePos])
			}
			out = append(out, []byte(openTag))
			out = append(out, buf[m.BytePos:m.BytePos+m.Len])
			out = append(out, []byte(closeTag))
			pos = m.BytePos + m.Len
		}
		if pos < e {
			out = append(out, buf[pos:e])
		}
		if right > e {
			out = append(out, buf[e:right])
		}
	}
	return out
}

// WholeDoc inlines tags around every match across the entire buffer with
// no context trimming, per spec.md SS4.P's whole-document highlighting
// mode.
func WholeDoc(buf []byte, matches []Match, openTag, closeTag string) [][]byte {
	var out [][]byte
	pos := 0
	for _, m := range matches {
		if m.BytePos > pos {
			out = append(out, buf[pos:m.BytePos])
		}
		out = append(out, []byte(openTag), buf[m.BytePos:m.BytePos+m.Len], []byte(closeTag))
		pos = m.BytePos + m.Len
	}
	if pos < len(buf) {
		out = append(out, buf[pos:])
	}
	return out
}
