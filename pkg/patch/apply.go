package patch

import (
	"sort"
	"strings"
)

// Apply patches original with fp and reports the new text together with
// line-level provenance: which output lines were added, which original lines
// were removed, and for every output line the original line that produced it.
//
// Hunks are anchored at the header-derived guess first, then recovered by an
// expanding ring search of radius opts.FuzzyContext, then by a global scan.
// With opts.Strict an unanchorable hunk fails the apply; otherwise it is
// skipped and recorded in SkippedHunks.
func Apply(original string, fp FilePatch, opts Options) (ApplyResult, error) {
	opts.setDefaults()

	origLines, endsWithNewline := splitDocument(original)
	out := append([]string(nil), origLines...)
	originMap := make([]Origin, len(origLines))
	for i := range originMap {
		originMap[i] = OriginalLine(i)
	}

	var removed, skipped []int
	lineBias := 0

	for index, hunk := range fp.Hunks {
		guess := clamp(hunk.OldStart+lineBias, 0, len(out))
		anchor, ok := findAnchorIndex(out, hunk.Lines, guess, opts.FuzzyContext)
		if !ok {
			if opts.Strict {
				return ApplyResult{}, applyError(index, ReasonCannotLocate,
					"no anchor for hunk starting at old line %d (near line %d)", hunk.OldStart+1, guess+1)
			}
			skipped = append(skipped, index)
			continue
		}
		if anchor < len(originMap) && originMap[anchor].Inserted {
			return ApplyResult{}, applyError(index, ReasonOverlap,
				"hunk anchors inside a region inserted by an earlier hunk")
		}

		cur := anchor
		for _, hl := range hunk.Lines {
			switch hl.Kind {
			case KindContext:
				if hl.Text == "" {
					// Blank context matches a run of zero or more blanks;
					// mirrored in findAnchorIndex so the cursors agree.
					for cur < len(out) && out[cur] == "" {
						cur++
					}
					continue
				}
				if cur >= len(out) || out[cur] != hl.Text {
					return ApplyResult{}, applyError(index, ReasonContextMismatch,
						"context diverged near line %d", cur+1)
				}
				cur++
			case KindDelete:
				if cur >= len(out) || out[cur] != hl.Text {
					return ApplyResult{}, applyError(index, ReasonContextMismatch,
						"deletion diverged near line %d", cur+1)
				}
				if originMap[cur].Inserted {
					return ApplyResult{}, applyError(index, ReasonOverlap,
						"hunk deletes a line inserted by an earlier hunk")
				}
				removed = append(removed, originMap[cur].Line)
				out = splice(out, cur, 1, nil)
				originMap = splice(originMap, cur, 1, nil)
			case KindAdd:
				out = splice(out, cur, 0, []string{hl.Text})
				originMap = splice(originMap, cur, 0, []Origin{InsertedLine()})
				cur++
			}
		}

		// Recomputing the bias from the net length change keeps it correct
		// even when hunks were skipped.
		lineBias = len(out) - len(origLines)
	}

	// Added indices are derived from the final origin map so they survive
	// shifts caused by later hunks.
	var added []int
	for i, origin := range originMap {
		if origin.Inserted {
			added = append(added, i)
		}
	}

	ends := endsWithNewline
	if fp.NoNewlineNew {
		ends = false
	} else if fp.NoNewlineOld {
		ends = true
	}
	text := strings.Join(out, "\n")
	if ends && len(out) > 0 {
		text += "\n"
	}

	return ApplyResult{
		Text:                   text,
		AddedLines:             added,
		RemovedOriginalIndices: sortedUnique(removed),
		OriginMap:              originMap,
		SkippedHunks:           skipped,
	}, nil
}

// Preview is Apply under a name that documents intent: the engine has no side
// effects, so previewing and applying are the same computation.
func Preview(original string, fp FilePatch, opts Options) (ApplyResult, error) {
	return Apply(original, fp, opts)
}

// findAnchorIndex locates the index at which the hunk body matches the
// working copy. It tries the clamped guess, then an expanding ring around it
// (left before right at each radius), then a global scan. The second return
// is false when no anchor exists.
func findAnchorIndex(lines []string, hunkLines []HunkLine, guess, fuzzyContext int) (int, bool) {
	var consuming []HunkLine
	for _, hl := range hunkLines {
		if hl.Kind == KindContext || hl.Kind == KindDelete {
			consuming = append(consuming, hl)
		}
	}
	if len(consuming) == 0 {
		// Pure insertion: the guess itself is the anchor.
		return clamp(guess, 0, len(lines)), true
	}

	minNeeded := 0
	for _, hl := range consuming {
		if hl.Kind == KindDelete || hl.Text != "" {
			minNeeded++
		}
	}
	maxStart := len(lines) - minNeeded
	if maxStart < 0 {
		maxStart = 0
	}
	guess = clamp(guess, 0, maxStart)

	if hunkMatchesAt(lines, consuming, guess) {
		return guess, true
	}
	for radius := 1; radius <= fuzzyContext; radius++ {
		if left := guess - radius; left >= 0 && left <= maxStart && hunkMatchesAt(lines, consuming, left) {
			return left, true
		}
		if right := guess + radius; right >= 0 && right <= maxStart && hunkMatchesAt(lines, consuming, right) {
			return right, true
		}
	}
	for pos := 0; pos <= maxStart; pos++ {
		if hunkMatchesAt(lines, consuming, pos) {
			return pos, true
		}
	}
	return 0, false
}

// hunkMatchesAt reports whether every consuming line of a hunk lines up with
// the working copy starting at start. Blank context is greedy: it consumes
// any run of blank lines, including none.
func hunkMatchesAt(lines []string, consuming []HunkLine, start int) bool {
	cur := start
	for _, hl := range consuming {
		if hl.Kind == KindContext && hl.Text == "" {
			for cur < len(lines) && lines[cur] == "" {
				cur++
			}
			continue
		}
		if cur >= len(lines) || lines[cur] != hl.Text {
			return false
		}
		cur++
	}
	return true
}

// splitDocument splits a document into lines the way the applier counts them:
// the trailing newline terminates the last line instead of opening an empty
// one. The second return records whether that trailing newline was present.
func splitDocument(text string) ([]string, bool) {
	if text == "" {
		return nil, false
	}
	ends := strings.HasSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	if ends {
		lines = lines[:len(lines)-1]
	}
	return lines, ends
}

func splice[T any](target []T, index, deleteCount int, replacement []T) []T {
	result := make([]T, 0, len(target)-deleteCount+len(replacement))
	result = append(result, target[:index]...)
	result = append(result, replacement...)
	result = append(result, target[index+deleteCount:]...)
	return result
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// sortedUnique sorts and de-duplicates defensively; the apply walk should
// never produce duplicates.
func sortedUnique(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	result := sorted[:1]
	for _, v := range sorted[1:] {
		if v != result[len(result)-1] {
			result = append(result, v)
		}
	}
	return result
}
