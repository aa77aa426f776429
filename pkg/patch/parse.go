package patch

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// The two hunk-header grammars are small and hot; compile them once.
var (
	unifiedHunkRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	contextHunkRe = regexp.MustCompile(`^\*\*\* (\d+),(\d+) \*\*\*\*$`)
)

// Issue is a single problem reported by Validate, located by its 0-based line
// in the diff text.
type Issue struct {
	Line    int
	Message string
}

// Parse converts diff text into the ordered list of file patches it
// describes. The walk is a single pass and fails fast on the first grammar
// violation. Input is expected to be LF-normalized by the caller; a stray CR
// before an LF is stripped defensively.
func Parse(content string) ([]FilePatch, error) {
	w := &diffWalker{lines: splitDiffLines(content)}
	patches, err := w.walk()
	if err != nil {
		return nil, err
	}
	if len(patches) == 0 {
		return nil, parseError(0, "no file patches found")
	}
	return patches, nil
}

// Validate performs the same walk as Parse but accumulates every problem it
// can find instead of stopping at the first one. It reports whether the text
// parsed cleanly and the issues sorted by line number. Header counts that
// disagree with the hunk body are reported here as warnings; Parse accepts
// them because the applier trusts the body.
func Validate(content string) (bool, []Issue) {
	w := &diffWalker{lines: splitDiffLines(content), accumulate: true}
	patches, _ := w.walk()
	if len(patches) == 0 && len(w.issues) == 0 {
		w.issues = append(w.issues, Issue{Line: 0, Message: "no file patches found"})
	}
	sort.SliceStable(w.issues, func(a, b int) bool { return w.issues[a].Line < w.issues[b].Line })
	return len(w.issues) == 0, w.issues
}

// diffWalker holds the cursor state shared by Parse and Validate.
type diffWalker struct {
	lines      []string
	i          int
	accumulate bool
	issues     []Issue
}

// fail either aborts the walk or records the issue and lets the caller
// recover, depending on the mode.
func (w *diffWalker) fail(line int, format string, args ...any) error {
	err := parseError(line, format, args...)
	if !w.accumulate {
		return err
	}
	w.issues = append(w.issues, Issue{Line: line, Message: err.Message})
	return nil
}

func (w *diffWalker) warn(line int, format string, args ...any) {
	if !w.accumulate {
		return
	}
	w.issues = append(w.issues, Issue{Line: line, Message: parseError(line, format, args...).Message})
}

func (w *diffWalker) walk() ([]FilePatch, error) {
	var patches []FilePatch
	var current *FilePatch

	flush := func() {
		if current != nil {
			patches = append(patches, *current)
			current = nil
		}
	}

	for w.i < len(w.lines) {
		line := w.lines[w.i]

		if hasSkipPrefix(line) {
			w.i++
			continue
		}

		// A context hunk header ("*** 3,9 ****") shares its prefix with the
		// context-style file header, so test it first.
		if m := contextHunkRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				if err := w.fail(w.i, "hunk before file header"); err != nil {
					return patches, err
				}
				w.i++
				continue
			}
			start, _ := strconv.Atoi(m[1])
			length, _ := strconv.Atoi(m[2])
			hunk := Hunk{OldStart: zeroBased(start), OldLen: length, NewStart: zeroBased(start), NewLen: length}
			if err := w.consumeHunkBody(&hunk, current); err != nil {
				return patches, err
			}
			current.Hunks = append(current.Hunks, hunk)
			continue
		}

		if strings.HasPrefix(line, "*** ") {
			fp, err := w.consumeHeaderPair(line[len("*** "):], "--- ")
			if err != nil {
				return patches, err
			}
			if fp != nil {
				flush()
				current = fp
			}
			continue
		}

		if strings.HasPrefix(line, "--- ") {
			fp, err := w.consumeHeaderPair(line[len("--- "):], "+++ ")
			if err != nil {
				return patches, err
			}
			if fp != nil {
				flush()
				current = fp
			}
			continue
		}

		if m := unifiedHunkRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				if err := w.fail(w.i, "hunk before file header"); err != nil {
					return patches, err
				}
				w.i++
				continue
			}
			hunk := Hunk{
				OldStart: zeroBased(atoiDefault(m[1], 1)),
				OldLen:   atoiDefault(m[2], 1),
				NewStart: zeroBased(atoiDefault(m[3], 1)),
				NewLen:   atoiDefault(m[4], 1),
			}
			if err := w.consumeHunkBody(&hunk, current); err != nil {
				return patches, err
			}
			current.Hunks = append(current.Hunks, hunk)
			continue
		}

		// Free-form preamble between file sections is tolerated.
		w.i++
	}

	flush()
	return patches, nil
}

// consumeHeaderPair reads a two-line file header starting at the current
// line. oldField is the remainder of the first header line; complement is the
// marker the second line must carry ("+++ " for unified pairs, "--- " for
// context-style pairs). Blank lines and skip-prefix noise between the two
// header lines are tolerated. Returns a fresh FilePatch, or nil when the pair
// was malformed and the walk is accumulating.
func (w *diffWalker) consumeHeaderPair(oldField, complement string) (*FilePatch, error) {
	headerLine := w.i
	j := w.i + 1
	for j < len(w.lines) && (w.lines[j] == "" || hasSkipPrefix(w.lines[j])) {
		j++
	}
	if j >= len(w.lines) || !strings.HasPrefix(w.lines[j], complement) {
		if err := w.fail(headerLine, "expected %q header after %q", strings.TrimSpace(complement), w.lines[headerLine]); err != nil {
			return nil, err
		}
		w.i++
		return nil, nil
	}
	fp := &FilePatch{
		OldPath: cleanPath(oldField),
		NewPath: cleanPath(w.lines[j][len(complement):]),
	}
	w.i = j + 1
	return fp, nil
}

// consumeHunkBody reads body lines until another hunk header, another file
// header, or end of input. Declared header counts are checked against the
// body in accumulating mode only.
func (w *diffWalker) consumeHunkBody(hunk *Hunk, file *FilePatch) error {
	headerLine := w.i
	issuesBefore := len(w.issues)
	w.i++
	lastKind := byte(0)
	for w.i < len(w.lines) {
		line := w.lines[w.i]
		// Another hunk header or file header ends the body. "+++ " is not a
		// terminator: an added line whose text starts with "++" looks the same.
		if strings.HasPrefix(line, "@@") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "*** ") ||
			strings.HasPrefix(line, "diff --git ") {
			break
		}
		if line == "" {
			// Naked empty line inside a body: blank context.
			hunk.Lines = append(hunk.Lines, HunkLine{Kind: KindContext})
			lastKind = KindContext
			w.i++
			continue
		}
		switch line[0] {
		case KindContext, KindAdd, KindDelete:
			hunk.Lines = append(hunk.Lines, HunkLine{Kind: line[0], Text: line[1:]})
			lastKind = line[0]
		case '\\':
			// "\ No newline at end of file" refers to the side of the line
			// right above it.
			switch lastKind {
			case KindAdd:
				file.NoNewlineNew = true
			case KindDelete:
				file.NoNewlineOld = true
			default:
				file.NoNewlineOld = true
				file.NoNewlineNew = true
			}
		default:
			if err := w.fail(w.i, "unexpected hunk content line: %q", line); err != nil {
				return err
			}
		}
		w.i++
	}

	oldBody, newBody := 0, 0
	for _, hl := range hunk.Lines {
		if hl.Kind == KindContext || hl.Kind == KindDelete {
			oldBody++
		}
		if hl.Kind == KindContext || hl.Kind == KindAdd {
			newBody++
		}
	}
	if (oldBody != hunk.OldLen || newBody != hunk.NewLen) && len(w.issues) == issuesBefore {
		w.warn(headerLine, "hunk header counts (-%d,+%d) disagree with body (-%d,+%d)",
			hunk.OldLen, hunk.NewLen, oldBody, newBody)
	}
	return nil
}

// splitDiffLines splits on LF and strips a stray CR left before it.
func splitDiffLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func hasSkipPrefix(line string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// cleanPath normalizes a header path: the timestamp after the first tab is
// dropped, surrounding whitespace is trimmed, and a leading a/ or b/ is
// stripped. /dev/null passes through untouched.
func cleanPath(field string) string {
	p := field
	if tab := strings.IndexByte(p, '\t'); tab >= 0 {
		p = p[:tab]
	}
	p = strings.TrimSpace(p)
	if p == "/dev/null" {
		return p
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		p = p[2:]
	}
	return strings.TrimSpace(p)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// zeroBased converts a 1-based header start to the engine's indexing,
// clamping the 0 some tools emit for empty files.
func zeroBased(start int) int {
	if start <= 0 {
		return 0
	}
	return start - 1
}
