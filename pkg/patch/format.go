package patch

import (
	"fmt"
	"strings"
)

// Summarize counts the additions, deletions and hunks of a file patch, for
// list panes and status lines.
func Summarize(fp FilePatch) (adds, dels, hunks int) {
	for _, h := range fp.Hunks {
		for _, hl := range h.Lines {
			switch hl.Kind {
			case KindAdd:
				adds++
			case KindDelete:
				dels++
			}
		}
	}
	return adds, dels, len(fp.Hunks)
}

// FormatFileDiff renders a single file patch back into unified diff text,
// suitable for a diff pane or for feeding back into Parse.
func FormatFileDiff(fp FilePatch) string {
	oldPath := fp.OldPath
	if oldPath == "" {
		oldPath = "/dev/null"
	}
	newPath := fp.NewPath
	if newPath == "" {
		newPath = "/dev/null"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", oldPath)
	fmt.Fprintf(&b, "+++ b/%s\n", newPath)
	for _, h := range fp.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart+1, h.OldLen, h.NewStart+1, h.NewLen)
		for _, hl := range h.Lines {
			b.WriteByte(hl.Kind)
			b.WriteString(hl.Text)
			b.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
