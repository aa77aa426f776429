package patch

import "sort"

// BlockKind classifies a change block.
type BlockKind string

const (
	BlockAdded   BlockKind = "added"
	BlockRemoved BlockKind = "removed"
)

// ChangeBlock is a contiguous run of changed lines. Start and End are
// inclusive; added blocks index into the patched text, removed blocks into
// the original.
type ChangeBlock struct {
	Start int
	End   int
	Kind  BlockKind
}

// AnalyzeChanges collapses the added and removed indices of a result into
// contiguous blocks, merged into a single list ordered by start line. When an
// added and a removed block share a start, the added block comes first.
func AnalyzeChanges(result ApplyResult) []ChangeBlock {
	blocks := collapseRuns(result.AddedLines, BlockAdded)
	blocks = append(blocks, collapseRuns(result.RemovedOriginalIndices, BlockRemoved)...)
	sort.SliceStable(blocks, func(a, b int) bool {
		if blocks[a].Start != blocks[b].Start {
			return blocks[a].Start < blocks[b].Start
		}
		return blocks[a].Kind == BlockAdded && blocks[b].Kind == BlockRemoved
	})
	return blocks
}

func collapseRuns(indices []int, kind BlockKind) []ChangeBlock {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	var blocks []ChangeBlock
	for _, idx := range sorted {
		if n := len(blocks); n > 0 && blocks[n-1].End+1 == idx {
			blocks[n-1].End = idx
			continue
		}
		blocks = append(blocks, ChangeBlock{Start: idx, End: idx, Kind: kind})
	}
	return blocks
}

// Navigator answers next/previous-change queries over the block list derived
// from one apply result.
type Navigator struct {
	blocks []ChangeBlock
}

// NewNavigator derives the change blocks for result once and keeps them for
// subsequent queries.
func NewNavigator(result ApplyResult) *Navigator {
	return &Navigator{blocks: AnalyzeChanges(result)}
}

// Blocks exposes the derived block list, ordered by start line.
func (n *Navigator) Blocks() []ChangeBlock {
	return n.blocks
}

// Next returns the start of the first block after current, wrapping to the
// first block when current is at or past the last one. With no blocks it
// returns current unchanged.
func (n *Navigator) Next(current int) (int, error) {
	if current < 0 {
		return 0, validationError("current", "line index must not be negative, got %d", current)
	}
	if len(n.blocks) == 0 {
		return current, nil
	}
	for _, b := range n.blocks {
		if b.Start > current {
			return b.Start, nil
		}
	}
	return n.blocks[0].Start, nil
}

// Prev returns the start of the last block before current, wrapping to the
// last block when current is at or before the first one. With no blocks it
// returns current unchanged.
func (n *Navigator) Prev(current int) (int, error) {
	if current < 0 {
		return 0, validationError("current", "line index must not be negative, got %d", current)
	}
	if len(n.blocks) == 0 {
		return current, nil
	}
	for i := len(n.blocks) - 1; i >= 0; i-- {
		if n.blocks[i].Start < current {
			return n.blocks[i].Start, nil
		}
	}
	return n.blocks[len(n.blocks)-1].Start, nil
}
