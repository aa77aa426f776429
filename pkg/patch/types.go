package patch

// IndexBase documents the indexing convention used throughout the engine. Hunk
// headers carry 1-based line numbers on the wire; every index the engine stores
// or returns is 0-based.
const IndexBase = 0

// DefaultFuzzyContext is the radius, in lines, of the ring search used to
// recover hunks whose header line numbers have drifted.
const DefaultFuzzyContext = 200

// skipPrefixes lists noise lines that carry no hunk content and are skipped
// wholesale while scanning. File header lines (---, +++, ***) are handled
// structurally by the parser and are deliberately absent here.
var skipPrefixes = []string{
	"diff --git ",
	"index ",
	"new file mode ",
	"deleted file mode ",
	"rename from ",
	"rename to ",
	"similarity index ",
	"Binary files ",
}

// Line kinds as they appear in a hunk body.
const (
	KindContext byte = ' '
	KindAdd     byte = '+'
	KindDelete  byte = '-'
)

// HunkLine is a single body line of a hunk: its kind prefix and the text that
// follows it, without a trailing newline. A context line with empty text
// matches a run of zero or more blank lines in the target (blank-tolerant
// context).
type HunkLine struct {
	Kind byte
	Text string
}

// Hunk captures one change region of a unified diff. Start fields are stored
// 0-based; length fields are recorded exactly as the header declared them and
// are advisory only, the applier trusts the body.
type Hunk struct {
	OldStart int
	OldLen   int
	NewStart int
	NewLen   int
	Lines    []HunkLine
}

// FilePatch groups the hunks that target a single file. Paths are cleaned:
// timestamp suffixes after a tab are dropped, leading a/ or b/ prefixes are
// stripped, and surrounding whitespace is trimmed. NoNewlineOld and
// NoNewlineNew record "\ No newline at end of file" markers for the
// respective sides.
type FilePatch struct {
	OldPath      string
	NewPath      string
	Hunks        []Hunk
	NoNewlineOld bool
	NoNewlineNew bool
}

// Origin records where an output line came from: either a 0-based index into
// the original text, or nothing because the line was inserted by the patch.
type Origin struct {
	Line     int
	Inserted bool
}

// OriginalLine builds an Origin pointing at an original line index.
func OriginalLine(index int) Origin {
	return Origin{Line: index}
}

// InsertedLine builds the Origin used for lines the patch introduced.
func InsertedLine() Origin {
	return Origin{Line: -1, Inserted: true}
}

// ApplyResult is the outcome of applying one FilePatch to one document.
//
// Text is LF-joined and ends with a newline exactly when the original did,
// unless a no-newline marker in the diff overrides that. AddedLines holds
// 0-based indices into Text, RemovedOriginalIndices 0-based indices into the
// original; both are sorted ascending without duplicates. OriginMap has one
// entry per line of Text. SkippedHunks lists the indices of hunks that could
// not be anchored when applying leniently.
type ApplyResult struct {
	Text                   string
	AddedLines             []int
	RemovedOriginalIndices []int
	OriginMap              []Origin
	SkippedHunks           []int
}

// Options configure how a patch is applied.
type Options struct {
	// Strict makes an unanchorable hunk fail the whole apply. When false the
	// hunk is recorded in SkippedHunks and processing continues.
	Strict bool
	// FuzzyContext is the ring-search radius used to recover drifted hunks.
	// Values <= 0 fall back to DefaultFuzzyContext.
	FuzzyContext int
}

// DefaultOptions returns the options used by the interactive shell: strict
// anchoring with the default fuzzy radius.
func DefaultOptions() Options {
	return Options{Strict: true, FuzzyContext: DefaultFuzzyContext}
}

func (o *Options) setDefaults() {
	if o.FuzzyContext <= 0 {
		o.FuzzyContext = DefaultFuzzyContext
	}
}
