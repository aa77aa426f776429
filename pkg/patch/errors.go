package patch

import "fmt"

// ErrorCode tags the variant of an engine Error.
type ErrorCode string

const (
	// CodeParse marks a grammar violation found while parsing diff text.
	CodeParse ErrorCode = "PARSE"
	// CodeApply marks a hunk that could not be applied.
	CodeApply ErrorCode = "APPLY"
	// CodeValidation marks a precondition violated at an API boundary.
	CodeValidation ErrorCode = "VALIDATION"
	// CodeIO marks a missing or unreadable file in one of the adapters
	// (filesystem or in-memory). The pure engine never produces it.
	CodeIO ErrorCode = "IO"
)

// ApplyReason narrows CodeApply errors.
type ApplyReason string

const (
	// ReasonCannotLocate means no anchor was found for the hunk, even after
	// the fuzzy ring search and the global scan.
	ReasonCannotLocate ApplyReason = "cannot-locate"
	// ReasonContextMismatch means the hunk anchored but its body disagreed
	// with the document during the apply walk. The anchor search and the
	// apply walk use the same predicate, so this indicates an internal
	// invariant violation rather than a bad patch.
	ReasonContextMismatch ApplyReason = "context-mismatch"
	// ReasonOverlap means the hunk landed inside a region inserted by an
	// earlier hunk of the same patch.
	ReasonOverlap ApplyReason = "overlap"
)

// Error is the single failure type produced by the engine. Code selects the
// variant; the remaining fields are populated per variant so that callers can
// build an actionable message without re-inspecting the input.
type Error struct {
	Code    ErrorCode
	Message string

	// Line is the 0-based input line of a parse error.
	Line int
	// HunkIndex and Reason describe apply failures.
	HunkIndex int
	Reason    ApplyReason
	// Field names the offending argument of a validation error.
	Field string
	// Path names the file of an IO error.
	Path string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch e.Code {
	case CodeParse:
		return fmt.Sprintf("parse error at line %d: %s", e.Line+1, e.Message)
	case CodeApply:
		return fmt.Sprintf("cannot apply hunk %d (%s): %s", e.HunkIndex+1, e.Reason, e.Message)
	case CodeValidation:
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	case CodeIO:
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	return "patch error"
}

func parseError(line int, format string, args ...any) *Error {
	return &Error{Code: CodeParse, Line: line, Message: fmt.Sprintf(format, args...)}
}

func applyError(hunkIndex int, reason ApplyReason, format string, args ...any) *Error {
	return &Error{Code: CodeApply, HunkIndex: hunkIndex, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func validationError(field, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func ioError(path string, err error) *Error {
	return &Error{Code: CodeIO, Path: path, Message: err.Error()}
}
