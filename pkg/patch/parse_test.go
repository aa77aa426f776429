package patch

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSingleFile(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/example.txt",
		"+++ b/example.txt",
		"@@ -1,3 +1,3 @@",
		" a",
		"-b",
		"+B",
		" c",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}
	fp := patches[0]
	if fp.OldPath != "example.txt" || fp.NewPath != "example.txt" {
		t.Fatalf("unexpected paths: %q -> %q", fp.OldPath, fp.NewPath)
	}
	if len(fp.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(fp.Hunks))
	}
	hunk := fp.Hunks[0]
	if hunk.OldStart != 0 || hunk.OldLen != 3 || hunk.NewStart != 0 || hunk.NewLen != 3 {
		t.Fatalf("unexpected hunk header: %+v", hunk)
	}
	want := []HunkLine{
		{Kind: KindContext, Text: "a"},
		{Kind: KindDelete, Text: "b"},
		{Kind: KindAdd, Text: "B"},
		{Kind: KindContext, Text: "c"},
	}
	if len(hunk.Lines) != len(want) {
		t.Fatalf("unexpected body length: %d", len(hunk.Lines))
	}
	for i, hl := range hunk.Lines {
		if hl != want[i] {
			t.Fatalf("body line %d mismatch: got %+v want %+v", i, hl, want[i])
		}
	}
}

func TestParsePreservesFileAndHunkOrder(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/a.txt",
		"+++ b/a.txt",
		"@@ -1,1 +1,1 @@",
		"-one",
		"+ONE",
		"--- a/b.txt",
		"+++ b/b.txt",
		"@@ -2,1 +2,1 @@",
		"-two",
		"+TWO",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(patches) != 2 {
		t.Fatalf("expected 2 patches, got %d", len(patches))
	}
	if patches[0].NewPath != "a.txt" || patches[1].NewPath != "b.txt" {
		t.Fatalf("file order not preserved: %q, %q", patches[0].NewPath, patches[1].NewPath)
	}
	if len(patches[0].Hunks) != 1 || len(patches[1].Hunks) != 1 {
		t.Fatalf("expected one hunk per file: %d, %d", len(patches[0].Hunks), len(patches[1].Hunks))
	}
}

func TestParseCleansHeaderPaths(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/src/main.go\t2024-05-01 10:00:00.000000000 +0000",
		"+++ b/src/main.go\t2024-05-01 10:05:00.000000000 +0000",
		"@@ -1,1 +1,1 @@",
		"-x",
		"+y",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got, want := patches[0].OldPath, "src/main.go"; got != want {
		t.Fatalf("old path not cleaned: got %q want %q", got, want)
	}
	if got, want := patches[0].NewPath, "src/main.go"; got != want {
		t.Fatalf("new path not cleaned: got %q want %q", got, want)
	}
}

func TestParseKeepsDevNull(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- /dev/null",
		"+++ b/created.txt",
		"@@ -0,0 +1,1 @@",
		"+hello",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if patches[0].OldPath != "/dev/null" {
		t.Fatalf("expected /dev/null to pass through, got %q", patches[0].OldPath)
	}
	if patches[0].Hunks[0].OldStart != 0 {
		t.Fatalf("zero start should clamp to 0, got %d", patches[0].Hunks[0].OldStart)
	}
}

func TestParseSkipsGitNoise(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"diff --git a/file.txt b/file.txt",
		"index 0123456..89abcde 100644",
		"--- a/file.txt",
		"+++ b/file.txt",
		"@@ -1,1 +1,1 @@",
		"-old",
		"+new",
		"diff --git a/bin.dat b/bin.dat",
		"Binary files a/bin.dat and b/bin.dat differ",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}
}

func TestParseContextStyleHeaderPair(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"*** a/old.txt",
		"--- b/new.txt",
		"@@ -1,1 +1,1 @@",
		"-before",
		"+after",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if patches[0].OldPath != "old.txt" || patches[0].NewPath != "new.txt" {
		t.Fatalf("unexpected paths: %q -> %q", patches[0].OldPath, patches[0].NewPath)
	}
}

func TestParseContextHunkHeader(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"*** a/ctx.txt",
		"--- b/ctx.txt",
		"*** 3,4 ****",
		" keep",
		"-drop",
		"+take",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	hunk := patches[0].Hunks[0]
	if hunk.OldStart != 2 || hunk.OldLen != 4 {
		t.Fatalf("unexpected context hunk header: %+v", hunk)
	}
	if len(hunk.Lines) != 3 {
		t.Fatalf("unexpected body length: %d", len(hunk.Lines))
	}
}

func TestParseBlankBodyLineBecomesBlankContext(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,3 +1,3 @@",
		" top",
		"",
		"-bottom",
		"+BOTTOM",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	body := patches[0].Hunks[0].Lines
	if body[1].Kind != KindContext || body[1].Text != "" {
		t.Fatalf("expected blank context line, got %+v", body[1])
	}
}

func TestParseNoNewlineMarkers(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,1 +1,1 @@",
		"-old",
		`\ No newline at end of file`,
		"+new",
		`\ No newline at end of file`,
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	fp := patches[0]
	if !fp.NoNewlineOld || !fp.NoNewlineNew {
		t.Fatalf("expected both no-newline flags, got old=%v new=%v", fp.NoNewlineOld, fp.NoNewlineNew)
	}
	if got := len(fp.Hunks[0].Lines); got != 2 {
		t.Fatalf("marker lines must not appear in the body, got %d lines", got)
	}
}

func TestParseStripsCarriageReturns(t *testing.T) {
	t.Parallel()

	input := "--- a/f.txt\r\n+++ b/f.txt\r\n@@ -1,1 +1,1 @@\r\n-a\r\n+b\r\n"
	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := patches[0].Hunks[0].Lines[0].Text; got != "a" {
		t.Fatalf("CR not stripped: %q", got)
	}
}

func TestParseHunkBeforeHeaderFails(t *testing.T) {
	t.Parallel()

	_, err := Parse("@@ -1,1 +1,1 @@\n-a\n+b\n")
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.Code != CodeParse || pe.Line != 0 {
		t.Fatalf("unexpected error: %+v", pe)
	}
}

func TestParseRejectsGarbageBodyLine(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,1 +1,1 @@",
		"?what",
	}, "\n")

	_, err := Parse(input)
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.Code != CodeParse || pe.Line != 3 {
		t.Fatalf("unexpected error: %+v", pe)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/a.txt",
		"+++ b/a.txt",
		"@@ -1,2 +1,2 @@",
		" keep",
		"-x",
		"+y",
	}, "\n")

	first, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	second, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(first) != len(second) || len(first[0].Hunks) != len(second[0].Hunks) {
		t.Fatalf("parse is not deterministic")
	}
	for i := range first[0].Hunks[0].Lines {
		if first[0].Hunks[0].Lines[i] != second[0].Hunks[0].Lines[i] {
			t.Fatalf("parse is not deterministic at body line %d", i)
		}
	}
}

func TestValidateAccumulatesSortedIssues(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,1 +1,1 @@",
		"?bad one",
		"@@ -5,1 +5,1 @@",
		"?bad two",
	}, "\n")

	ok, issues := Validate(input)
	if ok {
		t.Fatalf("expected validation failure")
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(issues), issues)
	}
	if issues[0].Line != 3 || issues[1].Line != 5 {
		t.Fatalf("issues not sorted by line: %+v", issues)
	}
}

func TestValidateWarnsOnHeaderCountMismatch(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,9 +1,9 @@",
		" ctx",
		"-a",
		"+b",
	}, "\n")

	// Parse accepts the disagreement; the applier trusts the body.
	if _, err := Parse(input); err != nil {
		t.Fatalf("Parse should tolerate count mismatch: %v", err)
	}

	ok, issues := Validate(input)
	if ok {
		t.Fatalf("expected a warning")
	}
	if len(issues) != 1 || issues[0].Line != 2 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if !strings.Contains(issues[0].Message, "disagree") {
		t.Fatalf("unexpected message: %q", issues[0].Message)
	}
}

func TestValidateEmptyInput(t *testing.T) {
	t.Parallel()

	ok, issues := Validate("")
	if ok || len(issues) == 0 {
		t.Fatalf("empty input must not validate: ok=%v issues=%+v", ok, issues)
	}
}

func TestFormatFileDiffRoundTrips(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,2 +1,2 @@",
		" keep",
		"-x",
		"+y",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	rendered := FormatFileDiff(patches[0])
	again, err := Parse(rendered)
	if err != nil {
		t.Fatalf("re-parse of rendered diff failed: %v\n%s", err, rendered)
	}
	if len(again) != 1 || len(again[0].Hunks) != 1 {
		t.Fatalf("round trip lost structure: %+v", again)
	}
	for i, hl := range again[0].Hunks[0].Lines {
		if hl != patches[0].Hunks[0].Lines[i] {
			t.Fatalf("round trip changed body line %d: %+v", i, hl)
		}
	}
}

func TestSummarizeCounts(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,3 +1,2 @@",
		" keep",
		"-one",
		"-two",
		"+merged",
	}, "\n")

	patches, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	adds, dels, hunks := Summarize(patches[0])
	if adds != 1 || dels != 2 || hunks != 1 {
		t.Fatalf("unexpected summary: +%d -%d hunks=%d", adds, dels, hunks)
	}
}
