// Package cli is the command-line entry point of patchview: validate a
// diff, preview its effect, or apply it to the working tree, and launch the
// interactive shell when no headless mode is selected.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/asynkron/patchview/internal/config"
	"github.com/asynkron/patchview/internal/logging"
	"github.com/asynkron/patchview/internal/tui"
	"github.com/asynkron/patchview/pkg/patch"
)

// Run executes patchview using the provided CLI arguments. It returns a
// POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	cfg := config.FromEnv()

	flagSet := flag.NewFlagSet("patchview", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	diffPath := flagSet.String("diff", "", "unified diff to load (default: stdin in headless modes)")
	workingDir := flagSet.String("dir", "", "directory against which patched files are resolved")
	check := flagSet.Bool("check", false, "validate the diff and list every issue found")
	preview := flagSet.Bool("preview", false, "apply in memory and print a per-file summary without writing")
	apply := flagSet.Bool("apply", false, "apply the diff to the working tree in place")
	strict := flagSet.Bool("strict", cfg.Strict, "fail on the first hunk that cannot be anchored")
	fuzzy := flagSet.Int("fuzzy", cfg.FuzzyContext, "ring-search radius for recovering drifted hunks")
	backup := flagSet.Bool("backup", cfg.Backup, "leave a .bak sibling next to files written in place")
	themeFlag := flagSet.String("theme", cfg.Theme, `shell palette: "auto", "dark" or "light"`)
	logLevel := flagSet.String("log-level", cfg.LogLevel, "minimum log level (debug, info, warn, error)")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	cfg.DiffPath = strings.TrimSpace(*diffPath)
	cfg.WorkingDir = strings.TrimSpace(*workingDir)
	cfg.Strict = *strict
	cfg.FuzzyContext = *fuzzy
	cfg.Backup = *backup
	cfg.Theme = strings.TrimSpace(*themeFlag)
	cfg.LogLevel = *logLevel
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid options: %v\n", err)
		return 1
	}

	logger := logging.NewStdLogger(logging.ParseLevel(cfg.LogLevel), stderr)

	headless := *check || *preview || *apply
	if !headless {
		if err := tui.Run(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "shell error: %v\n", err)
			return 1
		}
		return 0
	}

	diffText, err := readDiff(cfg.DiffPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read diff: %v\n", err)
		return 1
	}

	switch {
	case *check:
		return runCheck(diffText, stdout)
	case *preview:
		return runPreview(ctx, logger, cfg, diffText, stdout, stderr)
	default:
		return runApply(ctx, logger, cfg, diffText, stdout, stderr)
	}
}

func readDiff(path string, stdin io.Reader) (string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return normalize(string(data)), nil
	}
	return patch.LoadOriginal(path)
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func runCheck(diffText string, stdout io.Writer) int {
	ok, issues := patch.Validate(diffText)
	if ok {
		fmt.Fprintln(stdout, "diff is valid")
		return 0
	}
	for _, issue := range issues {
		fmt.Fprintf(stdout, "line %d: %s\n", issue.Line+1, issue.Message)
	}
	return 1
}

func runPreview(ctx context.Context, logger logging.Logger, cfg config.Config, diffText string, stdout, stderr io.Writer) int {
	patches, err := patch.Parse(diffText)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	for _, fp := range patches {
		target := patch.TargetPath(fp)
		adds, dels, hunks := patch.Summarize(fp)
		result, err := patch.ApplyToFile(filepath.Join(cfg.WorkingDir, target), fp, cfg.EngineOptions())
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", target, err)
			return 1
		}
		fmt.Fprintf(stdout, "%s: +%d -%d in %d hunks", target, adds, dels, hunks)
		if len(result.SkippedHunks) > 0 {
			fmt.Fprintf(stdout, " (skipped %d)", len(result.SkippedHunks))
		}
		fmt.Fprintln(stdout)
		logger.Debug(ctx, "previewed file",
			logging.Field("path", target),
			logging.Field("added", len(result.AddedLines)),
			logging.Field("removed", len(result.RemovedOriginalIndices)))
	}
	return 0
}

func runApply(ctx context.Context, logger logging.Logger, cfg config.Config, diffText string, stdout, stderr io.Writer) int {
	patches, err := patch.Parse(diffText)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	results, err := patch.ApplyAllFilesystem(patches, patch.FilesystemOptions{
		Options:    cfg.EngineOptions(),
		WorkingDir: cfg.WorkingDir,
		Backup:     cfg.Backup,
	})
	for _, res := range results {
		fmt.Fprintf(stdout, "%s %s", res.Status, res.Path)
		if len(res.Skipped) > 0 {
			fmt.Fprintf(stdout, " (skipped hunks: %d)", len(res.Skipped))
		}
		fmt.Fprintln(stdout)
	}
	if err != nil {
		logger.Error(ctx, "apply failed", err, logging.Field("files_done", len(results)))
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	logger.Info(ctx, "apply finished", logging.Field("files", len(results)))
	return 0
}
