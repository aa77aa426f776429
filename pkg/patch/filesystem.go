package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemOptions augment Options with the knobs the filesystem adapter
// needs: a working directory for resolving relative header paths and whether
// in-place writes leave a .bak sibling behind.
type FilesystemOptions struct {
	Options
	WorkingDir string
	Backup     bool
}

// FileResult describes the outcome for a single file when applying a patch
// set. Status is "M" for a modified file; Skipped carries the hunk indices
// left unapplied in lenient mode.
type FileResult struct {
	Status  string
	Path    string
	Skipped []int
}

// LoadOriginal reads a file and normalizes its line endings to LF, the form
// the engine expects. CRLF and lone CR both become LF.
func LoadOriginal(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", ioError(path, err)
	}
	normalized := strings.ReplaceAll(string(content), "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return normalized, nil
}

// WriteResult writes patched text to path. With backup set and an existing
// target, the previous content is copied to path+".bak" first. Permissions of
// an existing target are preserved.
func WriteResult(path, text string, backup bool) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode() & fs.ModePerm
		if backup {
			previous, readErr := os.ReadFile(path)
			if readErr != nil {
				return ioError(path, readErr)
			}
			if writeErr := os.WriteFile(path+".bak", previous, perm); writeErr != nil {
				return ioError(path+".bak", writeErr)
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ioError(path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioError(path, err)
	}
	if err := os.WriteFile(path, []byte(text), perm); err != nil {
		return ioError(path, err)
	}
	return nil
}

// ApplyToFile loads path, applies fp and returns the result without writing
// anything back. The caller decides between previewing and persisting.
func ApplyToFile(path string, fp FilePatch, opts Options) (ApplyResult, error) {
	original, err := LoadOriginal(path)
	if err != nil {
		return ApplyResult{}, err
	}
	return Apply(original, fp, opts)
}

// ApplyAllFilesystem applies every file patch in the set against the working
// directory and writes the results in place. It stops at the first failing
// file.
func ApplyAllFilesystem(patches []FilePatch, opts FilesystemOptions) ([]FileResult, error) {
	workingDir := strings.TrimSpace(opts.WorkingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		workingDir = wd
	}

	var results []FileResult
	for _, fp := range patches {
		rel := TargetPath(fp)
		if rel == "" {
			return results, validationError("patch", "file patch has no usable path")
		}
		target := filepath.Join(workingDir, filepath.Clean(rel))
		result, err := ApplyToFile(target, fp, opts.Options)
		if err != nil {
			return results, err
		}
		if err := WriteResult(target, result.Text, opts.Backup); err != nil {
			return results, err
		}
		results = append(results, FileResult{Status: "M", Path: rel, Skipped: result.SkippedHunks})
	}
	return results, nil
}

// TargetPath picks the on-disk path a file patch should be applied to: the
// new path when usable, the old path otherwise.
func TargetPath(fp FilePatch) string {
	if fp.NewPath != "" && fp.NewPath != "/dev/null" {
		return fp.NewPath
	}
	if fp.OldPath != "" && fp.OldPath != "/dev/null" {
		return fp.OldPath
	}
	return ""
}
