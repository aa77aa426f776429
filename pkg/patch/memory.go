package patch

import "errors"

// ApplyToMemory applies a patch set to an in-memory document store
// represented by a map. The provided map is copied before mutation and the
// updated snapshot is returned alongside the per-file outcomes.
func ApplyToMemory(files map[string]string, patches []FilePatch, opts Options) (map[string]string, []FileResult, error) {
	snapshot := make(map[string]string, len(files))
	for k, v := range files {
		snapshot[k] = v
	}

	var results []FileResult
	for _, fp := range patches {
		target := TargetPath(fp)
		if target == "" {
			return nil, results, validationError("patch", "file patch has no usable path")
		}
		original, ok := snapshot[target]
		if !ok {
			return nil, results, ioError(target, errors.New("file does not exist"))
		}
		result, err := Apply(original, fp, opts)
		if err != nil {
			return nil, results, err
		}
		snapshot[target] = result.Text
		results = append(results, FileResult{Status: "M", Path: target, Skipped: result.SkippedHunks})
	}
	return snapshot, results, nil
}

// ApplyMemoryPatch parses raw diff text and applies it to an in-memory map
// of files.
func ApplyMemoryPatch(diffText string, files map[string]string, opts Options) (map[string]string, []FileResult, error) {
	patches, err := Parse(diffText)
	if err != nil {
		return nil, nil, err
	}
	return ApplyToMemory(files, patches, opts)
}
