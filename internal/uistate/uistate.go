// Package uistate persists the small bits of shell state that survive a
// restart: the last opened diff, the selected file and a couple of toggles.
// State lives in a JSON file and is validated against a schema on load so a
// corrupted or hand-edited file degrades to defaults instead of crashing the
// shell.
package uistate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// State is the persisted shell state.
type State struct {
	LastDiff       string `json:"lastDiff,omitempty"`
	SelectedFile   string `json:"selectedFile,omitempty"`
	Backup         bool   `json:"backup"`
	ScrollOriginal int    `json:"scrollOriginal"`
	ScrollPatched  int    `json:"scrollPatched"`
}

const stateSchema = `{
  "type": "object",
  "properties": {
    "lastDiff": {"type": "string"},
    "selectedFile": {"type": "string"},
    "backup": {"type": "boolean"},
    "scrollOriginal": {"type": "integer", "minimum": 0},
    "scrollPatched": {"type": "integer", "minimum": 0}
  },
  "additionalProperties": false
}`

var schemaLoader = gojsonschema.NewStringLoader(stateSchema)

// Default returns the state used when nothing was persisted yet.
func Default() State {
	return State{Backup: true}
}

// DefaultPath locates the state file under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".patchview", "state.json"), nil
}

// Load reads and validates persisted state. A missing file is not an error;
// it yields the defaults. An unreadable or schema-invalid file also yields
// the defaults, but the problem is reported so the caller can log it.
func Load(path string) (State, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), err
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Default(), fmt.Errorf("state file %s: %w", path, err)
	}
	if !result.Valid() {
		issues := ""
		for _, desc := range result.Errors() {
			if issues != "" {
				issues += "; "
			}
			issues += desc.String()
		}
		return Default(), fmt.Errorf("state file %s failed validation: %s", path, issues)
	}

	state := Default()
	if err := json.Unmarshal(raw, &state); err != nil {
		return Default(), fmt.Errorf("state file %s: %w", path, err)
	}
	return state, nil
}

// Save writes the state, creating the parent directory when needed.
func Save(path string, state State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
