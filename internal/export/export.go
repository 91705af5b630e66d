// Package export writes batch results: the JSON record array, its manifest
// sidecar and an optional PDF roster.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/lattes/internal/record"
)

// ErrNotJSON rejects output paths without a .json extension.
var ErrNotJSON = errors.New("output must be a .json file")

// EncodeJSON writes records as one indented array. Non-ASCII text and HTML
// characters are written literally.
func EncodeJSON(w io.Writer, recs []record.Professor) error {
	if recs == nil {
		recs = []record.Professor{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(recs)
}

// WriteJSON writes records to path, creating parent directories. The file is
// replaced atomically.
func WriteJSON(path string, recs []record.Professor) error {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return fmt.Errorf("%w: %s", ErrNotJSON, path)
	}
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, recs); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// ReadJSON loads a record array written by WriteJSON.
func ReadJSON(path string) ([]record.Professor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []record.Professor
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return recs, nil
}

// WriteIndentedJSON writes v to path as two-space indented JSON.
func WriteIndentedJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}

// WriteText writes data to path, creating parent directories.
func WriteText(path string, data []byte) error {
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
