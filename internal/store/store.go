// Package store keeps retrieved profile documents on disk.
//
// Each document is saved as <dir>/<id>.html next to <dir>/<id>.meta.json.
// Directories without metadata files (a folder of hand-saved pages) are
// still listed and loaded.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	docExt  = ".html"
	metaExt = ".meta.json"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ErrInvalidID rejects document IDs that are not plain file names.
var ErrInvalidID = errors.New("invalid document id")

// Entry is the metadata saved next to a document.
type Entry struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SHA256      string    `json:"sha256"`
	Size        int       `json:"size"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store is a directory of profile documents.
type Store struct {
	Dir string
	// StrictPerms creates the directory 0700 and files 0600.
	StrictPerms bool
}

func (s *Store) ensureDir() error {
	if s == nil || s.Dir == "" {
		return errors.New("store dir not configured")
	}
	mode := os.FileMode(0o755)
	if s.StrictPerms {
		mode = 0o700
	}
	if err := os.MkdirAll(s.Dir, mode); err != nil {
		return err
	}
	if s.StrictPerms {
		return os.Chmod(s.Dir, 0o700)
	}
	return nil
}

func (s *Store) fileMode() os.FileMode {
	if s.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (s *Store) docPath(id string) string  { return filepath.Join(s.Dir, id+docExt) }
func (s *Store) metaPath(id string) string { return filepath.Join(s.Dir, id+metaExt) }

func checkID(id string) error {
	if !validID.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Exists reports whether a document with id has been saved.
func (s *Store) Exists(id string) bool {
	if s == nil || checkID(id) != nil {
		return false
	}
	info, err := os.Stat(s.docPath(id))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Save writes the document and its metadata. The document is written first
// and both files are replaced atomically.
func (s *Store) Save(_ context.Context, id, url, contentType string, body []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.writeAtomic(s.docPath(id), body); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	sum := sha256.Sum256(body)
	meta := Entry{
		ID:          id,
		URL:         url,
		ContentType: contentType,
		SHA256:      hex.EncodeToString(sum[:]),
		Size:        len(body),
		SavedAt:     time.Now().UTC(),
	}
	b, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := s.writeAtomic(s.metaPath(id), b); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, s.fileMode()); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved document.
func (s *Store) Load(_ context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return os.ReadFile(s.docPath(id))
}

// LoadMeta returns the metadata of a saved document.
func (s *Store) LoadMeta(_ context.Context, id string) (*Entry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta %s: %w", id, err)
	}
	return &e, nil
}

// List returns the IDs of all saved documents, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), docExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), docExt)
		if checkID(id) == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// PurgeByAge removes documents saved more than maxAge ago, judged by the
// SavedAt of their metadata. Documents without readable metadata are kept.
// A non-positive maxAge removes nothing.
func (s *Store) PurgeByAge(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.Dir {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), metaExt) {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		if now.Sub(e.SavedAt) <= maxAge {
			return nil
		}
		removed++
		_ = os.Remove(path)
		_ = os.Remove(strings.TrimSuffix(path, metaExt) + docExt)
		return nil
	})
	return removed, err
}

// Clear removes every document and recreates an empty directory.
func (s *Store) Clear() error {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return err
	}
	return s.ensureDir()
}
