package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultPath is where the snapshot lives unless configured otherwise.
const DefaultPath = "./GutenBerg.db"

var (
	// ErrNotFound means no usable snapshot exists: the file is missing,
	// unreadable, malformed, or lacks a required field.
	ErrNotFound = errors.New("snapshot not found")
	// ErrWrite means a snapshot could not be durably written. The previous
	// snapshot on disk, if any, is unchanged.
	ErrWrite = errors.New("snapshot write failed")
)

// Snapshot is the whole persisted state.
type Snapshot struct {
	LastRead string            `json:"last_read"`
	Books    map[string]string `json:"books"`
}

// rawSnapshot keeps fields undecoded so absence can be told apart from a
// zero value.
type rawSnapshot struct {
	LastRead json.RawMessage `json:"last_read"`
	Books    json.RawMessage `json:"books"`
}

// Store reads and replaces a single JSON snapshot file.
type Store struct {
	path string
	fs   FileSystem
}

type Option func(*Store)

// WithFileSystem replaces the local file system.
func WithFileSystem(fs FileSystem) Option {
	return func(s *Store) { s.fs = fs }
}

// New returns a Store backed by the file at path.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path, fs: LocalFS{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Load reads the snapshot. Every failure wraps ErrNotFound.
func (s *Store) Load() (Snapshot, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read %s: %w", ErrNotFound, s.path, err)
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode %s: %w", ErrNotFound, s.path, err)
	}
	if missing(raw.LastRead) {
		return Snapshot{}, fmt.Errorf("%w: %s has no last_read field", ErrNotFound, s.path)
	}
	if missing(raw.Books) {
		return Snapshot{}, fmt.Errorf("%w: %s has no books field", ErrNotFound, s.path)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw.LastRead, &snap.LastRead); err != nil {
		return Snapshot{}, fmt.Errorf("%w: last_read: %w", ErrNotFound, err)
	}
	if err := json.Unmarshal(raw.Books, &snap.Books); err != nil {
		return Snapshot{}, fmt.Errorf("%w: books: %w", ErrNotFound, err)
	}

	slog.Debug("Loaded snapshot", "path", s.path, "books", len(snap.Books))
	return snap, nil
}

func missing(field json.RawMessage) bool {
	return len(field) == 0 || bytes.Equal(bytes.TrimSpace(field), []byte("null"))
}

// Save replaces the snapshot file. The new content is written to a temporary
// file next to the target and renamed over it, so readers see either the old
// or the new snapshot. A nil Books map is stored as an empty object.
func (s *Store) Save(snap Snapshot) error {
	if snap.Books == nil {
		snap.Books = map[string]string{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrWrite, dir, err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := s.writeFile(tmp, data); err != nil {
		s.removeTemp(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		s.removeTemp(tmp)
		return fmt.Errorf("%w: rename %s: %w", ErrWrite, tmp, err)
	}

	slog.Debug("Saved snapshot", "path", s.path, "books", len(snap.Books))
	return nil
}

func (s *Store) removeTemp(name string) {
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Unable to remove temporary snapshot", "path", name, "err", err)
	}
}

func (s *Store) writeFile(name string, data []byte) error {
	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}
