package store

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"empty", Snapshot{LastRead: "", Books: map[string]string{}}},
		{"selection only", Snapshot{LastRead: "Emma", Books: map[string]string{}}},
		{"full", Snapshot{
			LastRead: "Moby Dick",
			Books: map[string]string{
				"Moby Dick":       "2701",
				"War and Peace":   "2600",
				"Les Misérables":  "135",
				`Quotes "inside"`: "42",
				"Title with\ttab": "7",
				"日本語のタイトル":        "99",
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(filepath.Join(t.TempDir(), "library.db"))
			require.NoError(t, s.Save(tt.snap))

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.snap, got)
		})
	}
}

func TestSaveNilBooksLoadsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, s.Save(Snapshot{LastRead: "Emma"}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "Emma", got.LastRead)
	assert.NotNil(t, got.Books)
	assert.Empty(t, got.Books)
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "library.db")
	s := New(path)
	require.NoError(t, s.Save(Snapshot{Books: map[string]string{"Emma": "158"}}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadNotFound(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{"missing file", nil},
		{"malformed", ptr(`{"last_read": "Emma", "books": {`)},
		{"not an object", ptr(`[1, 2, 3]`)},
		{"missing books", ptr(`{"last_read": "Emma"}`)},
		{"missing last_read", ptr(`{"books": {"Emma": "158"}}`)},
		{"null books", ptr(`{"last_read": "", "books": null}`)},
		{"wrong books type", ptr(`{"last_read": "", "books": ["Emma"]}`)},
		{"wrong last_read type", ptr(`{"last_read": 3, "books": {}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library.db")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			_, err := New(path).Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLoadAcceptsOriginalLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GutenBerg.db")
	content := `{"last_read": "Dracula", "books": {"Dracula": "345", "Emma": "158"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{
		LastRead: "Dracula",
		Books:    map[string]string{"Dracula": "345", "Emma": "158"},
	}, got)
}

func TestSaveOnDiskShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, New(path).Save(Snapshot{LastRead: "", Books: map[string]string{"Emma": "158"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_read": "", "books": {"Emma": "158"}}`, string(data))
}

// faultFS fails part way through a save, like a crash before the rename.
type faultFS struct {
	LocalFS
	failWrite  bool
	failRename bool
	failRemove bool
}

type halfFile struct {
	*os.File
}

func (f halfFile) Write(p []byte) (int, error) {
	n, _ := f.File.Write(p[:len(p)/2])
	return n, errors.New("disk full")
}

func (fs faultFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil || !fs.failWrite {
		return f, err
	}
	return halfFile{f}, nil
}

func (fs faultFS) Rename(oldpath, newpath string) error {
	if fs.failRename {
		return errors.New("rename interrupted")
	}
	return os.Rename(oldpath, newpath)
}

func (fs faultFS) Remove(name string) error {
	if fs.failRemove {
		return errors.New("device busy")
	}
	return os.Remove(name)
}

func TestFailedCleanupIsLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	for _, fs := range []faultFS{
		{failWrite: true, failRemove: true},
		{failRename: true, failRemove: true},
	} {
		logs.Reset()
		path := filepath.Join(t.TempDir(), "library.db")

		err := New(path, WithFileSystem(fs)).Save(Snapshot{LastRead: "Emma"})
		assert.ErrorIs(t, err, ErrWrite)
		assert.Contains(t, logs.String(), "Unable to remove temporary snapshot")
		assert.Contains(t, logs.String(), "device busy")
	}
}

func TestInterruptedSaveKeepsPriorSnapshot(t *testing.T) {
	prior := Snapshot{LastRead: "Emma", Books: map[string]string{"Emma": "158"}}
	next := Snapshot{LastRead: "Dracula", Books: map[string]string{"Dracula": "345"}}

	for _, fs := range []faultFS{{failWrite: true}, {failRename: true}} {
		dir := t.TempDir()
		path := filepath.Join(dir, "library.db")
		require.NoError(t, New(path).Save(prior))

		err := New(path, WithFileSystem(fs)).Save(next)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWrite)

		got, err := New(path).Load()
		require.NoError(t, err)
		assert.Equal(t, prior, got)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "temporary file left behind")
		assert.Equal(t, "library.db", entries[0].Name())
	}
}

func TestStrayTempFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.db")
	prior := Snapshot{LastRead: "Emma", Books: map[string]string{"Emma": "158"}}
	require.NoError(t, New(path).Save(prior))

	// A process killed mid-write leaves a partial temp file behind.
	partial := `{"last_read": "Drac`
	require.NoError(t, os.WriteFile(path+".crashed.tmp", []byte(partial), 0o644))

	got, err := New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, prior, got)
}

func TestSaveReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	err := New(filepath.Join(dir, "library.db")).Save(Snapshot{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
	assert.False(t, strings.Contains(err.Error(), ErrNotFound.Error()))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, New("").Path())
}

func ptr(s string) *string { return &s }
