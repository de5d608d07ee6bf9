// Package recorder saves snapshot images of frames in which motion was seen.
package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// FileLayout is the time layout of snapshot file names.
const FileLayout = "20060102_150405"

// ErrEmptyFrame is returned when asked to save an empty frame.
var ErrEmptyFrame = errors.New("snapshot frame is empty")

// SnapshotWriter persists a frame and returns where it was written.
type SnapshotWriter interface {
	Save(frame gocv.Mat, at time.Time) (string, error)
}

// FileName returns the snapshot file name for a frame captured at at.
func FileName(at time.Time) string {
	return "motion_" + at.Format(FileLayout) + ".jpg"
}

// FileWriter writes JPEG snapshots into a directory.
type FileWriter struct {
	dir string
}

// NewFileWriter creates dir if needed and returns a writer for it.
func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create recordings directory: %w", err)
	}
	return &FileWriter{dir: dir}, nil
}

// Dir returns the directory snapshots are written to.
func (w *FileWriter) Dir() string {
	return w.dir
}

// Save writes frame as <dir>/motion_YYYYMMDD_HHMMSS.jpg. Two saves within the
// same second overwrite each other.
func (w *FileWriter) Save(frame gocv.Mat, at time.Time) (string, error) {
	if frame.Empty() {
		return "", ErrEmptyFrame
	}

	path := filepath.Join(w.dir, FileName(at))
	if ok := gocv.IMWrite(path, frame); !ok {
		return "", fmt.Errorf("write snapshot %s", path)
	}
	return path, nil
}

// Snapshot is one frame captured by a MemoryWriter.
type Snapshot struct {
	Name string
	At   time.Time
	Cols int
	Rows int
}

// MemoryWriter records saves without touching the disk.
type MemoryWriter struct {
	mu    sync.Mutex
	saved []Snapshot
	err   error
}

// NewMemoryWriter returns an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// SetError makes subsequent saves fail with err.
func (w *MemoryWriter) SetError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// Save records the frame's size and the name it would have on disk.
func (w *MemoryWriter) Save(frame gocv.Mat, at time.Time) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return "", w.err
	}
	if frame.Empty() {
		return "", ErrEmptyFrame
	}

	snap := Snapshot{Name: FileName(at), At: at, Cols: frame.Cols(), Rows: frame.Rows()}
	w.saved = append(w.saved, snap)
	return snap.Name, nil
}

// Saved returns a copy of every recorded snapshot.
func (w *MemoryWriter) Saved() []Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Snapshot, len(w.saved))
	copy(out, w.saved)
	return out
}
