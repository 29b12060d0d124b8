package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrPermissionDenied means the camera or media library cannot be used
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCaptureFailed means the camera or picker could not produce an image
	ErrCaptureFailed = errors.New("capture failed")

	// ErrPickerCancelled means the user dismissed the picker without choosing
	// a photo. Callers treat it as a no-op.
	ErrPickerCancelled = errors.New("picker cancelled")
)

// Source records where a photo came from
type Source int

const (
	SourceCamera Source = iota
	SourceGallery
)

// String returns a human-readable name for the source
func (s Source) String() string {
	switch s {
	case SourceCamera:
		return "camera"
	case SourceGallery:
		return "gallery"
	default:
		return fmt.Sprintf("Source(%d)", s)
	}
}

// Photo is a reference to a still image on disk. Bytes are read lazily
// through Open so a photo can be held in session state cheaply.
type Photo struct {
	Path        string
	Source      Source
	ContentType string
	Size        int64
	CapturedAt  time.Time
}

// Open opens the photo for reading
func (p *Photo) Open() (io.ReadCloser, error) {
	if p == nil || p.Path == "" {
		return nil, fmt.Errorf("%w: no photo", ErrCaptureFailed)
	}
	return os.Open(p.Path)
}

// Name returns the file name of the photo
func (p *Photo) Name() string {
	if p == nil {
		return ""
	}
	return filepath.Base(p.Path)
}
