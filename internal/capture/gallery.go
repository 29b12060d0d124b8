package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageExtensions are the file types the gallery offers
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// Gallery selects an existing photo
type Gallery interface {
	// Pick validates the chosen path and returns it as a photo. An empty
	// path means the user cancelled.
	Pick(ctx context.Context, path string) (*Photo, error)

	// Dir is where the picker starts browsing
	Dir() string
}

// FileGallery picks photos from a directory on disk
type FileGallery struct {
	Root string
}

// NewFileGallery creates a gallery rooted at dir. Empty means the user's
// Pictures directory, or the home directory when that does not exist.
func NewFileGallery(dir string) *FileGallery {
	if dir == "" {
		dir = DefaultGalleryDir()
	}
	return &FileGallery{Root: dir}
}

// DefaultGalleryDir returns ~/Pictures if present, else the home directory
func DefaultGalleryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	pictures := filepath.Join(home, "Pictures")
	if info, err := os.Stat(pictures); err == nil && info.IsDir() {
		return pictures
	}
	return home
}

// Dir returns the gallery root
func (g *FileGallery) Dir() string {
	return g.Root
}

// Pick resolves path (relative paths are taken from the gallery root) and
// checks that it is a readable image
func (g *FileGallery) Pick(ctx context.Context, path string) (*Photo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPickerCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(g.Root, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a file", ErrCaptureFailed, path)
	}

	contentType, err := sniff(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image (%s)", ErrCaptureFailed, filepath.Base(path), contentType)
	}

	return &Photo{
		Path:        path,
		Source:      SourceGallery,
		ContentType: contentType,
		Size:        info.Size(),
		CapturedAt:  info.ModTime(),
	}, nil
}

// List returns the image files directly inside dir, sorted by name
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, dir)
		}
		return nil, err
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageName(entry.Name()) {
			continue
		}
		images = append(images, entry.Name())
	}
	sort.Strings(images)
	return images, nil
}

// IsImageName reports whether name has one of ImageExtensions
func IsImageName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
