package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Permissions grants access to the camera and the media library. Requests
// are re-evaluated every time, so a fixed device or directory is picked up
// on the next attempt.
type Permissions interface {
	RequestCamera(ctx context.Context) error
	RequestMediaLibrary(ctx context.Context) error
}

// SystemPermissions checks access against the local machine
type SystemPermissions struct {
	CameraDevice string
	GalleryDir   string

	goos     string
	lookPath func(string) (string, error)
}

// NewSystemPermissions creates permission checks for device and galleryDir
func NewSystemPermissions(device, galleryDir string) *SystemPermissions {
	return &SystemPermissions{
		CameraDevice: device,
		GalleryDir:   galleryDir,
		goos:         runtime.GOOS,
		lookPath:     exec.LookPath,
	}
}

// RequestCamera succeeds when ffmpeg is installed and, on Linux, the video
// device can be opened
func (p *SystemPermissions) RequestCamera(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := p.lookPath(FFmpegBinary); err != nil {
		return fmt.Errorf("%w: %s not found on PATH", ErrPermissionDenied, FFmpegBinary)
	}

	if p.goos != "linux" {
		return nil
	}

	device := p.CameraDevice
	if device == "" {
		device = DefaultDevice(p.goos)
	}
	f, err := os.OpenFile(device, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s", ErrPermissionDenied, device)
	}
	_ = f.Close()
	return nil
}

// RequestMediaLibrary succeeds when the gallery directory can be listed
func (p *SystemPermissions) RequestMediaLibrary(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := p.GalleryDir
	if dir == "" {
		dir = DefaultGalleryDir()
	}
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s", ErrPermissionDenied, dir)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: cannot read %s", ErrPermissionDenied, dir)
	}
	return nil
}
