package capture

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/prep/internal/logging"
)

const (
	// DefaultQuality is the JPEG quality factor used when none is configured
	DefaultQuality = 0.5

	// DefaultWidth and DefaultHeight are the requested capture resolution
	DefaultWidth  = 640
	DefaultHeight = 480

	// FFmpegBinary is the program used to grab frames
	FFmpegBinary = "ffmpeg"
)

// Camera produces a still photo from a live capture device
type Camera interface {
	Capture(ctx context.Context) (*Photo, error)
	Device() string
}

// runFunc executes a command and returns its stdout
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// FFmpegCamera grabs a single MJPEG frame from a video device with ffmpeg
type FFmpegCamera struct {
	// DevicePath is the capture device: /dev/videoN on Linux, an index on
	// macOS, "video=Name" on Windows. Empty selects the platform default.
	DevicePath string

	// Quality is a factor in (0,1]; higher is better. Out-of-range values
	// fall back to DefaultQuality.
	Quality float64

	// Dir receives captured frames. Empty means the system temp dir.
	Dir string

	Width  int
	Height int

	goos   string
	run    runFunc
	create func(dir, pattern string) (*os.File, error)
}

// NewFFmpegCamera creates a camera for device that writes frames into dir
func NewFFmpegCamera(device string, quality float64, dir string) *FFmpegCamera {
	return &FFmpegCamera{
		DevicePath: device,
		Quality:    quality,
		Dir:        dir,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		goos:       runtime.GOOS,
		run:        runCommand,
		create:     os.CreateTemp,
	}
}

// DefaultDevice returns the usual first camera for the given OS
func DefaultDevice(goos string) string {
	switch goos {
	case "linux":
		return "/dev/video0"
	case "darwin":
		return "0"
	case "windows":
		return "video=USB Camera"
	default:
		return ""
	}
}

// Device returns the device the camera captures from
func (c *FFmpegCamera) Device() string {
	if c.DevicePath != "" {
		return c.DevicePath
	}
	return DefaultDevice(c.goos)
}

// QualityScale maps a quality factor in (0,1] onto ffmpeg's -q:v scale,
// where 2 is best and 31 is worst
func QualityScale(quality float64) int {
	if quality <= 0 || quality > 1 || math.IsNaN(quality) {
		quality = DefaultQuality
	}
	return int(math.Round(31 - quality*29))
}

// Args builds the ffmpeg command line for one frame to stdout
func (c *FFmpegCamera) Args() ([]string, error) {
	var input []string
	size := fmt.Sprintf("%dx%d", c.Width, c.Height)

	switch c.goos {
	case "darwin":
		input = []string{"-f", "avfoundation", "-video_size", size, "-framerate", "30", "-i", c.Device()}
	case "linux":
		input = []string{"-f", "v4l2", "-video_size", size, "-i", c.Device()}
	case "windows":
		input = []string{"-f", "dshow", "-video_size", size, "-i", c.Device()}
	default:
		return nil, fmt.Errorf("%w: unsupported operating system: %s", ErrCaptureFailed, c.goos)
	}

	args := append([]string{"-hide_banner", "-loglevel", "error"}, input...)
	return append(args,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", fmt.Sprintf("%d", QualityScale(c.Quality)),
		"-"), nil
}

// Capture grabs one frame and stores it as a JPEG under Dir
func (c *FFmpegCamera) Capture(ctx context.Context) (*Photo, error) {
	args, err := c.Args()
	if err != nil {
		return nil, err
	}

	logging.Debug("Capturing frame",
		zap.String("device", c.Device()),
		zap.Strings("args", args))

	output, err := c.run(ctx, FFmpegBinary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.Error("Failed to capture image from camera", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("%w: no image data captured", ErrCaptureFailed)
	}

	f, err := c.create(c.Dir, "capture-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	// Close before removing: Windows cannot delete an open file
	_, err = f.Write(output)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	logging.Debug("Captured frame", zap.String("path", f.Name()), zap.Int("size", len(output)))

	return &Photo{
		Path:        f.Name(),
		Source:      SourceCamera,
		ContentType: "image/jpeg",
		Size:        int64(len(output)),
		CapturedAt:  time.Now(),
	}, nil
}

// NewSessionDir creates a private directory for one session's captures.
// The caller removes it with os.RemoveAll when the session ends.
func NewSessionDir() (string, error) {
	return os.MkdirTemp("", "prep-session-*")
}
