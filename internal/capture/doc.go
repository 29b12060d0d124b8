// Package capture provides the photo sources for a session: a camera that
// grabs one frame with ffmpeg, and a gallery that validates image files on
// disk.
//
// The camera uses avfoundation on macOS, v4l2 on Linux and dshow on Windows.
// Frames are written as JPEG into a per-session temp directory created with
// NewSessionDir.
//
// Permission checks are approximations of the mobile platform prompts: the
// camera is "granted" when ffmpeg is installed and the device can be opened,
// the media library when the gallery directory can be listed.
package capture
