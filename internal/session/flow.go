package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/recipeapi"
)

// Service is the ingredient/recipe service as the session sees it.
// *recipeapi.Client implements it.
type Service interface {
	Detect(ctx context.Context, img recipeapi.Image) ([]string, error)
	Generate(ctx context.Context, ingredients []string) (*recipeapi.Recipe, error)
	Scan(ctx context.Context, img recipeapi.Image) (*recipeapi.ScanResult, error)
}

// Flow drives a Controller synchronously: each step begins an operation,
// calls the collaborator and completes it. The one-shot CLI commands and the
// tests use it; the TUI runs the same steps as Bubble Tea commands.
//
// Step methods return guard errors (ErrBusy, ErrInvalidTransition, ...) as
// well as collaborator failures. A collaborator failure has also been turned
// into a notice on the controller by the time it is returned.
type Flow struct {
	Controller  *Controller
	Service     Service
	Camera      capture.Camera
	Gallery     capture.Gallery
	Permissions capture.Permissions
}

// OpenCamera requests camera permission and opens the camera
func (f *Flow) OpenCamera(ctx context.Context) error {
	t, err := f.Controller.BeginCamera()
	if err != nil {
		return err
	}

	var permErr error
	if f.Permissions != nil {
		permErr = f.Permissions.RequestCamera(ctx)
	}
	f.Controller.CompleteCamera(t, permErr)
	return permErr
}

// TakePhoto captures a frame from the open camera
func (f *Flow) TakePhoto(ctx context.Context) error {
	t, err := f.Controller.BeginShutter()
	if err != nil {
		return err
	}
	if f.Camera == nil {
		err := fmt.Errorf("%w: no camera configured", capture.ErrCaptureFailed)
		f.Controller.CompleteShutter(t, nil, err)
		return err
	}

	photo, err := f.Camera.Capture(ctx)
	f.Controller.CompleteShutter(t, photo, err)
	return err
}

// PickPhoto requests media library permission and picks path from the
// gallery. An empty path cancels and is not an error.
func (f *Flow) PickPhoto(ctx context.Context, path string) error {
	t, err := f.Controller.BeginPick()
	if err != nil {
		return err
	}

	if f.Permissions != nil {
		if err := f.Permissions.RequestMediaLibrary(ctx); err != nil {
			f.Controller.CompletePick(t, nil, err)
			return err
		}
	}
	if f.Gallery == nil {
		err := fmt.Errorf("%w: no gallery configured", capture.ErrCaptureFailed)
		f.Controller.CompletePick(t, nil, err)
		return err
	}

	photo, err := f.Gallery.Pick(ctx, path)
	f.Controller.CompletePick(t, photo, err)
	if errors.Is(err, capture.ErrPickerCancelled) {
		return nil
	}
	return err
}

// Analyze sends the previewed photo for ingredient detection
func (f *Flow) Analyze(ctx context.Context) error {
	t, err := f.Controller.BeginAnalyze()
	if err != nil {
		return err
	}

	detected, err := f.Service.Detect(ctx, f.Controller.Photo())
	f.Controller.CompleteAnalyze(t, detected, err)
	return err
}

// Generate sends the current ingredient list for a recipe
func (f *Flow) Generate(ctx context.Context) error {
	t, err := f.Controller.BeginGenerate()
	if err != nil {
		return err
	}

	recipe, err := f.Service.Generate(ctx, f.Controller.Ingredients())
	f.Controller.CompleteGenerate(t, recipe, err)
	return err
}

// Scan sends the previewed photo to the combined endpoint
func (f *Flow) Scan(ctx context.Context) error {
	t, err := f.Controller.BeginScan()
	if err != nil {
		return err
	}

	result, err := f.Service.Scan(ctx, f.Controller.Photo())
	f.Controller.CompleteScan(t, result, err)
	return err
}

// Submit runs the preview action for the session's contract: Analyze for
// split, Scan for combined
func (f *Flow) Submit(ctx context.Context) error {
	if f.Controller.Contract() == ContractCombined {
		return f.Scan(ctx)
	}
	return f.Analyze(ctx)
}
