package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/recipeapi"
	"github.com/muurk/prep/internal/session"
)

// Completion messages. Each carries the ticket of the operation it completes
// so the controller can drop stale results.
type cameraReadyMsg struct {
	ticket session.Ticket
	err    error
}

type photoTakenMsg struct {
	ticket session.Ticket
	photo  *capture.Photo
	err    error
}

type galleryReadyMsg struct {
	ticket session.Ticket
	err    error
}

type photoPickedMsg struct {
	ticket session.Ticket
	photo  *capture.Photo
	err    error
}

type ingredientsMsg struct {
	ticket      session.Ticket
	ingredients []string
	err         error
}

type recipeMsg struct {
	ticket session.Ticket
	recipe *recipeapi.Recipe
	err    error
}

type scanMsg struct {
	ticket session.Ticket
	result *recipeapi.ScanResult
	err    error
}

func requestCameraCmd(ctx context.Context, perms capture.Permissions, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		var err error
		if perms != nil {
			err = perms.RequestCamera(ctx)
		}
		return cameraReadyMsg{ticket: t, err: err}
	}
}

func captureCmd(ctx context.Context, camera capture.Camera, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		if camera == nil {
			return photoTakenMsg{ticket: t, err: fmt.Errorf("%w: no camera configured", capture.ErrCaptureFailed)}
		}
		photo, err := camera.Capture(ctx)
		return photoTakenMsg{ticket: t, photo: photo, err: err}
	}
}

func requestGalleryCmd(ctx context.Context, perms capture.Permissions, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		var err error
		if perms != nil {
			err = perms.RequestMediaLibrary(ctx)
		}
		return galleryReadyMsg{ticket: t, err: err}
	}
}

func pickCmd(ctx context.Context, gallery capture.Gallery, path string, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		photo, err := gallery.Pick(ctx, path)
		return photoPickedMsg{ticket: t, photo: photo, err: err}
	}
}

func detectCmd(ctx context.Context, svc session.Service, photo *capture.Photo, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		ingredients, err := svc.Detect(ctx, photo)
		return ingredientsMsg{ticket: t, ingredients: ingredients, err: err}
	}
}

func generateCmd(ctx context.Context, svc session.Service, ingredients []string, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		recipe, err := svc.Generate(ctx, ingredients)
		return recipeMsg{ticket: t, recipe: recipe, err: err}
	}
}

func scanCmd(ctx context.Context, svc session.Service, photo *capture.Photo, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Scan(ctx, photo)
		return scanMsg{ticket: t, result: result, err: err}
	}
}
