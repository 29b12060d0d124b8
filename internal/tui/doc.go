// Package tui implements the full-screen terminal interface for prep.
//
// The app is a Bubble Tea program driven by a session.Controller. The
// controller owns which screen is showing, the photo, the ingredient list,
// the recipe and the busy overlay; this package only maps key presses to
// controller events and runs the slow work (permission prompts, camera
// capture, service calls) as tea.Cmds.
//
// # Screens
//
//   - Home: take a photo or upload one from the gallery
//   - Camera: live device selected, press space to capture
//   - Photo: preview with analyze (or get recipe, with the combined contract)
//   - Ingredients: add, remove and generate
//   - Recipe: scrollable recipe with back, regenerate and start over
//
// Every screen is wrapped by RenderApplicationContainer with a header showing
// the service address and a footer built by bubbles/help.
//
// # Operations
//
// Each asynchronous step calls a BeginX method on the controller, which marks
// the session busy and returns a session.Ticket. The tea.Cmd carries the
// ticket back in its completion message so results that arrive after the
// user pressed h (home) are dropped by the controller.
//
// # Usage Example
//
//	err := tui.Run(tui.Options{
//	    Context:     ctx,
//	    Controller:  session.New(session.ContractSplit),
//	    Service:     recipeapi.NewClient(baseURL),
//	    Camera:      capture.NewFFmpegCamera("", 0.5, dir),
//	    Gallery:     capture.NewFileGallery(capture.DefaultGalleryDir()),
//	    Permissions: capture.NewSystemPermissions("", galleryDir),
//	    ServiceURL:  baseURL,
//	})
package tui
