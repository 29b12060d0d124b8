// Package session implements the screen state controller for one prep
// session.
//
// A session moves through five screens:
//
//	Home              camera or gallery pick
//	CameraActive      shutter -> PhotoPreview, cancel -> Home
//	PhotoPreview      analyze -> IngredientEditing (split contract)
//	                  scan -> RecipeResult (combined contract)
//	IngredientEditing add/remove ingredients, generate -> RecipeResult
//	RecipeResult      back -> IngredientEditing, regenerate
//
// Home is reachable from every screen and clears the photo, ingredients and
// recipe.
//
// # Operations
//
// Work that waits on a collaborator (permission checks, the camera, the
// gallery, the recipe service) is split into BeginX and CompleteX. Begin
// checks the guard, marks the session busy and returns a Ticket. Complete
// applies the result only if the ticket is still current; going Home or
// starting another operation makes older tickets stale, and their results
// are dropped and logged.
//
// Only one operation can be outstanding. Begin returns ErrBusy otherwise.
//
// Failures never escape the controller as state: the session returns to the
// screen the operation started from and queues a Notice. Flow wraps the
// Begin/Complete pairs for callers that can block.
package session
