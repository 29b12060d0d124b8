// Package recipeapi provides an HTTP client for the ingredient/recipe service.
//
// The service exposes three endpoints under a configurable base URL:
//   - detect-ingredients/: multipart photo upload, returns detected_ingredients
//   - generate-recipe/: JSON ingredient list, returns a recipe
//   - scan-ingredients/: multipart photo upload, returns both at once
//
// Every call is a single attempt. There is no retry and no backoff; a failure
// is returned to the caller, which turns it into a notice for the user.
//
// # Usage Example
//
//	client := recipeapi.NewClient("http://192.168.1.20:8000/api")
//	client.SessionID = sessionID
//
//	names, err := client.Detect(ctx, photo)
//	if err != nil {
//	    fmt.Println(recipeapi.Describe(err))
//	    return
//	}
//
//	recipe, err := client.Generate(ctx, names)
//
// # Errors
//
// All failures are *APIError values. The Type field separates transport
// failures (network, timeout, connection refused, DNS) from service failures
// (non-2xx, with the service's "error" string when present) and malformed
// successes (a 2xx body missing required fields). Responses are checked with
// gjson before decoding, so a missing "title" or "steps" is reported instead
// of yielding an empty recipe.
package recipeapi
