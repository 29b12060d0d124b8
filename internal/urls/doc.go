// Package urls centralizes the service endpoint paths and documentation links
// used by the client, the mock server and the CLI help text.
//
// Keeping the paths in one place means the client and prep-server can never
// disagree about where an endpoint lives.
//
// Usage:
//
//	import "github.com/muurk/prep/internal/urls"
//
//	endpoint := baseURL + urls.DetectIngredientsPath
package urls
