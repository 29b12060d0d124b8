package urls

import "strings"

// Service endpoint paths, relative to the service base URL.
// The trailing slashes are part of the routes the service registers.
const (
	DetectIngredientsPath = "/detect-ingredients/"
	GenerateRecipePath    = "/generate-recipe/"
	ScanIngredientsPath   = "/scan-ingredients/"
)

// DefaultAPIPrefix is the path prefix the service mounts its API under.
const DefaultAPIPrefix = "/api"

// DefaultBaseURL is used when neither configuration nor discovery provides one.
const DefaultBaseURL = "http://localhost:8000" + DefaultAPIPrefix

// GettingStarted is the quick start guide for running the client against a
// local service.
const GettingStarted = "https://muurk.github.io/prep/getting-started/"

// TroubleshootingGuide covers connection problems between client and service.
const TroubleshootingGuide = "https://muurk.github.io/prep/troubleshooting/"

// Join appends an endpoint path to a base URL without doubling slashes.
func Join(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
