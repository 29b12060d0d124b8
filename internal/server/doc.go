// Package server implements prep-server, a stand-in for the ingredient and
// recipe service.
//
// The server answers the three service endpoints with canned data so the
// client can be developed and demonstrated without the vision and language
// models behind the real backend:
//
//	POST /api/detect-ingredients/   multipart "image"  -> {"detected_ingredients": [...]}
//	POST /api/generate-recipe/      {"ingredients": [...]} -> {"title", "ingredients", "steps"}
//	POST /api/scan-ingredients/     multipart "image"  -> {"detected_ingredients", "recipe"}
//
// Bad input is answered with 400 and {"error": "..."}, which the client shows
// as a service error notice.
//
// # mDNS
//
// With Config.Advertise set the server registers itself as "_prep._tcp" so
// clients with auto_discover enabled find it without configuration.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Port: 8000, Advertise: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until SIGINT, SIGTERM or ctx cancellation, then shuts down
// gracefully, withdrawing the mDNS record first.
package server
