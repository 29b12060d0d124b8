package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/recipeapi"
	"github.com/muurk/prep/internal/urls"
)

// MaxUploadBytes bounds the multipart body the service accepts
const MaxUploadBytes = 10 << 20

// Error messages returned with 400 responses
const (
	ErrMsgNoImage       = "No image provided"
	ErrMsgNoIngredients = "No ingredients provided"
)

// DetectedIngredients is the canned detection result
var DetectedIngredients = []string{"Tomato", "Egg", "Onion"}

// CannedRecipe is the canned recipe every generation returns
var CannedRecipe = recipeapi.Recipe{
	Title: "Simple Scrambled Eggs with Tomato",
	Ingredients: []string{
		"2 Eggs",
		"1 Tomato, diced",
		"1/2 Onion, chopped",
		"Salt and Pepper",
	},
	Steps: []string{
		"Crack eggs into a bowl and whisk.",
		"Sauté onions and tomatoes in a pan.",
		"Pour eggs into the pan and cook until fluffy.",
		"Serve hot.",
	},
}

// NewRouter builds the service routes under prefix. A non-zero latency delays
// every API answer, which is handy for exercising the client's busy overlay.
// Routes carry the full path so a wrong method gets 405 rather than 404.
func NewRouter(prefix string, latency time.Duration) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	handle := func(path string, h http.HandlerFunc, methods ...string) {
		var handler http.Handler = h
		if latency > 0 {
			handler = delayMiddleware(latency)(handler)
		}
		r.Handle(prefix+path, handler).Methods(methods...)
	}

	handle(urls.DetectIngredientsPath, DetectIngredientsHandler, http.MethodPost)
	handle(urls.GenerateRecipePath, GenerateRecipeHandler, http.MethodPost)
	handle(urls.ScanIngredientsPath, ScanIngredientsHandler, http.MethodPost)

	// Reachability probe used by Client.Ping
	handle("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, http.MethodGet, http.MethodHead)

	return r
}

// DetectIngredientsHandler answers POST detect-ingredients/
func DetectIngredientsHandler(w http.ResponseWriter, r *http.Request) {
	if err := requireImage(w, r); err != nil {
		writeError(w, http.StatusBadRequest, ErrMsgNoImage)
		return
	}
	writeJSON(w, http.StatusOK, recipeapi.DetectResult{
		DetectedIngredients: DetectedIngredients,
	})
}

// GenerateRecipeHandler answers POST generate-recipe/
func GenerateRecipeHandler(w http.ResponseWriter, r *http.Request) {
	var req recipeapi.GenerateRequest
	body := http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var ingredients []string
	for _, ing := range req.Ingredients {
		if strings.TrimSpace(ing) != "" {
			ingredients = append(ingredients, ing)
		}
	}
	if len(ingredients) == 0 {
		writeError(w, http.StatusBadRequest, ErrMsgNoIngredients)
		return
	}

	logging.Debug("Generating recipe", zap.Strings("ingredients", ingredients))
	writeJSON(w, http.StatusOK, CannedRecipe)
}

// ScanIngredientsHandler answers POST scan-ingredients/
func ScanIngredientsHandler(w http.ResponseWriter, r *http.Request) {
	if err := requireImage(w, r); err != nil {
		writeError(w, http.StatusBadRequest, ErrMsgNoImage)
		return
	}
	recipe := CannedRecipe
	writeJSON(w, http.StatusOK, recipeapi.ScanResult{
		DetectedIngredients: DetectedIngredients,
		Recipe:              &recipe,
	})
}

// requireImage checks for a non-empty multipart "image" field
func requireImage(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return err
	}
	file, header, err := r.FormFile(recipeapi.UploadFieldName)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if header.Size == 0 {
		return errors.New("empty image")
	}
	logging.Debug("Received image",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("content_type", header.Header.Get("Content-Type")),
	)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, recipeapi.ErrorResponse{Error: message})
}

// statusRecorder captures the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		session := r.Header.Get(recipeapi.SessionHeader)
		logging.LogHTTPRequest(session, r.Method, r.URL.Path, r.ContentLength)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logging.LogHTTPResponse(session, r.URL.Path, rec.status, time.Since(start))
	})
}

func delayMiddleware(latency time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
