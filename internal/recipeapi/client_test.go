package recipeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memImage []byte

func (m memImage) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(m))), nil
}

type brokenImage struct{}

func (brokenImage) Open() (io.ReadCloser, error) {
	return nil, errors.New("file vanished")
}

const mockScanResponse = `{"detected_ingredients":["Tomato","Egg","Onion"],"recipe":{"title":"Simple Scrambled Eggs with Tomato","ingredients":["2 Eggs","1 Tomato, diced"],"steps":["Crack eggs into a bowl and whisk.","Serve hot."]}}`

func TestNewClient(t *testing.T) {
	client := NewClient("http://192.168.1.20:8000/api/")

	if client.BaseURL != "http://192.168.1.20:8000/api" {
		t.Errorf("BaseURL = %s, want http://192.168.1.20:8000/api", client.BaseURL)
	}

	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}

	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}

	if !strings.HasPrefix(client.UserAgent, "prep/") {
		t.Errorf("UserAgent = %s, want prep/ prefix", client.UserAgent)
	}
}

func TestSetTimeout(t *testing.T) {
	client := NewClient("http://localhost:8000/api")
	client.SetTimeout(5 * time.Second)

	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.HTTPClient.Timeout)
	}
}

func TestDetect_Success(t *testing.T) {
	var gotSession string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/detect-ingredients/" {
			t.Errorf("Path = %s, want /api/detect-ingredients/", r.URL.Path)
		}
		gotSession = r.Header.Get(SessionHeader)

		file, header, err := r.FormFile(UploadFieldName)
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Filename != UploadFileName {
			t.Errorf("Filename = %s, want %s", header.Filename, UploadFileName)
		}
		if ct := header.Header.Get("Content-Type"); ct != UploadContentType {
			t.Errorf("Content-Type = %s, want %s", ct, UploadContentType)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "jpegbytes" {
			t.Errorf("uploaded body = %q, want jpegbytes", data)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detected_ingredients":["egg","flour","milk"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/api")
	client.SessionID = "session-1"

	got, err := client.Detect(context.Background(), memImage("jpegbytes"))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	want := []string{"egg", "flour", "milk"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Detect() = %v, want %v", got, want)
	}
	if gotSession != "session-1" {
		t.Errorf("%s = %q, want session-1", SessionHeader, gotSession)
	}
}

func TestDetect_EmptyListIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detected_ingredients":[]}`))
	}))
	defer server.Close()

	got, err := NewClient(server.URL).Detect(context.Background(), memImage("x"))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Detect() = %v, want empty", got)
	}
}

func TestDetect_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"No image provided"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Detect(context.Background(), memImage("x"))
	if !IsServiceError(err) {
		t.Fatalf("Detect() error = %v, want service error", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("error is not *APIError")
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if ShortMessage(err) != "No image provided" {
		t.Errorf("ShortMessage() = %q, want No image provided", ShortMessage(err))
	}
}

func TestDetect_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Detect(context.Background(), memImage("x"))
	if !IsServiceError(err) {
		t.Fatalf("Detect() error = %v, want service error", err)
	}
	if ShortMessage(err) != http.StatusText(http.StatusBadGateway) {
		t.Errorf("ShortMessage() = %q, want %q", ShortMessage(err), http.StatusText(http.StatusBadGateway))
	}
}

func TestDetect_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{"ingredients":["egg"]}`},
		{"not an array", `{"detected_ingredients":"egg"}`},
		{"non-string item", `{"detected_ingredients":["egg",3]}`},
		{"not json", `egg, flour`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Detect(context.Background(), memImage("x"))
			if !IsMalformedError(err) {
				t.Errorf("Detect() error = %v, want malformed", err)
			}
		})
	}
}

func TestDetect_UnreadablePhoto(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Detect(context.Background(), brokenImage{})
	if !IsRequestError(err) {
		t.Errorf("Detect() error = %v, want request error", err)
	}
	if called {
		t.Error("server should not be called when the photo cannot be read")
	}
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate-recipe/" {
			t.Errorf("Path = %s, want /api/generate-recipe/", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if strings.Join(req.Ingredients, ",") != "egg,flour,milk" {
			t.Errorf("Ingredients = %v, want [egg flour milk]", req.Ingredients)
		}

		w.Write([]byte(`{"title":"Pancakes","ingredients":["2 eggs","1 cup flour","1 cup milk"],"steps":["Mix","Fry"]}`))
	}))
	defer server.Close()

	recipe, err := NewClient(server.URL+"/api").Generate(context.Background(), []string{"egg", "flour", "milk"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if recipe.Title != "Pancakes" {
		t.Errorf("Title = %s, want Pancakes", recipe.Title)
	}
	if len(recipe.Ingredients) != 3 {
		t.Errorf("len(Ingredients) = %d, want 3", len(recipe.Ingredients))
	}
	if len(recipe.Steps) != 2 || recipe.Steps[1] != "Fry" {
		t.Errorf("Steps = %v, want [Mix Fry]", recipe.Steps)
	}
}

func TestGenerate_NilIngredientsSendsEmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"ingredients":[]}` {
			t.Errorf("body = %s, want {\"ingredients\":[]}", body)
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"No ingredients provided"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Generate(context.Background(), nil)
	if !IsServiceError(err) {
		t.Errorf("Generate() error = %v, want service error", err)
	}
}

func TestGenerate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"ingredients":[],"steps":["Mix"]}`},
		{"empty title", `{"title":"  ","ingredients":[],"steps":["Mix"]}`},
		{"missing steps", `{"title":"Pancakes","ingredients":[]}`},
		{"missing ingredients", `{"title":"Pancakes","steps":["Mix"]}`},
		{"array body", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Generate(context.Background(), []string{"egg"})
			if !IsMalformedError(err) {
				t.Errorf("Generate() error = %v, want malformed", err)
			}
		})
	}
}

func TestScan_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scan-ingredients/" {
			t.Errorf("Path = %s, want /api/scan-ingredients/", r.URL.Path)
		}
		w.Write([]byte(mockScanResponse))
	}))
	defer server.Close()

	result, err := NewClient(server.URL+"/api").Scan(context.Background(), memImage("x"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.DetectedIngredients) != 3 {
		t.Errorf("len(DetectedIngredients) = %d, want 3", len(result.DetectedIngredients))
	}
	if result.Recipe == nil || result.Recipe.Title != "Simple Scrambled Eggs with Tomato" {
		t.Errorf("Recipe = %+v, want scrambled eggs", result.Recipe)
	}
}

func TestScan_MissingRecipe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detected_ingredients":["egg"]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Scan(context.Background(), memImage("x"))
	if !IsMalformedError(err) {
		t.Errorf("Scan() error = %v, want malformed", err)
	}
}

func TestDetect_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := NewClient(addr).Detect(context.Background(), memImage("x"))
	if !IsNetworkError(err) {
		t.Errorf("Detect() error = %v, want network error", err)
	}
	if NoticeTitle(err) != "Connection Error" {
		t.Errorf("NoticeTitle() = %q, want Connection Error", NoticeTitle(err))
	}
}

func TestDetect_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL)
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.Detect(context.Background(), memImage("x"))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Detect() error = %v, want *APIError", err)
	}
	if apiErr.Type != ErrTypeTimeout {
		t.Errorf("Type = %v, want %v", apiErr.Type, ErrTypeTimeout)
	}
}

func TestDetect_NoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Detect(context.Background(), memImage("x"))
	if err == nil {
		t.Fatal("Detect() error = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if err := NewClient(server.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}
