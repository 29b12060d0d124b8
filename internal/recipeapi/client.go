package recipeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/urls"
	"github.com/muurk/prep/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout. Detection on a large
	// photo can take a while, so this is generous.
	DefaultTimeout = 30 * time.Second

	// MaxResponseBytes bounds how much of a response body is read
	MaxResponseBytes = 1 << 20

	// SessionHeader carries the client session ID for log correlation
	SessionHeader = "X-Prep-Session"

	// UploadFieldName is the multipart field the service reads the photo from
	UploadFieldName = "image"

	// UploadFileName is the filename sent with every upload
	UploadFileName = "upload.jpg"

	// UploadContentType is the declared content type of every upload
	UploadContentType = "image/jpeg"
)

// Operation labels used as APIError.Op. They double as the fallback notice
// message when the service gives no detail.
const (
	OpDetect   = "Detection failed"
	OpGenerate = "Recipe generation failed"
	OpScan     = "Scan failed"
	OpPing     = "Service check failed"
)

// Client represents an HTTP client for the ingredient/recipe service
type Client struct {
	// BaseURL is the API root (e.g., "http://192.168.1.20:8000/api")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// SessionID is sent as X-Prep-Session and attached to log lines
	SessionID string

	// UserAgent identifies the client build
	UserAgent string
}

// NewClient creates a new service client for baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		UserAgent:  version.UserAgent(),
	}
}

// SetTimeout sets the HTTP request timeout. Zero means no client-side limit.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Detect uploads img to detect-ingredients and returns the detected names
func (c *Client) Detect(ctx context.Context, img Image) ([]string, error) {
	endpoint := urls.Join(c.BaseURL, urls.DetectIngredientsPath)

	body, contentType, err := encodeUpload(img)
	if err != nil {
		return nil, NewRequestError(OpDetect, "could not read photo", err)
	}

	raw, err := c.do(ctx, OpDetect, http.MethodPost, endpoint, contentType, body)
	if err != nil {
		return nil, err
	}

	result, err := parseDetect(raw)
	if err != nil {
		logging.LogRawBytes("Malformed detect response", raw)
		return nil, NewMalformedError(OpDetect, endpoint, err.Error(), err)
	}
	return result.DetectedIngredients, nil
}

// Generate posts ingredients to generate-recipe and returns the recipe
func (c *Client) Generate(ctx context.Context, ingredients []string) (*Recipe, error) {
	endpoint := urls.Join(c.BaseURL, urls.GenerateRecipePath)

	if ingredients == nil {
		ingredients = []string{}
	}
	payload, err := json.Marshal(GenerateRequest{Ingredients: ingredients})
	if err != nil {
		return nil, NewRequestError(OpGenerate, "could not encode ingredients", err)
	}

	raw, err := c.do(ctx, OpGenerate, http.MethodPost, endpoint, "application/json", payload)
	if err != nil {
		return nil, err
	}

	recipe, err := parseGenerate(raw)
	if err != nil {
		logging.LogRawBytes("Malformed generate response", raw)
		return nil, NewMalformedError(OpGenerate, endpoint, err.Error(), err)
	}
	return recipe, nil
}

// Scan uploads img to scan-ingredients, which detects and generates in one call
func (c *Client) Scan(ctx context.Context, img Image) (*ScanResult, error) {
	endpoint := urls.Join(c.BaseURL, urls.ScanIngredientsPath)

	body, contentType, err := encodeUpload(img)
	if err != nil {
		return nil, NewRequestError(OpScan, "could not read photo", err)
	}

	raw, err := c.do(ctx, OpScan, http.MethodPost, endpoint, contentType, body)
	if err != nil {
		return nil, err
	}

	result, err := parseScan(raw)
	if err != nil {
		logging.LogRawBytes("Malformed scan response", raw)
		return nil, NewMalformedError(OpScan, endpoint, err.Error(), err)
	}
	return result, nil
}

// Ping checks that something answers HTTP at the base URL. Any response,
// including 404 or 405, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := c.BaseURL + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return NewRequestError(OpPing, "invalid service address", err)
	}
	c.decorate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError(OpPing, endpoint, err)
	}
	_ = resp.Body.Close()
	return nil
}

// do sends one request and returns the body of a 2xx response. There is no
// retry: every failure is reported to the caller as-is.
func (c *Client) do(ctx context.Context, op, method, endpoint, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, NewRequestError(op, "invalid service address", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	c.decorate(req)

	logging.LogHTTPRequest(c.SessionID, method, endpoint, int64(len(payload)))
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(op, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, NewNetworkError(op, endpoint, err)
	}
	logging.LogHTTPResponse(c.SessionID, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewServiceError(op, endpoint, resp.StatusCode, parseErrorMessage(raw))
	}
	return raw, nil
}

func (c *Client) decorate(req *http.Request) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.SessionID != "" {
		req.Header.Set(SessionHeader, c.SessionID)
	}
}

// encodeUpload builds the multipart body for an image upload. The part is
// always declared as upload.jpg / image/jpeg whatever the source format.
func encodeUpload(img Image) ([]byte, string, error) {
	if img == nil {
		return nil, "", fmt.Errorf("no photo")
	}

	rc, err := img.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rc.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, UploadFieldName, UploadFileName))
	header.Set("Content-Type", UploadContentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), mw.FormDataContentType(), nil
}
