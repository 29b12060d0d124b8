package recipeapi

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates the request could not be sent or the response
	// could not be received (generic network failure)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the service address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the service hostname could not be resolved
	ErrTypeDNS
	// ErrTypeService indicates a non-2xx response, usually carrying an error field
	ErrTypeService
	// ErrTypeMalformed indicates a 2xx response missing expected fields
	ErrTypeMalformed
	// ErrTypeRequest indicates the request could not be built (unreadable photo, bad URL)
	ErrTypeRequest
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeService:
		return "Service Error"
	case ErrTypeMalformed:
		return "Malformed Response"
	case ErrTypeRequest:
		return "Request Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError represents an error that occurred while talking to the recipe service
type APIError struct {
	Type           ErrorType           // Category of error
	Op             string              // Operation that failed (e.g. "Detection failed")
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Endpoint       string              // Full URL of the request
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a typed APIError
func ClassifyNetworkError(err error, endpoint string) *APIError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &APIError{
			Type:           ErrTypeTimeout,
			Message:        "Request timed out",
			Endpoint:       endpoint,
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Endpoint:       endpoint,
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &APIError{
				Type:           ErrTypeConnectionRefused,
				Message:        "Service refused connection",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &APIError{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &APIError{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err, endpoint)
	}

	return &APIError{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Endpoint:       endpoint,
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(op, endpoint string, err error) *APIError {
	classified := ClassifyNetworkError(err, endpoint)
	classified.Op = op
	return classified
}

// NewServiceError creates an error for a non-2xx response
func NewServiceError(op, endpoint string, statusCode int, message string) *APIError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{
		Type:       ErrTypeService,
		Op:         op,
		Message:    message,
		StatusCode: statusCode,
		Endpoint:   endpoint,
	}
}

// NewMalformedError creates an error for a 2xx response that cannot be used
func NewMalformedError(op, endpoint, message string, err error) *APIError {
	return &APIError{
		Type:       ErrTypeMalformed,
		Op:         op,
		Message:    message,
		StatusCode: http.StatusOK,
		Endpoint:   endpoint,
		Err:        err,
	}
}

// NewRequestError creates an error for a request that could not be built
func NewRequestError(op, message string, err error) *APIError {
	return &APIError{
		Type:    ErrTypeRequest,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError reports whether err means the service could not be reached
// (including timeout, connection refused and DNS failures)
func IsNetworkError(err error) bool {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Type == ErrTypeNetwork ||
			apiErr.Type == ErrTypeTimeout ||
			apiErr.Type == ErrTypeConnectionRefused ||
			apiErr.Type == ErrTypeDNS
	}
	return false
}

// IsServiceError reports whether err is a non-2xx response from the service
func IsServiceError(err error) bool {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Type == ErrTypeService
	}
	return false
}

// IsMalformedError reports whether err is a 2xx response with missing fields
func IsMalformedError(err error) bool {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Type == ErrTypeMalformed
	}
	return false
}

// IsRequestError reports whether err happened before anything was sent
func IsRequestError(err error) bool {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Type == ErrTypeRequest
	}
	return false
}

// NoticeTitle returns the title a user-facing notice should carry for err
func NoticeTitle(err error) string {
	if IsNetworkError(err) {
		return "Connection Error"
	}
	return "Error"
}

// ShortMessage returns a concise, user-facing error message
func ShortMessage(err error) string {
	apiErr, ok := asAPIError(err)
	if !ok {
		return err.Error()
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return "The recipe service did not respond in time."
	case ErrTypeConnectionRefused, ErrTypeDNS, ErrTypeNetwork:
		return "Is the backend running? Check the service address."
	case ErrTypeService:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Op
	case ErrTypeMalformed:
		if apiErr.Op != "" {
			return apiErr.Op + ": unexpected response from the service"
		}
		return "Unexpected response from the service"
	case ErrTypeRequest:
		return apiErr.Message
	default:
		return apiErr.Message
	}
}

// TroubleshootingHint returns troubleshooting lines for err, or nil when there
// is nothing useful to suggest
func TroubleshootingHint(err error) []string {
	apiErr, ok := asAPIError(err)
	if !ok {
		return nil
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return []string{
			"Detection on large photos can be slow; try again",
			"Increase the request timeout with --timeout",
			"Check the service logs for a stuck request",
		}

	case ErrTypeConnectionRefused:
		return []string{
			"Start the service (or prep-server for local testing)",
			"Verify the port in the service address",
			"Run 'prep discover' to find services on this network",
		}

	case ErrTypeDNS:
		return []string{
			"Use the service IP address instead of its hostname",
			"Check your network DNS settings",
		}

	case ErrTypeNetwork:
		hint := []string{}
		switch apiErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			hint = append(hint,
				"Verify the service address: "+apiErr.Endpoint,
				"Make sure this machine is on the same network as the service")
		case NetworkErrorNetworkUnreachable:
			hint = append(hint,
				"Check that WiFi or Ethernet is connected",
				"Check your network adapter settings")
		default:
			hint = append(hint,
				"Check your network connection",
				"Verify the service address with 'prep config show'")
		}
		return hint

	case ErrTypeService:
		if apiErr.StatusCode >= 500 {
			return []string{
				fmt.Sprintf("The service failed with HTTP %d", apiErr.StatusCode),
				"Check the service logs",
			}
		}
		return nil

	case ErrTypeMalformed:
		return []string{
			"The service answered with an unexpected payload",
			"Check that client and service versions match",
		}

	default:
		return nil
	}
}

// Describe renders err as a short message followed by bulleted hints, for
// plain-text output
func Describe(err error) string {
	msg := ShortMessage(err)
	lines := TroubleshootingHint(err)
	if len(lines) == 0 {
		return msg
	}
	return msg + "\n  • " + strings.Join(lines, "\n  • ")
}
