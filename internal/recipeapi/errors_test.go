package recipeapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeConnectionRefused, "Connection Refused"},
		{ErrTypeDNS, "DNS Error"},
		{ErrTypeService, "Service Error"},
		{ErrTypeMalformed, "Malformed Response"},
		{ErrTypeRequest, "Request Error"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", int(tt.et), got, tt.want)
		}
	}
}

func TestClassifyNetworkError(t *testing.T) {
	const endpoint = "http://10.0.0.5:8000/api/detect-ingredients/"

	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantSubtype NetworkErrorSubtype
	}{
		{
			name:        "deadline",
			err:         &url.Error{Op: "Post", URL: endpoint, Err: context.DeadlineExceeded},
			wantType:    ErrTypeTimeout,
			wantSubtype: NetworkErrorTimeout,
		},
		{
			name:        "dns",
			err:         &url.Error{Op: "Post", URL: endpoint, Err: &net.DNSError{Name: "kitchen.local", Err: "no such host"}},
			wantType:    ErrTypeDNS,
			wantSubtype: NetworkErrorDNS,
		},
		{
			name:        "refused",
			err:         &url.Error{Op: "Post", URL: endpoint, Err: &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}},
			wantType:    ErrTypeConnectionRefused,
			wantSubtype: NetworkErrorConnectionRefused,
		},
		{
			name:        "host unreachable",
			err:         &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)},
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorHostUnreachable,
		},
		{
			name:        "network unreachable",
			err:         &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ENETUNREACH)},
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorNetworkUnreachable,
		},
		{
			name:        "generic",
			err:         errors.New("connection reset"),
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err, endpoint)
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", got.NetworkSubtype, tt.wantSubtype)
			}
			if got.Endpoint != endpoint {
				t.Errorf("Endpoint = %s, want %s", got.Endpoint, endpoint)
			}
		})
	}

	if ClassifyNetworkError(nil, endpoint) != nil {
		t.Error("ClassifyNetworkError(nil) should return nil")
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewNetworkError(OpDetect, "http://x", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the underlying cause")
	}

	wrapped := fmt.Errorf("analyze: %w", err)
	if !IsNetworkError(wrapped) {
		t.Error("IsNetworkError should see through fmt.Errorf wrapping")
	}
}

func TestIsHelpers(t *testing.T) {
	network := NewNetworkError(OpDetect, "http://x", errors.New("reset"))
	service := NewServiceError(OpGenerate, "http://x", 500, "")
	malformed := NewMalformedError(OpScan, "http://x", "missing title", nil)
	request := NewRequestError(OpDetect, "could not read photo", errors.New("gone"))
	plain := errors.New("plain")

	tests := []struct {
		name          string
		err           error
		wantNetwork   bool
		wantService   bool
		wantMalformed bool
		wantRequest   bool
	}{
		{"network", network, true, false, false, false},
		{"service", service, false, true, false, false},
		{"malformed", malformed, false, false, true, false},
		{"request", request, false, false, false, true},
		{"plain", plain, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkError(tt.err); got != tt.wantNetwork {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.wantNetwork)
			}
			if got := IsServiceError(tt.err); got != tt.wantService {
				t.Errorf("IsServiceError() = %v, want %v", got, tt.wantService)
			}
			if got := IsMalformedError(tt.err); got != tt.wantMalformed {
				t.Errorf("IsMalformedError() = %v, want %v", got, tt.wantMalformed)
			}
			if got := IsRequestError(tt.err); got != tt.wantRequest {
				t.Errorf("IsRequestError() = %v, want %v", got, tt.wantRequest)
			}
		})
	}
}

func TestNewServiceError_StatusTextFallback(t *testing.T) {
	err := NewServiceError(OpGenerate, "http://x", 503, "")
	if err.Message != "Service Unavailable" {
		t.Errorf("Message = %q, want Service Unavailable", err.Message)
	}
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err:  &APIError{Type: ErrTypeTimeout},
			want: "The recipe service did not respond in time.",
		},
		{
			name: "refused",
			err:  &APIError{Type: ErrTypeConnectionRefused},
			want: "Is the backend running? Check the service address.",
		},
		{
			name: "service with message",
			err:  NewServiceError(OpDetect, "http://x", 400, "No image provided"),
			want: "No image provided",
		},
		{
			name: "malformed",
			err:  NewMalformedError(OpGenerate, "http://x", "missing title", nil),
			want: "Recipe generation failed: unexpected response from the service",
		},
		{
			name: "plain",
			err:  errors.New("disk full"),
			want: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortMessage(tt.err); got != tt.want {
				t.Errorf("ShortMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTroubleshootingHint(t *testing.T) {
	refused := &APIError{Type: ErrTypeConnectionRefused}
	if hint := TroubleshootingHint(refused); len(hint) == 0 {
		t.Error("connection refused should carry hints")
	}

	client := NewServiceError(OpDetect, "http://x", 400, "No image provided")
	if hint := TroubleshootingHint(client); hint != nil {
		t.Errorf("4xx hints = %v, want nil", hint)
	}

	server := NewServiceError(OpDetect, "http://x", 502, "")
	hint := TroubleshootingHint(server)
	if len(hint) == 0 || !strings.Contains(hint[0], "502") {
		t.Errorf("5xx hints = %v, want status in first line", hint)
	}

	if TroubleshootingHint(errors.New("plain")) != nil {
		t.Error("plain errors should carry no hints")
	}
}

func TestDescribe(t *testing.T) {
	plain := NewServiceError(OpDetect, "http://x", 400, "No image provided")
	if got := Describe(plain); got != "No image provided" {
		t.Errorf("Describe() = %q, want message only", got)
	}

	refused := &APIError{Type: ErrTypeConnectionRefused}
	got := Describe(refused)
	if !strings.HasPrefix(got, "Is the backend running?") {
		t.Errorf("Describe() = %q, want short message first", got)
	}
	if strings.Count(got, "\n  • ") != len(TroubleshootingHint(refused)) {
		t.Errorf("Describe() = %q, want one bullet per hint", got)
	}
}
