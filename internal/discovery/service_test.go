package discovery

import (
	"strings"
	"testing"
)

func TestService_BaseURL(t *testing.T) {
	tests := []struct {
		name string
		svc  Service
		want string
	}{
		{"default path", Service{IP: "10.0.0.2", Port: 8000}, "http://10.0.0.2:8000/api"},
		{"custom path", Service{IP: "10.0.0.2", Port: 8000, Path: "/v2/api/"}, "http://10.0.0.2:8000/v2/api"},
		{"path without slash", Service{IP: "10.0.0.2", Port: 80, Path: "api"}, "http://10.0.0.2:80/api"},
		{"ipv6", Service{IP: "fe80::1", Port: 8000, Path: "/api"}, "http://[fe80::1]:8000/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.svc.BaseURL(); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_String(t *testing.T) {
	svc := &Service{Instance: "kitchen", Host: "kitchen.local.", IP: "192.168.1.9", Port: 8000}

	got := svc.String()
	for _, want := range []string{"kitchen", "kitchen.local.", "http://192.168.1.9:8000/api"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, want it to contain %q", got, want)
		}
	}
}

func TestService_GetMetadataNil(t *testing.T) {
	svc := &Service{}
	if got := svc.GetMetadata("path"); got != "" {
		t.Errorf("GetMetadata() on nil metadata = %q, want empty", got)
	}
}
