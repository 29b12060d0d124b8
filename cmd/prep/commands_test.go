package main

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/config"
	"github.com/muurk/prep/internal/recipeapi"
	"github.com/muurk/prep/internal/session"
)

func editingSession(t *testing.T, contract session.Contract, detected ...string) *session.Controller {
	t.Helper()
	ctrl := session.New(contract)

	tk, err := ctrl.BeginPick()
	if err != nil {
		t.Fatalf("BeginPick() error = %v", err)
	}
	ctrl.CompletePick(tk, &capture.Photo{Path: "/tmp/fridge.jpg", Source: capture.SourceGallery}, nil)

	if contract == session.ContractCombined {
		tk, err = ctrl.BeginScan()
		if err != nil {
			t.Fatalf("BeginScan() error = %v", err)
		}
		ctrl.CompleteScan(tk, &recipeapi.ScanResult{
			DetectedIngredients: detected,
			Recipe:              &recipeapi.Recipe{Title: "Soup", Ingredients: detected, Steps: []string{"Boil"}},
		}, nil)
		return ctrl
	}

	tk, err = ctrl.BeginAnalyze()
	if err != nil {
		t.Fatalf("BeginAnalyze() error = %v", err)
	}
	ctrl.CompleteAnalyze(tk, detected, nil)
	return ctrl
}

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name     string
		contract session.Contract
		detected []string
		add      []string
		remove   []string
		want     []string
		wantErr  bool
	}{
		{
			name:     "add and remove",
			contract: session.ContractSplit,
			detected: []string{"Tomato", "Egg", "Onion"},
			add:      []string{"basil"},
			remove:   []string{"onion"},
			want:     []string{"Tomato", "Egg", "basil"},
		},
		{
			name:     "duplicate add kept",
			contract: session.ContractSplit,
			detected: []string{"Egg"},
			add:      []string{"Egg"},
			want:     []string{"Egg", "Egg"},
		},
		{
			name:     "remove missing",
			contract: session.ContractSplit,
			detected: []string{"Egg"},
			remove:   []string{"milk"},
			want:     []string{"Egg"},
			wantErr:  true,
		},
		{
			name:     "blank add",
			contract: session.ContractSplit,
			detected: []string{"Egg"},
			add:      []string{"  "},
			want:     []string{"Egg"},
			wantErr:  true,
		},
		{
			name:     "combined goes back to the editor",
			contract: session.ContractCombined,
			detected: []string{"Leek", "Potato"},
			remove:   []string{"leek"},
			want:     []string{"Potato"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := editingSession(t, tt.contract, tt.detected...)

			err := applyEdits(ctrl, tt.add, tt.remove)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyEdits() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := ctrl.Ingredients(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Ingredients() = %v, want %v", got, tt.want)
			}
			if got := ctrl.State(); got != session.StateIngredientEditing {
				t.Errorf("State() = %v, want %v", got, session.StateIngredientEditing)
			}
		})
	}
}

func TestIndexOf(t *testing.T) {
	list := []string{"Tomato", "Egg", "egg"}

	tests := []struct {
		name string
		want int
	}{
		{"egg", 1},
		{" TOMATO ", 0},
		{"milk", -1},
	}
	for _, tt := range tests {
		if got := indexOf(list, tt.name); got != tt.want {
			t.Errorf("indexOf(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://192.168.1.20:8000/api/", "http://192.168.1.20:8000/api", false},
		{" https://recipes.example.com ", "https://recipes.example.com", false},
		{"ftp://host/api", "", true},
		{"192.168.1.20:8000", "", true},
		{"http:///api", "", true},
	}
	for _, tt := range tests {
		got, err := validateBaseURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateBaseURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("validateBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewClientSessionID(t *testing.T) {
	settings := config.Settings{BaseURL: "http://localhost:8000/api", Timeout: 5 * time.Second}

	first := newClient(settings)
	second := newClient(settings)

	if _, err := uuid.Parse(first.SessionID); err != nil {
		t.Errorf("SessionID = %q, want a UUID (%v)", first.SessionID, err)
	}
	if first.SessionID == second.SessionID {
		t.Errorf("SessionID = %q for both clients, want distinct IDs", first.SessionID)
	}
}

func TestNewSessionTagsClient(t *testing.T) {
	e := &env{
		contract: session.ContractSplit,
		client:   newClient(config.Settings{BaseURL: "http://localhost:8000/api"}),
	}
	before := e.client.SessionID

	ctrl := e.newSession()

	if e.client.SessionID != ctrl.ID() {
		t.Errorf("SessionID = %q, want controller ID %q", e.client.SessionID, ctrl.ID())
	}
	if e.client.SessionID == before {
		t.Errorf("SessionID = %q, want it replaced by the controller ID", before)
	}
}
