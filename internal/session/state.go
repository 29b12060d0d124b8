package session

import (
	"fmt"
	"strings"
)

// State is the screen the session is on. Exactly one is active at a time.
type State int

const (
	StateHome State = iota
	StateCameraActive
	StatePhotoPreview
	StateIngredientEditing
	StateRecipeResult
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateHome:
		return "Home"
	case StateCameraActive:
		return "CameraActive"
	case StatePhotoPreview:
		return "PhotoPreview"
	case StateIngredientEditing:
		return "IngredientEditing"
	case StateRecipeResult:
		return "RecipeResult"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Op identifies an asynchronous operation
type Op int

const (
	OpNone Op = iota
	OpCamera
	OpShutter
	OpPick
	OpAnalyze
	OpGenerate
	OpScan
)

// String returns the event name of the operation
func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpCamera:
		return "requestCamera"
	case OpShutter:
		return "shutterPressed"
	case OpPick:
		return "requestGallery"
	case OpAnalyze:
		return "analyzeRequested"
	case OpGenerate:
		return "generateRequested"
	case OpScan:
		return "scanRequested"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Label is the progress text shown in the busy overlay
func (o Op) Label() string {
	switch o {
	case OpCamera:
		return "Requesting camera access..."
	case OpShutter:
		return "Capturing..."
	case OpPick:
		return "Choosing a photo..."
	case OpAnalyze:
		return "Analyzing Image..."
	case OpGenerate:
		return "Cooking..."
	case OpScan:
		return "Generating recipe..."
	default:
		return ""
	}
}

// failureMessage is the fallback notice text when a collaborator gives none
func (o Op) failureMessage() string {
	switch o {
	case OpCamera:
		return "Camera unavailable"
	case OpShutter:
		return "Capture failed"
	case OpPick:
		return "Could not open photo"
	case OpAnalyze:
		return "Detection failed"
	case OpGenerate, OpScan:
		return "Recipe generation failed"
	default:
		return "Something went wrong"
	}
}

// Contract selects how a photo becomes a recipe
type Contract string

const (
	// ContractSplit detects ingredients, lets the user edit them, then
	// generates a recipe from the edited list
	ContractSplit Contract = "split"

	// ContractCombined detects and generates in a single scan call
	ContractCombined Contract = "combined"
)

// ParseContract parses a contract name. Empty selects ContractSplit.
func ParseContract(s string) (Contract, error) {
	switch Contract(strings.ToLower(strings.TrimSpace(s))) {
	case "", ContractSplit:
		return ContractSplit, nil
	case ContractCombined:
		return ContractCombined, nil
	default:
		return "", fmt.Errorf("unknown contract %q (want %s or %s)", s, ContractSplit, ContractCombined)
	}
}

// Busy describes the one outstanding operation
type Busy struct {
	Op    Op
	Label string

	// From is the state the operation was started in. Failures return here.
	From State
}

// Ticket identifies one started operation. A completion is applied only if
// its ticket still matches the controller.
type Ticket struct {
	Op         Op
	Generation uint64
}

// NoticeKind grades a notice
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeWarning
	NoticeInfo
)

// String returns a human-readable name for the kind
func (k NoticeKind) String() string {
	switch k {
	case NoticeError:
		return "error"
	case NoticeWarning:
		return "warning"
	case NoticeInfo:
		return "info"
	default:
		return fmt.Sprintf("NoticeKind(%d)", k)
	}
}

// Notice is a dismissible message for the user
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
	Hints   []string
}
