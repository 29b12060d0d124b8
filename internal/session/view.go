package session

import (
	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/recipeapi"
)

// View is what the UI should present. It is derived only from controller
// state.
type View struct {
	// Screen is the one screen to show
	Screen State

	// Busy is true while an operation is outstanding. The screen body is
	// replaced by a progress indicator showing BusyLabel; Screen is unchanged.
	Busy      bool
	BusyLabel string
	BusyOp    Op

	// Notice is the oldest undismissed notice, or nil
	Notice *Notice

	// CanAnalyze and CanScan tell the preview which action to offer
	CanAnalyze bool
	CanScan    bool

	// CanGenerate is true when the editor has something to cook with
	CanGenerate bool
}

// View computes the current view
func (c *Controller) View() View {
	v := View{Screen: c.state}

	if c.busy != nil {
		v.Busy = true
		v.BusyLabel = c.busy.Label
		v.BusyOp = c.busy.Op
	}
	if len(c.notices) > 0 {
		n := c.notices[0]
		n.Hints = append([]string(nil), n.Hints...)
		v.Notice = &n
	}

	idle := c.busy == nil
	if c.state == StatePhotoPreview && c.photo != nil && idle {
		v.CanAnalyze = c.contract == ContractSplit
		v.CanScan = c.contract == ContractCombined
	}
	if (c.state == StateIngredientEditing || c.state == StateRecipeResult) && idle {
		v.CanGenerate = len(c.ingredients) > 0
	}

	return v
}

// Snapshot is a deep copy of the controller state
type Snapshot struct {
	ID          string
	Contract    Contract
	State       State
	Photo       *capture.Photo
	Ingredients []string
	Recipe      *recipeapi.Recipe
	Busy        *Busy
	Notices     []Notice
	Generation  uint64
}

// Snapshot returns a deep copy of the controller state
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		ID:          c.id,
		Contract:    c.contract,
		State:       c.state,
		Ingredients: c.Ingredients(),
		Recipe:      c.recipe.Clone(),
		Busy:        c.Busy(),
		Generation:  c.generation,
	}
	if c.photo != nil {
		p := *c.photo
		s.Photo = &p
	}
	for _, n := range c.notices {
		n.Hints = append([]string(nil), n.Hints...)
		s.Notices = append(s.Notices, n)
	}
	return s
}
