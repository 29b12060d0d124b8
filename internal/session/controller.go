package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/recipeapi"
)

// Controller owns the screen state of one session. It is not safe for
// concurrent use: the TUI drives it from the Bubble Tea update loop and Flow
// drives it sequentially.
//
// Asynchronous work is split into BeginX, which checks the guard, marks the
// session busy and returns a Ticket, and CompleteX, which applies the result.
// A completion whose ticket no longer matches (because the user went home or
// another operation started) is discarded.
type Controller struct {
	id       string
	contract Contract

	state       State
	photo       *capture.Photo
	ingredients []string
	recipe      *recipeapi.Recipe
	busy        *Busy
	notices     []Notice

	generation uint64
}

// New creates a controller on the Home screen
func New(contract Contract) *Controller {
	if contract == "" {
		contract = ContractSplit
	}
	return &Controller{
		id:       uuid.NewString(),
		contract: contract,
		state:    StateHome,
	}
}

// ID returns the session ID used to correlate logs and requests
func (c *Controller) ID() string { return c.id }

// Contract returns the service contract the session uses
func (c *Controller) Contract() Contract { return c.contract }

// State returns the current screen
func (c *Controller) State() State { return c.state }

// Busy returns the outstanding operation, or nil
func (c *Controller) Busy() *Busy {
	if c.busy == nil {
		return nil
	}
	b := *c.busy
	return &b
}

// Photo returns the current photo, or nil
func (c *Controller) Photo() *capture.Photo { return c.photo }

// Ingredients returns a copy of the ingredient list
func (c *Controller) Ingredients() []string {
	return append([]string(nil), c.ingredients...)
}

// Recipe returns a copy of the last generated recipe, or nil. The recipe is
// kept after going back to editing even though it is not shown.
func (c *Controller) Recipe() *recipeapi.Recipe { return c.recipe.Clone() }

// Notices returns the queued notices, oldest first
func (c *Controller) Notices() []Notice {
	return append([]Notice(nil), c.notices...)
}

// DismissNotice drops the oldest notice. It reports whether one was queued.
func (c *Controller) DismissNotice() bool {
	if len(c.notices) == 0 {
		return false
	}
	c.notices = c.notices[1:]
	return true
}

// Home returns to the Home screen from anywhere, clearing the photo,
// ingredients, recipe and busy flag. Any outstanding operation becomes stale.
func (c *Controller) Home() {
	from := c.state
	c.generation++
	c.reset()
	c.transition("homeRequested", from)
}

// CancelCamera leaves the camera without taking a photo
func (c *Controller) CancelCamera() error {
	if c.state != StateCameraActive {
		return &TransitionError{Event: "cancelCamera", From: c.state}
	}
	from := c.state
	c.generation++
	c.reset()
	c.transition("cancelCamera", from)
	return nil
}

// Retake discards the previewed photo. Camera photos return to the camera,
// gallery photos to Home.
func (c *Controller) Retake() error {
	if c.busy != nil {
		return ErrBusy
	}
	if c.state != StatePhotoPreview {
		return &TransitionError{Event: "retake", From: c.state}
	}

	from := c.state
	source := capture.SourceGallery
	if c.photo != nil {
		source = c.photo.Source
	}

	if source == capture.SourceCamera {
		c.photo = nil
		c.state = StateCameraActive
	} else {
		c.reset()
	}
	c.transition("retake", from)
	return nil
}

// Back returns from the recipe to the ingredient editor. The recipe is kept.
func (c *Controller) Back() error {
	if c.busy != nil {
		return ErrBusy
	}
	if c.state != StateRecipeResult {
		return &TransitionError{Event: "backRequested", From: c.state}
	}
	c.state = StateIngredientEditing
	c.transition("backRequested", StateRecipeResult)
	return nil
}

// AddIngredient appends text, trimmed, to the ingredient list. Duplicates are
// kept.
func (c *Controller) AddIngredient(text string) error {
	if c.busy != nil {
		return ErrBusy
	}
	if c.state != StateIngredientEditing {
		return &TransitionError{Event: "addIngredient", From: c.state}
	}
	name := strings.TrimSpace(text)
	if name == "" {
		return ErrEmptyIngredient
	}
	c.ingredients = append(c.ingredients, name)
	return nil
}

// RemoveIngredient removes the ingredient at index
func (c *Controller) RemoveIngredient(index int) error {
	if c.busy != nil {
		return ErrBusy
	}
	if c.state != StateIngredientEditing {
		return &TransitionError{Event: "removeIngredient", From: c.state}
	}
	if index < 0 || index >= len(c.ingredients) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(c.ingredients))
	}
	c.ingredients = append(c.ingredients[:index:index], c.ingredients[index+1:]...)
	return nil
}

// BeginCamera starts the camera permission request from Home
func (c *Controller) BeginCamera() (Ticket, error) {
	if err := c.guard(OpCamera, StateHome); err != nil {
		return Ticket{}, err
	}
	return c.begin(OpCamera), nil
}

// CompleteCamera applies the permission result. On success the camera opens.
func (c *Controller) CompleteCamera(t Ticket, err error) bool {
	if !c.accept(t) {
		return false
	}
	if err != nil {
		c.fail(t.Op, err)
		return true
	}
	from := c.finish()
	c.state = StateCameraActive
	c.transition(t.Op.String(), from)
	return true
}

// BeginShutter starts a capture on the camera screen
func (c *Controller) BeginShutter() (Ticket, error) {
	if err := c.guard(OpShutter, StateCameraActive); err != nil {
		return Ticket{}, err
	}
	return c.begin(OpShutter), nil
}

// CompleteShutter applies a captured frame and shows the preview
func (c *Controller) CompleteShutter(t Ticket, photo *capture.Photo, err error) bool {
	if !c.accept(t) {
		return false
	}
	if err == nil && photo == nil {
		err = fmt.Errorf("%w: no frame returned", capture.ErrCaptureFailed)
	}
	if err != nil {
		c.fail(t.Op, err)
		return true
	}
	from := c.finish()
	c.setPhoto(photo)
	c.transition(t.Op.String(), from)
	return true
}

// BeginPick starts a gallery pick from Home or from the preview
func (c *Controller) BeginPick() (Ticket, error) {
	if err := c.guard(OpPick, StateHome, StatePhotoPreview); err != nil {
		return Ticket{}, err
	}
	return c.begin(OpPick), nil
}

// CompletePick applies the picker result. A cancelled pick changes nothing.
func (c *Controller) CompletePick(t Ticket, photo *capture.Photo, err error) bool {
	if !c.accept(t) {
		return false
	}
	if errors.Is(err, capture.ErrPickerCancelled) || (err == nil && photo == nil) {
		from := c.finish()
		c.transition("pickerCancelled", from)
		return true
	}
	if err != nil {
		c.fail(t.Op, err)
		return true
	}
	from := c.finish()
	c.setPhoto(photo)
	c.transition("pickerReturnedImage", from)
	return true
}

// BeginAnalyze starts ingredient detection on the previewed photo
func (c *Controller) BeginAnalyze() (Ticket, error) {
	if c.contract != ContractSplit {
		return Ticket{}, ErrWrongContract
	}
	if err := c.guard(OpAnalyze, StatePhotoPreview); err != nil {
		return Ticket{}, err
	}
	if c.photo == nil {
		return Ticket{}, &TransitionError{Event: OpAnalyze.String(), From: c.state}
	}
	return c.begin(OpAnalyze), nil
}

// CompleteAnalyze applies detected ingredients and opens the editor
func (c *Controller) CompleteAnalyze(t Ticket, detected []string, err error) bool {
	if !c.accept(t) {
		return false
	}
	if err != nil {
		c.fail(t.Op, err)
		return true
	}
	from := c.finish()
	c.ingredients = append([]string{}, detected...)
	c.state = StateIngredientEditing
	c.transition(t.Op.String(), from)
	return true
}

// BeginGenerate starts recipe generation from the ingredient list. It is
// allowed from the editor and from the recipe screen to regenerate.
func (c *Controller) BeginGenerate() (Ticket, error) {
	if err := c.guard(OpGenerate, StateIngredientEditing, StateRecipeResult); err != nil {
		return Ticket{}, err
	}
	if len(c.ingredients) == 0 {
		return Ticket{}, ErrNoIngredients
	}
	return c.begin(OpGenerate), nil
}

// CompleteGenerate applies a recipe, replacing any previous one
func (c *Controller) CompleteGenerate(t Ticket, recipe *recipeapi.Recipe, err error) bool {
	if !c.accept(t) {
		return false
	}
	if err == nil && recipe == nil {
		err = recipeapi.NewMalformedError(recipeapi.OpGenerate, "", "empty recipe", nil)
	}
	if err != nil {
		c.fail(t.Op, err)
		return true
	}
	from := c.finish()
	c.recipe = recipe.Clone()
	c.state = StateRecipeResult
	c.transition(t.Op.String(), from)
	return true
}

// BeginScan starts the combined detect-and-generate call on the preview
func (c *Controller) BeginScan() (Ticket, error) {
	if c.contract != ContractCombined {
		return Ticket{}, ErrWrongContract
	}
	if err := c.guard(OpScan, StatePhotoPreview); err != nil {
		return Ticket{}, err
	}
	if c.photo == nil {
		return Ticket{}, &TransitionError{Event: OpScan.String(), From: c.state}
	}
	return c.begin(OpScan), nil
}

// CompleteScan applies a scan result and shows the recipe directly
func (c *Controller) CompleteScan(t Ticket, result *recipeapi.ScanResult, err error) bool {
	if !c.accept(t) {
		return false
	}
	if err == nil && (result == nil || result.Recipe == nil) {
		err = recipeapi.NewMalformedError(recipeapi.OpScan, "", "missing recipe", nil)
	}
	if err != nil {
		c.fail(t.Op, err)
		return true
	}
	from := c.finish()
	c.ingredients = append([]string{}, result.DetectedIngredients...)
	c.recipe = result.Recipe.Clone()
	c.state = StateRecipeResult
	c.transition(t.Op.String(), from)
	return true
}

// guard checks that op may start now
func (c *Controller) guard(op Op, allowed ...State) error {
	if c.busy != nil {
		return ErrBusy
	}
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	return &TransitionError{Event: op.String(), From: c.state}
}

func (c *Controller) begin(op Op) Ticket {
	c.generation++
	c.busy = &Busy{Op: op, Label: op.Label(), From: c.state}
	logging.LogTransition(c.id, op.String(), c.state.String(), "Busy("+op.Label()+")")
	return Ticket{Op: op, Generation: c.generation}
}

// Pending reports whether t is still the outstanding operation
func (c *Controller) Pending(t Ticket) bool {
	return c.busy != nil && c.busy.Op == t.Op && c.generation == t.Generation
}

// accept is Pending plus logging of discarded results
func (c *Controller) accept(t Ticket) bool {
	if c.Pending(t) {
		return true
	}
	logging.LogDiscarded(c.id, t.Op.String(), t.Generation, c.generation)
	return false
}

// finish clears the busy flag and returns the state the operation began in
func (c *Controller) finish() State {
	from := c.busy.From
	c.busy = nil
	return from
}

// fail returns to the initiating state and queues exactly one notice
func (c *Controller) fail(op Op, err error) {
	from := c.finish()
	c.state = from
	c.notices = append(c.notices, noticeFor(op, err))
	logging.Warn("Operation failed",
		zap.String("session_id", c.id),
		zap.String("op", op.String()),
		zap.Error(err))
	c.transition(op.String()+"Failed", from)
}

func (c *Controller) setPhoto(photo *capture.Photo) {
	c.photo = photo
	c.ingredients = nil
	c.recipe = nil
	c.state = StatePhotoPreview
}

func (c *Controller) reset() {
	c.state = StateHome
	c.photo = nil
	c.ingredients = nil
	c.recipe = nil
	c.busy = nil
}

func (c *Controller) transition(event string, from State) {
	logging.LogTransition(c.id, event, from.String(), c.state.String())
}
