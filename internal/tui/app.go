package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/session"
	"github.com/muurk/prep/internal/ui"
)

// Options wires the app to its collaborators
type Options struct {
	// Context bounds every collaborator call; cancelling it ends the program
	Context context.Context

	// Controller defaults to a new split-contract session
	Controller *session.Controller

	Service     session.Service
	Camera      capture.Camera
	Gallery     capture.Gallery
	Permissions capture.Permissions

	// ServiceURL is shown in the header
	ServiceURL string
}

// Home menu entries
var homeMenu = []string{"Take Photo", "Upload from Gallery"}

const (
	menuCamera = iota
	menuGallery
)

// AppModel is the top-level Bubble Tea model. Screen state lives in the
// session controller; AppModel keeps only widget state (cursors, inputs,
// the file picker) and the context of the outstanding operation.
type AppModel struct {
	ctrl *session.Controller
	opts Options

	parent context.Context
	opCtx  context.Context
	cancel context.CancelFunc

	// UI state
	Width  int
	Height int

	keys       keyMap
	help       help.Model
	spinner    spinner.Model
	picker     filepicker.Model
	input      textinput.Model
	recipeView viewport.Model

	menuCursor       int
	ingredientCursor int

	// picking is set while the gallery picker is open for pickTicket
	picking    bool
	pickTicket session.Ticket

	// status is a one-line message cleared on the next key press
	status string
}

// NewAppModel creates the app on the Home screen
func NewAppModel(opts Options) AppModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Controller == nil {
		opts.Controller = session.New(session.ContractSplit)
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(SpinnerStyle),
	)

	input := textinput.New()
	input.Placeholder = "e.g. 2 eggs"
	input.Prompt = "+ "
	input.CharLimit = 80
	input.Width = 40

	w, h := contentSize(0, 0)
	return AppModel{
		ctrl:       opts.Controller,
		opts:       opts,
		parent:     opts.Context,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    sp,
		input:      input,
		recipeView: viewport.New(w, h),
	}
}

// Controller returns the session the app drives
func (m AppModel) Controller() *session.Controller {
	return m.ctrl
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update handles all messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resizeRecipeView()
		if m.picking {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(m.pickerSizeMsg())
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		// Let the tick chain die once nothing is outstanding
		if m.ctrl.Busy() == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case cameraReadyMsg:
		m.ctrl.CompleteCamera(msg.ticket, msg.err)
		m.settle()
		return m, nil

	case photoTakenMsg:
		m.ctrl.CompleteShutter(msg.ticket, msg.photo, msg.err)
		m.settle()
		return m, nil

	case galleryReadyMsg:
		return m.openPicker(msg)

	case photoPickedMsg:
		m.ctrl.CompletePick(msg.ticket, msg.photo, msg.err)
		m.settle()
		return m, nil

	case ingredientsMsg:
		if m.ctrl.CompleteAnalyze(msg.ticket, msg.ingredients, msg.err) && msg.err == nil {
			m.ingredientCursor = 0
		}
		m.settle()
		return m, nil

	case recipeMsg:
		if m.ctrl.CompleteGenerate(msg.ticket, msg.recipe, msg.err) && msg.err == nil {
			m.refreshRecipe()
		}
		m.settle()
		return m, nil

	case scanMsg:
		if m.ctrl.CompleteScan(msg.ticket, msg.result, msg.err) && msg.err == nil {
			m.refreshRecipe()
		}
		m.settle()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Directory listings and other picker internals
	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	if msg.String() == "ctrl+c" {
		m.endOp()
		return m, tea.Quit
	}

	// h is home everywhere except while typing an ingredient
	typing := m.input.Focused() && m.ctrl.State() == session.StateIngredientEditing
	if !typing && key.Matches(msg, m.keys.Home) {
		return m.goHome()
	}

	if m.picking {
		return m.updatePicker(msg)
	}

	// The busy overlay swallows everything but home and quit
	if m.ctrl.Busy() != nil {
		return m, nil
	}

	if len(m.ctrl.Notices()) > 0 {
		if key.Matches(msg, m.keys.Dismiss) {
			m.ctrl.DismissNotice()
		}
		return m, nil
	}

	switch m.ctrl.State() {
	case session.StateHome:
		return m.updateHome(msg)
	case session.StateCameraActive:
		return m.updateCamera(msg)
	case session.StatePhotoPreview:
		return m.updatePreview(msg)
	case session.StateIngredientEditing:
		return m.updateEditor(msg)
	case session.StateRecipeResult:
		return m.updateRecipe(msg)
	}
	return m, nil
}

func (m AppModel) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.endOp()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.menuCursor < len(homeMenu)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, m.keys.Camera):
		return m.startCamera()
	case key.Matches(msg, m.keys.Gallery):
		return m.startPick()
	case key.Matches(msg, m.keys.Select):
		if m.menuCursor == menuCamera {
			return m.startCamera()
		}
		return m.startPick()
	}
	return m, nil
}

func (m AppModel) updateCamera(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Shutter):
		t, err := m.ctrl.BeginShutter()
		if err != nil {
			return m.reject(err)
		}
		ctx := m.beginOp()
		return m, tea.Batch(m.spinner.Tick, captureCmd(ctx, m.opts.Camera, t))
	case key.Matches(msg, m.keys.Cancel):
		if err := m.ctrl.CancelCamera(); err != nil {
			return m.reject(err)
		}
	}
	return m, nil
}

func (m AppModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.startSubmit()
	case key.Matches(msg, m.keys.Retake):
		if err := m.ctrl.Retake(); err != nil {
			return m.reject(err)
		}
	case key.Matches(msg, m.keys.Repick):
		return m.startPick()
	}
	return m, nil
}

func (m AppModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Enter):
			if err := m.ctrl.AddIngredient(m.input.Value()); err != nil {
				return m.reject(err)
			}
			m.input.Reset()
			m.ingredientCursor = len(m.ctrl.Ingredients()) - 1
			return m, nil
		case key.Matches(msg, m.keys.Done):
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	count := len(m.ctrl.Ingredients())
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.ingredientCursor > 0 {
			m.ingredientCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.ingredientCursor < count-1 {
			m.ingredientCursor++
		}
	case key.Matches(msg, m.keys.Remove):
		if err := m.ctrl.RemoveIngredient(m.ingredientCursor); err != nil {
			return m.reject(err)
		}
		if m.ingredientCursor >= count-1 && m.ingredientCursor > 0 {
			m.ingredientCursor--
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Cook):
		return m.startGenerate()
	}
	return m, nil
}

func (m AppModel) updateRecipe(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if err := m.ctrl.Back(); err != nil {
			return m.reject(err)
		}
		return m, nil
	case key.Matches(msg, m.keys.Again):
		return m.startGenerate()
	case key.Matches(msg, m.keys.Over):
		return m.goHome()
	}

	var cmd tea.Cmd
	m.recipeView, cmd = m.recipeView.Update(msg)
	return m, cmd
}

func (m AppModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.picking = false
		m.ctrl.CompletePick(m.pickTicket, nil, capture.ErrPickerCancelled)
		m.settle()
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m, tea.Batch(m.spinner.Tick, pickCmd(m.opCtx, m.opts.Gallery, path, m.pickTicket))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.status = filepath.Base(path) + " is not an image"
	}
	return m, cmd
}

func (m AppModel) startCamera() (tea.Model, tea.Cmd) {
	t, err := m.ctrl.BeginCamera()
	if err != nil {
		return m.reject(err)
	}
	ctx := m.beginOp()
	return m, tea.Batch(m.spinner.Tick, requestCameraCmd(ctx, m.opts.Permissions, t))
}

func (m AppModel) startPick() (tea.Model, tea.Cmd) {
	t, err := m.ctrl.BeginPick()
	if err != nil {
		return m.reject(err)
	}
	ctx := m.beginOp()
	return m, tea.Batch(m.spinner.Tick, requestGalleryCmd(ctx, m.opts.Permissions, t))
}

// startSubmit runs the preview action for the session's contract
func (m AppModel) startSubmit() (tea.Model, tea.Cmd) {
	if m.ctrl.Contract() == session.ContractCombined {
		t, err := m.ctrl.BeginScan()
		if err != nil {
			return m.reject(err)
		}
		ctx := m.beginOp()
		return m, tea.Batch(m.spinner.Tick, scanCmd(ctx, m.opts.Service, m.ctrl.Photo(), t))
	}

	t, err := m.ctrl.BeginAnalyze()
	if err != nil {
		return m.reject(err)
	}
	ctx := m.beginOp()
	return m, tea.Batch(m.spinner.Tick, detectCmd(ctx, m.opts.Service, m.ctrl.Photo(), t))
}

func (m AppModel) startGenerate() (tea.Model, tea.Cmd) {
	t, err := m.ctrl.BeginGenerate()
	if err != nil {
		return m.reject(err)
	}
	ctx := m.beginOp()
	return m, tea.Batch(m.spinner.Tick, generateCmd(ctx, m.opts.Service, m.ctrl.Ingredients(), t))
}

// openPicker shows the file picker once media library access is granted
func (m AppModel) openPicker(msg galleryReadyMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Pending(msg.ticket) {
		return m, nil
	}

	err := msg.err
	if err == nil && m.opts.Gallery == nil {
		err = fmt.Errorf("%w: no gallery configured", capture.ErrCaptureFailed)
	}
	if err != nil {
		m.ctrl.CompletePick(msg.ticket, nil, err)
		m.settle()
		return m, nil
	}

	m.picking = true
	m.pickTicket = msg.ticket
	m.picker = newPicker(m.opts.Gallery.Dir())

	var sizeCmd tea.Cmd
	m.picker, sizeCmd = m.picker.Update(m.pickerSizeMsg())
	return m, tea.Batch(m.picker.Init(), sizeCmd)
}

// goHome returns to Home from anywhere, abandoning the outstanding operation
func (m AppModel) goHome() (tea.Model, tea.Cmd) {
	m.endOp()
	m.ctrl.Home()
	m.picking = false
	m.input.Reset()
	m.input.Blur()
	m.menuCursor = 0
	m.ingredientCursor = 0
	return m, nil
}

// reject shows why a key press did nothing
func (m AppModel) reject(err error) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(err, session.ErrBusy):
		m.status = "Please wait for the current step to finish"
	case errors.Is(err, session.ErrNoIngredients):
		m.status = "Add at least one ingredient first"
	case errors.Is(err, session.ErrEmptyIngredient):
		m.status = "Type an ingredient name first"
	default:
		m.status = err.Error()
	}
	return m, nil
}

// beginOp cancels any previous operation context and starts a new one
func (m *AppModel) beginOp() context.Context {
	m.endOp()
	m.opCtx, m.cancel = context.WithCancel(m.parent)
	return m.opCtx
}

func (m *AppModel) endOp() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// settle releases the operation context once nothing is outstanding
func (m *AppModel) settle() {
	if m.ctrl.Busy() == nil {
		m.endOp()
	}
}

func (m *AppModel) refreshRecipe() {
	w, _ := contentSize(m.Width, m.Height)
	m.recipeView.SetContent(ui.RenderRecipe(m.ctrl.Recipe(), w))
	m.recipeView.GotoTop()
}

func (m *AppModel) resizeRecipeView() {
	w, h := contentSize(m.Width, m.Height)
	m.recipeView.Width = w
	m.recipeView.Height = h
	if m.ctrl.State() == session.StateRecipeResult {
		m.refreshRecipe()
	}
}

func (m AppModel) pickerSizeMsg() tea.WindowSizeMsg {
	w, h := contentSize(m.Width, m.Height)
	if h < 10 {
		h = 10
	}
	return tea.WindowSizeMsg{Width: w, Height: h}
}

func newPicker(dir string) filepicker.Model {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = capture.ImageExtensions
	// h is reserved for home
	fp.KeyMap.Back = key.NewBinding(
		key.WithKeys("backspace", "left"),
		key.WithHelp("←", "parent"),
	)
	return fp
}

// Run starts the full-screen app and blocks until the user quits
func Run(opts Options) error {
	m := NewAppModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.parent))

	final, err := p.Run()
	if fm, ok := final.(AppModel); ok {
		fm.endOp()
	}
	if errors.Is(err, tea.ErrProgramKilled) && m.parent.Err() != nil {
		return nil
	}
	return err
}
