package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/session"
	"github.com/muurk/prep/internal/ui"
)

// View renders the current screen
func (m AppModel) View() string {
	v := m.ctrl.View()

	var content string
	var keys bindings
	switch {
	case m.picking:
		content, keys = m.pickerView()
	case v.Busy:
		content, keys = m.busyView(v)
	default:
		content, keys = m.screenView(v)
		if v.Notice != nil {
			content = renderNotice(*v.Notice, m.contentWidth()) + "\n\n" + content
			keys = bindings{m.keys.Dismiss, m.keys.Home}
		}
	}

	if m.status != "" {
		content += "\n\n" + StatusStyle.Render(m.status)
	}

	return RenderApplicationContainer(content, m.help.View(keys), m.opts.ServiceURL, m.Width, m.Height)
}

func (m AppModel) screenView(v session.View) (string, bindings) {
	switch v.Screen {
	case session.StateCameraActive:
		return m.cameraView()
	case session.StatePhotoPreview:
		return m.previewView(v)
	case session.StateIngredientEditing:
		return m.editorView(v)
	case session.StateRecipeResult:
		return m.recipeScreenView(v)
	default:
		return m.homeView()
	}
}

func (m AppModel) homeView() (string, bindings) {
	var b strings.Builder
	b.WriteString(RenderTitle("What's in your kitchen?"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("Snap your ingredients and get a recipe."))
	b.WriteString("\n\n")
	for i, item := range homeMenu {
		b.WriteString(RenderMenuItem(item, i == m.menuCursor))
		b.WriteString("\n")
	}
	return b.String(), bindings{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Camera, m.keys.Gallery, m.keys.Quit}
}

func (m AppModel) cameraView() (string, bindings) {
	device := "default"
	if m.opts.Camera != nil && m.opts.Camera.Device() != "" {
		device = m.opts.Camera.Device()
	}

	var b strings.Builder
	b.WriteString(RenderTitle("Camera"))
	b.WriteString("\n\n")
	b.WriteString(RenderField("Device", device))
	b.WriteString("\n\n")
	b.WriteString(HintStyle.Render("Point the camera at your ingredients and press space."))
	return b.String(), bindings{m.keys.Shutter, m.keys.Cancel, m.keys.Home}
}

func (m AppModel) previewView(v session.View) (string, bindings) {
	photo := m.ctrl.Photo()

	var b strings.Builder
	b.WriteString(RenderTitle("Photo"))
	b.WriteString("\n\n")
	b.WriteString(renderPhoto(photo))
	b.WriteString("\n\n")

	submit := m.keys.Submit
	if v.CanScan {
		submit.SetHelp("enter", "get recipe")
	}
	second := m.keys.Retake
	if photo != nil && photo.Source == capture.SourceGallery {
		second = m.keys.Repick
	}
	return b.String(), bindings{submit, second, m.keys.Home}
}

func (m AppModel) editorView(v session.View) (string, bindings) {
	ingredients := m.ctrl.Ingredients()
	cursor := m.ingredientCursor
	if cursor >= len(ingredients) {
		cursor = len(ingredients) - 1
	}
	if m.input.Focused() {
		cursor = -1
	}

	var b strings.Builder
	b.WriteString(RenderTitle("Ingredients"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(fmt.Sprintf("%d item(s). Fix anything the scan got wrong.", len(ingredients))))
	b.WriteString("\n\n")
	b.WriteString(ui.RenderIngredients(ingredients, cursor))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())

	if m.input.Focused() {
		return b.String(), bindings{m.keys.Enter, m.keys.Done}
	}

	keys := bindings{m.keys.Up, m.keys.Down, m.keys.Add, m.keys.Remove}
	if v.CanGenerate {
		keys = append(keys, m.keys.Cook)
	}
	return b.String(), append(keys, m.keys.Home)
}

func (m AppModel) recipeScreenView(v session.View) (string, bindings) {
	keys := bindings{m.keys.Scroll, m.keys.Back}
	if v.CanGenerate {
		keys = append(keys, m.keys.Again)
	}
	return m.recipeView.View(), append(keys, m.keys.Over)
}

// busyView replaces the screen body with a progress indicator
func (m AppModel) busyView(v session.View) (string, bindings) {
	var b strings.Builder
	b.WriteString(RenderTitle(screenTitle(v.Screen)))
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(BusyStyle.Render(v.BusyLabel))
	return b.String(), bindings{m.keys.Home}
}

func (m AppModel) pickerView() (string, bindings) {
	var b strings.Builder
	b.WriteString(RenderTitle("Choose a photo"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.picker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())

	open := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))
	return b.String(), bindings{m.keys.Up, m.keys.Down, open, m.picker.KeyMap.Back, m.keys.Cancel, m.keys.Home}
}

func (m AppModel) contentWidth() int {
	w, _ := contentSize(m.Width, m.Height)
	return w
}

func screenTitle(s session.State) string {
	switch s {
	case session.StateCameraActive:
		return "Camera"
	case session.StatePhotoPreview:
		return "Photo"
	case session.StateIngredientEditing:
		return "Ingredients"
	case session.StateRecipeResult:
		return "Recipe"
	default:
		return "Home"
	}
}

func renderPhoto(p *capture.Photo) string {
	if p == nil {
		return HintStyle.Render("No photo")
	}
	lines := []string{
		RenderField("File", p.Name()),
		RenderField("Source", p.Source.String()),
		RenderField("Type", p.ContentType),
		RenderField("Size", formatSize(p.Size)),
	}
	if !p.CapturedAt.IsZero() {
		lines = append(lines, RenderField("Taken", p.CapturedAt.Format("15:04:05")))
	}
	return strings.Join(lines, "\n")
}

func renderNotice(n session.Notice, width int) string {
	boxStyle, titleStyle := ErrorBoxStyle, ErrorTitleStyle
	if n.Kind != session.NoticeError {
		boxStyle, titleStyle = WarningBoxStyle, WarningTitleStyle
	}

	parts := []string{titleStyle.Render(n.Title)}
	if n.Message != "" {
		parts = append(parts, "", n.Message)
	}
	if len(n.Hints) > 0 {
		parts = append(parts, "")
		for _, h := range n.Hints {
			parts = append(parts, HintStyle.Render("• "+h))
		}
	}

	return boxStyle.Width(width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
