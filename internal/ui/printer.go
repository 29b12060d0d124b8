package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muurk/prep/internal/recipeapi"
)

// Format selects how one-shot commands print results
type Format string

const (
	FormatDetailed Format = "detailed"
	FormatJSON     Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatDetailed:
		return FormatDetailed, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want detailed or json)", s)
	}
}

// Printer writes command output in the selected format. JSON output carries
// data only; headers, progress and styling are dropped.
type Printer struct {
	out    io.Writer
	width  int
	format Format
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer, format Format) *Printer {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = FormatDetailed
	}
	return &Printer{
		out:    w,
		width:  GetTerminalWidth(),
		format: format,
	}
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// JSON reports whether the printer emits JSON
func (p *Printer) JSON() bool {
	return p.format == FormatJSON
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintJSON writes v as indented JSON
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintHeader prints a command header box (detailed format only)
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	if p.JSON() {
		return
	}
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintIngredients prints a detected ingredient list
func (p *Printer) PrintIngredients(ingredients []string) error {
	if p.JSON() {
		if ingredients == nil {
			ingredients = []string{}
		}
		return p.PrintJSON(recipeapi.DetectResult{DetectedIngredients: ingredients})
	}

	p.Println(SectionTitleStyle.Render(fmt.Sprintf("Detected ingredients (%d)", len(ingredients))))
	p.Println(RenderIngredients(ingredients, -1))
	return nil
}

// PrintRecipe prints a recipe
func (p *Printer) PrintRecipe(recipe *recipeapi.Recipe) error {
	if p.JSON() {
		return p.PrintJSON(recipe)
	}
	p.Println(RenderRecipe(recipe, p.width))
	return nil
}

// PrintScan prints a combined detection and recipe result
func (p *Printer) PrintScan(result *recipeapi.ScanResult) error {
	if p.JSON() {
		return p.PrintJSON(result)
	}
	if err := p.PrintIngredients(result.DetectedIngredients); err != nil {
		return err
	}
	p.Newline()
	return p.PrintRecipe(result.Recipe)
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	if p.JSON() {
		return
	}
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning box
func (p *Printer) PrintWarning(title, message string, hints []string) {
	if p.JSON() {
		return
	}
	p.Println(NewWarningResult(title, message, hints).SetWidth(p.width).Render())
}

// PrintError prints err as a failure box. Service errors get their short
// message and troubleshooting hints. In JSON format it writes {"error": ...}.
func (p *Printer) PrintError(title string, err error) {
	if err == nil {
		return
	}
	if p.JSON() {
		_ = p.PrintJSON(recipeapi.ErrorResponse{Error: recipeapi.ShortMessage(err)})
		return
	}

	result := NewFailureResult(title, err, recipeapi.TroubleshootingHint(err))
	if recipeapi.IsNetworkError(err) || recipeapi.IsServiceError(err) || recipeapi.IsMalformedError(err) {
		result.Message = "Error: " + recipeapi.ShortMessage(err)
	}
	p.Println(result.SetWidth(p.width).Render())
}
