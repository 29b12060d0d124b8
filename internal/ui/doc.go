// Package ui renders one-shot command output for the prep CLI.
//
// These components follow a "run once and exit" pattern: they print styled
// boxes and lists with Lipgloss but never wait for input. The interactive
// screens live in internal/tui, which reuses RenderRecipe and
// RenderIngredients so both surfaces show recipes the same way.
//
// # Components
//
//   - Header: command banner with ordered parameters
//   - Progress: progress bar and step list
//   - Result: success, failure and warning boxes with troubleshooting tips
//   - Printer: format-aware output (detailed or json)
//   - Runner: header → steps → result orchestration for multi-step commands
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout, ui.FormatDetailed)
//	runner := ui.NewRunner(p, ui.RunnerConfig{
//	    Title:   "Cook",
//	    Command: "prep cook fridge.jpg",
//	    Steps:   []string{"Loading photo", "Detecting ingredients", "Generating recipe"},
//	})
//
//	err := runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "412 KB")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// zap logging is silent unless PREP_LOG_LEVEL or --log-level is set, so the
// curated output here is not interleaved with log lines.
package ui
