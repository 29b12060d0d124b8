package ui

import (
	"fmt"
	"time"
)

// RunnerConfig holds configuration for a multi-step command
type RunnerConfig struct {
	Title   string  // e.g., "Cook"
	Command string  // e.g., "prep cook fridge.jpg"
	Params  []Param // Shown in the header
	Steps   []string
}

// Runner prints header, then one line per step as it settles, then a result
// box. In JSON format only the operation's own output is written.
type Runner struct {
	config   RunnerConfig
	printer  *Printer
	progress *Progress
	start    time.Time
}

// NewRunner creates a runner that writes through p
func NewRunner(p *Printer, config RunnerConfig) *Runner {
	progress := NewProgress("", config.Steps...)
	progress.SetWidth(p.Width())
	return &Runner{
		config:   config,
		printer:  p,
		progress: progress,
	}
}

// Progress exposes the step list, mainly for tests
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Operation is the work a Runner drives; it reports through onStep and
// returns detail lines for the success box
type Operation func(onStep StepCallback) ([]Param, error)

// Run executes op. On failure the error is printed with PrintError and
// returned; in JSON format that is the only output.
func (r *Runner) Run(op Operation) error {
	r.start = time.Now()
	r.printer.PrintHeader(r.config.Title, r.config.Command, r.config.Params...)

	details, err := op(r.onStep)
	elapsed := time.Since(r.start).Round(time.Millisecond)

	if r.printer.JSON() {
		r.printer.PrintError(r.config.Title+" failed", err)
		return err
	}
	r.printer.Newline()
	if err != nil {
		r.printer.PrintError(r.config.Title+" failed", err)
		return err
	}

	details = append(details, Param{Key: "Duration", Value: elapsed.String()})
	r.printer.PrintSuccess(r.config.Title+" complete", details...)
	return nil
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	r.progress.UpdateStep(stepNumber, status, message)
	if r.printer.JSON() || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}

	line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
	switch status {
	case StepRunning:
		// Overwritten when the step settles
		if IsTerminal() {
			_, _ = fmt.Fprint(r.printer.out, line+"\r")
		}
	default:
		r.printer.Println(line)
	}
}
