// Package ui provides terminal output helpers for the skillforge CLI.
// This file implements the step display shown while a command waits on the
// microphone or the backend.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// StepStatus is the state of one step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepActive
	StepDone
	StepFailed
)

// Step is one line of the display.
type Step struct {
	ID      string
	Label   string
	Status  StepStatus
	Elapsed time.Duration
	started time.Time
}

// Progress prints a list of steps. On a terminal the list is redrawn in
// place; otherwise one line is written per status change.
type Progress struct {
	mu          sync.Mutex
	w           io.Writer
	title       string
	steps       []*Step
	index       map[string]int
	isTTY       bool
	linesDrawn  int
	lastPrinted map[string]StepStatus
}

// NewProgress creates a display writing to w.
func NewProgress(w io.Writer, title string) *Progress {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &Progress{
		w:           w,
		title:       title,
		index:       make(map[string]int),
		isTTY:       isTTY,
		lastPrinted: make(map[string]StepStatus),
	}
}

// Add registers a pending step.
func (p *Progress) Add(id, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index[id] = len(p.steps)
	p.steps = append(p.steps, &Step{ID: id, Label: label})
}

// Begin marks a step active and starts its clock.
func (p *Progress) Begin(id string) { p.set(id, StepActive) }

// Done marks a step finished.
func (p *Progress) Done(id string) { p.set(id, StepDone) }

// Fail marks a step failed.
func (p *Progress) Fail(id string) { p.set(id, StepFailed) }

func (p *Progress) set(id string, status StepStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.index[id]
	if !ok {
		return
	}
	step := p.steps[idx]
	step.Status = status
	switch status {
	case StepActive:
		step.started = time.Now()
	case StepDone, StepFailed:
		if !step.started.IsZero() {
			step.Elapsed = time.Since(step.started)
		}
	}
	p.render()
}

// Steps returns a snapshot of every step.
func (p *Progress) Steps() []Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Step, len(p.steps))
	for i, s := range p.steps {
		out[i] = *s
	}
	return out
}

// Finish moves the cursor below the redrawn block.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isTTY && p.linesDrawn > 0 {
		fmt.Fprint(p.w, "\n")
	}
}

func (p *Progress) render() {
	if !p.isTTY {
		p.renderPlain()
		return
	}
	p.renderTTY()
}

func (p *Progress) renderTTY() {
	if p.linesDrawn > 0 {
		fmt.Fprintf(p.w, "\033[%dA", p.linesDrawn)
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("\033[2K\033[1m%s\033[0m\n", p.title))
	for _, step := range p.steps {
		buf.WriteString("\033[2K")
		buf.WriteString(formatStepLine(step))
		buf.WriteString("\n")
	}
	fmt.Fprint(p.w, buf.String())
	p.linesDrawn = len(p.steps) + 1
}

// renderPlain prints only transitions so piped output has no repeats.
func (p *Progress) renderPlain() {
	for _, step := range p.steps {
		if step.Status == StepPending {
			continue
		}
		if prev, seen := p.lastPrinted[step.ID]; seen && prev == step.Status {
			continue
		}
		fmt.Fprintln(p.w, formatStepLinePlain(step))
		p.lastPrinted[step.ID] = step.Status
	}
}

func formatStepLine(step *Step) string {
	return fmt.Sprintf("  %s %s  %s", statusIcon(step.Status), step.Label, statusDetail(step))
}

func formatStepLinePlain(step *Step) string {
	var status string
	switch step.Status {
	case StepPending:
		status = "PENDING"
	case StepActive:
		status = "..."
	case StepDone:
		status = fmt.Sprintf("DONE [%s]", formatDuration(step.Elapsed))
	case StepFailed:
		status = "FAILED"
	}
	return fmt.Sprintf("%s %s", step.Label, status)
}

func statusIcon(status StepStatus) string {
	switch status {
	case StepDone:
		return "\033[32m✓\033[0m"
	case StepActive:
		return "\033[33m●\033[0m"
	case StepFailed:
		return "\033[31m✗\033[0m"
	default:
		return "\033[90m○\033[0m"
	}
}

func statusDetail(step *Step) string {
	switch step.Status {
	case StepDone:
		return fmt.Sprintf("\033[90m[%s]\033[0m", formatDuration(step.Elapsed))
	case StepActive:
		return fmt.Sprintf("\033[33m[%s]\033[0m", formatDuration(time.Since(step.started)))
	case StepFailed:
		return "\033[31m[failed]\033[0m"
	default:
		return ""
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
