package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillforge-dev/skillforge/internal/attempt"
	"github.com/skillforge-dev/skillforge/internal/catalog"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

// LoadCatalogCmd fetches a track. A failed fetch still yields the (empty) view.
func LoadCatalogCmd(c *catalog.Catalog, trackID string) tea.Cmd {
	return func() tea.Msg {
		v, err := c.Load(context.Background(), trackID)
		return tui.CatalogLoadedMsg{View: v, Err: err}
	}
}

// LoadExerciseCmd fetches the exercise behind an attempt.
func LoadExerciseCmd(ctrl *attempt.Controller, exerciseID string) tea.Cmd {
	return func() tea.Msg {
		return tui.ExerciseLoadedMsg{ExerciseID: exerciseID, Err: ctrl.Load(context.Background())}
	}
}

// RunCodeCmd executes the code buffer in the sandbox.
func RunCodeCmd(ctrl *attempt.Controller) tea.Cmd {
	return func() tea.Msg {
		out, err := ctrl.RunCode(context.Background())
		return tui.RunDoneMsg{Output: out, Err: err}
	}
}

// SubmitCmd sends the code buffer for grading.
func SubmitCmd(ctrl *attempt.Controller) tea.Cmd {
	return func() tea.Msg {
		outcome, err := ctrl.Submit(context.Background())
		return tui.SubmitDoneMsg{Outcome: outcome, Err: err}
	}
}

// OverviewCmd lists every track with its progress.
func OverviewCmd(c *catalog.Catalog) tea.Cmd {
	return func() tea.Msg {
		tracks, err := c.Overview(context.Background())
		return tui.OverviewLoadedMsg{Tracks: tracks, Err: err}
	}
}
