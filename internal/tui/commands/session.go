// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/session"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

// InitSessionCmd resolves the persisted session.
func InitSessionCmd(g *session.Guard) tea.Cmd {
	return func() tea.Msg {
		return tui.SessionInitMsg{Status: g.Init(context.Background())}
	}
}

// LoginCmd exchanges credentials for a session.
func LoginCmd(g *session.Guard, email, password string) tea.Cmd {
	return func() tea.Msg {
		id, err := g.Login(context.Background(), email, password)
		return tui.AuthResultMsg{Identity: id, Err: err}
	}
}

// RegisterCmd creates an account and signs in.
func RegisterCmd(g *session.Guard, r session.Registration) tea.Cmd {
	return func() tea.Msg {
		id, err := g.Register(context.Background(), r)
		return tui.AuthResultMsg{Identity: id, Err: err}
	}
}

// UpdateRoleCmd saves the learner's role.
func UpdateRoleCmd(g *session.Guard, role domain.Role) tea.Cmd {
	return func() tea.Msg {
		return tui.RoleSavedMsg{Err: g.UpdateRole(context.Background(), role)}
	}
}

// RefreshProfileCmd re-reads points and level.
func RefreshProfileCmd(g *session.Guard) tea.Cmd {
	return func() tea.Msg {
		return tui.ProfileRefreshedMsg{Err: g.RefreshProfile(context.Background())}
	}
}
