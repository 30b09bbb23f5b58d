package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

// RoleSelectModel is the one-time role picker shown before the catalog.
type RoleSelectModel struct {
	cursor  int
	name    string
	loading bool
	err     string
	width   int
	height  int
}

// NewRoleSelectModel creates the picker greeting the learner by first name.
func NewRoleSelectModel(firstName string, width, height int) RoleSelectModel {
	return RoleSelectModel{name: firstName, width: width, height: height}
}

// Init returns the initial command for the picker.
func (m RoleSelectModel) Init() tea.Cmd {
	return nil
}

// SetError ends the pending save and shows msg.
func (m *RoleSelectModel) SetError(msg string) {
	m.loading = false
	m.err = msg
}

// Selected is the highlighted role.
func (m RoleSelectModel) Selected() domain.Role {
	return domain.RoleCatalog[m.cursor].Role
}

// Update handles messages for the picker.
func (m RoleSelectModel) Update(msg tea.Msg) (RoleSelectModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, tui.DefaultKeyMap.Down):
			if m.cursor < len(domain.RoleCatalog)-1 {
				m.cursor++
			}
		case key.Matches(msg, tui.DefaultKeyMap.Enter):
			m.loading = true
			m.err = ""
			role := m.Selected()
			return m, func() tea.Msg {
				return tui.SelectRoleMsg{Role: role}
			}
		case key.Matches(msg, tui.DefaultKeyMap.Logout):
			return m, func() tea.Msg { return tui.LogoutMsg{} }
		}
	}
	return m, nil
}

// View renders the picker.
func (m RoleSelectModel) View() string {
	var b strings.Builder

	greeting := "Choose your path"
	if m.name != "" {
		greeting = fmt.Sprintf("Hey %s, choose your path", m.name)
	}
	b.WriteString(tui.TitleStyle.Render(greeting))
	b.WriteString("\n\n")

	for i, info := range domain.RoleCatalog {
		cursor := "  "
		title := info.Title
		if i == m.cursor {
			cursor = tui.IconCursor + " "
			title = tui.SelectedStyle.Render(title)
		}
		b.WriteString(cursor + title + "\n")
		b.WriteString("    " + tui.DimStyle.Render(info.Description) + "\n")
		b.WriteString("    " + tui.DimStyle.Render(strings.Join(info.Tracks, " · ")) + "\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(tui.DimStyle.Render("Saving..."))
	case m.err != "":
		b.WriteString(tui.ErrorStyle.Render(m.err))
	}
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("↑/↓: Move · Enter: Continue · L: Log out"))

	return tui.BoxStyle.Render(b.String())
}
