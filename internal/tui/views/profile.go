package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillforge-dev/skillforge/internal/catalog"
	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/session"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

// ProfileModel shows the learner's identity and progress across tracks.
type ProfileModel struct {
	identity *domain.Identity
	tracks   []catalog.TrackProgress
	loading  bool
	err      string
	width    int
	height   int
}

// NewProfileModel creates the profile view waiting for the track overview.
func NewProfileModel(identity *domain.Identity, width, height int) ProfileModel {
	return ProfileModel{identity: identity, loading: true, width: width, height: height}
}

// Init returns the initial command for the profile view.
func (m ProfileModel) Init() tea.Cmd {
	return nil
}

// SetIdentity updates the identity after a profile refresh.
func (m *ProfileModel) SetIdentity(id *domain.Identity) {
	m.identity = id
}

// Update handles messages for the profile view.
func (m ProfileModel) Update(msg tea.Msg) (ProfileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tui.OverviewLoadedMsg:
		m.loading = false
		m.tracks = msg.Tracks
		m.err = ErrorText(msg.Err)

	case tea.KeyMsg:
		if key.Matches(msg, tui.DefaultKeyMap.Escape) {
			return m, func() tea.Msg {
				return tui.NavigateMsg{Screen: session.ScreenCatalog}
			}
		}
	}
	return m, nil
}

// View renders the profile view.
func (m ProfileModel) View() string {
	var b strings.Builder

	if m.identity != nil {
		b.WriteString(tui.TitleStyle.Render(m.identity.Name))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render(m.identity.Email))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Role:   %s\n", m.identity.Role))
		b.WriteString(fmt.Sprintf("Level:  %s\n", m.identity.Level))
		b.WriteString(fmt.Sprintf("Points: %d\n\n", m.identity.Points))
	}

	b.WriteString(tui.TitleStyle.Render("Tracks"))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(tui.DimStyle.Render("Loading..."))
		b.WriteString("\n")
	case m.err != "":
		b.WriteString(tui.ErrorStyle.Render(m.err))
		b.WriteString("\n")
	case len(m.tracks) == 0:
		b.WriteString(tui.DimStyle.Render("No tracks yet."))
		b.WriteString("\n")
	}
	for _, t := range m.tracks {
		pct := domain.ProgressPercent(t.CompletedTasks, t.TotalTasks)
		line := fmt.Sprintf("%-28s %s %3d%%", t.Name, tui.ProgressBar(pct, 16), pct)
		if t.NextUp != "" {
			line += tui.DimStyle.Render("  next: " + t.NextUp)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Esc: Back · m: Ask BRO · L: Log out"))
	return tui.BoxStyle.Render(b.String())
}
