package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillforge-dev/skillforge/internal/catalog"
	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/session"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

// CatalogModel lists the exercises of one track.
type CatalogModel struct {
	view     catalog.View
	identity *domain.Identity
	cursor   int
	loading  bool
	notice   string
	spinner  spinner.Model
	width    int
	height   int
}

// NewCatalogModel creates the catalog in the loading state.
func NewCatalogModel(identity *domain.Identity, width, height int) CatalogModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.TitleStyle
	return CatalogModel{
		identity: identity,
		loading:  true,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init starts the loading spinner.
func (m CatalogModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetIdentity updates the header after a profile refresh.
func (m *CatalogModel) SetIdentity(id *domain.Identity) {
	m.identity = id
}

// SetNotice shows a one-line message above the list.
func (m *CatalogModel) SetNotice(notice string) {
	m.notice = notice
}

// SetView replaces the list, typically with the catalog's patched cache.
func (m *CatalogModel) SetView(v catalog.View) {
	m.view = v
	m.loading = false
	if m.cursor >= len(v.Exercises) {
		m.cursor = 0
	}
}

// Update handles messages for the catalog.
func (m CatalogModel) Update(msg tea.Msg) (CatalogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tui.CatalogLoadedMsg:
		m.SetView(msg.View)
		if msg.Err != nil {
			m.notice = "Could not load exercises. Press r to retry."
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

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
			if m.cursor < len(m.view.Exercises)-1 {
				m.cursor++
			}
		case key.Matches(msg, tui.DefaultKeyMap.Enter):
			if len(m.view.Exercises) == 0 {
				return m, nil
			}
			id := m.view.Exercises[m.cursor].ID
			return m, func() tea.Msg {
				return tui.NavigateMsg{Screen: session.ScreenExercise, ExerciseID: id}
			}
		case msg.String() == "r":
			m.loading = true
			m.notice = ""
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				return tui.NavigateMsg{Screen: session.ScreenCatalog}
			})
		}
	}
	return m, nil
}

// View renders the catalog.
func (m CatalogModel) View() string {
	var b strings.Builder

	if m.identity != nil {
		b.WriteString(tui.TitleStyle.Render(fmt.Sprintf("Hey %s", m.identity.FirstName())))
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("  %s · %d points · %s",
			m.identity.Role, m.identity.Points, m.identity.Level)))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading exercises...")
		return tui.BoxStyle.Render(b.String())
	}

	if m.notice != "" {
		b.WriteString(tui.WarningStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	if m.view.Empty() {
		b.WriteString(tui.DimStyle.Render("No exercises available yet."))
	} else {
		b.WriteString(tui.TitleStyle.Render(m.view.Name))
		b.WriteString("\n")
		if m.view.Description != "" {
			b.WriteString(tui.DimStyle.Render(m.view.Description))
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s %d%% (%d/%d)\n\n",
			tui.ProgressBar(m.view.Percent(), 24), m.view.Percent(), m.view.Completed, m.view.Total))

		for i, ex := range m.view.Exercises {
			b.WriteString(m.renderRow(i, ex))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("↑/↓: Move · Enter: Open · m: Ask BRO · p: Profile · r: Reload · L: Log out"))
	return tui.BoxStyle.Render(b.String())
}

func (m CatalogModel) renderRow(i int, ex domain.Exercise) string {
	cursor := "  "
	title := ex.Title
	if i == m.cursor {
		cursor = tui.IconCursor + " "
		title = tui.SelectedStyle.Render(title)
	}
	icon := tui.IconOpen
	if ex.Completed {
		icon = tui.IconCompleted
	}

	row := fmt.Sprintf("%s%s %s", cursor, icon, title)
	if ex.Difficulty != "" {
		row += "  " + tui.DifficultyStyle(ex.Difficulty).Render(string(ex.Difficulty))
	}
	row += tui.DimStyle.Render(fmt.Sprintf("  %d pts", ex.Points))
	if ex.Attempts > 0 {
		row += tui.DimStyle.Render(fmt.Sprintf(" · %d attempts", ex.Attempts))
	}
	return row
}
