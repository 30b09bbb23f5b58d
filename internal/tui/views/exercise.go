package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skillforge-dev/skillforge/internal/attempt"
	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/logger"
	"github.com/skillforge-dev/skillforge/internal/mentor"
	"github.com/skillforge-dev/skillforge/internal/session"
	"github.com/skillforge-dev/skillforge/internal/tui"
	"github.com/skillforge-dev/skillforge/internal/tui/commands"
)

// sideBySideWidth is the terminal width at which the mentor pane moves
// beside the editor instead of below it.
const sideBySideWidth = 120

type pane int

const (
	paneEditor pane = iota
	paneChat
)

// ExerciseDeps build the exercise-scoped mentor once the title is known.
type ExerciseDeps struct {
	Mentor     mentor.Service
	Device     audio.Device
	RecordOpts []audio.Option
	Log        *logger.Logger
}

// ExerciseModel is the workspace for one attempt: editor, output, hints,
// solution and a mentor pane scoped to the exercise.
type ExerciseModel struct {
	ctrl *attempt.Controller
	deps ExerciseDeps

	editor    textarea.Model
	chat      ChatModel
	chatReady bool
	focus     pane

	output     attempt.RunOutput
	hasOutput  bool
	notice     string
	noticeErr  bool
	running    bool
	submitting bool
	spinner    spinner.Model

	width  int
	height int
}

// NewExerciseModel creates the workspace in the loading state.
func NewExerciseModel(ctrl *attempt.Controller, deps ExerciseDeps, width, height int) ExerciseModel {
	ed := textarea.New()
	ed.ShowLineNumbers = true
	ed.CharLimit = 0
	ed.MaxHeight = 0
	ed.Placeholder = "# write your solution here"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.TitleStyle

	m := ExerciseModel{
		ctrl:    ctrl,
		deps:    deps,
		editor:  ed,
		spinner: sp,
	}
	m.setSize(width, height)
	return m
}

// Init starts the spinner; the app issues the load.
func (m ExerciseModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Teardown releases resources held by the embedded mentor.
func (m *ExerciseModel) Teardown() {
	if m.chatReady {
		m.chat.Teardown()
	}
}

func (m ExerciseModel) sideBySide() bool {
	return m.width >= sideBySideWidth
}

func (m *ExerciseModel) setSize(width, height int) {
	m.width, m.height = width, height
	editorWidth := width - 6
	chatWidth := width - 2
	chatHeight := height / 3
	if m.sideBySide() {
		editorWidth = width*3/5 - 6
		chatWidth = width - width*3/5 - 2
		chatHeight = height - 2
	}
	if editorWidth < 30 {
		editorWidth = 30
	}
	editorHeight := height/2 - 6
	if editorHeight < 6 {
		editorHeight = 6
	}
	m.editor.SetWidth(editorWidth)
	m.editor.SetHeight(editorHeight)
	if m.chatReady {
		m.chat.SetSize(chatWidth, chatHeight)
	}
}

func (m *ExerciseModel) setFocus(p pane) {
	m.focus = p
	if p == paneChat && m.chatReady {
		m.editor.Blur()
		m.chat.Focus()
		return
	}
	m.focus = paneEditor
	m.editor.Focus()
	if m.chatReady {
		m.chat.Blur()
	}
}

func (m *ExerciseModel) loaded() {
	ex, _ := m.ctrl.Exercise()
	m.editor.SetValue(m.ctrl.Code())

	conv := mentor.NewForExercise(m.deps.Mentor, ex.Title, mentor.WithLogger(m.deps.Log))
	var rec *audio.Recorder
	if m.deps.Device != nil {
		rec = audio.NewRecorder(m.deps.Device, conv.VoiceHandoff(), m.deps.RecordOpts...)
	}
	m.chat = NewChatModel(conv, rec, false, 40, 12)
	m.chatReady = true
	m.setSize(m.width, m.height)
	m.setFocus(paneEditor)
}

func (m *ExerciseModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// Update handles messages for the workspace.
func (m ExerciseModel) Update(msg tea.Msg) (ExerciseModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tui.ExerciseLoadedMsg:
		if msg.Err == nil {
			m.loaded()
			return m, m.chat.Init()
		}
		return m, nil

	case tui.RunDoneMsg:
		m.running = false
		if errors.Is(msg.Err, attempt.ErrRunInFlight) {
			return m, nil
		}
		m.output = msg.Output
		m.hasOutput = true
		return m, nil

	case tui.SubmitDoneMsg:
		m.submitting = false
		switch {
		case errors.Is(msg.Err, attempt.ErrSubmitInFlight):
		case msg.Err != nil:
			m.setNotice("Submission failed. "+ErrorText(msg.Err), true)
		case msg.Outcome.Awarded():
			m.setNotice(fmt.Sprintf("%s +%d points", msg.Outcome.Message, msg.Outcome.PointsEarned), false)
		default:
			m.setNotice(msg.Outcome.Message, false)
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State() == attempt.StateLoading || m.running || m.submitting {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		if m.chatReady {
			var chatCmd tea.Cmd
			m.chat, chatCmd = m.chat.Update(msg)
			cmd = tea.Batch(cmd, chatCmd)
		}
		return m, cmd

	case tui.MentorReplyMsg, tui.RecordingStartedMsg:
		if m.chatReady {
			m.chat, cmd = m.chat.Update(msg)
		}
		return m, cmd

	case tea.KeyMsg:
		if !m.chatReady {
			if key.Matches(msg, tui.DefaultKeyMap.Escape) {
				return m, navigateCatalog
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Escape):
			m.Teardown()
			return m, navigateCatalog
		case key.Matches(msg, tui.DefaultKeyMap.Tab):
			if m.focus == paneEditor {
				m.setFocus(paneChat)
			} else {
				m.setFocus(paneEditor)
			}
			return m, nil
		case key.Matches(msg, tui.DefaultKeyMap.Run):
			if m.running {
				return m, nil
			}
			m.running = true
			return m, tea.Batch(commands.RunCodeCmd(m.ctrl), m.spinner.Tick)
		case key.Matches(msg, tui.DefaultKeyMap.Submit):
			if m.submitting {
				return m, nil
			}
			m.submitting = true
			m.setNotice("", false)
			return m, tea.Batch(commands.SubmitCmd(m.ctrl), m.spinner.Tick)
		case key.Matches(msg, tui.DefaultKeyMap.Hint):
			if _, err := m.ctrl.RequestHint(); errors.Is(err, attempt.ErrHintsExhausted) {
				m.setNotice(attempt.HintsExhaustedMessage, false)
			}
			return m, nil
		case key.Matches(msg, tui.DefaultKeyMap.Solution):
			_, _ = m.ctrl.RevealSolution()
			return m, nil
		}

		if m.focus == paneChat {
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		m.editor, cmd = m.editor.Update(msg)
		m.ctrl.SetCode(m.editor.Value())
		return m, cmd
	}

	if m.chatReady && m.focus == paneEditor {
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

func navigateCatalog() tea.Msg {
	return tui.NavigateMsg{Screen: session.ScreenCatalog}
}

// View renders the workspace.
func (m ExerciseModel) View() string {
	ex, ok := m.ctrl.Exercise()
	if !ok {
		return tui.BoxStyle.Render(m.spinner.View() + " Loading exercise...")
	}

	var left strings.Builder

	header := tui.TitleStyle.Render(ex.Title)
	if ex.Difficulty != "" {
		header += "  " + tui.DifficultyStyle(ex.Difficulty).Render(string(ex.Difficulty))
	}
	header += tui.DimStyle.Render(fmt.Sprintf("  %d pts", ex.Points))
	if ex.Completed {
		header += "  " + tui.SuccessStyle.Render("✓ Completed")
	}
	left.WriteString(header + "\n")

	descWidth := m.editor.Width() + 4
	left.WriteString(lipgloss.NewStyle().Width(descWidth).Render(ex.Description))
	left.WriteString("\n\n")

	editorStyle := tui.PaneStyle
	if m.focus == paneEditor {
		editorStyle = tui.FocusedPaneStyle
	}
	left.WriteString(editorStyle.Render(m.editor.View()))
	left.WriteString("\n")

	left.WriteString(m.renderOutput())
	left.WriteString(m.renderHints(descWidth))

	if m.notice != "" {
		style := tui.SuccessStyle
		if m.noticeErr {
			style = tui.ErrorStyle
		}
		left.WriteString(style.Render(m.notice) + "\n")
	}

	left.WriteString(tui.DimStyle.Render("ctrl+r: Run · ctrl+s: Submit · ctrl+g: Hint · ctrl+o: Solution · Tab: Switch pane · Esc: Back"))

	if m.sideBySide() {
		return lipgloss.JoinHorizontal(lipgloss.Top, left.String(), m.chat.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, left.String(), m.chat.View())
}

func (m ExerciseModel) renderOutput() string {
	switch {
	case m.running:
		return m.spinner.View() + " Running...\n"
	case m.submitting:
		return m.spinner.View() + " Submitting...\n"
	case !m.hasOutput:
		return ""
	}
	style := tui.SuccessStyle
	if m.output.IsError {
		style = tui.ErrorStyle
	}
	return tui.DimStyle.Render("Output") + "\n" + style.Render(m.output.Text) + "\n"
}

func (m ExerciseModel) renderHints(width int) string {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(width)
	for _, h := range m.ctrl.RevealedHints() {
		b.WriteString(tui.WarningStyle.Render(wrap.Render(h.String())))
		b.WriteString("\n")
	}
	if m.ctrl.SolutionRevealed() {
		ex, _ := m.ctrl.Exercise()
		b.WriteString(tui.TitleStyle.Render("Solution") + "\n")
		b.WriteString(wrap.Render(ex.SolutionExplanation) + "\n")
	}
	return b.String()
}
