package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/mentor"
	"github.com/skillforge-dev/skillforge/internal/tui"
	"github.com/skillforge-dev/skillforge/internal/tui/commands"
)

// ChatModel renders one mentor conversation. The floating mentor adds mode
// switching and quick prompts; the exercise pane does not.
type ChatModel struct {
	conv     *mentor.Conversation
	rec      *audio.Recorder
	floating bool

	textarea  textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model
	isLoading bool
	recording bool
	status    string
	focused   bool
	width     int
	height    int
}

// NewChatModel creates a chat view over conv. rec may be nil when no
// microphone is configured.
func NewChatModel(conv *mentor.Conversation, rec *audio.Recorder, floating bool, width, height int) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask BRO anything... (Enter to send)"
	ta.CharLimit = 2000
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	keyMap := ta.KeyMap
	keyMap.InsertNewline = tui.DefaultKeyMap.NewLine
	ta.KeyMap = keyMap

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.MentorStyle

	m := ChatModel{
		conv:     conv,
		rec:      rec,
		floating: floating,
		textarea: ta,
		viewport: viewport.New(20, 5),
		spinner:  sp,
	}
	m.SetSize(width, height)
	m.Focus()
	return m
}

// ConversationID identifies which conversation results belong to.
func (m ChatModel) ConversationID() string {
	return m.conv.ID()
}

// SetSize fits the transcript and input into width x height.
func (m *ChatModel) SetSize(width, height int) {
	m.width, m.height = width, height
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	reserved := 8
	if m.floating {
		reserved += 2
	}
	vpHeight := height - reserved
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = inner
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(inner)
	m.refresh()
}

// Focus routes keys to the input.
func (m *ChatModel) Focus() {
	m.focused = true
	m.textarea.Focus()
}

// Blur stops routing keys to the input.
func (m *ChatModel) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// Teardown releases the microphone when the view goes away.
func (m *ChatModel) Teardown() {
	if m.rec != nil {
		m.rec.Teardown()
	}
	m.recording = false
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(formatTranscript(m.conv.Transcript(), m.viewport.Width))
	m.viewport.GotoBottom()
}

// Init returns the initial command for the chat view.
func (m ChatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m ChatModel) send(content string) (ChatModel, tea.Cmd) {
	if strings.TrimSpace(content) == "" {
		return m, nil
	}
	if m.conv.Busy() || m.recording {
		m.status = "BRO is still replying..."
		return m, nil
	}
	m.textarea.Reset()
	m.isLoading = true
	m.status = ""
	return m, tea.Batch(commands.SendTextCmd(m.conv, content), m.spinner.Tick)
}

func (m ChatModel) toggleRecording() (ChatModel, tea.Cmd) {
	if m.rec == nil {
		m.status = "Voice input is not configured."
		return m, nil
	}
	if m.recording {
		m.recording = false
		m.isLoading = true
		m.status = ""
		return m, tea.Batch(commands.StopRecordingCmd(m.conv, m.rec), m.spinner.Tick)
	}
	if m.conv.Busy() {
		m.status = "BRO is still replying..."
		return m, nil
	}
	m.status = ""
	return m, commands.StartRecordingCmd(m.conv, m.rec)
}

func (m *ChatModel) toggleMode() {
	if m.conv.Context() == mentor.ModeResume {
		m.conv.SetContext(mentor.ModeGeneral)
	} else {
		m.conv.SetContext(mentor.ModeResume)
	}
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch {
		case msg.String() == tui.KeyEnter:
			return m.send(m.textarea.Value())
		case key.Matches(msg, tui.DefaultKeyMap.Record):
			return m.toggleRecording()
		case m.floating && key.Matches(msg, tui.DefaultKeyMap.Mode):
			m.toggleMode()
			return m, nil
		case m.floating && key.Matches(msg, tui.DefaultKeyMap.QuickStart):
			i := int(msg.String()[len(msg.String())-1] - '1')
			// The prompt only fills the input so it can be edited before Enter.
			if i >= 0 && i < len(mentor.QuickPrompts) {
				m.textarea.SetValue(mentor.QuickPrompts[i].Message)
				m.textarea.CursorEnd()
			}
			return m, nil
		}

	case tui.MentorReplyMsg:
		if msg.ConversationID != m.conv.ID() {
			return m, nil
		}
		m.isLoading = false
		m.status = ErrorText(msg.Err)
		m.refresh()
		return m, nil

	case tui.RecordingStartedMsg:
		if msg.ConversationID != m.conv.ID() {
			return m, nil
		}
		if msg.Err != nil {
			m.status = ErrorText(msg.Err)
			return m, nil
		}
		m.recording = true
		return m, m.spinner.Tick

	case spinner.TickMsg:
		if m.isLoading || m.recording {
			// the transcript grows from the command goroutine
			m.refresh()
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.focused && !m.isLoading {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the chat view.
func (m ChatModel) View() string {
	var b strings.Builder

	header := "BRO · " + m.conv.Context()
	b.WriteString(tui.TitleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.recording:
		b.WriteString(tui.ErrorStyle.Render("● Recording... ctrl+v to send"))
	case m.isLoading:
		b.WriteString(fmt.Sprintf("%s BRO is typing...", m.spinner.View()))
	case m.status != "":
		b.WriteString(tui.WarningStyle.Render(m.status))
	}
	b.WriteString("\n")

	if m.isLoading {
		b.WriteString(tui.DimStyle.Render(m.textarea.View()))
	} else {
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n")

	if m.floating {
		labels := make([]string, len(mentor.QuickPrompts))
		for i, p := range mentor.QuickPrompts {
			labels[i] = fmt.Sprintf("alt+%d %s", i+1, p.Label)
		}
		b.WriteString(tui.DimStyle.Render(strings.Join(labels, " · ")))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render("Enter: Send · ctrl+v: Voice · ctrl+e: Switch mode · Esc: Close"))
	} else {
		b.WriteString(tui.DimStyle.Render("Enter: Send · ctrl+v: Voice"))
	}

	style := tui.PaneStyle
	if m.focused {
		style = tui.FocusedPaneStyle
	}
	return style.Width(m.width - 2).Render(b.String())
}

// formatTranscript renders the conversation for the viewport.
func formatTranscript(messages []mentor.Message, width int) string {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(width)

	for i, msg := range messages {
		switch msg.Role {
		case mentor.RoleUser:
			b.WriteString(tui.UserStyle.Render("You: "))
		default:
			b.WriteString(tui.MentorStyle.Render("BRO: "))
		}
		content := msg.Content
		if msg.Pending {
			content = tui.DimStyle.Render(content)
		}
		b.WriteString(wrap.Render(content))
		if i < len(messages)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
