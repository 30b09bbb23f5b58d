package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skillforge-dev/skillforge/internal/session"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldCount
)

// SignInModel is the login and sign-up form.
type SignInModel struct {
	inputs   []textinput.Model
	register bool
	focus    int
	loading  bool
	err      string
	width    int
	height   int
}

// NewSignInModel creates the form in login mode.
func NewSignInModel(width, height int) SignInModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 128
		ti.Width = 36
		inputs[i] = ti
	}
	inputs[fieldName].Placeholder = "Full name"
	inputs[fieldEmail].Placeholder = "you@example.com"
	inputs[fieldPassword].Placeholder = "Password"
	inputs[fieldConfirm].Placeholder = "Confirm password"
	for _, i := range []int{fieldPassword, fieldConfirm} {
		inputs[i].EchoMode = textinput.EchoPassword
		inputs[i].EchoCharacter = '•'
	}

	m := SignInModel{inputs: inputs, width: width, height: height}
	m.focusField(m.fields()[0])
	return m
}

// Init returns the initial command for the form.
func (m SignInModel) Init() tea.Cmd {
	return textinput.Blink
}

// fields lists the visible inputs in tab order.
func (m SignInModel) fields() []int {
	if m.register {
		return []int{fieldName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *SignInModel) focusField(field int) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = field
	m.inputs[field].Focus()
}

func (m *SignInModel) moveFocus(delta int) {
	fields := m.fields()
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.focusField(fields[pos])
}

// Registering reports whether the form is in sign-up mode.
func (m SignInModel) Registering() bool {
	return m.register
}

// SetError ends the pending request and shows msg.
func (m *SignInModel) SetError(msg string) {
	m.loading = false
	m.err = msg
}

// Update handles messages for the form.
func (m SignInModel) Update(msg tea.Msg) (SignInModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Toggle):
			m.register = !m.register
			m.err = ""
			m.focusField(m.fields()[0])
			return m, nil
		case msg.String() == "shift+tab" || msg.String() == tui.KeyUp:
			m.moveFocus(-1)
			return m, nil
		case msg.String() == tui.KeyTab || msg.String() == tui.KeyDown:
			m.moveFocus(1)
			return m, nil
		case msg.String() == tui.KeyEnter:
			fields := m.fields()
			if m.focus != fields[len(fields)-1] {
				m.moveFocus(1)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates locally and emits the request. A validation failure leaves
// the form unchanged and never reaches the network.
func (m SignInModel) submit() (SignInModel, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	if !m.register {
		m.loading = true
		m.err = ""
		return m, func() tea.Msg {
			return tui.LoginRequestMsg{Email: email, Password: password}
		}
	}

	reg := session.Registration{
		Name:     strings.TrimSpace(m.inputs[fieldName].Value()),
		Email:    email,
		Password: password,
		Confirm:  m.inputs[fieldConfirm].Value(),
	}
	if err := session.ValidateRegistration(reg); err != nil {
		m.err = ErrorText(err)
		return m, nil
	}
	m.loading = true
	m.err = ""
	return m, func() tea.Msg {
		return tui.RegisterRequestMsg{Registration: reg}
	}
}

// View renders the form.
func (m SignInModel) View() string {
	var b strings.Builder

	title := "Welcome back"
	if m.register {
		title = "Create your account"
	}
	b.WriteString(tui.TitleStyle.Render("SkillForge · " + title))
	b.WriteString("\n\n")

	for _, f := range m.fields() {
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(tui.DimStyle.Render("Signing in..."))
	case m.err != "":
		b.WriteString(tui.ErrorStyle.Render(m.err))
	}
	b.WriteString("\n\n")

	toggle := "ctrl+t: Create an account"
	if m.register {
		toggle = "ctrl+t: I already have an account"
	}
	b.WriteString(tui.DimStyle.Render("Tab: Next field · Enter: Continue · " + toggle))

	return tui.BoxStyle.Width(lipgloss.Width(b.String()) + 4).Render(b.String())
}
