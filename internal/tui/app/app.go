// Package app provides the main TUI application that wires all views together.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skillforge-dev/skillforge/internal/attempt"
	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/mentor"
	"github.com/skillforge-dev/skillforge/internal/session"
	"github.com/skillforge-dev/skillforge/internal/tui"
	"github.com/skillforge-dev/skillforge/internal/tui/commands"
	"github.com/skillforge-dev/skillforge/internal/tui/views"
)

// floatingWidth is the terminal width at which the floating mentor opens
// beside the current screen instead of replacing it.
const floatingWidth = 110

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model
	ready bool

	// View models
	signInView   views.SignInModel
	roleView     views.RoleSelectModel
	catalogView  views.CatalogModel
	exerciseView views.ExerciseModel
	profileView  views.ProfileModel

	ctrl *attempt.Controller

	// Floating mentor, created on first open and kept until sign-out.
	mentorConv *mentor.Conversation
	mentorView views.ChatModel
	mentorOpen bool

	spinner spinner.Model
}

// New creates a new App over the shared services.
func New(deps tui.Deps) *App {
	model := tui.NewModel(deps)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.TitleStyle

	return &App{
		model:      model,
		signInView: views.NewSignInModel(model.Width, model.Height),
		spinner:    sp,
	}
}

// Screen reports the screen currently rendered.
func (a *App) Screen() session.Screen {
	return a.model.Screen
}

// Init restores the persisted session while a neutral indicator shows.
func (a *App) Init() tea.Cmd {
	return tea.Batch(commands.InitSessionCmd(a.model.Guard), a.spinner.Tick)
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	return a, tea.Batch(cmd, a.regate())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		if a.mentorConv != nil {
			a.mentorView.SetSize(a.mentorSize())
		}
		return a.routeToScreen(msg)

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				a.teardown()
				return tea.Quit
			}
			a.model.CtrlCPending = true
			return tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}
		return a.handleKey(msg)

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if !a.ready {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.mentorConv != nil {
			var cmd tea.Cmd
			a.mentorView, cmd = a.mentorView.Update(msg)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, a.routeToScreen(msg))
		return tea.Batch(cmds...)

	case tui.SessionInitMsg:
		a.ready = true
		return a.navigate(a.model.Guard.Landing(), "")

	case tui.NavigateMsg:
		return a.navigate(msg.Screen, msg.ExerciseID)

	case tui.LogoutMsg:
		a.model.Guard.Logout()
		return a.navigate(session.ScreenSignIn, "")

	case tui.LoginRequestMsg:
		return commands.LoginCmd(a.model.Guard, msg.Email, msg.Password)

	case tui.RegisterRequestMsg:
		return commands.RegisterCmd(a.model.Guard, msg.Registration)

	case tui.AuthResultMsg:
		if msg.Err != nil {
			a.signInView.SetError(views.ErrorText(msg.Err))
			return nil
		}
		return a.navigate(a.model.Guard.Landing(), "")

	case tui.SelectRoleMsg:
		return commands.UpdateRoleCmd(a.model.Guard, msg.Role)

	case tui.RoleSavedMsg:
		if msg.Err != nil {
			a.roleView.SetError(views.ErrorText(msg.Err))
			return nil
		}
		return a.navigate(session.ScreenCatalog, "")

	case tui.ExerciseLoadedMsg:
		if msg.Err != nil {
			a.model.Log.Warn("opening exercise", "exercise", msg.ExerciseID, "error", msg.Err)
			cmd := a.navigate(session.ScreenCatalog, "")
			a.catalogView.SetNotice(views.ErrorText(msg.Err))
			return cmd
		}
		return a.routeToScreen(msg)

	case tui.SubmitDoneMsg:
		cmd := a.routeToScreen(msg)
		if msg.Err == nil {
			// the controller already patched the catalog and refreshed points
			a.catalogView.SetView(a.model.Catalog.Current())
			a.catalogView.SetIdentity(a.model.Guard.Identity())
		}
		return cmd

	case tui.ProfileRefreshedMsg:
		a.catalogView.SetIdentity(a.model.Guard.Identity())
		a.profileView.SetIdentity(a.model.Guard.Identity())
		return nil

	case tui.MentorReplyMsg:
		return a.routeMentor(msg.ConversationID, msg)

	case tui.RecordingStartedMsg:
		return a.routeMentor(msg.ConversationID, msg)
	}

	return a.routeToScreen(msg)
}

// handleKey routes keys to the floating mentor or the current screen.
func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.mentorOpen {
		if key.Matches(msg, tui.DefaultKeyMap.Escape) {
			a.closeMentor()
			return nil
		}
		var cmd tea.Cmd
		a.mentorView, cmd = a.mentorView.Update(msg)
		return cmd
	}

	switch a.model.Screen {
	case session.ScreenCatalog, session.ScreenProfile:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Mentor):
			return a.openMentor()
		case key.Matches(msg, tui.DefaultKeyMap.Logout):
			return func() tea.Msg { return tui.LogoutMsg{} }
		case a.model.Screen == session.ScreenCatalog && key.Matches(msg, tui.DefaultKeyMap.Profile):
			return a.navigate(session.ScreenProfile, "")
		}
	}
	return a.routeToScreen(msg)
}

func (a *App) routeMentor(conversationID string, msg tea.Msg) tea.Cmd {
	if a.mentorConv != nil && conversationID == a.mentorConv.ID() {
		var cmd tea.Cmd
		a.mentorView, cmd = a.mentorView.Update(msg)
		return cmd
	}
	return a.routeToScreen(msg)
}

// routeToScreen forwards msg to the current screen's view.
func (a *App) routeToScreen(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.model.Screen {
	case session.ScreenSignIn:
		a.signInView, cmd = a.signInView.Update(msg)
	case session.ScreenRoleSelect:
		a.roleView, cmd = a.roleView.Update(msg)
	case session.ScreenCatalog:
		a.catalogView, cmd = a.catalogView.Update(msg)
	case session.ScreenExercise:
		if a.ctrl != nil {
			a.exerciseView, cmd = a.exerciseView.Update(msg)
		}
	case session.ScreenProfile:
		a.profileView, cmd = a.profileView.Update(msg)
	}
	return cmd
}

// regate re-checks the current screen after every message, so a token the
// backend rejected mid-session lands the learner on sign-in.
func (a *App) regate() tea.Cmd {
	if !a.ready {
		return nil
	}
	d := a.model.Guard.Decide(a.model.Screen)
	if d.Verdict != session.Redirect {
		return nil
	}
	return a.navigate(d.Screen, "")
}

// navigate gates screen through the guard and builds its view.
func (a *App) navigate(screen session.Screen, exerciseID string) tea.Cmd {
	if !a.ready {
		return nil
	}
	var d session.Decision
	for range 3 {
		d = a.model.Guard.Decide(screen)
		if d.Verdict != session.Redirect {
			break
		}
		screen = d.Screen
	}
	if d.Verdict != session.Render {
		return nil
	}

	if a.model.Screen == session.ScreenExercise && (screen != session.ScreenExercise || exerciseID != a.model.ExerciseID) {
		a.exerciseView.Teardown()
		a.ctrl = nil
	}

	a.model.Screen = screen
	w, h := a.model.Width, a.model.Height
	id := a.model.Guard.Identity()

	switch screen {
	case session.ScreenSignIn:
		a.resetMentor()
		a.signInView = views.NewSignInModel(w, h)
		return a.signInView.Init()

	case session.ScreenRoleSelect:
		name := ""
		if id != nil {
			name = id.FirstName()
		}
		a.roleView = views.NewRoleSelectModel(name, w, h)
		return a.roleView.Init()

	case session.ScreenCatalog:
		a.catalogView = views.NewCatalogModel(id, w, h)
		return tea.Batch(a.catalogView.Init(), commands.LoadCatalogCmd(a.model.Catalog, a.model.TrackID()))

	case session.ScreenExercise:
		if a.ctrl != nil && exerciseID == a.model.ExerciseID {
			return nil
		}
		a.model.ExerciseID = exerciseID
		a.ctrl = attempt.New(a.model.Backend, a.model.TrackID(), exerciseID,
			attempt.WithProfileRefresher(a.model.Guard),
			attempt.WithCompletionSink(a.model.Catalog),
			attempt.WithLogger(a.model.Log),
		)
		a.exerciseView = views.NewExerciseModel(a.ctrl, views.ExerciseDeps{
			Mentor:     a.model.Backend,
			Device:     a.model.Device,
			RecordOpts: a.model.RecorderOptions(),
			Log:        a.model.Log,
		}, w, h)
		return tea.Batch(a.exerciseView.Init(), commands.LoadExerciseCmd(a.ctrl, exerciseID))

	case session.ScreenProfile:
		a.profileView = views.NewProfileModel(id, w, h)
		return tea.Batch(commands.RefreshProfileCmd(a.model.Guard), commands.OverviewCmd(a.model.Catalog))
	}
	return nil
}

func (a *App) mentorSize() (int, int) {
	w := a.model.Width
	if w >= floatingWidth {
		w = w * 2 / 5
	}
	return w, a.model.Height - 2
}

func (a *App) openMentor() tea.Cmd {
	if a.mentorConv == nil {
		name := ""
		if id := a.model.Guard.Identity(); id != nil {
			name = id.FirstName()
		}
		a.mentorConv = mentor.NewGeneral(a.model.Backend, name, mentor.WithLogger(a.model.Log))
		var rec *audio.Recorder
		if a.model.Device != nil {
			rec = audio.NewRecorder(a.model.Device, a.mentorConv.VoiceHandoff(), a.model.RecorderOptions()...)
		}
		w, h := a.mentorSize()
		a.mentorView = views.NewChatModel(a.mentorConv, rec, true, w, h)
	}
	a.mentorOpen = true
	a.mentorView.Focus()
	return a.mentorView.Init()
}

func (a *App) closeMentor() {
	a.mentorOpen = false
	a.mentorView.Blur()
	a.mentorView.Teardown()
}

func (a *App) resetMentor() {
	if a.mentorConv != nil {
		a.mentorView.Teardown()
	}
	a.mentorConv = nil
	a.mentorOpen = false
}

func (a *App) teardown() {
	if a.ctrl != nil {
		a.exerciseView.Teardown()
	}
	a.resetMentor()
}

// View renders the current application state.
func (a *App) View() string {
	var content string
	centered := true

	if !a.ready {
		content = a.spinner.View() + " Loading..."
	} else {
		switch a.model.Screen {
		case session.ScreenSignIn:
			content = a.signInView.View()
		case session.ScreenRoleSelect:
			content = a.roleView.View()
		case session.ScreenCatalog:
			content = a.catalogView.View()
		case session.ScreenExercise:
			content = a.exerciseView.View()
			centered = false
		case session.ScreenProfile:
			content = a.profileView.View()
		default:
			content = "Unknown screen"
		}
	}

	if a.mentorOpen {
		if a.model.Width >= floatingWidth {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, a.mentorView.View())
		} else {
			content = a.mentorView.View()
		}
		centered = false
	}

	if a.model.CtrlCPending {
		content = lipgloss.JoinVertical(lipgloss.Left, content,
			tui.StatusBarStyle.Render("Press Ctrl+C again to exit"))
	}

	if centered {
		return lipgloss.Place(a.model.Width, a.model.Height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
