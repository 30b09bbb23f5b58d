package tui

import (
	"github.com/skillforge-dev/skillforge/internal/attempt"
	"github.com/skillforge-dev/skillforge/internal/catalog"
	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/mentor"
	"github.com/skillforge-dev/skillforge/internal/session"
)

// ============================================================================
// Navigation Messages
// ============================================================================

// NavigateMsg requests a screen. The app gates it through the session guard.
type NavigateMsg struct {
	Screen     session.Screen
	ExerciseID string
}

// LogoutMsg signs the learner out.
type LogoutMsg struct{}

// CtrlCResetMsg clears the pending double Ctrl+C exit.
type CtrlCResetMsg struct{}

// ============================================================================
// Session Messages
// ============================================================================

// SessionInitMsg reports the guard's resolved status at startup.
type SessionInitMsg struct {
	Status session.Status
}

// LoginRequestMsg is sent by the sign-in form.
type LoginRequestMsg struct {
	Email    string
	Password string
}

// RegisterRequestMsg is sent by the sign-up form.
type RegisterRequestMsg struct {
	Registration session.Registration
}

// AuthResultMsg reports a login or registration.
type AuthResultMsg struct {
	Identity *domain.Identity
	Err      error
}

// SelectRoleMsg is sent by the role picker.
type SelectRoleMsg struct {
	Role domain.Role
}

// RoleSavedMsg reports a role update.
type RoleSavedMsg struct {
	Err error
}

// ============================================================================
// Catalog Messages
// ============================================================================

// CatalogLoadedMsg carries a freshly loaded track.
type CatalogLoadedMsg struct {
	View catalog.View
	Err  error
}

// ============================================================================
// Attempt Messages
// ============================================================================

// ExerciseLoadedMsg reports the attempt controller's load.
type ExerciseLoadedMsg struct {
	ExerciseID string
	Err        error
}

// RunDoneMsg carries the output of a run.
type RunDoneMsg struct {
	Output attempt.RunOutput
	Err    error
}

// SubmitDoneMsg carries the outcome of a submission.
type SubmitDoneMsg struct {
	Outcome attempt.SubmitOutcome
	Err     error
}

// ============================================================================
// Mentor Messages
// ============================================================================

// MentorReplyMsg reports that a conversation received its reply.
type MentorReplyMsg struct {
	ConversationID string
	Reply          mentor.Message
	Err            error
}

// RecordingStartedMsg reports a microphone start attempt.
type RecordingStartedMsg struct {
	ConversationID string
	Err            error
}

// ProfileRefreshedMsg reports a profile re-fetch.
type ProfileRefreshedMsg struct {
	Err error
}

// OverviewLoadedMsg carries progress across every track.
type OverviewLoadedMsg struct {
	Tracks []catalog.TrackProgress
	Err    error
}
