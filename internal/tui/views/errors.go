// Package views provides TUI view components for the SkillForge client.
package views

import (
	"errors"

	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/domain"
)

const genericFailure = "Something went wrong. Please try again."

// ErrorText turns an error into the line shown to the learner. Auth and
// validation messages are shown verbatim; service failures are not.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var authErr *domain.AuthError
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.Is(err, audio.ErrPermissionDenied):
		return "Microphone access denied. Check your recording device and try again."
	case errors.Is(err, audio.ErrEmptyRecording):
		return "Nothing was recorded. Try again?"
	case errors.Is(err, domain.ErrNotFound):
		return "That exercise could not be found."
	default:
		return genericFailure
	}
}
