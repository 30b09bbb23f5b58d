package tui

import (
	"github.com/skillforge-dev/skillforge/internal/api"
	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/catalog"
	"github.com/skillforge-dev/skillforge/internal/config"
	"github.com/skillforge-dev/skillforge/internal/logger"
	"github.com/skillforge-dev/skillforge/internal/session"
)

// Deps are the long-lived services shared by every screen.
type Deps struct {
	Cfg     *config.Config
	Log     *logger.Logger
	Guard   *session.Guard
	Backend *api.Authorized
	Catalog *catalog.Catalog
	// Device is the microphone; nil disables voice input.
	Device audio.Device
}

// Model holds the application-level state that outlives any one view.
type Model struct {
	Deps

	Screen     session.Screen
	ExerciseID string

	Width        int
	Height       int
	CtrlCPending bool
	Err          error
}

// NewModel creates the model in the loading state.
func NewModel(deps Deps) *Model {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Model{
		Deps:   deps,
		Screen: session.ScreenSignIn,
		Width:  80,
		Height: 24,
	}
}

// TrackID is the track the catalog opens on.
func (m *Model) TrackID() string {
	if m.Cfg != nil && m.Cfg.UI.DefaultTrack != "" {
		return m.Cfg.UI.DefaultTrack
	}
	return config.DefaultTrack
}

// RecorderOptions applies the configured capture format.
func (m *Model) RecorderOptions() []audio.Option {
	opts := []audio.Option{audio.WithLogger(m.Log)}
	if m.Cfg != nil {
		opts = append(opts, audio.WithFormat(m.Cfg.Audio.MIMEType, m.Cfg.Audio.Filename))
	}
	return opts
}
