package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillforge-dev/skillforge/internal/api"
	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/catalog"
	"github.com/skillforge-dev/skillforge/internal/config"
	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/localstore"
	"github.com/skillforge-dev/skillforge/internal/logger"
	"github.com/skillforge-dev/skillforge/internal/session"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

var errNotSignedIn = errors.New("not signed in; run: skillforge login")

// env is the wired service graph shared by every command.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *localstore.Store
	client  *api.Client
	guard   *session.Guard
	backend *api.Authorized
	catalog *catalog.Catalog
}

// bootstrap loads configuration, opens local state and restores the session.
func bootstrap() (*env, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	store, err := localstore.Open(cfg.Store.Path)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("opening local state: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithVoiceTimeout(cfg.VoiceTimeout()),
		api.WithLogger(log),
	)
	guard := session.NewGuard(client, store, log)
	backend := client.Authorized(guard)

	return &env{
		cfg:     cfg,
		log:     log,
		store:   store,
		client:  client,
		guard:   guard,
		backend: backend,
		catalog: catalog.New(backend, log),
	}, nil
}

// Close releases local state and flushes logs.
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("closing local state", "error", err)
	}
	e.log.Sync()
}

// device returns the configured microphone, or nil when none is set.
func (e *env) device() audio.Device {
	if e.cfg.Audio.Command == "" {
		return nil
	}
	return audio.CommandDevice{Command: e.cfg.Audio.Command, Args: e.cfg.Audio.Args}
}

func (e *env) recorderOptions() []audio.Option {
	return []audio.Option{
		audio.WithFormat(e.cfg.Audio.MIMEType, e.cfg.Audio.Filename),
		audio.WithLogger(e.log),
	}
}

func (e *env) deps() tui.Deps {
	return tui.Deps{
		Cfg:     e.cfg,
		Log:     e.log,
		Guard:   e.guard,
		Backend: e.backend,
		Catalog: e.catalog,
		Device:  e.device(),
	}
}

// requireSession restores the persisted session. Commands that need an
// identity with a role also get an error pointing at the next step.
func (e *env) requireSession(ctx context.Context, needRole bool) (*domain.Identity, error) {
	switch e.guard.Init(ctx) {
	case session.StatusUnauthenticated:
		return nil, errNotSignedIn
	case session.StatusIncomplete:
		if needRole {
			return nil, errors.New("no role selected; run: skillforge role <sde|analyst|scientist|ml>")
		}
	}
	return e.guard.Identity(), nil
}

// trackID resolves the --track flag against the configured default.
func (e *env) trackID(flag string) string {
	if flag != "" {
		return flag
	}
	if e.cfg.UI.DefaultTrack != "" {
		return e.cfg.UI.DefaultTrack
	}
	return config.DefaultTrack
}
