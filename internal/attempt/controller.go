// Package attempt drives a single exercise through load, edit, run and submit.
// An attempt lives only while its exercise is open; nothing here is persisted.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/skillforge-dev/skillforge/internal/api"
	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/logger"
)

var (
	ErrNotLoaded      = errors.New("exercise not loaded")
	ErrRunInFlight    = errors.New("code is already running")
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrHintsExhausted is returned by RequestHint once every hint is shown.
	ErrHintsExhausted = errors.New("no more hints available")
)

// Learner-facing strings.
const (
	NoOutput              = "No output"
	RunFailedOutput       = "Error running code. Please check your syntax."
	HintsExhaustedMessage = "No more hints available. Ask BRO for guidance!"
	awardedMessage        = "Great work!"
	recordedMessage       = "Submission recorded."
)

// State is the controller's lifecycle position.
type State int

const (
	StateLoading State = iota
	StateReady
	StateRunning
	StateSubmitting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Service is the exercise, sandbox and grading backend.
type Service interface {
	Exercise(ctx context.Context, trackID, exerciseID string) (*domain.Exercise, error)
	RunCode(ctx context.Context, exerciseID, code string) (*api.RunResult, error)
	Submit(ctx context.Context, exerciseID, code string) (*api.SubmitResult, error)
}

// ProfileRefresher re-reads the learner's points after a scored submission.
type ProfileRefresher interface {
	RefreshProfile(ctx context.Context) error
}

// CompletionSink receives completed exercise ids, typically the catalog.
type CompletionSink interface {
	MarkCompleted(exerciseID string)
}

// Option configures a Controller.
type Option func(*Controller)

// WithProfileRefresher refreshes the profile after points are awarded.
func WithProfileRefresher(p ProfileRefresher) Option {
	return func(c *Controller) {
		c.profile = p
	}
}

// WithCompletionSink reports completions back to the catalog.
func WithCompletionSink(s CompletionSink) Option {
	return func(c *Controller) {
		c.sink = s
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller is the attempt session for one exercise. Run and submit may be
// in flight at the same time; each rejects a second call of its own kind.
type Controller struct {
	svc        Service
	profile    ProfileRefresher
	sink       CompletionSink
	log        *logger.Logger
	trackID    string
	exerciseID string

	mu               sync.Mutex
	exercise         *domain.Exercise
	code             string
	lastRun          *RunOutput
	hintCursor       int
	solutionRevealed bool
	running          bool
	submitting       bool
}

// New creates a controller in the loading state.
func New(svc Service, trackID, exerciseID string, opts ...Option) *Controller {
	c := &Controller{
		svc:        svc,
		trackID:    trackID,
		exerciseID: exerciseID,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("exercise", exerciseID)
	return c
}

// Load fetches the exercise and seeds the code buffer with its starter code.
// A missing exercise returns an error matching domain.ErrNotFound.
func (c *Controller) Load(ctx context.Context) error {
	ex, err := c.svc.Exercise(ctx, c.trackID, c.exerciseID)
	if err != nil {
		c.log.Warn("loading exercise", "error", err)
		return fmt.Errorf("loading exercise %s: %w", c.exerciseID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.exercise = ex
	c.code = ex.StarterCode
	c.lastRun = nil
	c.hintCursor = 0
	c.solutionRevealed = false
	return nil
}

// State reports where the attempt is in its lifecycle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.exercise == nil:
		return StateLoading
	case c.submitting:
		return StateSubmitting
	case c.running:
		return StateRunning
	case c.exercise.Completed:
		return StateCompleted
	default:
		return StateReady
	}
}

// Exercise returns a copy of the loaded exercise.
func (c *Controller) Exercise() (domain.Exercise, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exercise == nil {
		return domain.Exercise{}, false
	}
	ex := *c.exercise
	ex.Hints = append([]string(nil), c.exercise.Hints...)
	return ex, true
}

// Code returns the current code buffer.
func (c *Controller) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// SetCode replaces the code buffer.
func (c *Controller) SetCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code = code
}

// RunOutput is what the output pane shows after a run.
type RunOutput struct {
	Text    string
	IsError bool
}

// RunCode executes the code buffer. Sandbox and network failures become
// output text; the only errors returned are ErrNotLoaded and ErrRunInFlight.
func (c *Controller) RunCode(ctx context.Context) (RunOutput, error) {
	c.mu.Lock()
	if c.exercise == nil {
		c.mu.Unlock()
		return RunOutput{}, ErrNotLoaded
	}
	if c.running {
		c.mu.Unlock()
		return RunOutput{}, ErrRunInFlight
	}
	c.running = true
	code := c.code
	c.mu.Unlock()

	res, err := c.svc.RunCode(ctx, c.exerciseID, code)
	out := normalizeRun(res, err)
	if err != nil {
		c.log.Warn("running code", "error", err)
	}

	c.mu.Lock()
	c.running = false
	c.lastRun = &out
	c.mu.Unlock()
	return out, nil
}

func normalizeRun(res *api.RunResult, err error) RunOutput {
	switch {
	case err != nil || res == nil:
		return RunOutput{Text: RunFailedOutput, IsError: true}
	case res.Output != "":
		return RunOutput{Text: res.Output}
	case res.Error != "":
		return RunOutput{Text: res.Error, IsError: true}
	default:
		return RunOutput{Text: NoOutput}
	}
}

// LastRun returns the most recent run output, if any.
func (c *Controller) LastRun() (RunOutput, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRun == nil {
		return RunOutput{}, false
	}
	return *c.lastRun, true
}

// SubmitOutcome is an accepted submission.
type SubmitOutcome struct {
	PointsEarned int
	Message      string
}

// Awarded distinguishes a first solve from a recorded resubmission.
func (o SubmitOutcome) Awarded() bool {
	return o.PointsEarned > 0
}

// Submit sends the code buffer for grading. An accepted submission marks the
// exercise completed whether or not points were earned; earned points trigger
// a profile refresh. On failure nothing changes and the caller shows the error.
func (c *Controller) Submit(ctx context.Context) (SubmitOutcome, error) {
	c.mu.Lock()
	if c.exercise == nil {
		c.mu.Unlock()
		return SubmitOutcome{}, ErrNotLoaded
	}
	if c.submitting {
		c.mu.Unlock()
		return SubmitOutcome{}, ErrSubmitInFlight
	}
	c.submitting = true
	code := c.code
	c.mu.Unlock()

	res, err := c.svc.Submit(ctx, c.exerciseID, code)
	if err == nil && !res.Success {
		err = &domain.ServiceError{Op: "submit code", Detail: res.Message}
	}
	if err != nil {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		c.log.Warn("submitting code", "error", err)
		return SubmitOutcome{}, fmt.Errorf("submitting %s: %w", c.exerciseID, err)
	}

	outcome := SubmitOutcome{PointsEarned: res.PointsEarned, Message: res.Message}
	if outcome.Message == "" {
		outcome.Message = recordedMessage
		if outcome.Awarded() {
			outcome.Message = awardedMessage
		}
	}

	c.mu.Lock()
	c.submitting = false
	c.exercise.Completed = true
	c.exercise.Attempts++
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.MarkCompleted(c.exerciseID)
	}
	if outcome.Awarded() && c.profile != nil {
		if err := c.profile.RefreshProfile(ctx); err != nil {
			c.log.Warn("refreshing profile after submission", "error", err)
		}
	}
	c.log.Info("submission accepted", "points", outcome.PointsEarned)
	return outcome, nil
}
