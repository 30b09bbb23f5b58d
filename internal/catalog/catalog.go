// Package catalog lists a track's exercises with aggregate progress and keeps
// that list in step with completions reported by exercise attempts.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/logger"
)

// overviewConcurrency bounds parallel track fetches in Overview.
const overviewConcurrency = 4

// Service is the backend surface the catalog reads from.
type Service interface {
	Tracks(ctx context.Context) ([]domain.TrackSummary, error)
	Track(ctx context.Context, trackID string) (*domain.Track, error)
}

// View is what the catalog screen renders.
type View struct {
	TrackID     string
	Name        string
	Description string
	Exercises   []domain.Exercise
	Completed   int
	Total       int
}

// Empty reports whether there is nothing to list.
func (v View) Empty() bool {
	return len(v.Exercises) == 0
}

// Percent returns completed/total rounded to a whole percentage.
func (v View) Percent() int {
	return domain.ProgressPercent(v.Completed, v.Total)
}

// Catalog caches the most recently loaded track.
type Catalog struct {
	svc Service
	log *logger.Logger

	mu   sync.Mutex
	view View
}

// New creates a Catalog backed by svc.
func New(svc Service, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{svc: svc, log: log}
}

// Load fetches a track. On failure the returned view is empty, so the screen
// shows "no tasks", and the error is returned for logging.
func (c *Catalog) Load(ctx context.Context, trackID string) (View, error) {
	track, err := c.svc.Track(ctx, trackID)
	if err != nil {
		c.log.Warn("loading track", "track", trackID, "error", err)
		empty := View{TrackID: trackID}
		c.mu.Lock()
		c.view = empty
		c.mu.Unlock()
		return empty, fmt.Errorf("loading track %s: %w", trackID, err)
	}

	v := View{
		TrackID:     trackID,
		Name:        track.Name,
		Description: track.Description,
		Exercises:   append([]domain.Exercise(nil), track.Tasks...),
		Completed:   track.CompletedTasks,
		Total:       track.TotalTasks,
	}
	if v.Total == 0 {
		v.Total = len(v.Exercises)
	}

	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
	return c.Current(), nil
}

// Current returns a copy of the cached view.
func (c *Catalog) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view
	v.Exercises = append([]domain.Exercise(nil), c.view.Exercises...)
	return v
}

// MarkCompleted patches the cached view after a successful submission.
// The next Load replaces the patch with the server's numbers.
func (c *Catalog) MarkCompleted(exerciseID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.view.Exercises {
		ex := &c.view.Exercises[i]
		if ex.ID != exerciseID {
			continue
		}
		ex.Attempts++
		if !ex.Completed {
			ex.Completed = true
			c.view.Completed++
		}
		return
	}
}

// TrackProgress is one line of the track overview.
type TrackProgress struct {
	domain.TrackSummary
	// NextUp is the first exercise not yet completed, empty when the track is done.
	NextUp string
}

// Overview lists every track with its progress and next exercise. Track
// details are fetched concurrently; a failed detail fetch leaves NextUp empty.
func (c *Catalog) Overview(ctx context.Context) ([]TrackProgress, error) {
	summaries, err := c.svc.Tracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Order < summaries[j].Order
	})

	out := make([]TrackProgress, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	for i, s := range summaries {
		out[i].TrackSummary = s
		g.Go(func() error {
			track, err := c.svc.Track(gctx, s.ID)
			if err != nil {
				c.log.Warn("loading track detail", "track", s.ID, "error", err)
				return nil
			}
			for _, ex := range track.Tasks {
				if !ex.Completed {
					out[i].NextUp = ex.Title
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
