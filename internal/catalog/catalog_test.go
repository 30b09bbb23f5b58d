package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/skillforge-dev/skillforge/internal/api"
	"github.com/skillforge-dev/skillforge/internal/domain"
)

type fakeService struct {
	mu       sync.Mutex
	tracks   []domain.TrackSummary
	details  map[string]*domain.Track
	trackErr error
}

func (f *fakeService) Tracks(context.Context) ([]domain.TrackSummary, error) {
	return f.tracks, nil
}

func (f *fakeService) Track(_ context.Context, id string) (*domain.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trackErr != nil {
		return nil, f.trackErr
	}
	t, ok := f.details[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func arraysTrack() *domain.Track {
	return &domain.Track{
		ID: "arrays", Name: "Arrays", TotalTasks: 3, CompletedTasks: 1,
		Tasks: []domain.Exercise{
			{ID: "arr-001", Title: "Two Sum", Completed: true, Attempts: 1},
			{ID: "arr-002", Title: "Maximum Subarray"},
			{ID: "arr-003", Title: "Contains Duplicate"},
		},
	}
}

func TestLoadBuildsView(t *testing.T) {
	c := New(&fakeService{details: map[string]*domain.Track{"arrays": arraysTrack()}}, nil)

	v, err := c.Load(t.Context(), "arrays")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v.Name != "Arrays" || len(v.Exercises) != 3 {
		t.Errorf("view: got %+v", v)
	}
	if v.Percent() != 33 {
		t.Errorf("Percent: got %d, want 33", v.Percent())
	}
}

func TestLoadFailureYieldsEmptyView(t *testing.T) {
	c := New(&fakeService{trackErr: &domain.ServiceError{Op: "list exercises", Status: 500}}, nil)

	v, err := c.Load(t.Context(), "arrays")
	if err == nil {
		t.Fatal("Load: expected error")
	}
	if !errors.Is(err, domain.ErrService) {
		t.Errorf("Load error: got %v, want ErrService", err)
	}
	if !v.Empty() || v.Percent() != 0 {
		t.Errorf("view: got %+v, want empty", v)
	}
}

func TestMarkCompletedPatchesOnce(t *testing.T) {
	c := New(&fakeService{details: map[string]*domain.Track{"arrays": arraysTrack()}}, nil)
	if _, err := c.Load(t.Context(), "arrays"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c.MarkCompleted("arr-002")
	c.MarkCompleted("arr-002")
	c.MarkCompleted("missing")

	v := c.Current()
	if v.Completed != 2 {
		t.Errorf("Completed: got %d, want 2", v.Completed)
	}
	ex := v.Exercises[1]
	if !ex.Completed || ex.Attempts != 2 {
		t.Errorf("arr-002: got completed=%v attempts=%d", ex.Completed, ex.Attempts)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	c := New(&fakeService{details: map[string]*domain.Track{"arrays": arraysTrack()}}, nil)
	_, _ = c.Load(t.Context(), "arrays")

	v := c.Current()
	v.Exercises[0].Title = "mutated"
	if c.Current().Exercises[0].Title != "Two Sum" {
		t.Error("Current exposed internal slice")
	}
}

func TestOverview(t *testing.T) {
	done := &domain.Track{ID: "strings", Tasks: []domain.Exercise{{ID: "str-001", Title: "Valid Palindrome", Completed: true}}}
	svc := &fakeService{
		tracks: []domain.TrackSummary{
			{ID: "strings", Name: "Strings", Order: 2, TotalTasks: 1, CompletedTasks: 1},
			{ID: "arrays", Name: "Arrays", Order: 1, TotalTasks: 3, CompletedTasks: 1},
			{ID: "graphs", Name: "Graphs", Order: 3},
		},
		details: map[string]*domain.Track{"arrays": arraysTrack(), "strings": done},
	}
	c := New(svc, nil)

	got, err := c.Overview(t.Context())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if len(got) != 3 || got[0].ID != "arrays" || got[1].ID != "strings" {
		t.Fatalf("Overview order: got %+v", got)
	}
	if got[0].NextUp != "Maximum Subarray" {
		t.Errorf("arrays NextUp: got %q", got[0].NextUp)
	}
	if got[1].NextUp != "" {
		t.Errorf("strings NextUp: got %q, want empty", got[1].NextUp)
	}
	if got[2].NextUp != "" {
		t.Errorf("graphs NextUp after failed detail: got %q", got[2].NextUp)
	}
}

type staticTokens string

func (s staticTokens) Token() string  { return string(s) }
func (staticTokens) Invalidate(error) {}

func TestLoadOverHTTP(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/skills/dsa/{track}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "track") != "arrays" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(arraysTrack())
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := New(api.NewClient(srv.URL).Authorized(staticTokens("tok")), nil)

	v, err := c.Load(t.Context(), "arrays")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v.Total != 3 || v.Completed != 1 {
		t.Errorf("view totals: got %d/%d", v.Completed, v.Total)
	}

	v, err = c.Load(t.Context(), "unknown")
	if err == nil || !v.Empty() {
		t.Errorf("unknown track: got view %+v err %v", v, err)
	}
}
