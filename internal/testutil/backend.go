package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/skillforge-dev/skillforge/internal/domain"
)

// Credentials of the learner seeded into every Backend.
const (
	Email    = "ada@uni.edu"
	Password = "secret1"
	Token    = "tok-1"
)

// Backend is an in-memory SkillForge API served over httptest.
type Backend struct {
	URL string

	mu        sync.Mutex
	identity  domain.Identity
	users     map[string]string // email -> password
	track     domain.Track
	solved    map[string]bool
	calls     map[string]int
	lastChat  string
	lastVoice []byte
}

// NewBackend starts a Backend seeded with one learner without a role and the
// ArraysTrack fixture. The server is closed when the test finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		identity: domain.Identity{
			ID:     "u1",
			Name:   "Ada Lovelace",
			Email:  Email,
			Points: 0,
			Level:  domain.LevelBeginner,
		},
		users:  map[string]string{Email: Password},
		track:  ArraysTrack(),
		solved: make(map[string]bool),
		calls:  make(map[string]int),
	}
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// SetRole gives the seeded learner a role.
func (b *Backend) SetRole(r domain.Role) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identity.Role = r
}

// Identity returns the learner as the server currently sees it.
func (b *Backend) Identity() domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.identity
}

// Calls returns how many times the named route was hit, e.g. "submit".
func (b *Backend) Calls(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

// LastChatContext returns the context label of the last text or voice message.
func (b *Backend) LastChatContext() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastChat
}

// LastVoice returns the audio bytes of the last voice upload.
func (b *Backend) LastVoice() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.lastVoice...)
}

func (b *Backend) count(name string) {
	b.mu.Lock()
	b.calls[name]++
	b.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (b *Backend) authorized(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.count(name)
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r)
	}
}

func (b *Backend) router() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/register", b.register)
		r.Get("/users/profile", b.authorized("profile", b.profile))
		r.Put("/users/role", b.authorized("role", b.role))
		r.Get("/skills/dsa", b.authorized("tracks", b.tracks))
		r.Get("/skills/dsa/{track}", b.authorized("track", b.trackDetail))
		r.Get("/skills/dsa/{track}/{id}", b.authorized("exercise", b.exercise))
		r.Post("/code/run", b.authorized("run", b.run))
		r.Post("/tasks/{id}/submit", b.authorized("submit", b.submit))
		r.Post("/bro/chat", b.authorized("chat", b.chat))
		r.Post("/bro/voice", b.authorized("voice", b.voice))
	})
	return r
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	b.count("login")
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request")
		return
	}
	b.mu.Lock()
	want, ok := b.users[body.Email]
	id := b.identity
	b.mu.Unlock()
	if !ok || want != body.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": Token, "user": id})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	b.count("register")
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[body.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	b.users[body.Email] = body.Password
	b.identity = domain.Identity{ID: "u2", Name: body.Name, Email: body.Email, Level: domain.LevelBeginner}
	writeJSON(w, http.StatusOK, map[string]any{"token": Token, "user": b.identity})
}

func (b *Backend) profile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Identity())
}

func (b *Backend) role(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Role.Valid() {
		writeDetail(w, http.StatusBadRequest, "Invalid role")
		return
	}
	b.SetRole(body.Role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Role updated"})
}

// snapshot returns the track with completion flags applied.
func (b *Backend) snapshot() domain.Track {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.track
	t.Tasks = append([]domain.Exercise(nil), b.track.Tasks...)
	t.TotalTasks = len(t.Tasks)
	t.CompletedTasks = 0
	for i := range t.Tasks {
		if b.solved[t.Tasks[i].ID] {
			t.Tasks[i].Completed = true
			t.CompletedTasks++
		}
	}
	return t
}

func (b *Backend) tracks(w http.ResponseWriter, _ *http.Request) {
	t := b.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"tracks": []domain.TrackSummary{{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Order:          1,
		TotalTasks:     t.TotalTasks,
		CompletedTasks: t.CompletedTasks,
	}}})
}

func (b *Backend) trackDetail(w http.ResponseWriter, r *http.Request) {
	t := b.snapshot()
	if chi.URLParam(r, "track") != t.ID {
		writeDetail(w, http.StatusNotFound, "Track not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) exercise(w http.ResponseWriter, r *http.Request) {
	t := b.snapshot()
	if chi.URLParam(r, "track") == t.ID {
		for _, ex := range t.Tasks {
			if ex.ID == chi.URLParam(r, "id") {
				writeJSON(w, http.StatusOK, ex)
				return
			}
		}
	}
	writeDetail(w, http.StatusNotFound, "Task not found")
}

// run echoes the first print(...) argument, or reports a syntax error for
// code containing "syntax error".
func (b *Backend) run(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code   string `json:"code"`
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if strings.Contains(body.Code, "syntax error") {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "output": "", "error": "SyntaxError: invalid syntax"})
		return
	}
	out := ""
	if i := strings.Index(body.Code, "print("); i >= 0 {
		rest := body.Code[i+len("print("):]
		if j := strings.LastIndex(rest, ")"); j >= 0 {
			out = rest[:j]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "output": out})
}

// submit awards the exercise's points on the first solve and nothing after.
func (b *Backend) submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var points int
	found := false
	b.mu.Lock()
	for _, ex := range b.track.Tasks {
		if ex.ID == id {
			found = true
			if !b.solved[id] {
				points = ex.Points
				b.solved[id] = true
				b.identity.Points += points
			}
		}
	}
	b.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	msg := "Already solved"
	if points > 0 {
		msg = "Correct!"
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "points_earned": points, "message": msg})
}

func (b *Backend) chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
		Context string `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request")
		return
	}
	b.mu.Lock()
	b.lastChat = body.Context
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"response": "BRO says: " + body.Message})
}

func (b *Backend) voice(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("audio")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Missing audio")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Unreadable audio")
		return
	}
	b.mu.Lock()
	b.lastChat = r.FormValue("context")
	b.lastVoice = data
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{
		"transcription": "how do I start",
		"response":      "Start with a hash map.",
	})
}
