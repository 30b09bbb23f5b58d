package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillforge-dev/skillforge/internal/domain"
)

type fakeTokens struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) Invalidate(error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.invalidated++
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestServer(t *testing.T, r chi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithTimeout(2*time.Second))
}

func TestLoginSuccess(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body loginRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Email != "ada@uni.edu" || body.Password != "secret1" {
			t.Errorf("login body: got %+v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": "u1", "email": "ada@uni.edu", "name": "Ada", "role": nil, "points": 0, "level": "Beginner"},
		})
	})
	c := newTestServer(t, r)

	res, err := c.Login(t.Context(), "ada@uni.edu", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Token != "tok-1" {
		t.Errorf("Token: got %q, want tok-1", res.Token)
	}
	if res.User.HasRole() {
		t.Errorf("Role: got %q, want empty", res.User.Role)
	}
	if res.User.Level != domain.LevelBeginner {
		t.Errorf("Level: got %q", res.User.Level)
	}
}

func TestAuthEndpointsReturnAuthError(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid email or password"})
	})
	r.Post("/api/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
	})
	c := newTestServer(t, r)

	_, err := c.Login(t.Context(), "ada@uni.edu", "wrong!")
	var ae *domain.AuthError
	if !errors.As(err, &ae) || ae.Message != "Invalid email or password" {
		t.Errorf("Login: got %v, want AuthError with server message", err)
	}

	_, err = c.Register(t.Context(), "Ada", "ada@uni.edu", "secret1")
	if !errors.As(err, &ae) || ae.Message != "Email already registered" {
		t.Errorf("Register: got %v, want AuthError with server message", err)
	}
}

func TestAuthorizedAttachesBearerToken(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/skills/dsa/{track}", func(w http.ResponseWriter, req *http.Request) {
		if got := req.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization: got %q", got)
		}
		if got := chi.URLParam(req, "track"); got != "arrays" {
			t.Errorf("track param: got %q", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "arrays", "name": "Arrays", "total_tasks": 2, "completed_tasks": 1,
			"tasks": []map[string]any{
				{"id": "arr-001", "title": "Two Sum", "points": 10, "completed": true, "attempts": 2},
				{"id": "arr-002", "title": "Maximum Subarray", "points": 20},
			},
		})
	})
	c := newTestServer(t, r)
	tokens := &fakeTokens{token: "tok-1"}

	track, err := c.Authorized(tokens).Track(t.Context(), "arrays")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if len(track.Tasks) != 2 || !track.Tasks[0].Completed || track.Tasks[0].Attempts != 2 {
		t.Errorf("Track tasks: got %+v", track.Tasks)
	}
	if tokens.invalidated != 0 {
		t.Errorf("invalidated: got %d, want 0", tokens.invalidated)
	}
}

func TestAuthorizedRejectedTokenInvalidates(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/code/run", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token expired"})
	})
	c := newTestServer(t, r)
	tokens := &fakeTokens{token: "stale"}

	_, err := c.Authorized(tokens).RunCode(t.Context(), "arr-001", "print(1)")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("RunCode: got %v, want ErrUnauthorized", err)
	}
	if tokens.invalidated != 1 {
		t.Errorf("invalidated: got %d, want 1", tokens.invalidated)
	}
	if tokens.Token() != "" {
		t.Errorf("token after invalidation: got %q, want empty", tokens.Token())
	}
}

func TestAuthorizedWithoutTokenSkipsNetwork(t *testing.T) {
	var calls int
	r := chi.NewRouter()
	r.Post("/api/bro/chat", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, map[string]string{"response": "hi"})
	})
	c := newTestServer(t, r)

	_, err := c.Authorized(&fakeTokens{}).Chat(t.Context(), "hello", "General Chat")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Chat: got %v, want ErrUnauthorized", err)
	}
	if calls != 0 {
		t.Errorf("network calls: got %d, want 0", calls)
	}
}

func TestExerciseNotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/skills/dsa/{track}/{taskID}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
	})
	c := newTestServer(t, r)

	_, err := c.Authorized(&fakeTokens{token: "tok"}).Exercise(t.Context(), "arrays", "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Exercise: got %v, want ErrNotFound", err)
	}
}

func TestServerErrorIsServiceError(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/bro/chat", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "BRO is taking a coffee break. Try again!"})
	})
	c := newTestServer(t, r)

	_, err := c.Authorized(&fakeTokens{token: "tok"}).Chat(t.Context(), "hello", "General Chat")
	var se *domain.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("Chat: got %v, want ServiceError", err)
	}
	if se.Status != http.StatusInternalServerError {
		t.Errorf("Status: got %d, want 500", se.Status)
	}
	if se.Detail != "BRO is taking a coffee break. Try again!" {
		t.Errorf("Detail: got %q", se.Detail)
	}
}

func TestSubmitAndRunPayloads(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/tasks/{id}/submit", func(w http.ResponseWriter, req *http.Request) {
		var body submitRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.TaskID != chi.URLParam(req, "id") || body.Code != "x = 1" {
			t.Errorf("submit body: got %+v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "points_earned": 10, "message": "Great work!"})
	})
	r.Post("/api/code/run", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "output": "", "error": "NameError: x"})
	})
	c := newTestServer(t, r)
	a := c.Authorized(&fakeTokens{token: "tok"})

	sub, err := a.Submit(t.Context(), "arr-001", "x = 1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.PointsEarned != 10 || sub.Message != "Great work!" {
		t.Errorf("Submit: got %+v", sub)
	}

	run, err := a.RunCode(t.Context(), "arr-001", "print(x)")
	if err != nil {
		t.Fatalf("RunCode failed: %v", err)
	}
	if run.Error != "NameError: x" {
		t.Errorf("RunCode error: got %q", run.Error)
	}
}

func TestVoiceSendsMultipart(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/bro/voice", func(w http.ResponseWriter, req *http.Request) {
		file, hdr, err := req.FormFile("audio")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "no audio"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFFdata" {
			t.Errorf("audio bytes: got %q", data)
		}
		if hdr.Filename != "voice.wav" {
			t.Errorf("filename: got %q", hdr.Filename)
		}
		if got := req.FormValue("context"); got != "Task: Two Sum" {
			t.Errorf("context: got %q", got)
		}
		writeJSON(w, http.StatusOK, map[string]string{"transcription": "how do I start", "response": "Think hash maps."})
	})
	c := newTestServer(t, r)

	reply, err := c.Authorized(&fakeTokens{token: "tok"}).Voice(t.Context(),
		VoiceUpload{Data: []byte("RIFFdata"), Filename: "voice.wav", MIMEType: "audio/wav"}, "Task: Two Sum")
	if err != nil {
		t.Fatalf("Voice failed: %v", err)
	}
	if reply.Transcription != "how do I start" || reply.Response != "Think hash maps." {
		t.Errorf("Voice: got %+v", reply)
	}
}

func TestTimeoutIsServiceError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/users/profile", func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "u1"})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))

	_, err := c.Profile(t.Context(), "tok")
	if !errors.Is(err, domain.ErrService) {
		t.Errorf("Profile: got %v, want ErrService", err)
	}
	if IsAuth(err) {
		t.Error("timeout classified as auth failure")
	}
}
