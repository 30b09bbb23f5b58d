package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/skillforge-dev/skillforge/internal/domain"
)

// TokenSource supplies the bearer token and is told when the backend rejects it.
// The session guard is the only implementation; nothing else owns the token.
type TokenSource interface {
	Token() string
	Invalidate(cause error)
}

// Authorized issues requests on behalf of the signed-in learner.
type Authorized struct {
	client *Client
	tokens TokenSource
}

// Authorized returns a view of c that attaches tokens from ts and reports
// rejected tokens back to it.
func (c *Client) Authorized(ts TokenSource) *Authorized {
	return &Authorized{client: c, tokens: ts}
}

func (a *Authorized) prepare(r request) (request, error) {
	token := a.tokens.Token()
	if token == "" {
		return r, &domain.AuthError{Message: "not signed in"}
	}
	r.token = token
	return r, nil
}

func (a *Authorized) observe(err error) error {
	if IsAuth(err) {
		a.tokens.Invalidate(err)
	}
	return err
}

func (a *Authorized) doJSON(ctx context.Context, r request, in, out any) error {
	r, err := a.prepare(r)
	if err != nil {
		return err
	}
	return a.observe(a.client.doJSON(ctx, r, in, out))
}

// Tracks lists the DSA tracks with per-track progress.
func (a *Authorized) Tracks(ctx context.Context) ([]domain.TrackSummary, error) {
	var out struct {
		Tracks []domain.TrackSummary `json:"tracks"`
	}
	err := a.doJSON(ctx, request{op: "list tracks", method: http.MethodGet, path: "/skills/dsa"}, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Tracks, nil
}

// Track fetches one track with its exercises.
func (a *Authorized) Track(ctx context.Context, trackID string) (*domain.Track, error) {
	var out domain.Track
	err := a.doJSON(ctx, request{
		op:     "list exercises",
		method: http.MethodGet,
		path:   "/skills/dsa/" + url.PathEscape(trackID),
	}, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Exercise fetches a single exercise definition including hints and solution.
func (a *Authorized) Exercise(ctx context.Context, trackID, exerciseID string) (*domain.Exercise, error) {
	var out domain.Exercise
	err := a.doJSON(ctx, request{
		op:     "fetch exercise",
		method: http.MethodGet,
		path:   "/skills/dsa/" + url.PathEscape(trackID) + "/" + url.PathEscape(exerciseID),
	}, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RunResult is the sandbox's reply to a run request.
type RunResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error"`
}

type runRequest struct {
	Code   string `json:"code"`
	TaskID string `json:"task_id"`
}

// RunCode executes code in the backend sandbox.
func (a *Authorized) RunCode(ctx context.Context, exerciseID, code string) (*RunResult, error) {
	var out RunResult
	err := a.doJSON(ctx, request{op: "run code", method: http.MethodPost, path: "/code/run"},
		runRequest{Code: code, TaskID: exerciseID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitResult is the grader's reply to a submission.
type SubmitResult struct {
	Success      bool   `json:"success"`
	PointsEarned int    `json:"points_earned"`
	Message      string `json:"message"`
}

type submitRequest struct {
	TaskID      string `json:"task_id"`
	Code        string `json:"code"`
	Explanation string `json:"explanation,omitempty"`
}

// Submit sends code for grading.
func (a *Authorized) Submit(ctx context.Context, exerciseID, code string) (*SubmitResult, error) {
	var out SubmitResult
	err := a.doJSON(ctx, request{
		op:     "submit code",
		method: http.MethodPost,
		path:   "/tasks/" + url.PathEscape(exerciseID) + "/submit",
	}, submitRequest{TaskID: exerciseID, Code: code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type chatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

// Chat sends a typed message to the mentor and returns its reply.
func (a *Authorized) Chat(ctx context.Context, message, label string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	err := a.doJSON(ctx, request{op: "mentor chat", method: http.MethodPost, path: "/bro/chat"},
		chatRequest{Message: message, Context: label}, &out)
	if err != nil {
		return "", err
	}
	return out.Response, nil
}

// VoiceUpload is a single recorded audio blob.
type VoiceUpload struct {
	Data     []byte
	Filename string
	MIMEType string
}

// VoiceReply carries the transcription of the upload and the mentor's answer.
type VoiceReply struct {
	Transcription string `json:"transcription"`
	Response      string `json:"response"`
}

// Voice uploads recorded audio for transcription and a mentor reply.
func (a *Authorized) Voice(ctx context.Context, upload VoiceUpload, label string) (*VoiceReply, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, upload.Filename))
	header.Set("Content-Type", upload.MIMEType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create audio part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, fmt.Errorf("write audio part: %w", err)
	}
	if err := mw.WriteField("context", label); err != nil {
		return nil, fmt.Errorf("write context field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	r, err := a.prepare(request{
		op:          "mentor voice",
		method:      http.MethodPost,
		path:        "/bro/voice",
		contentType: mw.FormDataContentType(),
		body:        &buf,
		timeout:     a.client.voiceTimeout,
	})
	if err != nil {
		return nil, err
	}

	data, err := a.client.do(ctx, r)
	if err != nil {
		return nil, a.observe(err)
	}

	var out VoiceReply
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &domain.ServiceError{Op: r.op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}
