// Package audio turns a capture device into a start/stop recording lifecycle
// that yields one payload per recording.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/skillforge-dev/skillforge/internal/logger"
)

var (
	// ErrPermissionDenied means the microphone was declined or no device exists.
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrAlreadyCapturing = errors.New("a recording is already in progress")
	// ErrEmptyRecording means stop found no audio, so nothing was handed off.
	ErrEmptyRecording = errors.New("recording captured no audio")
)

const chunkSize = 4096

// State is the recorder's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateFlushing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// Stream is an open capture device.
type Stream interface {
	io.Reader
	// Stop ends capture. Read returns io.EOF once buffered audio is drained.
	Stop() error
	// Close releases the device handle.
	Close() error
}

// Device opens exclusive capture streams.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Payload is one finished recording.
type Payload struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Handoff receives each finished recording.
type Handoff func(ctx context.Context, p Payload) error

// Option configures a Recorder.
type Option func(*Recorder)

// WithFormat sets the MIME type and filename attached to payloads.
func WithFormat(mimeType, filename string) Option {
	return func(r *Recorder) {
		r.mimeType = mimeType
		r.filename = filename
	}
}

// WithLogger sets the recorder's logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Recorder) {
		r.log = l
	}
}

// Recorder owns at most one capture at a time.
type Recorder struct {
	device   Device
	handoff  Handoff
	mimeType string
	filename string
	log      *logger.Logger

	mu     sync.Mutex
	state  State
	stream Stream
	chunks [][]byte
	done   chan struct{}
	// endedEarly is set when the stream ran dry before Stop was called.
	endedEarly bool
}

// NewRecorder creates an idle recorder. handoff may be nil when the caller
// consumes the payload returned by Stop directly.
func NewRecorder(device Device, handoff Handoff, opts ...Option) *Recorder {
	r := &Recorder{
		device:   device,
		handoff:  handoff,
		mimeType: "audio/wav",
		filename: "voice.wav",
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State reports the recorder's current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start acquires the device and begins buffering chunks. If the device
// cannot be opened the error matches ErrPermissionDenied and the recorder
// stays idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateIdle {
		return ErrAlreadyCapturing
	}

	stream, err := r.device.Open(ctx)
	if err != nil {
		r.log.Warn("opening capture device", "error", err)
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	r.state = StateCapturing
	r.stream = stream
	r.chunks = nil
	r.endedEarly = false
	r.done = make(chan struct{})
	go r.capture(stream, r.done)
	r.log.Debug("capture started")
	return nil
}

func (r *Recorder) capture(stream Stream, done chan struct{}) {
	defer close(done)
	buf := make([]byte, chunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.mu.Lock()
			r.chunks = append(r.chunks, chunk)
			r.mu.Unlock()
		}
		if err != nil {
			r.mu.Lock()
			early := r.state == StateCapturing
			r.endedEarly = early
			r.mu.Unlock()
			if early {
				r.log.Warn("capture device closed while recording", "error", err)
			} else if !errors.Is(err, io.EOF) {
				r.log.Debug("capture stream ended", "error", err)
			}
			return
		}
	}
}

// Stop ends the capture, releases the device and hands the concatenated
// audio to the handoff. It is a no-op unless capturing.
func (r *Recorder) Stop(ctx context.Context) (Payload, error) {
	r.mu.Lock()
	if r.state != StateCapturing {
		r.mu.Unlock()
		return Payload{}, nil
	}
	r.state = StateFlushing
	stream, done := r.stream, r.done
	r.stream = nil
	r.mu.Unlock()

	defer r.setState(StateIdle)

	r.release(stream, done)

	r.mu.Lock()
	data := concat(r.chunks)
	r.chunks = nil
	early := r.endedEarly
	r.mu.Unlock()

	if len(data) == 0 {
		if early {
			return Payload{}, fmt.Errorf("%w: capture device closed before any audio", ErrPermissionDenied)
		}
		return Payload{}, ErrEmptyRecording
	}

	p := Payload{Data: data, MIMEType: r.mimeType, Filename: r.filename}
	r.log.Debug("capture flushed", "bytes", len(data))
	if r.handoff == nil {
		return p, nil
	}
	return p, r.handoff(ctx, p)
}

// Teardown discards any capture in progress and releases the device.
// Use it when the owning view goes away.
func (r *Recorder) Teardown() {
	r.mu.Lock()
	if r.state != StateCapturing {
		r.mu.Unlock()
		return
	}
	stream, done := r.stream, r.done
	r.stream = nil
	r.state = StateFlushing
	r.mu.Unlock()

	r.release(stream, done)

	r.mu.Lock()
	r.chunks = nil
	r.state = StateIdle
	r.mu.Unlock()
	r.log.Debug("capture discarded")
}

func (r *Recorder) release(stream Stream, done chan struct{}) {
	if err := stream.Stop(); err != nil {
		r.log.Warn("stopping capture device", "error", err)
	}
	<-done
	if err := stream.Close(); err != nil {
		r.log.Warn("releasing capture device", "error", err)
	}
}

func (r *Recorder) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func concat(chunks [][]byte) []byte {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
