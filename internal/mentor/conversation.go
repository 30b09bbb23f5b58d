// Package mentor runs conversations with BRO, the AI mentor. A conversation
// keeps an ordered transcript and allows one outstanding request at a time,
// so replies always land in send order.
package mentor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/skillforge-dev/skillforge/internal/api"
	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/logger"
)

// Context labels for the floating mentor.
const (
	ModeGeneral = "General Chat"
	ModeResume  = "Resume Help Mode"
)

// Fixed transcript text.
const (
	VoicePlaceholder = "🎤 Voice message..."
	VoiceFallback    = "Voice processing had an issue. Try typing instead!"
	GeneralFallback  = "Oops, had a connection hiccup. Try again?"
	ExerciseFallback = "Hmm, having some connection issues. Give me a sec and try again!"
)

var (
	// ErrBusy rejects a send while another request is outstanding.
	ErrBusy = errors.New("mentor is still replying")

	ErrEmptyMessage = &domain.ValidationError{Field: "message", Message: "message is empty"}
	ErrEmptyAudio   = &domain.ValidationError{Field: "audio", Message: "recording is empty"}
)

// Role says who wrote a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleMentor Role = "mentor"
)

// Message is one transcript entry. Pending marks a voice placeholder that
// has not been replaced by its transcription.
type Message struct {
	ID      string
	Role    Role
	Content string
	Pending bool
}

// Service is the mentor backend.
type Service interface {
	Chat(ctx context.Context, message, label string) (string, error)
	Voice(ctx context.Context, upload api.VoiceUpload, label string) (*api.VoiceReply, error)
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithLogger sets the conversation's logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Conversation) {
		c.log = l
	}
}

// Conversation is one mentor transcript bound to a context label.
type Conversation struct {
	id       string
	svc      Service
	log      *logger.Logger
	fallback string

	mu         sync.Mutex
	label      string
	transcript []Message
	busy       bool
}

func newConversation(svc Service, label, greeting, fallback string, opts []Option) *Conversation {
	c := &Conversation{
		id:       uuid.NewString(),
		svc:      svc,
		log:      logger.Nop(),
		fallback: fallback,
		label:    label,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("conversation", c.id)
	c.transcript = []Message{newMessage(RoleMentor, greeting)}
	return c
}

// NewGeneral creates the floating, mode-scoped conversation.
func NewGeneral(svc Service, firstName string, opts ...Option) *Conversation {
	if firstName == "" {
		firstName = "there"
	}
	greeting := fmt.Sprintf("Hey %s! 👊 I'm BRO, your AI mentor.\n\n"+
		"I can help you with:\n"+
		"• DSA concepts & problem hints\n"+
		"• Resume reviews & tips\n"+
		"• Interview preparation\n"+
		"• Career guidance\n\n"+
		"What would you like to work on today?", firstName)
	return newConversation(svc, ModeGeneral, greeting, GeneralFallback, opts)
}

// NewForExercise creates a conversation about one exercise.
func NewForExercise(svc Service, title string, opts ...Option) *Conversation {
	greeting := fmt.Sprintf("Hey! Working on %q? Nice choice! 👊\n\n"+
		"Take your time to understand the problem first. If you get stuck, "+
		"I'm here to help with hints - not answers. What have you figured out so far?", title)
	return newConversation(svc, ExerciseContext(title), greeting, ExerciseFallback, opts)
}

// ExerciseContext is the context label for an exercise-scoped conversation.
func ExerciseContext(title string) string {
	return "Task: " + title
}

func newMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}

// ID identifies the conversation in logs.
func (c *Conversation) ID() string {
	return c.id
}

// Context returns the label attached to the next send.
func (c *Conversation) Context() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

// SetContext changes the label for later sends. History and any request
// already in flight are unaffected.
func (c *Conversation) SetContext(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.label = label
}

// Busy reports whether a request is outstanding.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Transcript returns a copy of the messages so far.
func (c *Conversation) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.transcript...)
}

// SendText appends the learner's message, asks the mentor and appends exactly
// one reply, or the fallback when the backend fails. Blank content returns
// ErrEmptyMessage and a send while busy returns ErrBusy; neither touches the
// transcript.
func (c *Conversation) SendText(ctx context.Context, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.busy = true
	c.transcript = append(c.transcript, newMessage(RoleUser, content))
	label := c.label
	c.mu.Unlock()

	reply, err := c.svc.Chat(ctx, content, label)
	if err != nil || strings.TrimSpace(reply) == "" {
		c.log.Warn("mentor chat failed", "context", label, "error", err)
		reply = c.fallback
	}

	msg := newMessage(RoleMentor, reply)
	c.mu.Lock()
	c.transcript = append(c.transcript, msg)
	c.busy = false
	c.mu.Unlock()
	return msg, nil
}

// SendVoice appends a pending placeholder, uploads the recording and, on
// success, replaces the placeholder with the transcription and appends the
// reply. On failure the placeholder stays and the voice fallback is appended.
// A blank transcription keeps the placeholder and a blank reply becomes the
// voice fallback.
func (c *Conversation) SendVoice(ctx context.Context, p audio.Payload) (Message, error) {
	if len(p.Data) == 0 {
		return Message{}, ErrEmptyAudio
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.busy = true
	placeholder := newMessage(RoleUser, VoicePlaceholder)
	placeholder.Pending = true
	c.transcript = append(c.transcript, placeholder)
	label := c.label
	c.mu.Unlock()

	upload := api.VoiceUpload{Data: p.Data, Filename: p.Filename, MIMEType: p.MIMEType}
	res, err := c.svc.Voice(ctx, upload, label)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.busy = false }()

	if err != nil || res == nil {
		c.log.Warn("mentor voice failed", "context", label, "error", err)
		msg := newMessage(RoleMentor, VoiceFallback)
		c.transcript = append(c.transcript, msg)
		return msg, nil
	}

	// A blank transcription leaves the placeholder as it is.
	if text := strings.TrimSpace(res.Transcription); text != "" {
		for i := range c.transcript {
			if c.transcript[i].ID == placeholder.ID {
				c.transcript[i].Content = text
				c.transcript[i].Pending = false
				break
			}
		}
	}
	reply := res.Response
	if strings.TrimSpace(reply) == "" {
		c.log.Warn("mentor voice reply empty", "context", label)
		reply = VoiceFallback
	}
	msg := newMessage(RoleMentor, reply)
	c.transcript = append(c.transcript, msg)
	return msg, nil
}

// VoiceHandoff adapts SendVoice for an audio.Recorder.
func (c *Conversation) VoiceHandoff() audio.Handoff {
	return func(ctx context.Context, p audio.Payload) error {
		_, err := c.SendVoice(ctx, p)
		return err
	}
}
