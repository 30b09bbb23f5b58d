package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/mentor"
	"github.com/skillforge-dev/skillforge/internal/tui"
)

// SendTextCmd asks the mentor and waits for the reply.
func SendTextCmd(conv *mentor.Conversation, content string) tea.Cmd {
	return func() tea.Msg {
		reply, err := conv.SendText(context.Background(), content)
		return tui.MentorReplyMsg{ConversationID: conv.ID(), Reply: reply, Err: err}
	}
}

// StartRecordingCmd opens the microphone.
func StartRecordingCmd(conv *mentor.Conversation, rec *audio.Recorder) tea.Cmd {
	return func() tea.Msg {
		return tui.RecordingStartedMsg{ConversationID: conv.ID(), Err: rec.Start(context.Background())}
	}
}

// StopRecordingCmd ends the capture. The recorder hands the audio to the
// conversation, so the reply is already in its transcript when this returns.
func StopRecordingCmd(conv *mentor.Conversation, rec *audio.Recorder) tea.Cmd {
	return func() tea.Msg {
		_, err := rec.Stop(context.Background())
		return tui.MentorReplyMsg{ConversationID: conv.ID(), Err: err}
	}
}
