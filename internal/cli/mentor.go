// mentor.go implements chat and voice.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillforge-dev/skillforge/internal/audio"
	"github.com/skillforge-dev/skillforge/internal/mentor"
	"github.com/skillforge-dev/skillforge/internal/ui"
)

var (
	chatMode     string
	chatTask     string
	voiceSeconds int
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask BRO, the AI mentor",
	Long: `Send one message to BRO and print the reply. Use --task to ask about
a specific exercise, or --mode resume for resume help.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Record a question for BRO and print the reply",
	Args:  cobra.NoArgs,
	RunE:  runVoice,
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, voiceCmd} {
		c.Flags().StringVar(&chatMode, "mode", "general", "Conversation mode: general or resume")
		c.Flags().StringVar(&chatTask, "task", "", "Ask about this exercise id")
	}
	voiceCmd.Flags().IntVar(&voiceSeconds, "seconds", 5, "How long to record")
}

// openConversation builds the conversation the flags describe.
func openConversation(cmd *cobra.Command) (*env, *mentor.Conversation, error) {
	if chatTask != "" {
		e, ctrl, err := openAttempt(cmd, chatTask)
		if err != nil {
			return nil, nil, err
		}
		ex, _ := ctrl.Exercise()
		return e, mentor.NewForExercise(e.backend, ex.Title, mentor.WithLogger(e.log)), nil
	}

	mode, ok := mentor.ModeForFlag(chatMode)
	if !ok {
		return nil, nil, fmt.Errorf("unknown mode %q: use general or resume", chatMode)
	}
	e, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	id, err := e.requireSession(cmd.Context(), true)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	conv := mentor.NewGeneral(e.backend, id.FirstName(), mentor.WithLogger(e.log))
	conv.SetContext(mode)
	return e, conv, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	e, conv, err := openConversation(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	reply, err := conv.SendText(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
	return nil
}

func runVoice(cmd *cobra.Command, args []string) error {
	if voiceSeconds < 1 {
		return fmt.Errorf("--seconds must be at least 1, got %d", voiceSeconds)
	}
	e, conv, err := openConversation(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	device := e.device()
	if device == nil {
		return fmt.Errorf("%w: set audio.command in config", audio.ErrPermissionDenied)
	}
	rec := audio.NewRecorder(device, conv.VoiceHandoff(), e.recorderOptions()...)
	defer rec.Teardown()

	progress := ui.NewProgress(cmd.ErrOrStderr(), "Voice message for BRO")
	progress.Add("record", fmt.Sprintf("Recording for %ds", voiceSeconds))
	progress.Add("reply", "Waiting for BRO")
	defer progress.Finish()

	progress.Begin("record")
	if err := rec.Start(cmd.Context()); err != nil {
		progress.Fail("record")
		return err
	}

	select {
	case <-time.After(time.Duration(voiceSeconds) * time.Second):
	case <-cmd.Context().Done():
		progress.Fail("record")
		return cmd.Context().Err()
	}
	progress.Done("record")

	progress.Begin("reply")
	if _, err := rec.Stop(cmd.Context()); err != nil {
		progress.Fail("reply")
		return err
	}
	progress.Done("reply")

	w := cmd.OutOrStdout()
	tr := conv.Transcript()
	// greeting, then the transcription and the reply
	for _, msg := range tr[1:] {
		prefix := "BRO: "
		if msg.Role == mentor.RoleUser {
			prefix = "You: "
		}
		fmt.Fprintln(w, prefix+msg.Content)
	}
	return nil
}
