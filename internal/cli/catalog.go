// catalog.go implements tracks, tasks and task.
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillforge-dev/skillforge/internal/attempt"
	"github.com/skillforge-dev/skillforge/internal/domain"
)

var trackFlag string

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List tracks with your progress",
	Args:  cobra.NoArgs,
	RunE:  runTracks,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks [track]",
	Short: "List the exercises in a track",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTasks,
}

var taskCmd = &cobra.Command{
	Use:   "task <id>",
	Short: "Show an exercise and its starter code",
	Args:  cobra.ExactArgs(1),
	RunE:  runTask,
}

func init() {
	for _, c := range []*cobra.Command{taskCmd, runCmd, submitCmd, hintCmd, chatCmd, voiceCmd} {
		c.Flags().StringVar(&trackFlag, "track", "", "Track containing the exercise (default from config)")
	}
}

func runTracks(cmd *cobra.Command, args []string) error {
	e, err := bootstrap()
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.requireSession(cmd.Context(), true); err != nil {
		return err
	}

	tracks, err := e.catalog.Overview(cmd.Context())
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tracks available yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRACK\tPROGRESS\tNEXT")
	for _, t := range tracks {
		next := t.NextUp
		if next == "" {
			next = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d (%d%%)\t%s\n", t.ID, t.Name,
			t.CompletedTasks, t.TotalTasks, domain.ProgressPercent(t.CompletedTasks, t.TotalTasks), next)
	}
	return w.Flush()
}

func runTasks(cmd *cobra.Command, args []string) error {
	e, err := bootstrap()
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.requireSession(cmd.Context(), true); err != nil {
		return err
	}

	flag := ""
	if len(args) == 1 {
		flag = args[0]
	}
	view, err := e.catalog.Load(cmd.Context(), e.trackID(flag))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if view.Empty() {
		fmt.Fprintln(out, "No exercises available yet.")
		return nil
	}
	fmt.Fprintf(out, "%s  %d/%d complete (%d%%)\n\n", view.Name, view.Completed, view.Total, view.Percent())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tTITLE\tDIFFICULTY\tPOINTS")
	for _, ex := range view.Exercises {
		mark := " "
		if ex.Completed {
			mark = "✓"
		}
		difficulty := string(ex.Difficulty)
		if difficulty == "" {
			difficulty = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", mark, ex.ID, ex.Title, difficulty, ex.Points)
	}
	return w.Flush()
}

func runTask(cmd *cobra.Command, args []string) error {
	e, ctrl, err := openAttempt(cmd, args[0])
	if err != nil {
		return err
	}
	defer e.Close()

	ex, _ := ctrl.Exercise()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", ex.Title, ex.ID)
	meta := []string{fmt.Sprintf("%d points", ex.Points)}
	if ex.Difficulty != "" {
		meta = append([]string{string(ex.Difficulty)}, meta...)
	}
	if ex.Completed {
		meta = append(meta, "completed")
	}
	fmt.Fprintln(out, strings.Join(meta, " · "))
	fmt.Fprintln(out)
	fmt.Fprintln(out, ex.Description)
	if ex.StarterCode != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Starter code:")
		fmt.Fprintln(out, ex.StarterCode)
	}
	if n := len(ex.Hints); n > 0 {
		fmt.Fprintf(out, "\n%d hints available: skillforge hint %s\n", n, ex.ID)
	}
	return nil
}

// openAttempt restores the session and loads the exercise behind id.
func openAttempt(cmd *cobra.Command, id string) (*env, *attempt.Controller, error) {
	e, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	if _, err := e.requireSession(cmd.Context(), true); err != nil {
		e.Close()
		return nil, nil, err
	}

	ctrl := attempt.New(e.backend, e.trackID(trackFlag), id,
		attempt.WithProfileRefresher(e.guard),
		attempt.WithCompletionSink(e.catalog),
		attempt.WithLogger(e.log),
	)
	if err := ctrl.Load(cmd.Context()); err != nil {
		e.Close()
		return nil, nil, err
	}
	return e, ctrl, nil
}
