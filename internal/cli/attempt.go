// attempt.go implements run, submit and hint.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/skillforge-dev/skillforge/internal/attempt"
)

var showSolution bool

var runCmd = &cobra.Command{
	Use:   "run <id> <file>",
	Short: "Run your code against the exercise sandbox",
	Args:  cobra.ExactArgs(2),
	RunE:  runRun,
}

var submitCmd = &cobra.Command{
	Use:   "submit <id> <file>",
	Short: "Submit your code for grading",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubmit,
}

var hintCmd = &cobra.Command{
	Use:   "hint <id> [n]",
	Short: "Reveal the first n hints for an exercise",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runHint,
}

func init() {
	hintCmd.Flags().BoolVar(&showSolution, "solution", false, "Also reveal the solution explanation")
}

// loadCode opens the attempt and replaces its buffer with the file contents.
func loadCode(cmd *cobra.Command, id, file string) (*env, *attempt.Controller, error) {
	code, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", file, err)
	}
	e, ctrl, err := openAttempt(cmd, id)
	if err != nil {
		return nil, nil, err
	}
	ctrl.SetCode(string(code))
	return e, ctrl, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	e, ctrl, err := loadCode(cmd, args[0], args[1])
	if err != nil {
		return err
	}
	defer e.Close()

	out, err := ctrl.RunCode(cmd.Context())
	if err != nil {
		return err
	}
	if out.IsError {
		fmt.Fprintln(cmd.ErrOrStderr(), out.Text)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Text)
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	e, ctrl, err := loadCode(cmd, args[0], args[1])
	if err != nil {
		return err
	}
	defer e.Close()

	outcome, err := ctrl.Submit(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outcome.Awarded() {
		fmt.Fprintf(w, "%s +%d points\n", outcome.Message, outcome.PointsEarned)
		if id := e.guard.Identity(); id != nil {
			fmt.Fprintf(w, "Total: %d points (%s)\n", id.Points, id.Level)
		}
		return nil
	}
	fmt.Fprintln(w, outcome.Message)
	return nil
}

func runHint(cmd *cobra.Command, args []string) error {
	n := 1
	if len(args) == 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 1 {
			return fmt.Errorf("hint count must be a positive number, got %q", args[1])
		}
		n = v
	}

	e, ctrl, err := openAttempt(cmd, args[0])
	if err != nil {
		return err
	}
	defer e.Close()

	w := cmd.OutOrStdout()
	for i := 0; i < n; i++ {
		h, err := ctrl.RequestHint()
		if errors.Is(err, attempt.ErrHintsExhausted) {
			fmt.Fprintln(w, attempt.HintsExhaustedMessage)
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, h)
	}

	if showSolution {
		solution, err := ctrl.RevealSolution()
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Solution:")
		fmt.Fprintln(w, solution)
	}
	return nil
}
