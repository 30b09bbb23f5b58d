// Package cli defines Cobra command definitions for the skillforge CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/skillforge-dev/skillforge/internal/tui"
	"github.com/skillforge-dev/skillforge/internal/tui/app"
)

var (
	apiURL   string
	logLevel string
	version  = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "skillforge",
	Short: "Practice coding exercises with an AI mentor",
	Long: `SkillForge is a terminal client for the SkillForge learning platform.
Sign in, pick a role, work through exercises in the built-in editor, run
and submit code, and ask BRO, the AI mentor, by text or voice.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Without a TTY point at the subcommands instead
		if !tui.IsTTY() {
			tui.PrintFallback(cmd.OutOrStdout())
			return nil
		}

		e, err := bootstrap()
		if err != nil {
			return err
		}
		defer e.Close()

		return tui.Run(app.New(e.deps()))
	},
}

// Execute runs the root command. Called from main.
// An interrupt cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides config and SKILLFORGE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(voiceCmd)
}
