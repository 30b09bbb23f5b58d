// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Common key binding constants.
const (
	KeyCtrlC = "ctrl+c"
	KeyCtrlJ = "ctrl+j"
	KeyTab   = "tab"
	KeyEnter = "enter"
	KeyEsc   = "esc"
	KeyUp    = "up"
	KeyDown  = "down"
)

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the TUI program with the given model.
// If stdout is a TTY, it runs in alternate screen mode.
// Otherwise it prints the equivalent subcommands and returns.
func Run(m tea.Model) error {
	if IsTTY() {
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	}
	PrintFallback(os.Stdout)
	return nil
}

// PrintFallback guides non-interactive users to the CLI subcommands.
func PrintFallback(w io.Writer) {
	fmt.Fprintln(w, "Non-TTY environment detected.")
	fmt.Fprintln(w, "Use the subcommands instead:")
	fmt.Fprintln(w, "  skillforge login | register | whoami | role <role>")
	fmt.Fprintln(w, "  skillforge tracks | tasks [track] | task <id>")
	fmt.Fprintln(w, "  skillforge run <id> <file> | submit <id> <file> | hint <id> [n]")
	fmt.Fprintln(w, "  skillforge chat <message> | voice --seconds N")
}
