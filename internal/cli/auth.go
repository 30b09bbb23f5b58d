// auth.go implements login, register, logout, whoami and role.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/session"
)

var (
	loginEmail   string
	registerName string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap()
		if err != nil {
			return err
		}
		defer e.Close()

		e.guard.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in learner",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var roleCmd = &cobra.Command{
	Use:   "role <sde|analyst|scientist|ml>",
	Short: "Choose your learning role",
	Long: `Set the role that decides which tracks you see. A role is required
before any exercise can be opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runRole,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
	registerCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	e, err := bootstrap()
	if err != nil {
		return err
	}
	defer e.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	email, err := promptLine(in, out, "Email: ", loginEmail)
	if err != nil {
		return err
	}
	password, err := promptPassword(in, cmd.InOrStdin(), out, "Password: ")
	if err != nil {
		return err
	}

	id, err := e.guard.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome back, %s!\n", id.FirstName())
	if !id.HasRole() {
		fmt.Fprintln(out, "Next: choose a role with 'skillforge role <sde|analyst|scientist|ml>'.")
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	e, err := bootstrap()
	if err != nil {
		return err
	}
	defer e.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	name, err := promptLine(in, out, "Name: ", registerName)
	if err != nil {
		return err
	}
	email, err := promptLine(in, out, "Email: ", loginEmail)
	if err != nil {
		return err
	}
	password, err := promptPassword(in, cmd.InOrStdin(), out, "Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword(in, cmd.InOrStdin(), out, "Confirm password: ")
	if err != nil {
		return err
	}

	id, err := e.guard.Register(cmd.Context(), session.Registration{
		Name:     name,
		Email:    email,
		Password: password,
		Confirm:  confirm,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s!\n", id.FirstName())
	fmt.Fprintln(out, "Next: choose a role with 'skillforge role <sde|analyst|scientist|ml>'.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e, err := bootstrap()
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.requireSession(cmd.Context(), false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s <%s>\n", id.Name, id.Email)
	role := string(id.Role)
	if role == "" {
		role = "(none)"
	}
	fmt.Fprintf(out, "Role:   %s\n", role)
	fmt.Fprintf(out, "Level:  %s\n", id.Level)
	fmt.Fprintf(out, "Points: %d\n", id.Points)
	return nil
}

func runRole(cmd *cobra.Command, args []string) error {
	role, err := domain.ParseRole(args[0])
	if err != nil {
		return err
	}

	e, err := bootstrap()
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.requireSession(cmd.Context(), false); err != nil {
		return err
	}
	if err := e.guard.UpdateRole(cmd.Context(), role); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, info := range domain.RoleCatalog {
		if info.Role == role {
			fmt.Fprintf(out, "You're on the %s path.\n", info.Title)
			fmt.Fprintf(out, "Tracks: %s\n", strings.Join(info.Tracks, ", "))
		}
	}
	return nil
}

// promptLine returns preset when set, otherwise reads one line from in.
func promptLine(in *bufio.Reader, out io.Writer, prompt, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when src is a terminal and as a plain
// line otherwise.
func promptPassword(in *bufio.Reader, src io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
