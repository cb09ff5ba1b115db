package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiffcs/codewatch/config"
	"github.com/spiffcs/codewatch/internal/model"
	"github.com/spiffcs/codewatch/internal/service"
	"github.com/spiffcs/codewatch/internal/tui"
	"golang.org/x/term"
)

// NewCmdLogin creates the login command.
func NewCmdLogin(opts *Options) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in to GitHub",
		Long: `Log in to GitHub and remember the session for later commands.

Without --token you are prompted for a secret. When client_id is configured
the secret is your password, exchanged for a token through the OAuth app.
Otherwise it is a personal access token, which must belong to <username>.
Without a terminal the secret is read from ` + config.EnvPassword + `.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, args[0], token, opts)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Use an already issued token as is")
	return cmd
}

func runLogin(cmd *cobra.Command, username, token string, opts *Options) error {
	a, err := newApp(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	var secret string
	if token == "" {
		secret, err = readSecret(a.cfg, username)
		if err != nil {
			return err
		}
	}

	result := make(chan error, 1)
	observer := &service.Funcs{
		OnLoginSucceeded: func(string, string) { result <- nil },
		OnLoginFailed:    func(_ string, err error) { result <- err },
	}
	id, err := a.svc.RegisterObserver(observer)
	if err != nil {
		return err
	}
	defer a.svc.DeregisterObserver(id)

	p := a.startProgress(tui.LoginTasks())
	p.start(tui.TaskAuth)

	if token != "" {
		err = a.svc.LogInWithToken(username, token)
	} else {
		err = a.svc.LogIn(username, secret)
	}
	if waitErr := a.wait(cmd.Context(), p); waitErr != nil {
		return waitErr
	}
	if err != nil {
		return loginError(err)
	}

	select {
	case err := <-result:
		if err != nil {
			return loginError(err)
		}
	default:
		return fmt.Errorf("login did not complete")
	}

	if p == nil {
		fmt.Fprintf(a.out, "Logged in as %s\n", username)
	}
	return nil
}

func loginError(err error) error {
	if model.KindOf(err) == model.KindLoginInProgress {
		return err
	}
	return fmt.Errorf("login failed: %w", err)
}

// readSecret prompts for the login secret with hidden input, falling back
// to the environment when stdin is not a terminal.
func readSecret(cfg *config.Config, username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		if secret := cfg.Password(); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("no terminal to prompt for a password. Set %s or use --token", config.EnvPassword)
	}

	fmt.Fprintf(os.Stderr, "Password or token for %s: ", username)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	secret := strings.TrimSpace(string(b))
	if secret == "" {
		return "", fmt.Errorf("password is required")
	}
	return secret, nil
}
