package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ryozaki/mbx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// promptPassword reads a password from the terminal without echoing it.
func (r *Runner) promptPassword(prompt string) (string, error) {
	r.writePlain("%s: ", prompt)
	password, err := readPassword(int(os.Stdin.Fd()))
	r.writePlain("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// AuthRegister creates an account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	email := cmd.String("email")

	if err := shared.ValidateUsername(username); err != nil {
		return err
	}
	if err := shared.ValidateEmail(email); err != nil {
		return err
	}

	password, err := r.promptPassword("Password")
	if err != nil {
		return err
	}
	if err := shared.ValidatePassword(password); err != nil {
		return err
	}

	confirmation, err := r.promptPassword("Confirm password")
	if err != nil {
		return err
	}
	if err := shared.ValidatePasswordConfirmation(password, confirmation); err != nil {
		return err
	}

	r.logger.Info("registering account", "username", username)

	result := r.session.Register(ctx, username, email, password)
	if !result.OK {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, result.Error)
	}

	user := r.session.CurrentUser()
	r.writePlain("✓ Account created\n")
	r.writePlain("Signed in as %s (%s)\n", user.Username, user.Email)
	return nil
}

// AuthLogin signs in with email and password.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	if err := shared.ValidateEmail(email); err != nil {
		return err
	}

	password, err := r.promptPassword("Password")
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "email", email)

	result := r.session.Login(ctx, email, password)
	if !result.OK {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, result.Error)
	}

	user := r.session.CurrentUser()
	r.writePlain("✓ Signed in as %s\n", user.Username)
	return nil
}

// AuthLogout discards the stored session token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		r.session.Initialize(ctx)
	}

	r.session.Logout()
	r.writePlain("✓ Signed out\n")
	return nil
}

// AuthWhoami shows the signed-in account, resolving the stored token if needed.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	r.session.Initialize(ctx)

	user := r.session.CurrentUser()
	if user == nil {
		return fmt.Errorf("%w: run 'mbx auth login' first", shared.ErrNotAuthenticated)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("Signed in as %s\n", user.Username)
	r.writePlain("Email: %s\n", user.Email)
	if user.Bio != "" {
		r.writePlain("Bio: %s\n", user.Bio)
	}
	return nil
}
