package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/bitevents/bitevents/internal/model"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("%q does not look like an email address", email)
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// readLine prompts and reads a single line. Passwords are read from the same
// stream; the stub is a local dev tool so no terminal echo suppression.
func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	if *email == "" {
		v, err := a.readLine("Email: ")
		if err != nil {
			return err
		}
		*email = v
	}
	if err := validateEmail(*email); err != nil {
		return err
	}
	password, err := a.readLine("Password: ")
	if err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, model.LoginRequest{Email: *email, Password: password})
	if err != nil {
		return a.fail(err)
	}
	a.session.Login(resp.User, resp.Token)
	a.logger.Debug("logged in", zap.Int64("user_id", resp.User.ID))
	fmt.Fprintf(a.out, "Welcome back, %s!\n", resp.User.FullName)
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	organizer := fs.Bool("organizer", false, "register as an event organizer")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	if strings.TrimSpace(*name) == "" {
		return errors.New("-name is required")
	}
	if err := validateEmail(*email); err != nil {
		return err
	}
	password, err := a.readLine("Password: ")
	if err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	confirm, err := a.readLine("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	resp, err := a.client.Register(ctx, model.RegisterRequest{
		FullName:    strings.TrimSpace(*name),
		Email:       *email,
		Password:    password,
		IsOrganizer: *organizer,
	})
	if err != nil {
		return a.fail(err)
	}
	a.session.Login(resp.User, resp.Token)
	fmt.Fprintf(a.out, "Account created. Welcome, %s!\n", resp.User.FullName)
	return nil
}

func (a *App) cmdLogout() error {
	a.session.Logout()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) cmdWhoami() error {
	user := a.session.User()
	if user == nil || !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	role := "attendee"
	if user.IsOrganizer {
		role = "organizer"
	}
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.FullName, user.Email, role)
	return nil
}
