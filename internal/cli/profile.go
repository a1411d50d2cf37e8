package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/bitevents/bitevents/internal/model"
)

func (a *App) cmdProfile(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "new full name")
	picture := fs.String("picture", "", "new profile picture URL")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	// No flags means show, any flag means update.
	if *name == "" && *picture == "" {
		user, err := a.client.Me(ctx)
		if err != nil {
			return a.fail(err)
		}
		role := "attendee"
		if user.IsOrganizer {
			role = "organizer"
		}
		fmt.Fprintf(a.out, "Name:  %s\nEmail: %s\nRole:  %s\n", user.FullName, user.Email, role)
		if user.RegistrationDate != nil {
			fmt.Fprintf(a.out, "Since: %s\n", user.RegistrationDate.Local().Format("2 Jan 2006"))
		}
		return nil
	}

	current := a.session.User()
	req := model.UpdateProfileRequest{FullName: strings.TrimSpace(*name)}
	if req.FullName == "" && current != nil {
		req.FullName = current.FullName
	}
	if *picture != "" {
		req.ProfilePicture = picture
	} else if current != nil {
		req.ProfilePicture = current.ProfilePicture
	}

	user, err := a.client.UpdateProfile(ctx, req)
	if err != nil {
		return a.fail(err)
	}
	// Keep the stored session in sync with the server copy.
	a.session.SetUser(*user)
	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}

func (a *App) cmdPassword(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) != 0 {
		return errors.New("password takes no arguments, it prompts interactively")
	}
	current, err := a.readLine("Current password: ")
	if err != nil {
		return err
	}
	next, err := a.readLine("New password: ")
	if err != nil {
		return err
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	confirm, err := a.readLine("Confirm new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return errors.New("passwords do not match")
	}

	if err := a.client.ChangePassword(ctx, model.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

func (a *App) cmdDeleteAccount(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("delete-account", flag.ContinueOnError)
	fs.SetOutput(a.out)
	force := fs.Bool("force", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	if !*force {
		answer, err := a.readLine("This permanently deletes your account and registrations. Type 'yes' to continue: ")
		if err != nil {
			return err
		}
		if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}

	if err := a.client.DeleteAccount(ctx); err != nil {
		return a.fail(err)
	}
	a.session.Logout()
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}
