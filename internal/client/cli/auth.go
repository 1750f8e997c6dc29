package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/services"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) prompt(text string) (string, error) {
	return getSimpleText(a.reader, text, a.out)
}

// credentials prompts for an email and a password. The caller must wipe
// the returned password.
func (a *App) credentials() (string, []byte, error) {
	email, err := a.prompt("Enter email")
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

func (a *App) greet() {
	s := a.session.Snapshot()
	if s.Identity == nil {
		return
	}
	name := s.Identity.DisplayName
	if name == "" {
		name = s.Identity.Email
	}
	a.printf("Logged in as %s (%s)\n", name, s.Identity.UserType)
}

// Register creates an account and starts email verification. Admin
// accounts cannot be created from the client.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer WipeByteArray(password)

	roleText, err := a.prompt("Account type (seeker/employer)")
	if err != nil {
		return err
	}
	role, err := models.ParseUserType(roleText)
	if err != nil {
		return client.NewValidationError("Account type must be seeker or employer.")
	}

	resp, err := a.session.Register(ctx, email, string(password), role)
	if err != nil {
		return err
	}

	if resp != nil && resp.Message != "" {
		a.println(resp.Message)
	}
	a.println("Check your email for a verification code, then run 'verify-otp'.")
	return nil
}

// VerifyOTP submits the code for whichever flow is waiting for one.
func (a *App) VerifyOTP(ctx context.Context) error {
	code, err := a.prompt("Enter the code from your email")
	if err != nil {
		return err
	}

	result, err := a.session.VerifyOTP(ctx, code)
	if err != nil {
		return err
	}

	switch result {
	case services.OTPResultLoggedIn:
		a.greet()
	case services.OTPResultRoleSelection:
		a.println("Choose your role with 'select-role'.")
	case services.OTPResultResetReady:
		a.println("Code accepted. Set a new password with 'reset-password'.")
	default:
		a.println("Email verified. You can now log in.")
	}
	return nil
}

// SelectRole finishes a login that requires the user to pick a role.
func (a *App) SelectRole(ctx context.Context) error {
	roleText, err := a.prompt("Role (seeker/employer)")
	if err != nil {
		return err
	}
	role, err := models.ParseUserType(roleText)
	if err != nil {
		return client.NewValidationError("Role must be seeker or employer.")
	}

	if err := a.session.SelectRole(ctx, role); err != nil {
		return err
	}
	a.greet()
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		a.log.Info(ctx, "login unsuccessful", "error", err)
		return err
	}
	a.log.Info(ctx, "login successful")
	a.greet()
	return nil
}

// AdminLogin authenticates an administrator. When the server asks for a
// second factor the user continues with 'verify-otp'.
func (a *App) AdminLogin(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer WipeByteArray(password)

	otpRequired, err := a.session.AdminLogin(ctx, email, string(password))
	if err != nil {
		return err
	}
	if otpRequired {
		a.println("A one-time code was sent to your email. Enter it with 'verify-otp'.")
		return nil
	}
	a.greet()
	return nil
}

// SocialLogin installs a token obtained from a third-party provider.
//
//	social-login <token> [email] [role]
func (a *App) SocialLogin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: social-login <token> [email] [role]")
		return nil
	}

	var (
		email string
		role  models.UserType
	)
	if len(args) > 1 {
		email = args[1]
	}
	if len(args) > 2 {
		r, err := models.ParseUserType(args[2])
		if err != nil {
			return client.NewValidationError(fmt.Sprintf("Unknown role %q.", args[2]))
		}
		role = r
	}

	if err := a.session.SocialLogin(ctx, args[0], email, role); err != nil {
		return err
	}
	a.greet()
	return nil
}

// ForgotPassword requests a password reset code.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	if err := a.session.ForgotPassword(ctx, email); err != nil {
		return err
	}
	a.println("If the account exists, a reset code was sent. Enter it with 'verify-otp'.")
	return nil
}

// ResetPassword sets a new password once the reset code was accepted.
func (a *App) ResetPassword(ctx context.Context) error {
	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer WipeByteArray(password)

	confirm, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return errPasswordMismatch
	}

	if err := a.session.ResetPassword(ctx, string(password)); err != nil {
		return err
	}
	a.println("Password updated. You can now log in.")
	return nil
}

// WhoAmI prints the current identity.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.session.Snapshot()
	if s.Identity == nil {
		a.println("Not logged in")
		return nil
	}

	id := s.Identity
	lines := []string{
		"Email: " + id.Email,
		"Role:  " + string(id.UserType),
	}
	if id.DisplayName != "" {
		lines = append(lines, "Name:  "+id.DisplayName)
	}
	if !id.ExpiresAt.IsZero() {
		lines = append(lines, "Token expires: "+id.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	a.println(strings.Join(lines, "\n"))
	return nil
}

// Logout ends the session. It never fails because of the network.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}
