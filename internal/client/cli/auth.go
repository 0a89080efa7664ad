package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/provider"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// logIn prompts for credentials and submits them. It reports whether a user
// is now signed in.
func (a *App) logIn(ctx context.Context) bool {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		a.println("error:", err)
		return false
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		a.println("error:", err)
		return false
	}
	defer wipe(password)

	res, err := a.manager.LogIn(ctx, session.Credentials{Email: email, Password: string(password)})
	if err != nil {
		a.println("Login unsuccessful:", describe(err))
		return false
	}
	if res.ChallengeRequired() {
		a.printf("Login needs one more step (%s). Complete it with your identity provider and log in again.\n", res.Challenge)
		return false
	}

	a.printf("Welcome, %s!\n", displayName(res.User))
	return true
}

func (a *App) signUp(ctx context.Context, _ []string) {
	var req session.SignUpRequest
	var err error

	for _, field := range []struct {
		prompt string
		dst    *string
	}{
		{"Enter email", &req.Email},
		{"Enter name", &req.Name},
		{"Enter country", &req.Country},
	} {
		if *field.dst, err = getSimpleText(a.reader, field.prompt, a.out); err != nil {
			a.println("error:", err)
			return
		}
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		a.println("error:", err)
		return
	}
	defer wipe(password)

	repeat, err := getPassword(a.out, "Repeat password")
	if err != nil {
		a.println("error:", err)
		return
	}
	defer wipe(repeat)

	if string(password) != string(repeat) {
		a.println("Passwords do not match")
		return
	}
	req.Password = string(password)

	user, err := a.manager.SignUp(ctx, req)
	if err != nil {
		a.println("Sign-up unsuccessful:", describe(err))
		return
	}
	if user == nil {
		a.println("Account created. Confirm it before logging in.")
		return
	}
	a.printf("Account created. Welcome, %s!\n", displayName(user))
}

func (a *App) confirm(ctx context.Context, args []string) {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			a.println("error:", err)
			return
		}
	}

	if err := a.confirmer.ConfirmSignUp(ctx, email); err != nil {
		a.println("Confirmation unsuccessful:", describe(err))
		return
	}
	a.println("Account confirmed, you can log in now")
}

// logOut signs out this device, or every device with --global or -g.
func (a *App) logOut(ctx context.Context, args []string) {
	global := false
	for _, arg := range args {
		if arg == "--global" || arg == "-g" {
			global = true
		}
	}

	a.loggingOut.Store(true)
	defer a.loggingOut.Store(false)

	a.manager.LogOut(ctx, global)
	if global {
		a.println("Logged out from every device")
	} else {
		a.println("Logged out")
	}
}

// describe turns provider failures into short user-facing messages.
func describe(err error) string {
	switch {
	case errors.Is(err, provider.ErrNotAuthorized):
		return "incorrect email or password"
	case errors.Is(err, provider.ErrUserNotFound):
		return "no account with this email"
	case errors.Is(err, provider.ErrUserNotConfirmed):
		return "the account is not confirmed yet"
	case errors.Is(err, provider.ErrUserExists):
		return "an account with this email already exists"
	case errors.Is(err, provider.ErrTooManyRequests):
		return "too many attempts, try again later"
	case session.IsTransport(err):
		return "the identity provider is unreachable, check your connection"
	default:
		return err.Error()
	}
}

func displayName(u *session.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}
