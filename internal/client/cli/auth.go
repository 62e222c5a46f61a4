package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/userauth/internal/client/client"
	"github.com/dmitrijs2005/userauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in, use 'login' first")

// Register prompts for username, email and password and creates an account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Register(ctx, userName, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Success! Registered %s (id %d)\n", u.Username, u.ID)
	return nil
}

// Login prompts for credentials and keeps the returned token for later
// commands. The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.api.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	a.setSession(token, userName)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Profile prints the logged-in user's profile. An expired session is
// cleared so the prompt reflects it.
func (a *App) Profile(ctx context.Context) error {
	token, _ := a.session()
	if token == "" {
		return errNotLoggedIn
	}

	u, err := a.api.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.setSession("", "")
			return errors.New("session expired, please log in again")
		}
		return err
	}

	fmt.Fprintf(a.out, "ID:       %d\nUsername: %s\nEmail:    %s\nRoles:    %s\n",
		u.ID, u.Username, u.Email, strings.Join(u.Roles, ", "))
	return nil
}

// Refresh exchanges the current token for a new one.
func (a *App) Refresh(ctx context.Context) error {
	token, userName := a.session()
	if token == "" {
		return errNotLoggedIn
	}

	fresh, err := a.api.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.setSession("", "")
			return errors.New("session expired, please log in again")
		}
		return err
	}

	a.setSession(fresh, userName)
	fmt.Fprintln(a.out, "Token refreshed")
	return nil
}

// Logout forgets the current token.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	a.setSession("", "")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
