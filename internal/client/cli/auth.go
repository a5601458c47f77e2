package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/issuetracker/internal/common"
)

// Register prompts for a name, email and password, creates the account and
// keeps the returned session.
func (a *App) Register(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return report(err)
	}

	a.userName = u.Name
	a.projectID, a.projectKey, a.board = "", "", nil
	a.saveSession(ctx)
	printlnFn(fmt.Sprintf("Welcome, %s!", u.Name))
	return nil
}

// Login authenticates with email and password.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if email == "" {
		return report(errors.New("email is required"))
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Login(ctx, email, password)
	if err != nil {
		return report(err)
	}

	if u.Name != a.userName {
		a.projectID, a.projectKey, a.board = "", "", nil
	}
	a.userName = u.Name
	a.saveSession(ctx)
	printlnFn(fmt.Sprintf("Logged in as %s", u.Name))
	return nil
}

// Logout revokes the session on the server and forgets it locally even if
// the server could not be reached.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return report(err)
	}
	err := a.api.Logout(ctx)
	a.forget(ctx)
	if err != nil {
		return report(err)
	}
	printlnFn("Logged out")
	return nil
}
