package cli

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/client/client"
	"github.com/dmitrijs2005/issuetracker/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoggedIn(t *testing.T) {
	app := &App{}
	if app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == false without a user")
	}
	app.userName = "Alice"
	if !app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == true with a user")
	}
}

func TestRequireProject(t *testing.T) {
	app := &App{}
	assert.Error(t, app.requireProject())

	app.userName = "Alice"
	assert.ErrorContains(t, app.requireProject(), "no project selected")

	app.projectID = "p1"
	assert.NoError(t, app.requireProject())
}

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	app := &App{}
	var buf bytes.Buffer

	old := log.Default().Writer()
	defer log.SetOutput(old)
	log.SetOutput(&buf)

	app.setMode(ModeOnline)
	if app.mode() != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.mode())
	}
	if buf.String() == "" {
		t.Fatalf("expected log output on mode change, got empty")
	}

	buf.Reset()
	app.setMode(ModeOnline)
	if got := buf.String(); got != "" {
		t.Fatalf("expected no log output when mode doesn't change, got: %q", got)
	}

	app.setMode(ModeOffline)
	if app.mode() != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.mode())
	}
}

func TestCheckOnline(t *testing.T) {
	old := log.Default().Writer()
	log.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { log.SetOutput(old) })

	a, api, _ := newTestApp(t)
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, a.mode())

	api.errs = map[string]error{"Ping": client.ErrUnavailable}
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, a.mode())
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done
}

func TestRestoreSession(t *testing.T) {
	a, api, store := newTestApp(t)
	store.s = session.Session{Token: "tok", UserName: "Alice", ProjectID: "p1", ProjectKey: "WEB"}

	require.NoError(t, a.restoreSession(context.Background()))
	assert.Equal(t, "tok", api.Token())
	assert.Equal(t, "Alice", a.userName)
	assert.Equal(t, "WEB", a.projectKey)
}

func TestRestoreSession_EmptyAndError(t *testing.T) {
	a, _, store := newTestApp(t)
	require.NoError(t, a.restoreSession(context.Background()))
	assert.False(t, a.isLoggedIn())

	store.loadErr = errors.New("disk")
	assert.Error(t, a.restoreSession(context.Background()))
}

func TestVerifySession_ForgetsRejectedToken(t *testing.T) {
	capturePrint(t)
	a, api, store := newTestApp(t)
	loggedIn(a)
	api.errs = map[string]error{"Profile": &client.APIError{StatusCode: 401, Message: "Not authorized, token failed"}}

	a.verifySession(context.Background())
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.projectID)
	assert.True(t, store.cleared)
}

func TestVerifySession_KeepsSessionWhenOffline(t *testing.T) {
	a, api, store := newTestApp(t)
	loggedIn(a)
	api.errs = map[string]error{"Profile": client.ErrUnavailable}

	a.verifySession(context.Background())
	assert.True(t, a.isLoggedIn())
	assert.False(t, store.cleared)
}

func TestSaveSession(t *testing.T) {
	a, api, store := newTestApp(t)
	loggedIn(a)
	api.token = "tok"

	a.saveSession(context.Background())
	assert.Equal(t, session.Session{Token: "tok", UserName: "Alice", ProjectID: "p1", ProjectKey: "WEB"}, store.s)
}

func TestReport(t *testing.T) {
	out := capturePrint(t)

	assert.NoError(t, report(nil))
	err := report(client.ErrUnavailable)
	assert.ErrorIs(t, err, client.ErrUnavailable)
	report(errors.New("boom"))

	assert.Equal(t, []string{"Server unavailable, try again later", "Error: boom"}, *out)
}

func TestGetStatus(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.Equal(t, "", a.getStatus())

	loggedIn(a)
	a.Mode = ModeOnline
	assert.Equal(t, "(Alice WEB online)", a.getStatus())
}
