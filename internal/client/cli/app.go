package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/client/board"
	"github.com/dmitrijs2005/issuetracker/internal/client/client"
	"github.com/dmitrijs2005/issuetracker/internal/client/config"
	"github.com/dmitrijs2005/issuetracker/internal/client/models"
	"github.com/dmitrijs2005/issuetracker/internal/client/session"
	"github.com/dmitrijs2005/issuetracker/internal/filex"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// API is the part of the REST client the CLI uses.
type API interface {
	board.API
	Ping(ctx context.Context) error
	Register(ctx context.Context, name, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, in models.NewProject) (*models.Project, error)
	AddMember(ctx context.Context, projectID, email string) (*models.Project, error)
	ListSprints(ctx context.Context, projectID string) ([]models.Sprint, error)
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	CreateIssue(ctx context.Context, in models.NewIssue) (*models.Issue, error)
	Analytics(ctx context.Context, projectID string) (*models.Stats, error)
	RequestUpload(ctx context.Context, issueID, fileName, contentType string, size int64) (*models.Attachment, error)
	ListAttachments(ctx context.Context, issueID string) ([]models.Attachment, error)
	Token() string
	SetToken(token string)
}

var _ API = (*client.Client)(nil)

// SessionStore persists the session between runs.
type SessionStore interface {
	Load(ctx context.Context) (session.Session, error)
	Save(ctx context.Context, s session.Session) error
	Clear(ctx context.Context) error
}

var _ SessionStore = (*session.Store)(nil)

type App struct {
	config *config.Config
	api    API
	store  SessionStore
	reader *bufio.Reader
	close  func() error

	userName   string
	projectID  string
	projectKey string
	board      *board.Board

	modeMu sync.Mutex
	Mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	api, err := client.New(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	if err := filex.EnsureParentDir(c.StateFile); err != nil {
		return nil, err
	}
	store, err := session.Open(ctx, c.StateFile)
	if err != nil {
		log.Printf("error initializing local state: %s", err.Error())
		return nil, err
	}

	a := &App{config: c, api: api, store: store, reader: bufio.NewReader(os.Stdin), close: store.Close}
	if err := a.restoreSession(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) restoreSession(ctx context.Context) error {
	s, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if s.Token == "" {
		return nil
	}
	a.api.SetToken(s.Token)
	a.userName = s.UserName
	a.projectID = s.ProjectID
	a.projectKey = s.ProjectKey
	return nil
}

func (a *App) saveSession(ctx context.Context) {
	s := session.Session{
		Token:      a.api.Token(),
		UserName:   a.userName,
		ProjectID:  a.projectID,
		ProjectKey: a.projectKey,
	}
	if err := a.store.Save(ctx, s); err != nil {
		log.Printf("could not save session: %v", err)
	}
}

// verifySession drops a restored session the server no longer accepts.
func (a *App) verifySession(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	_, err := a.api.Profile(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		printlnFn("Saved session has expired, please log in again")
		a.forget(ctx)
	}
}

func (a *App) forget(ctx context.Context) {
	a.userName, a.projectID, a.projectKey, a.board = "", "", "", nil
	if err := a.store.Clear(ctx); err != nil {
		log.Printf("could not clear session: %v", err)
	}
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.Mode
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.close != nil {
			_ = a.close()
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return errors.New("not logged in")
	}
	return nil
}

func (a *App) requireProject() error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if a.projectID == "" {
		return errors.New("no project selected, use 'use <KEY>'")
	}
	return nil
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// report prints a command failure in a user-friendly way and returns it.
func report(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, try again later")
	default:
		printlnFn(fmt.Sprintf("Error: %v", err))
	}
	return err
}
