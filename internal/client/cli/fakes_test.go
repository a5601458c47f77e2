package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/issuetracker/internal/client/client"
	"github.com/dmitrijs2005/issuetracker/internal/client/config"
	"github.com/dmitrijs2005/issuetracker/internal/client/models"
	"github.com/dmitrijs2005/issuetracker/internal/client/session"
)

// fakeAPI is an in-memory API. errs makes the named method fail.
type fakeAPI struct {
	mu    sync.Mutex
	token string
	errs  map[string]error
	calls []string

	user        models.User
	gotPassword []byte
	projects    []models.Project
	sprints     []models.Sprint
	issues      []models.Issue
	attachments []models.Attachment

	created    models.NewIssue
	newProject models.NewProject
	invited    string
	upload     struct {
		issueID, name, contentType string
		size                       int64
	}
	lastQuery client.IssueQuery
	stats     models.Stats
}

func (f *fakeAPI) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeAPI) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeAPI) Token() string         { return f.token }
func (f *fakeAPI) SetToken(token string) { f.token = token }

func (f *fakeAPI) Ping(context.Context) error { return f.hit("Ping") }

func (f *fakeAPI) Register(_ context.Context, name, email string, pw []byte) (*models.User, error) {
	if err := f.hit("Register"); err != nil {
		return nil, err
	}
	f.gotPassword = append([]byte(nil), pw...)
	f.user = models.User{ID: "u1", Name: name, Email: email}
	f.token = "tok"
	return &f.user, nil
}

func (f *fakeAPI) Login(_ context.Context, email string, pw []byte) (*models.User, error) {
	if err := f.hit("Login"); err != nil {
		return nil, err
	}
	f.gotPassword = append([]byte(nil), pw...)
	f.token = "tok"
	u := f.user
	u.Email = email
	return &u, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.token = ""
	return f.hit("Logout")
}

func (f *fakeAPI) Profile(context.Context) (*models.User, error) {
	if err := f.hit("Profile"); err != nil {
		return nil, err
	}
	return &f.user, nil
}

func (f *fakeAPI) ListProjects(context.Context) ([]models.Project, error) {
	if err := f.hit("ListProjects"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeAPI) CreateProject(_ context.Context, in models.NewProject) (*models.Project, error) {
	if err := f.hit("CreateProject"); err != nil {
		return nil, err
	}
	f.newProject = in
	return &models.Project{ID: "p9", Name: in.Name, Key: strings.ToUpper(in.Key)}, nil
}

func (f *fakeAPI) AddMember(_ context.Context, projectID, email string) (*models.Project, error) {
	if err := f.hit("AddMember"); err != nil {
		return nil, err
	}
	f.invited = email
	return &models.Project{ID: projectID, Key: "WEB", Members: []string{"u1", "u2"}}, nil
}

func (f *fakeAPI) ListSprints(context.Context, string) ([]models.Sprint, error) {
	if err := f.hit("ListSprints"); err != nil {
		return nil, err
	}
	return f.sprints, nil
}

func (f *fakeAPI) ListIssues(_ context.Context, q client.IssueQuery) ([]models.Issue, error) {
	if err := f.hit("ListIssues"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	var out []models.Issue
	for _, is := range f.issues {
		switch {
		case q.SprintID != nil:
			if is.SprintID == nil || *is.SprintID != *q.SprintID {
				continue
			}
		case q.Backlog:
			if is.SprintID != nil {
				continue
			}
		}
		out = append(out, is)
	}
	return out, nil
}

func (f *fakeAPI) GetIssue(_ context.Context, id string) (*models.Issue, error) {
	if err := f.hit("GetIssue"); err != nil {
		return nil, err
	}
	for _, is := range f.issues {
		if is.ID == id {
			return &is, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeAPI) CreateIssue(_ context.Context, in models.NewIssue) (*models.Issue, error) {
	if err := f.hit("CreateIssue"); err != nil {
		return nil, err
	}
	f.created = in
	return &models.Issue{ID: "new-issue-1", Title: in.Title, Status: models.StatusTodo}, nil
}

func (f *fakeAPI) PatchStatus(_ context.Context, id string, status models.Status) (*models.Issue, error) {
	if err := f.hit("PatchStatus"); err != nil {
		return nil, err
	}
	for _, is := range f.issues {
		if is.ID == id {
			is.Status = status
			return &is, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeAPI) Analytics(context.Context, string) (*models.Stats, error) {
	if err := f.hit("Analytics"); err != nil {
		return nil, err
	}
	return &f.stats, nil
}

func (f *fakeAPI) RequestUpload(_ context.Context, issueID, name, ct string, size int64) (*models.Attachment, error) {
	if err := f.hit("RequestUpload"); err != nil {
		return nil, err
	}
	f.upload.issueID, f.upload.name, f.upload.contentType, f.upload.size = issueID, name, ct, size
	return &models.Attachment{ID: "a1", FileName: name, UploadURL: "https://s3.local/put"}, nil
}

func (f *fakeAPI) ListAttachments(context.Context, string) ([]models.Attachment, error) {
	if err := f.hit("ListAttachments"); err != nil {
		return nil, err
	}
	return f.attachments, nil
}

type fakeStore struct {
	s       session.Session
	saves   int
	cleared bool
	loadErr error
	saveErr error
}

func (f *fakeStore) Load(context.Context) (session.Session, error) { return f.s, f.loadErr }
func (f *fakeStore) Save(_ context.Context, s session.Session) error {
	f.saves++
	f.s = s
	return f.saveErr
}
func (f *fakeStore) Clear(context.Context) error {
	f.cleared = true
	f.s = session.Session{}
	return nil
}

func newTestApp(t *testing.T) (*App, *fakeAPI, *fakeStore) {
	t.Helper()
	api := &fakeAPI{user: models.User{ID: "u1", Name: "Alice", Email: "alice@example.org"}}
	store := &fakeStore{}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	a := &App{
		config: cfg,
		api:    api,
		store:  store,
		reader: bufio.NewReader(strings.NewReader("")),
	}
	return a, api, store
}

// loggedIn marks a as logged in with project WEB selected.
func loggedIn(a *App) {
	a.userName = "Alice"
	a.projectID = "p1"
	a.projectKey = "WEB"
}

// stubInputs answers text prompts in order and returns password for the
// password prompt.
func stubInputs(t *testing.T, password []byte, answers ...string) {
	t.Helper()
	origST, origGP, origML := getSimpleText, getPassword, getMultiline
	i := 0
	next := func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getSimpleText = next
	getMultiline = next
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText, getPassword, getMultiline = origST, origGP, origML
	})
}

func strp(s string) *string { return &s }
