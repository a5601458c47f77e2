package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/issues"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/members"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/projects"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/sprints"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// store is an in-memory stand-in for the database shared by all fake repos.
type store struct {
	users       map[string]*models.User
	projects    map[string]*models.Project
	members     map[string][]string
	sprints     map[string]*models.Sprint
	issues      map[string]*models.Issue
	attachments []models.Attachment
	revoked     map[string]time.Time

	clock time.Time
	// errs makes the named operation (e.g. "issues.Create") fail.
	errs  map[string]error
	calls []string
}

func newStore() *store {
	return &store{
		users:    map[string]*models.User{},
		projects: map[string]*models.Project{},
		members:  map[string][]string{},
		sprints:  map[string]*models.Sprint{},
		issues:   map[string]*models.Issue{},
		revoked:  map[string]time.Time{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		errs:     map[string]error{},
	}
}

func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *store) op(name string) error {
	s.calls = append(s.calls, name)
	return s.errs[name]
}

func (s *store) called(name string) bool {
	return slices.Contains(s.calls, name)
}

type fakeManager struct{ s *store }

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository { return &fakeUsers{m.s} }
func (m *fakeManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository { return &fakeRevoked{m.s} }
func (m *fakeManager) Members(dbx.DBTX) members.Repository { return &fakeMembers{m.s} }
func (m *fakeManager) Projects(dbx.DBTX) projects.Repository { return &fakeProjects{m.s} }
func (m *fakeManager) Sprints(dbx.DBTX) sprints.Repository { return &fakeSprints{m.s} }
func (m *fakeManager) Issues(dbx.DBTX) issues.Repository { return &fakeIssues{m.s} }
func (m *fakeManager) Attachments(dbx.DBTX) attachments.Repository { return &fakeAttachments{m.s} }

// --- users ---

type fakeUsers struct{ s *store }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if err := f.s.op("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = f.s.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.s.users[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := f.s.op("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range f.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if err := f.s.op("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ListVisibleTo(_ context.Context, userID string) ([]models.User, error) {
	if err := f.s.op("users.ListVisibleTo"); err != nil {
		return nil, err
	}
	visible := map[string]bool{userID: true}
	for _, ids := range f.s.members {
		if slices.Contains(ids, userID) {
			for _, id := range ids {
				visible[id] = true
			}
		}
	}
	out := []models.User{}
	for id := range visible {
		if u, ok := f.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- revoked tokens ---

type fakeRevoked struct{ s *store }

func (f *fakeRevoked) Create(_ context.Context, tokenID, _ string, expiresAt time.Time) error {
	if err := f.s.op("revoked.Create"); err != nil {
		return err
	}
	f.s.revoked[tokenID] = expiresAt
	return nil
}

func (f *fakeRevoked) Exists(_ context.Context, tokenID string) (bool, error) {
	if err := f.s.op("revoked.Exists"); err != nil {
		return false, err
	}
	_, ok := f.s.revoked[tokenID]
	return ok, nil
}

func (f *fakeRevoked) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, exp := range f.s.revoked {
		if exp.Before(now) {
			delete(f.s.revoked, id)
			n++
		}
	}
	return n, nil
}

// --- members ---

type fakeMembers struct{ s *store }

func (f *fakeMembers) Add(_ context.Context, projectID, userID string) error {
	if err := f.s.op("members.Add"); err != nil {
		return err
	}
	if !slices.Contains(f.s.members[projectID], userID) {
		f.s.members[projectID] = append(f.s.members[projectID], userID)
	}
	return nil
}

func (f *fakeMembers) IsMember(_ context.Context, projectID, userID string) (bool, error) {
	if err := f.s.op("members.IsMember"); err != nil {
		return false, err
	}
	return slices.Contains(f.s.members[projectID], userID), nil
}

func (f *fakeMembers) ListByProject(_ context.Context, projectID string) ([]string, error) {
	return slices.Clone(f.s.members[projectID]), nil
}

func (f *fakeMembers) ListForUserProjects(_ context.Context, userID string) (map[string][]string, error) {
	out := map[string][]string{}
	for pid, ids := range f.s.members {
		if slices.Contains(ids, userID) {
			out[pid] = slices.Clone(ids)
		}
	}
	return out, nil
}

func (f *fakeMembers) DeleteByProject(_ context.Context, projectID string) error {
	if err := f.s.op("members.DeleteByProject"); err != nil {
		return err
	}
	delete(f.s.members, projectID)
	return nil
}

// --- projects ---

type fakeProjects struct{ s *store }

func (f *fakeProjects) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	if err := f.s.op("projects.Create"); err != nil {
		return nil, err
	}
	for _, existing := range f.s.projects {
		if existing.Key == p.Key {
			return nil, common.ErrorConflict
		}
	}
	p.ID = uuid.NewString()
	p.CreatedAt = f.s.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.s.projects[p.ID] = &cp
	return p, nil
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.s.projects[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) GetByKey(_ context.Context, key string) (*models.Project, error) {
	for _, p := range f.s.projects {
		if p.Key == key {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProjects) ExistsByKey(_ context.Context, key string) (bool, error) {
	if err := f.s.op("projects.ExistsByKey"); err != nil {
		return false, err
	}
	for _, p := range f.s.projects {
		if p.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProjects) ListByMember(_ context.Context, userID string) ([]models.Project, error) {
	out := []models.Project{}
	for id, p := range f.s.projects {
		if slices.Contains(f.s.members[id], userID) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeProjects) Update(_ context.Context, p *models.Project) (*models.Project, error) {
	if _, ok := f.s.projects[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	p.UpdatedAt = f.s.tick()
	cp := *p
	cp.Members = nil
	f.s.projects[p.ID] = &cp
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, id string) error {
	if err := f.s.op("projects.Delete"); err != nil {
		return err
	}
	if _, ok := f.s.projects[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.projects, id)
	return nil
}

// --- sprints ---

type fakeSprints struct{ s *store }

func (f *fakeSprints) Create(_ context.Context, sp *models.Sprint) (*models.Sprint, error) {
	sp.ID = uuid.NewString()
	sp.CreatedAt = f.s.tick()
	sp.UpdatedAt = sp.CreatedAt
	cp := *sp
	f.s.sprints[sp.ID] = &cp
	return sp, nil
}

func (f *fakeSprints) GetByID(_ context.Context, id string) (*models.Sprint, error) {
	sp, ok := f.s.sprints[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *sp
	return &cp, nil
}

func (f *fakeSprints) ListByProject(_ context.Context, projectID string) ([]models.Sprint, error) {
	out := []models.Sprint{}
	for _, sp := range f.s.sprints {
		if sp.ProjectID == projectID {
			out = append(out, *sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeSprints) Update(_ context.Context, sp *models.Sprint) (*models.Sprint, error) {
	sp.UpdatedAt = f.s.tick()
	cp := *sp
	f.s.sprints[sp.ID] = &cp
	return sp, nil
}

func (f *fakeSprints) Delete(_ context.Context, id string) error {
	if err := f.s.op("sprints.Delete"); err != nil {
		return err
	}
	if _, ok := f.s.sprints[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.sprints, id)
	return nil
}

func (f *fakeSprints) DeleteByProject(_ context.Context, projectID string) error {
	if err := f.s.op("sprints.DeleteByProject"); err != nil {
		return err
	}
	for id, sp := range f.s.sprints {
		if sp.ProjectID == projectID {
			delete(f.s.sprints, id)
		}
	}
	return nil
}

// --- issues ---

type fakeIssues struct{ s *store }

func cloneIssue(i *models.Issue) *models.Issue {
	cp := *i
	cp.Labels = slices.Clone(i.Labels)
	if cp.Labels == nil {
		cp.Labels = []string{}
	}
	return &cp
}

func (f *fakeIssues) Create(_ context.Context, issue *models.Issue) (*models.Issue, error) {
	if err := f.s.op("issues.Create"); err != nil {
		return nil, err
	}
	issue.ID = uuid.NewString()
	issue.CreatedAt = f.s.tick()
	issue.UpdatedAt = issue.CreatedAt
	f.s.issues[issue.ID] = cloneIssue(issue)
	return cloneIssue(issue), nil
}

func (f *fakeIssues) GetByID(_ context.Context, id string) (*models.Issue, error) {
	i, ok := f.s.issues[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneIssue(i), nil
}

func (f *fakeIssues) List(_ context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	if err := f.s.op("issues.List"); err != nil {
		return nil, err
	}
	out := []models.Issue{}
	for _, i := range f.s.issues {
		if i.ProjectID != filter.ProjectID {
			continue
		}
		switch filter.Sprint.Scope {
		case models.SprintNone:
			if i.SprintID != nil {
				continue
			}
		case models.SprintOne:
			if i.SprintID == nil || *i.SprintID != filter.Sprint.SprintID {
				continue
			}
		}
		if filter.Status != nil && i.Status != *filter.Status {
			continue
		}
		if filter.Assignee != "" && i.Assignee != filter.Assignee {
			continue
		}
		out = append(out, *cloneIssue(i))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (f *fakeIssues) Update(_ context.Context, issue *models.Issue) (*models.Issue, error) {
	if _, ok := f.s.issues[issue.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	issue.UpdatedAt = f.s.tick()
	f.s.issues[issue.ID] = cloneIssue(issue)
	return cloneIssue(issue), nil
}

func (f *fakeIssues) UpdateStatus(_ context.Context, id string, status models.IssueStatus) (*models.Issue, error) {
	if err := f.s.op("issues.UpdateStatus"); err != nil {
		return nil, err
	}
	i, ok := f.s.issues[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	i.Status = status
	i.UpdatedAt = f.s.tick()
	return cloneIssue(i), nil
}

func (f *fakeIssues) Delete(_ context.Context, id string) error {
	if _, ok := f.s.issues[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.issues, id)
	return nil
}

func (f *fakeIssues) DeleteByProject(_ context.Context, projectID string) error {
	if err := f.s.op("issues.DeleteByProject"); err != nil {
		return err
	}
	for id, i := range f.s.issues {
		if i.ProjectID == projectID {
			delete(f.s.issues, id)
		}
	}
	return nil
}

func (f *fakeIssues) DetachSprint(_ context.Context, sprintID string) (int64, error) {
	if err := f.s.op("issues.DetachSprint"); err != nil {
		return 0, err
	}
	var n int64
	for _, i := range f.s.issues {
		if i.SprintID != nil && *i.SprintID == sprintID {
			i.SprintID = nil
			n++
		}
	}
	return n, nil
}

// --- attachments ---

type fakeAttachments struct{ s *store }

func (f *fakeAttachments) Create(_ context.Context, a *models.Attachment) (*models.Attachment, error) {
	if err := f.s.op("attachments.Create"); err != nil {
		return nil, err
	}
	a.ID = uuid.NewString()
	a.CreatedAt = f.s.tick()
	f.s.attachments = append(f.s.attachments, *a)
	return a, nil
}

func (f *fakeAttachments) ListByIssue(_ context.Context, issueID string) ([]models.Attachment, error) {
	out := []models.Attachment{}
	for _, a := range f.s.attachments {
		if a.IssueID == issueID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- helpers ---

// newTestDB returns a throwaway sqlite handle; the fakes ignore it but
// dbx.WithTx needs something to begin and commit on.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

type fixture struct {
	store *store
	db    *sql.DB
	rm    *fakeManager
	cfg   *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newStore()
	return &fixture{store: s, db: newTestDB(t), rm: &fakeManager{s}, cfg: testConfig()}
}

func (f *fixture) addUser(name, email string) models.User {
	u := &models.User{ID: uuid.NewString(), Name: name, Email: email}
	f.store.users[u.ID] = u
	return *u
}

func (f *fixture) addProject(key string, owner models.User, others ...models.User) *models.Project {
	p := &models.Project{ID: uuid.NewString(), Name: key, Key: key, Type: models.ProjectSoftware,
		Status: models.ProjectActive, LeadID: owner.ID, OwnerID: owner.ID, CreatedAt: f.store.tick()}
	f.store.projects[p.ID] = p
	f.store.members[p.ID] = []string{owner.ID}
	for _, u := range others {
		f.store.members[p.ID] = append(f.store.members[p.ID], u.ID)
	}
	return p
}

func (f *fixture) addSprint(projectID string) *models.Sprint {
	sp := &models.Sprint{ID: uuid.NewString(), ProjectID: projectID, Name: "Sprint",
		StartDate: f.store.clock, EndDate: f.store.clock.Add(14 * 24 * time.Hour),
		Status: models.SprintPlanning, CreatedAt: f.store.tick()}
	f.store.sprints[sp.ID] = sp
	return sp
}

func (f *fixture) addIssue(projectID string, status models.IssueStatus, sprintID *string) *models.Issue {
	i := &models.Issue{ID: uuid.NewString(), Title: "Issue", ProjectID: projectID, SprintID: sprintID,
		Type: models.TypeTask, Status: status, Priority: models.PriorityMedium, Reporter: "Seed",
		Labels: []string{}, CreatedAt: f.store.tick()}
	f.store.issues[i.ID] = i
	return i
}

func ptr[T any](v T) *T { return &v }
