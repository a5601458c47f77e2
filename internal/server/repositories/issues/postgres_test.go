package issues

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var cols = []string{"id", "title", "description", "project_id", "sprint_id", "type", "status", "priority",
	"assignee", "assignee_id", "reporter", "story_points", "labels", "created_at", "updated_at"}

func ptr[T any](v T) *T { return &v }

func TestCreate_WritesNullsForBacklogIssue(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	q := `(?s)^INSERT\s+INTO\s+issues\s*\(title,.*VALUES\s*\(\$1,.*\$12\)\s*RETURNING\s+id,\s*created_at,\s*updated_at$`
	mock.ExpectQuery(q).
		WithArgs("Fix login", "", "p1", nil, "bug", "backlog", "medium", "", nil, "Alice", nil, []byte("[]")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("i1", now, now))

	got, err := repo.Create(context.Background(), &models.Issue{
		Title: "Fix login", ProjectID: "p1", Type: models.TypeBug, Status: models.StatusBacklog,
		Priority: models.PriorityMedium, Reporter: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "i1", got.ID)
	assert.NotNil(t, got.Labels)
}

func TestCreate_WritesOptionalFields(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT\s+INTO\s+issues`).
		WithArgs("Story", "desc", "p1", "s1", "story", "todo", "high", "Bob", "u2", "Alice", int64(5), []byte(`["ui","auth"]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("i2", now, now))

	_, err := repo.Create(context.Background(), &models.Issue{
		Title: "Story", Description: "desc", ProjectID: "p1", SprintID: ptr("s1"), Type: models.TypeStory,
		Status: models.StatusTodo, Priority: models.PriorityHigh, Assignee: "Bob", AssigneeID: ptr("u2"),
		Reporter: "Alice", StoryPoints: ptr(5), Labels: []string{"ui", "auth"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_DecodesNullableColumns(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	q := `(?s)^SELECT\s+id,\s*title,.*FROM\s+issues\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("i1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("i1", "Fix", "", "p1", "s1", "bug", "review", "highest", "Bob", nil, "Alice", int64(3), []byte(`["x"]`), now, now))

	got, err := repo.GetByID(context.Background(), "i1")
	require.NoError(t, err)
	require.NotNil(t, got.SprintID)
	assert.Equal(t, "s1", *got.SprintID)
	assert.Nil(t, got.AssigneeID)
	require.NotNil(t, got.StoryPoints)
	assert.Equal(t, 3, *got.StoryPoints)
	assert.Equal(t, []string{"x"}, got.Labels)
	assert.Equal(t, models.StatusReview, got.Status)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+issues\s+WHERE\s+id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestBuildListQuery(t *testing.T) {
	done := models.StatusDone

	tests := []struct {
		name      string
		filter    models.IssueFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "project only",
			filter:    models.IssueFilter{ProjectID: "p1"},
			wantWhere: "WHERE project_id = $1 ORDER BY",
			wantArgs:  []any{"p1"},
		},
		{
			name:      "backlog",
			filter:    models.IssueFilter{ProjectID: "p1", Sprint: models.SprintFilter{Scope: models.SprintNone}},
			wantWhere: "WHERE project_id = $1 AND sprint_id IS NULL ORDER BY",
			wantArgs:  []any{"p1"},
		},
		{
			name: "sprint status assignee",
			filter: models.IssueFilter{ProjectID: "p1", Sprint: models.SprintFilter{Scope: models.SprintOne, SprintID: "s1"},
				Status: &done, Assignee: "Bob"},
			wantWhere: "WHERE project_id = $1 AND sprint_id = $2 AND status = $3 AND assignee = $4 ORDER BY",
			wantArgs:  []any{"p1", "s1", "done", "Bob"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := buildListQuery(tt.filter)
			assert.Contains(t, q, tt.wantWhere)
			assert.Contains(t, q, "ORDER BY created_at DESC")
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestList_Backlog(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM\s+issues\s+WHERE\s+project_id\s*=\s*\$1\s+AND\s+sprint_id\s+IS\s+NULL\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("i2", "B", "", "p1", nil, "task", "todo", "low", "", nil, "Alice", nil, []byte(`[]`), now, now).
			AddRow("i1", "A", "", "p1", nil, "task", "backlog", "low", "", nil, "Alice", nil, nil, now.Add(-time.Minute), now))

	got, err := repo.List(context.Background(), models.IssueFilter{ProjectID: "p1", Sprint: models.SprintFilter{Scope: models.SprintNone}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "i2", got[0].ID)
	assert.Nil(t, got[1].SprintID)
	assert.Equal(t, []string{}, got[1].Labels)
}

func TestList_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+issues`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), models.IssueFilter{ProjectID: "p1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	q := `(?s)^UPDATE\s+issues\s+SET\s+title\s*=\s*\$2,.*labels\s*=\s*\$11,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+updated_at$`
	mock.ExpectQuery(q).
		WithArgs("i1", "New", "", nil, "task", "done", "low", "", nil, nil, []byte("[]")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	got, err := repo.Update(context.Background(), &models.Issue{
		ID: "i1", Title: "New", Type: models.TypeTask, Status: models.StatusDone, Priority: models.PriorityLow,
	})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestUpdateStatus(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	q := `(?s)^UPDATE\s+issues\s+SET\s+status\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,\s*title,`
	mock.ExpectQuery(q).WithArgs("i1", "in-progress").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("i1", "Fix", "", "p1", nil, "bug", "in-progress", "high", "", nil, "Alice", nil, []byte(`[]`), now, now))
	mock.ExpectQuery(q).WithArgs("i9", "done").WillReturnError(sql.ErrNoRows)

	got, err := repo.UpdateStatus(context.Background(), "i1", models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	_, err = repo.UpdateStatus(context.Background(), "i9", models.StatusDone)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^DELETE\s+FROM\s+issues\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("i1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("i2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "i1"))
	assert.True(t, errors.Is(repo.Delete(context.Background(), "i2"), common.ErrorNotFound))
}

func TestDeleteByProject(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+issues\s+WHERE\s+project_id\s*=\s*\$1$`).
		WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 16))

	require.NoError(t, repo.DeleteByProject(context.Background(), "p1"))
}

func TestDetachSprint(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^UPDATE\s+issues\s+SET\s+sprint_id\s*=\s*NULL,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+sprint_id\s*=\s*\$1$`).
		WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DetachSprint(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
