package issues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

const issueColumns = `id, title, description, project_id, sprint_id, type, status, priority,
	assignee, assignee_id, reporter, story_points, labels, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(s scanner) (*models.Issue, error) {
	var (
		issue       models.Issue
		sprintID    sql.NullString
		assigneeID  sql.NullString
		storyPoints sql.NullInt64
		labels      []byte
	)
	err := s.Scan(&issue.ID, &issue.Title, &issue.Description, &issue.ProjectID, &sprintID,
		&issue.Type, &issue.Status, &issue.Priority, &issue.Assignee, &assigneeID,
		&issue.Reporter, &storyPoints, &labels, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if sprintID.Valid {
		issue.SprintID = &sprintID.String
	}
	if assigneeID.Valid {
		issue.AssigneeID = &assigneeID.String
	}
	if storyPoints.Valid {
		sp := int(storyPoints.Int64)
		issue.StoryPoints = &sp
	}
	issue.Labels = make([]string, 0)
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &issue.Labels); err != nil {
			return nil, fmt.Errorf("decode labels: %w", err)
		}
	}
	return &issue, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return int64(*n)
}

func encodeLabels(labels []string) ([]byte, error) {
	if labels == nil {
		labels = []string{}
	}
	return json.Marshal(labels)
}

func (r *PostgresRepository) Create(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	labels, err := encodeLabels(issue.Labels)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO issues (title, description, project_id, sprint_id, type, status, priority,
			assignee, assignee_id, reporter, story_points, labels)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		issue.Title, issue.Description, issue.ProjectID, nullable(issue.SprintID),
		string(issue.Type), string(issue.Status), string(issue.Priority),
		issue.Assignee, nullable(issue.AssigneeID), issue.Reporter, nullableInt(issue.StoryPoints), labels,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if issue.Labels == nil {
		issue.Labels = []string{}
	}
	return issue, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`

	issue, err := scanIssue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return issue, nil
}

// buildListQuery renders the WHERE clause for filter with positional args.
func buildListQuery(filter models.IssueFilter) (string, []any) {
	where := []string{"project_id = $1"}
	args := []any{filter.ProjectID}

	switch filter.Sprint.Scope {
	case models.SprintNone:
		where = append(where, "sprint_id IS NULL")
	case models.SprintOne:
		args = append(args, filter.Sprint.SprintID)
		where = append(where, fmt.Sprintf("sprint_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Assignee != "" {
		args = append(args, filter.Assignee)
		where = append(where, fmt.Sprintf("assignee = $%d", len(args)))
	}

	query := `SELECT ` + issueColumns + ` FROM issues WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id`
	return query, args
}

func (r *PostgresRepository) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	labels, err := encodeLabels(issue.Labels)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE issues
		SET title = $2, description = $3, sprint_id = $4, type = $5, status = $6, priority = $7,
			assignee = $8, assignee_id = $9, story_points = $10, labels = $11, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		issue.ID, issue.Title, issue.Description, nullable(issue.SprintID),
		string(issue.Type), string(issue.Status), string(issue.Priority),
		issue.Assignee, nullable(issue.AssigneeID), nullableInt(issue.StoryPoints), labels,
	).Scan(&issue.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return issue, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (*models.Issue, error) {
	query := `UPDATE issues SET status = $2, updated_at = now() WHERE id = $1 RETURNING ` + issueColumns

	issue, err := scanIssue(r.db.QueryRowContext(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return issue, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DetachSprint(ctx context.Context, sprintID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE issues SET sprint_id = NULL, updated_at = now() WHERE sprint_id = $1`, sprintID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
