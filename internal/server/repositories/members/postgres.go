package members

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, projectID, userID string) error {
	query := `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]string, error) {
	query := `
		SELECT user_id FROM project_members
		WHERE project_id = $1
		ORDER BY created_at, user_id
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListForUserProjects(ctx context.Context, userID string) (map[string][]string, error) {
	query := `
		SELECT m.project_id, m.user_id FROM project_members m
		WHERE m.project_id IN (SELECT project_id FROM project_members WHERE user_id = $1)
		ORDER BY m.project_id, m.created_at, m.user_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var projectID, memberID string
		if err := rows.Scan(&projectID, &memberID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[projectID] = append(result[projectID], memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := `
		DELETE FROM project_members WHERE project_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, projectID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
