package attachments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	query := `
		INSERT INTO attachments (issue_id, project_id, file_name, content_type, size, storage_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.IssueID, a.ProjectID, a.FileName, a.ContentType, a.Size, a.StorageKey, a.UploadedBy,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByIssue(ctx context.Context, issueID string) ([]models.Attachment, error) {
	query := `
		SELECT id, issue_id, project_id, file_name, content_type, size, storage_key, uploaded_by, created_at
		FROM attachments
		WHERE issue_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, issueID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Attachment, 0)
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.IssueID, &a.ProjectID, &a.FileName, &a.ContentType,
			&a.Size, &a.StorageKey, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
