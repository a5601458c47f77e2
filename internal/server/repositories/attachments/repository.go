// Package attachments persists metadata of files attached to issues.
package attachments

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	// ListByIssue returns the issue's attachments, oldest first.
	ListByIssue(ctx context.Context, issueID string) ([]models.Attachment, error)
}
