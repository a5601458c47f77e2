// Package issues persists issues and answers filtered listings.
package issues

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, issue *models.Issue) (*models.Issue, error)
	GetByID(ctx context.Context, id string) (*models.Issue, error)
	// List returns issues matching filter, newest first.
	List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
	// Update persists every mutable field and refreshes updated_at.
	Update(ctx context.Context, issue *models.Issue) (*models.Issue, error)
	// UpdateStatus changes only the status and returns the stored row.
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (*models.Issue, error)
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
	// DetachSprint moves every issue of sprintID to the backlog.
	DetachSprint(ctx context.Context, sprintID string) (int64, error)
}
