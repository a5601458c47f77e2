// Package projects persists project rows. Membership lives in the members
// package; Project.Members is filled by the service layer.
package projects

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	// Create inserts the project and fills ID and timestamps. A duplicate
	// key yields common.ErrorConflict.
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetByKey(ctx context.Context, key string) (*models.Project, error)
	// ExistsByKey reports whether a project with the normalized key exists.
	ExistsByKey(ctx context.Context, key string) (bool, error)
	// ListByMember returns projects userID belongs to, newest first.
	ListByMember(ctx context.Context, userID string) ([]models.Project, error)
	// Update persists the mutable fields (name, description, type, status, lead).
	Update(ctx context.Context, p *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}
