// Package sprints persists time-boxed iterations of a project.
package sprints

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Sprint) (*models.Sprint, error)
	GetByID(ctx context.Context, id string) (*models.Sprint, error)
	// ListByProject returns the project's sprints, newest first.
	ListByProject(ctx context.Context, projectID string) ([]models.Sprint, error)
	Update(ctx context.Context, s *models.Sprint) (*models.Sprint, error)
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
}
