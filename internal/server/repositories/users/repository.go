// Package users declares and implements persistence of registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and timestamps. A duplicate email
	// yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListVisibleTo returns userID itself and every user sharing at least
	// one project with it, ordered by name.
	ListVisibleTo(ctx context.Context, userID string) ([]models.User, error)
}
