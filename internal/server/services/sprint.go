package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

const (
	msgSprintNotFound        = "Sprint not found"
	msgSprintProjectRequired = "A Project ID is required to fetch sprints."
)

type SprintService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	membership  *Membership
}

func NewSprintService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *SprintService {
	return &SprintService{db: db, repomanager: m, membership: NewMembership(m)}
}

func (s *SprintService) List(ctx context.Context, user models.User, projectID string) ([]models.Sprint, error) {
	if projectID == "" {
		return nil, common.NewError(common.ErrorBadRequest, msgSprintProjectRequired)
	}
	if err := s.membership.Require(ctx, s.db, projectID, user.ID, msgProjectNotFound); err != nil {
		return nil, err
	}
	return s.repomanager.Sprints(s.db).ListByProject(ctx, projectID)
}

// load fetches a sprint and re-checks membership of its project.
func (s *SprintService) load(ctx context.Context, db dbx.DBTX, user models.User, id string) (*models.Sprint, error) {
	if !isUUID(id) {
		return nil, common.NewError(common.ErrorNotFound, msgSprintNotFound)
	}
	sp, err := s.repomanager.Sprints(db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgSprintNotFound)
		}
		return nil, err
	}
	if err := s.membership.Require(ctx, db, sp.ProjectID, user.ID, msgSprintNotFound); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *SprintService) Get(ctx context.Context, user models.User, id string) (*models.Sprint, error) {
	return s.load(ctx, s.db, user, id)
}

func (s *SprintService) Create(ctx context.Context, user models.User, in models.SprintInput) (*models.Sprint, error) {
	if in.ProjectID == "" {
		return nil, common.NewError(common.ErrorBadRequest, "Project ID is required")
	}
	sp := &models.Sprint{ProjectID: in.ProjectID, Status: models.SprintPlanning}

	name := strings.TrimSpace(in.Name.Value)
	if !in.Name.Present() || name == "" {
		return nil, common.NewError(common.ErrorValidation, "Sprint name is required")
	}
	sp.Name = name
	if !in.StartDate.Present() || !in.EndDate.Present() {
		return nil, common.NewError(common.ErrorValidation, "Start and end dates are required")
	}
	sp.StartDate = in.StartDate.Value.Time
	sp.EndDate = in.EndDate.Value.Time
	if in.Goal.Present() {
		sp.Goal = in.Goal.Value
	}
	if in.Status.Present() {
		sp.Status = in.Status.Value
	}
	if err := validateSprintDates(sp); err != nil {
		return nil, err
	}

	if err := s.membership.Require(ctx, s.db, in.ProjectID, user.ID, msgProjectNotFound); err != nil {
		return nil, err
	}
	return s.repomanager.Sprints(s.db).Create(ctx, sp)
}

// Update applies present fields. The project of a sprint never changes.
func (s *SprintService) Update(ctx context.Context, user models.User, id string, in models.SprintInput) (*models.Sprint, error) {
	var result *models.Sprint
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		sp, err := s.load(ctx, tx, user, id)
		if err != nil {
			return err
		}

		if in.Name.Set {
			name := strings.TrimSpace(in.Name.Value)
			if in.Name.Null || name == "" {
				return common.NewError(common.ErrorValidation, "Sprint name is required")
			}
			sp.Name = name
		}
		if in.Goal.Set {
			sp.Goal = in.Goal.Value
		}
		if in.StartDate.Set {
			if in.StartDate.Null {
				return common.NewError(common.ErrorValidation, "Start and end dates are required")
			}
			sp.StartDate = in.StartDate.Value.Time
		}
		if in.EndDate.Set {
			if in.EndDate.Null {
				return common.NewError(common.ErrorValidation, "Start and end dates are required")
			}
			sp.EndDate = in.EndDate.Value.Time
		}
		if in.Status.Present() {
			sp.Status = in.Status.Value
		}
		if err := validateSprintDates(sp); err != nil {
			return err
		}

		result, err = s.repomanager.Sprints(tx).Update(ctx, sp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete moves the sprint's issues to the backlog and removes the sprint.
func (s *SprintService) Delete(ctx context.Context, user models.User, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.load(ctx, tx, user, id); err != nil {
			return err
		}
		if _, err := s.repomanager.Issues(tx).DetachSprint(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Sprints(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, msgSprintNotFound)
			}
			return err
		}
		return nil
	})
}

func validateSprintDates(sp *models.Sprint) error {
	if sp.EndDate.Before(sp.StartDate) {
		return common.NewError(common.ErrorValidation, "End date must not be before start date")
	}
	return nil
}
