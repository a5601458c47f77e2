package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/issuetracker/internal/server/analytics"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

type AnalyticsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	membership  *Membership
}

func NewAnalyticsService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *AnalyticsService {
	return &AnalyticsService{db: db, repomanager: m, membership: NewMembership(m)}
}

// ForProject computes statistics over every issue of the project.
func (s *AnalyticsService) ForProject(ctx context.Context, user models.User, projectID string) (*analytics.Stats, error) {
	if err := s.membership.Require(ctx, s.db, projectID, user.ID, msgProjectNotFound); err != nil {
		return nil, err
	}
	issues, err := s.repomanager.Issues(s.db).List(ctx, models.IssueFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	st := analytics.Compute(issues, user)
	return &st, nil
}
