package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

// SeedReporter is recorded as the reporter of every demo issue.
const SeedReporter = "System Seed"

type demoIssue struct {
	title       string
	typ         models.IssueType
	status      models.IssueStatus
	priority    models.Priority
	storyPoints int
	toLead      bool
}

var demoIssues = []demoIssue{
	{"Implement user authentication flow", models.TypeStory, models.StatusDone, models.PriorityHighest, 8, true},
	{"Design the main dashboard UI", models.TypeStory, models.StatusDone, models.PriorityHigh, 5, false},
	{"Draft Q3 marketing campaign brief", models.TypeTask, models.StatusDone, models.PriorityMedium, 0, false},

	{"Set up production database and CI/CD pipeline", models.TypeTask, models.StatusReview, models.PriorityHigh, 0, true},
	{"Finalize budget for new website redesign", models.TypeTask, models.StatusReview, models.PriorityMedium, 0, false},

	{"Fix login button alignment on all mobile devices", models.TypeBug, models.StatusInProgress, models.PriorityHighest, 0, true},
	{"Develop analytics chart components with dark mode support", models.TypeStory, models.StatusInProgress, models.PriorityHigh, 8, true},

	{"Refactor CSS to use utility classes across all modals", models.TypeTask, models.StatusTodo, models.PriorityMedium, 5, false},
	{"User profile page shows incorrect email after update", models.TypeBug, models.StatusTodo, models.PriorityHigh, 0, false},
	{"API endpoint for user profiles is returning 500 error", models.TypeBug, models.StatusTodo, models.PriorityHighest, 0, false},
	{"Allow users to be invited to projects via email", models.TypeStory, models.StatusTodo, models.PriorityHigh, 8, false},

	{"Write API documentation for all endpoints", models.TypeTask, models.StatusBacklog, models.PriorityLow, 13, false},
	{"Onboarding assets for new hires are outdated", models.TypeTask, models.StatusBacklog, models.PriorityMedium, 0, false},
	{"Set up staging environment for QA testing", models.TypeTask, models.StatusBacklog, models.PriorityMedium, 0, false},
	{"Explore integration with third-party chat apps", models.TypeStory, models.StatusBacklog, models.PriorityLowest, 13, false},
	{`Create a "forgot password" feature`, models.TypeStory, models.StatusBacklog, models.PriorityHigh, 5, false},
}

type SeedService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSeedService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *SeedService {
	return &SeedService{db: db, repomanager: m}
}

// SeedProject replaces every issue of the project with the demo set and
// returns how many were inserted. Issues marked for the lead are assigned
// to the project lead.
func (s *SeedService) SeedProject(ctx context.Context, key string) (int, error) {
	key = common.NormalizeProjectKey(key)
	count := 0

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.repomanager.Projects(tx).GetByKey(ctx, key)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, msgProjectNotFound)
			}
			return err
		}

		lead, err := s.repomanager.Users(tx).GetByID(ctx, p.LeadID)
		if err != nil {
			return err
		}

		if err := s.repomanager.Issues(tx).DeleteByProject(ctx, p.ID); err != nil {
			return err
		}

		issues := s.repomanager.Issues(tx)
		for _, d := range demoIssues {
			issue := &models.Issue{
				Title:     d.title,
				ProjectID: p.ID,
				Type:      d.typ,
				Status:    d.status,
				Priority:  d.priority,
				Reporter:  SeedReporter,
				Labels:    []string{},
			}
			if d.storyPoints > 0 {
				sp := d.storyPoints
				issue.StoryPoints = &sp
			}
			if d.toLead {
				id := lead.ID
				issue.AssigneeID = &id
				issue.Assignee = lead.Name
			}
			if _, err := issues.Create(ctx, issue); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
