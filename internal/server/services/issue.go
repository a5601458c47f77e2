package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

const (
	msgIssueNotFound   = "Issue not found"
	msgProjectRequired = "Project ID is required"
)

type IssueService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	membership  *Membership
}

func NewIssueService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *IssueService {
	return &IssueService{db: db, repomanager: m, membership: NewMembership(m)}
}

// List returns the project's issues matching filter, newest first.
func (s *IssueService) List(ctx context.Context, user models.User, filter models.IssueFilter) ([]models.Issue, error) {
	if filter.ProjectID == "" {
		return nil, common.NewError(common.ErrorBadRequest, msgProjectRequired)
	}
	if err := s.membership.Require(ctx, s.db, filter.ProjectID, user.ID, msgProjectNotFound); err != nil {
		return nil, err
	}
	if filter.Sprint.Scope == models.SprintOne && !isUUID(filter.Sprint.SprintID) {
		return []models.Issue{}, nil
	}
	return s.repomanager.Issues(s.db).List(ctx, filter)
}

func (s *IssueService) Get(ctx context.Context, user models.User, id string) (*models.Issue, error) {
	return loadVisibleIssue(ctx, s.repomanager, s.membership, s.db, user, id)
}

// loadVisibleIssue fetches an issue the caller may see. Issues of projects
// the caller is not a member of are reported as missing.
func loadVisibleIssue(ctx context.Context, m repomanager.RepositoryManager, gate *Membership, db dbx.DBTX,
	user models.User, id string) (*models.Issue, error) {
	if !isUUID(id) {
		return nil, common.NewError(common.ErrorNotFound, msgIssueNotFound)
	}
	issue, err := m.Issues(db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgIssueNotFound)
		}
		return nil, err
	}
	if err := gate.Require(ctx, db, issue.ProjectID, user.ID, msgIssueNotFound); err != nil {
		return nil, err
	}
	return issue, nil
}

// Create stores an issue reported by the caller. Absent fields get their
// defaults; the sprint, if any, must belong to the same project.
func (s *IssueService) Create(ctx context.Context, user models.User, in models.IssueInput) (*models.Issue, error) {
	if in.ProjectID == "" {
		return nil, common.NewError(common.ErrorBadRequest, msgProjectRequired)
	}

	issue := &models.Issue{
		ProjectID: in.ProjectID,
		Type:      models.TypeTask,
		Status:    models.StatusBacklog,
		Priority:  models.PriorityMedium,
		Reporter:  user.Name,
		Labels:    []string{},
	}
	if !in.Title.Present() {
		return nil, common.NewError(common.ErrorValidation, "Title is required")
	}

	var result *models.Issue
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.membership.Require(ctx, tx, in.ProjectID, user.ID, msgProjectNotFound); err != nil {
			return err
		}
		if err := s.apply(ctx, tx, issue, in); err != nil {
			return err
		}
		var err error
		result, err = s.repomanager.Issues(tx).Create(ctx, issue)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies present fields. Project and reporter never change.
func (s *IssueService) Update(ctx context.Context, user models.User, id string, in models.IssueInput) (*models.Issue, error) {
	var result *models.Issue
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		issue, err := loadVisibleIssue(ctx, s.repomanager, s.membership, tx, user, id)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, issue, in); err != nil {
			return err
		}
		result, err = s.repomanager.Issues(tx).Update(ctx, issue)
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgIssueNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PatchStatus moves an issue to another board column.
func (s *IssueService) PatchStatus(ctx context.Context, user models.User, id string, status models.IssueStatus) (*models.Issue, error) {
	if !status.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Invalid status")
	}
	if _, err := loadVisibleIssue(ctx, s.repomanager, s.membership, s.db, user, id); err != nil {
		return nil, err
	}
	issue, err := s.repomanager.Issues(s.db).UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgIssueNotFound)
		}
		return nil, err
	}
	return issue, nil
}

func (s *IssueService) Delete(ctx context.Context, user models.User, id string) error {
	if _, err := loadVisibleIssue(ctx, s.repomanager, s.membership, s.db, user, id); err != nil {
		return err
	}
	if err := s.repomanager.Issues(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgIssueNotFound)
		}
		return err
	}
	return nil
}

// apply copies the set fields of in onto issue, validating references
// against the issue's project.
func (s *IssueService) apply(ctx context.Context, db dbx.DBTX, issue *models.Issue, in models.IssueInput) error {
	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if in.Title.Null || title == "" {
			return common.NewError(common.ErrorValidation, "Title is required")
		}
		issue.Title = title
	}
	if in.Description.Set {
		issue.Description = in.Description.Value
	}
	if in.Type.Present() {
		issue.Type = in.Type.Value
	}
	if in.Status.Present() {
		issue.Status = in.Status.Value
	}
	if in.Priority.Present() {
		issue.Priority = in.Priority.Value
	}
	if in.Assignee.Set {
		issue.Assignee = strings.TrimSpace(in.Assignee.Value)
	}
	if in.StoryPoints.Set {
		issue.StoryPoints = coerceStoryPoints(in.StoryPoints)
	}
	if in.Labels.Set {
		issue.Labels = cleanLabels(in.Labels.Value)
	}

	if in.SprintID.Set {
		if in.SprintID.Null || in.SprintID.Value == "" {
			issue.SprintID = nil
		} else {
			if err := s.checkSprint(ctx, db, issue.ProjectID, in.SprintID.Value); err != nil {
				return err
			}
			sprintID := in.SprintID.Value
			issue.SprintID = &sprintID
		}
	}

	if in.AssigneeID.Set {
		if in.AssigneeID.Null || in.AssigneeID.Value == "" {
			issue.AssigneeID = nil
		} else {
			name, err := s.checkAssignee(ctx, db, issue.ProjectID, in.AssigneeID.Value)
			if err != nil {
				return err
			}
			assigneeID := in.AssigneeID.Value
			issue.AssigneeID = &assigneeID
			if issue.Assignee == "" {
				issue.Assignee = name
			}
		}
	}
	return nil
}

func (s *IssueService) checkSprint(ctx context.Context, db dbx.DBTX, projectID, sprintID string) error {
	invalid := common.NewError(common.ErrorValidation, "Sprint does not belong to this project")
	if !isUUID(sprintID) {
		return invalid
	}
	sp, err := s.repomanager.Sprints(db).GetByID(ctx, sprintID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return invalid
		}
		return err
	}
	if sp.ProjectID != projectID {
		return invalid
	}
	return nil
}

// checkAssignee verifies userID is a project member and returns its name.
func (s *IssueService) checkAssignee(ctx context.Context, db dbx.DBTX, projectID, userID string) (string, error) {
	invalid := common.NewError(common.ErrorValidation, "Assignee must be a project member")
	if !isUUID(userID) {
		return "", invalid
	}
	ok, err := s.repomanager.Members(db).IsMember(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invalid
	}
	u, err := s.repomanager.Users(db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

// coerceStoryPoints drops negative and unparsable values and truncates fractions.
func coerceStoryPoints(v models.Optional[models.Points]) *int {
	f := float64(v.Value)
	if !v.Present() || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Trunc(f))
	return &n
}

func cleanLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
