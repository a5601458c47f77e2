package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

const (
	msgProjectNotFound = "Project not found"
	msgKeyExists       = "Project key already exists"
)

type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	membership  *Membership
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *ProjectService {
	return &ProjectService{db: db, repomanager: m, membership: NewMembership(m)}
}

// Create stores a new project owned and led by the caller, who becomes its
// only member. The key is normalized, or derived from the name when absent.
func (s *ProjectService) Create(ctx context.Context, user models.User, in models.ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name.Value)
	if !in.Name.Present() || name == "" {
		return nil, common.NewError(common.ErrorValidation, "Project name is required")
	}

	rawKey := name
	if in.Key.Present() && strings.TrimSpace(in.Key.Value) != "" {
		rawKey = in.Key.Value
	}
	key := common.NormalizeProjectKey(rawKey)
	if key == "" {
		return nil, common.NewError(common.ErrorValidation, "Project key must contain letters or digits")
	}

	p := &models.Project{
		Name:    name,
		Key:     key,
		Type:    models.ProjectSoftware,
		Status:  models.ProjectActive,
		LeadID:  user.ID,
		OwnerID: user.ID,
	}
	if in.Description.Present() {
		p.Description = in.Description.Value
	}
	if in.Type.Present() {
		p.Type = in.Type.Value
	}
	if in.Status.Present() {
		p.Status = in.Status.Value
	}
	if in.Lead.Present() && in.Lead.Value != "" && in.Lead.Value != user.ID {
		return nil, common.NewError(common.ErrorValidation, "Lead must be a project member")
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		projects := s.repomanager.Projects(tx)

		exists, err := projects.ExistsByKey(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return common.NewError(common.ErrorConflict, msgKeyExists)
		}

		if _, err := projects.Create(ctx, p); err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return common.NewError(common.ErrorConflict, msgKeyExists)
			}
			return err
		}
		return s.repomanager.Members(tx).Add(ctx, p.ID, user.ID)
	})
	if err != nil {
		return nil, err
	}

	p.Members = []string{user.ID}
	return p, nil
}

// List returns the projects the caller is a member of, newest first.
func (s *ProjectService) List(ctx context.Context, user models.User) ([]models.Project, error) {
	projects, err := s.repomanager.Projects(s.db).ListByMember(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	members, err := s.repomanager.Members(s.db).ListForUserProjects(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}
	for i := range projects {
		projects[i].Members = members[projects[i].ID]
		if projects[i].Members == nil {
			projects[i].Members = []string{}
		}
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, user models.User, id string) (*models.Project, error) {
	if err := s.membership.Require(ctx, s.db, id, user.ID, msgProjectNotFound); err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, id)
}

func (s *ProjectService) load(ctx context.Context, db dbx.DBTX, id string) (*models.Project, error) {
	p, err := s.repomanager.Projects(db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgProjectNotFound)
		}
		return nil, err
	}
	members, err := s.repomanager.Members(db).ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Members = members
	return p, nil
}

// Update changes name, description, type, status and lead. The key is immutable.
func (s *ProjectService) Update(ctx context.Context, user models.User, id string, in models.ProjectInput) (*models.Project, error) {
	var result *models.Project
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.membership.Require(ctx, tx, id, user.ID, msgProjectNotFound); err != nil {
			return err
		}
		p, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}

		if in.Key.Present() && common.NormalizeProjectKey(in.Key.Value) != p.Key {
			return common.NewError(common.ErrorValidation, "Project key cannot be changed")
		}
		if in.Name.Set {
			name := strings.TrimSpace(in.Name.Value)
			if in.Name.Null || name == "" {
				return common.NewError(common.ErrorValidation, "Project name is required")
			}
			p.Name = name
		}
		if in.Description.Set {
			p.Description = in.Description.Value
		}
		if in.Type.Present() {
			p.Type = in.Type.Value
		}
		if in.Status.Present() {
			p.Status = in.Status.Value
		}
		if in.Lead.Present() && in.Lead.Value != p.LeadID {
			if !slices.Contains(p.Members, in.Lead.Value) {
				return common.NewError(common.ErrorValidation, "Lead must be a project member")
			}
			p.LeadID = in.Lead.Value
		}

		if _, err := s.repomanager.Projects(tx).Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the project together with its issues, sprints and
// memberships in one transaction.
func (s *ProjectService) Delete(ctx context.Context, user models.User, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.membership.Require(ctx, tx, id, user.ID, msgProjectNotFound); err != nil {
			return err
		}
		if err := s.repomanager.Issues(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Sprints(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Members(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Projects(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, msgProjectNotFound)
			}
			return err
		}
		return nil
	})
}

// AddMember lets any member add a registered user, found by email. Adding an
// existing member is a no-op.
func (s *ProjectService) AddMember(ctx context.Context, user models.User, projectID string, in models.AddMemberInput) (*models.Project, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, common.NewError(common.ErrorValidation, "Email is required")
	}
	if err := s.membership.Require(ctx, s.db, projectID, user.ID, msgProjectNotFound); err != nil {
		return nil, err
	}

	invitee, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "User not found")
		}
		return nil, err
	}
	if err := s.repomanager.Members(s.db).Add(ctx, projectID, invitee.ID); err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, projectID)
}
