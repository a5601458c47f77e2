package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Membership is the access gate for project-scoped data. A caller outside
// the project gets the same NotFound as for a missing resource.
type Membership struct {
	repomanager repomanager.RepositoryManager
}

func NewMembership(m repomanager.RepositoryManager) *Membership {
	return &Membership{repomanager: m}
}

// Require returns a NotFound error carrying notFoundMsg unless userID is a
// member of projectID.
func (g *Membership) Require(ctx context.Context, db dbx.DBTX, projectID, userID, notFoundMsg string) error {
	if !isUUID(projectID) {
		return common.NewError(common.ErrorNotFound, notFoundMsg)
	}
	ok, err := g.repomanager.Members(db).IsMember(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("error checking membership: %w", err)
	}
	if !ok {
		return common.NewError(common.ErrorNotFound, notFoundMsg)
	}
	return nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
