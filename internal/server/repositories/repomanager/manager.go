package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/issues"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/members"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/projects"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/sprints"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either a pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
	Members(db dbx.DBTX) members.Repository
	Projects(db dbx.DBTX) projects.Repository
	Sprints(db dbx.DBTX) sprints.Repository
	Issues(db dbx.DBTX) issues.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
