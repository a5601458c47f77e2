// Package session keeps the CLI's login and selected project in a local
// SQLite database so they survive restarts.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/client/migrations"
	"github.com/dmitrijs2005/issuetracker/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyToken      = "session_token"
	keyUserName   = "user_name"
	keyProjectID  = "project_id"
	keyProjectKey = "project_key"
)

// Session is what the CLI remembers between runs.
type Session struct {
	Token      string
	UserName   string
	ProjectID  string
	ProjectKey string
}

type Store struct {
	db   *sql.DB
	repo metadata.Repository
}

// RunMigrations applies the embedded schema to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the state database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{db: db, repo: metadata.NewSQLiteRepository(db)}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the saved session. Missing values are empty.
func (s *Store) Load(ctx context.Context) (Session, error) {
	var sess Session
	fields := map[string]*string{
		keyToken:      &sess.Token,
		keyUserName:   &sess.UserName,
		keyProjectID:  &sess.ProjectID,
		keyProjectKey: &sess.ProjectKey,
	}
	for key, dst := range fields {
		v, _, err := s.repo.Get(ctx, key)
		if err != nil {
			return Session{}, err
		}
		*dst = v
	}
	return sess, nil
}

// Save replaces the stored session in one transaction.
func (s *Store) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		values := map[string]string{
			keyToken:      sess.Token,
			keyUserName:   sess.UserName,
			keyProjectID:  sess.ProjectID,
			keyProjectKey: sess.ProjectKey,
		}
		for key, v := range values {
			var err error
			if v == "" {
				err = repo.Delete(ctx, key)
			} else {
				err = repo.Set(ctx, key, v)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear forgets everything, typically on logout.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
