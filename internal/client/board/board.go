// Package board projects a project's issues onto the five workflow columns
// and moves issues between them optimistically.
//
// A move is applied locally first and then persisted with a status patch.
// Its state goes pending -> confirmed when the server accepts it, or
// pending -> rolled-back when the call fails, in which case the issue is put
// back where it was and the caller gets a *MoveError.
//
// Order inside a column is local to the board and never sent to the server.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/client/client"
	"github.com/dmitrijs2005/issuetracker/internal/client/models"
)

const defaultTimeout = 10 * time.Second

var (
	ErrMovePending   = errors.New("a move of this issue is already pending")
	ErrUnknownIssue  = errors.New("issue is not on the board")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyResponse = errors.New("server returned no issue")
)

// API is the part of the REST client the board needs.
type API interface {
	ListIssues(ctx context.Context, q client.IssueQuery) ([]models.Issue, error)
	PatchStatus(ctx context.Context, id string, status models.Status) (*models.Issue, error)
}

type MoveState string

const (
	MovePending    MoveState = "pending"
	MoveConfirmed  MoveState = "confirmed"
	MoveRolledBack MoveState = "rolled-back"
)

// MoveError reports a move that was rolled back.
type MoveError struct {
	IssueID string
	Err     error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move of issue %s failed: %v", e.IssueID, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// Notifier is told about moves that had to be rolled back.
type Notifier interface {
	MoveFailed(issue models.Issue, err *MoveError)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(issue models.Issue, err *MoveError)

func (f NotifierFunc) MoveFailed(issue models.Issue, err *MoveError) { f(issue, err) }

// Scope selects the issues shown. A nil SprintID shows the backlog.
type Scope struct {
	ProjectID string
	SprintID  *string
}

type Column struct {
	Status models.Status
	Issues []models.Issue
}

type Option func(*Board)

// WithTimeout bounds each status patch.
func WithTimeout(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(b *Board) { b.notifier = n }
}

// snapshot is where an issue was before a move.
type snapshot struct {
	issue  models.Issue
	status models.Status
	index  int
}

type Board struct {
	api      API
	scope    Scope
	timeout  time.Duration
	notifier Notifier

	// mu guards columns and states. It is never held during API calls.
	mu      sync.Mutex
	columns map[models.Status][]models.Issue
	states  map[string]MoveState
}

func New(api API, scope Scope, opts ...Option) *Board {
	b := &Board{
		api:     api,
		scope:   scope,
		timeout: defaultTimeout,
		columns: emptyColumns(),
		states:  map[string]MoveState{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SprintID is the sprint the board shows, nil for the backlog.
func (b *Board) SprintID() *string {
	if b.scope.SprintID == nil {
		return nil
	}
	id := *b.scope.SprintID
	return &id
}

func emptyColumns() map[models.Status][]models.Issue {
	cols := make(map[models.Status][]models.Issue, len(models.Statuses))
	for _, s := range models.Statuses {
		cols[s] = []models.Issue{}
	}
	return cols
}

// Load fetches the scope's issues and rebuilds the columns in server order.
// It fails with ErrMovePending while any move is in flight, including a
// move started while the fetch was running.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	pending := b.hasPending()
	b.mu.Unlock()
	if pending {
		return ErrMovePending
	}

	q := client.IssueQuery{ProjectID: b.scope.ProjectID, SprintID: b.scope.SprintID, Backlog: b.scope.SprintID == nil}
	issues, err := b.api.ListIssues(ctx, q)
	if err != nil {
		return err
	}

	cols := emptyColumns()
	for _, issue := range issues {
		if !issue.Status.Valid() {
			continue
		}
		cols[issue.Status] = append(cols[issue.Status], issue)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hasPending() {
		return ErrMovePending
	}
	b.columns = cols
	b.states = map[string]MoveState{}
	return nil
}

// hasPending must be called with b.mu held.
func (b *Board) hasPending() bool {
	for _, st := range b.states {
		if st == MovePending {
			return true
		}
	}
	return false
}

// Columns returns a copy of all columns in workflow order.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Column, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		out = append(out, Column{Status: s, Issues: slices.Clone(b.columns[s])})
	}
	return out
}

// Column returns a copy of one column. Unknown statuses yield nil.
func (b *Board) Column(status models.Status) []models.Issue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.columns[status])
}

// Position reports the column and index of an issue.
func (b *Board) Position(issueID string) (models.Status, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locate(issueID)
}

// State reports the state of the last move of an issue.
func (b *Board) State(issueID string) (MoveState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[issueID]
	return st, ok
}

func (b *Board) locate(issueID string) (models.Status, int, bool) {
	for _, s := range models.Statuses {
		for i, issue := range b.columns[s] {
			if issue.ID == issueID {
				return s, i, true
			}
		}
	}
	return "", 0, false
}

func (b *Board) remove(status models.Status, index int) models.Issue {
	issue := b.columns[status][index]
	b.columns[status] = slices.Delete(b.columns[status], index, index+1)
	return issue
}

func (b *Board) insert(status models.Status, index int, issue models.Issue) {
	index = min(max(index, 0), len(b.columns[status]))
	b.columns[status] = slices.Insert(b.columns[status], index, issue)
}

// Move places an issue into target at targetIndex (clamped to the column)
// and persists the new status. Moving an issue onto its current position
// returns it unchanged without calling the server.
//
// On failure the issue returns to its previous column and index and the
// returned error is a *MoveError. Other issues moved in the meantime keep
// their places.
func (b *Board) Move(ctx context.Context, issueID string, target models.Status, targetIndex int) (models.Issue, error) {
	if !target.Valid() {
		return models.Issue{}, fmt.Errorf("%w %q", ErrInvalidStatus, target)
	}

	b.mu.Lock()
	from, index, ok := b.locate(issueID)
	if !ok {
		b.mu.Unlock()
		return models.Issue{}, ErrUnknownIssue
	}
	current := b.columns[from][index]

	if b.states[issueID] == MovePending {
		b.mu.Unlock()
		return current, ErrMovePending
	}

	limit := len(b.columns[target])
	if target == from {
		limit--
	}
	targetIndex = min(max(targetIndex, 0), limit)

	if target == from && targetIndex == index {
		b.mu.Unlock()
		return current, nil
	}

	snap := snapshot{issue: current, status: from, index: index}

	moved := b.remove(from, index)
	moved.Status = target
	b.insert(target, targetIndex, moved)
	b.states[issueID] = MovePending
	b.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	updated, err := b.api.PatchStatus(callCtx, issueID, target)
	cancel()
	if err == nil && updated == nil {
		err = ErrEmptyResponse
	}

	b.mu.Lock()
	if err != nil {
		b.rollback(snap)
		b.states[issueID] = MoveRolledBack
		b.mu.Unlock()

		moveErr := &MoveError{IssueID: issueID, Err: err}
		if b.notifier != nil {
			b.notifier.MoveFailed(snap.issue, moveErr)
		}
		return snap.issue, moveErr
	}

	b.confirm(*updated)
	b.states[issueID] = MoveConfirmed
	b.mu.Unlock()
	return *updated, nil
}

func (b *Board) rollback(snap snapshot) {
	if s, i, ok := b.locate(snap.issue.ID); ok {
		b.remove(s, i)
	}
	b.insert(snap.status, snap.index, snap.issue)
}

// confirm swaps in the server's copy of an issue, keeping its place unless
// the server reports another status.
func (b *Board) confirm(issue models.Issue) {
	s, i, ok := b.locate(issue.ID)
	if !ok {
		return
	}
	if s == issue.Status {
		b.columns[s][i] = issue
		return
	}
	b.remove(s, i)
	if issue.Status.Valid() {
		b.insert(issue.Status, 0, issue)
	}
}
