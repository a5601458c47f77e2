// Package members persists project membership, the gate behind every
// project-scoped read and write.
package members

import "context"

type Repository interface {
	// Add makes userID a member of projectID. Adding an existing member is a no-op.
	Add(ctx context.Context, projectID, userID string) error
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
	// ListByProject returns member ids in joining order.
	ListByProject(ctx context.Context, projectID string) ([]string, error)
	// ListForUserProjects returns, for every project userID belongs to, the
	// ids of all its members.
	ListForUserProjects(ctx context.Context, userID string) (map[string][]string, error)
	DeleteByProject(ctx context.Context, projectID string) error
}
