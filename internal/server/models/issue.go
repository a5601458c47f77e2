package models

import "time"

// Issue is a unit of work. SprintID nil means the issue is in the backlog.
// Assignee is a display name; AssigneeID, when set, references a user.
type Issue struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ProjectID   string      `json:"projectId"`
	SprintID    *string     `json:"sprintId"`
	Type        IssueType   `json:"type"`
	Status      IssueStatus `json:"status"`
	Priority    Priority    `json:"priority"`
	Assignee    string      `json:"assignee"`
	AssigneeID  *string     `json:"assigneeId"`
	Reporter    string      `json:"reporter"`
	StoryPoints *int        `json:"storyPoints"`
	Labels      []string    `json:"labels"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// IssueInput is the body of issue create and update requests. Absent fields
// keep their current (or default) values. ProjectID is only honoured on
// create; reporter is never accepted from the client.
type IssueInput struct {
	ProjectID   string                `json:"projectId"`
	Title       Optional[string]      `json:"title"`
	Description Optional[string]      `json:"description"`
	SprintID    Optional[string]      `json:"sprintId"`
	Type        Optional[IssueType]   `json:"type"`
	Status      Optional[IssueStatus] `json:"status"`
	Priority    Optional[Priority]    `json:"priority"`
	Assignee    Optional[string]      `json:"assignee"`
	AssigneeID  Optional[string]      `json:"assigneeId"`
	StoryPoints Optional[Points]      `json:"storyPoints"`
	Labels      Optional[[]string]    `json:"labels"`
}

type StatusInput struct {
	Status IssueStatus `json:"status"`
}

// SprintScope selects which issues of a project a listing returns.
type SprintScope int

const (
	// SprintAny returns issues regardless of sprint.
	SprintAny SprintScope = iota
	// SprintNone returns backlog issues only.
	SprintNone
	// SprintOne returns issues of a single sprint.
	SprintOne
)

type SprintFilter struct {
	Scope    SprintScope
	SprintID string
}

// ParseSprintFilter interprets the sprintId query parameter: absent means
// any sprint, "null" or "none" means the backlog.
func ParseSprintFilter(raw string, present bool) SprintFilter {
	switch {
	case !present || raw == "":
		return SprintFilter{Scope: SprintAny}
	case raw == "null" || raw == "none":
		return SprintFilter{Scope: SprintNone}
	default:
		return SprintFilter{Scope: SprintOne, SprintID: raw}
	}
}

// IssueFilter narrows an issue listing. ProjectID is mandatory.
type IssueFilter struct {
	ProjectID string
	Sprint    SprintFilter
	Status    *IssueStatus
	Assignee  string
}
