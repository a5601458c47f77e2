// Package models defines the client-side view of tracker resources as they
// appear on the wire.
package models

import (
	"slices"
	"time"
)

// Status is an issue's workflow column.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Valid reports whether s is one of the known columns.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Project struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	LeadID      string    `json:"lead"`
	OwnerID     string    `json:"owner"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Sprint struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	ProjectID string    `json:"projectId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Goal      string    `json:"goal"`
	Status    string    `json:"status"`
}

type Issue struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   string    `json:"projectId"`
	SprintID    *string   `json:"sprintId"`
	Type        string    `json:"type"`
	Status      Status    `json:"status"`
	Priority    string    `json:"priority"`
	Assignee    string    `json:"assignee"`
	AssigneeID  *string   `json:"assigneeId"`
	Reporter    string    `json:"reporter"`
	StoryPoints *int      `json:"storyPoints"`
	Labels      []string  `json:"labels"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewIssue is the body of an issue create request. Zero values are omitted
// so the server applies its defaults.
type NewIssue struct {
	ProjectID   string   `json:"projectId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	SprintID    *string  `json:"sprintId,omitempty"`
	Type        string   `json:"type,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	AssigneeID  *string  `json:"assigneeId,omitempty"`
	StoryPoints *int     `json:"storyPoints,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

type NewProject struct {
	Name        string `json:"name"`
	Key         string `json:"key,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

type Stats struct {
	TotalIssues          int            `json:"totalIssues"`
	CompletedIssues      int            `json:"completedIssues"`
	OpenIssues           int            `json:"openIssues"`
	CompletionPercentage int            `json:"completionPercentage"`
	IssuesByStatus       map[Status]int `json:"issuesByStatus"`
	IssuesByPriority     map[string]int `json:"issuesByPriority"`
	UserStats            struct {
		AssignedCount  int `json:"assignedCount"`
		CompletedCount int `json:"completedCount"`
	} `json:"userStats"`
}

type Attachment struct {
	ID          string    `json:"_id"`
	IssueID     string    `json:"issueId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url,omitempty"`
	UploadURL   string    `json:"uploadUrl,omitempty"`
}
