// Package analytics aggregates issue statistics for a project.
package analytics

import (
	"math"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type UserStats struct {
	AssignedCount  int `json:"assignedCount"`
	CompletedCount int `json:"completedCount"`
}

// Stats is the analytics payload of a project. The maps only contain keys
// that occur in the input.
type Stats struct {
	TotalIssues          int                        `json:"totalIssues"`
	CompletedIssues      int                        `json:"completedIssues"`
	OpenIssues           int                        `json:"openIssues"`
	CompletionPercentage int                        `json:"completionPercentage"`
	IssuesByStatus       map[models.IssueStatus]int `json:"issuesByStatus"`
	IssuesByPriority     map[models.Priority]int    `json:"issuesByPriority"`
	UserStats            UserStats                  `json:"userStats"`
}

// Compute derives Stats from issues from the point of view of user.
func Compute(issues []models.Issue, user models.User) Stats {
	st := Stats{
		TotalIssues:      len(issues),
		IssuesByStatus:   make(map[models.IssueStatus]int),
		IssuesByPriority: make(map[models.Priority]int),
	}

	for _, issue := range issues {
		done := issue.Status == models.StatusDone
		if done {
			st.CompletedIssues++
		}
		st.IssuesByStatus[issue.Status]++
		st.IssuesByPriority[issue.Priority]++

		if assignedTo(issue, user) {
			st.UserStats.AssignedCount++
			if done {
				st.UserStats.CompletedCount++
			}
		}
	}

	st.OpenIssues = st.TotalIssues - st.CompletedIssues
	if st.TotalIssues > 0 {
		st.CompletionPercentage = int(math.Round(float64(st.CompletedIssues) * 100 / float64(st.TotalIssues)))
	}
	return st
}

// assignedTo matches by user id when the issue references one, otherwise by
// display name.
func assignedTo(issue models.Issue, user models.User) bool {
	if issue.AssigneeID != nil {
		return *issue.AssigneeID == user.ID
	}
	return user.Name != "" && issue.Assignee == user.Name
}
