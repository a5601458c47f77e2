package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/common"
)

// IssueStatus is a board column. The order of IssueStatuses is the board's
// left-to-right column order.
type IssueStatus string

const (
	StatusBacklog    IssueStatus = "backlog"
	StatusTodo       IssueStatus = "todo"
	StatusInProgress IssueStatus = "in-progress"
	StatusReview     IssueStatus = "review"
	StatusDone       IssueStatus = "done"
)

var IssueStatuses = []IssueStatus{StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone}

type IssueType string

const (
	TypeStory IssueType = "story"
	TypeTask  IssueType = "task"
	TypeBug   IssueType = "bug"
	TypeEpic  IssueType = "epic"
)

var IssueTypes = []IssueType{TypeStory, TypeTask, TypeBug, TypeEpic}

type Priority string

const (
	PriorityLowest  Priority = "lowest"
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityHighest Priority = "highest"
)

var Priorities = []Priority{PriorityLowest, PriorityLow, PriorityMedium, PriorityHigh, PriorityHighest}

type ProjectType string

const (
	ProjectSoftware  ProjectType = "software"
	ProjectMarketing ProjectType = "marketing"
	ProjectBusiness  ProjectType = "business"
)

var ProjectTypes = []ProjectType{ProjectSoftware, ProjectMarketing, ProjectBusiness}

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectInactive ProjectStatus = "inactive"
	ProjectArchived ProjectStatus = "archived"
)

var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectInactive, ProjectArchived}

type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

var SprintStatuses = []SprintStatus{SprintPlanning, SprintActive, SprintCompleted}

func ParseIssueStatus(s string) (IssueStatus, error) { return parseEnum("status", s, IssueStatuses) }
func ParseIssueType(s string) (IssueType, error)     { return parseEnum("type", s, IssueTypes) }
func ParsePriority(s string) (Priority, error)       { return parseEnum("priority", s, Priorities) }
func ParseProjectType(s string) (ProjectType, error) { return parseEnum("project type", s, ProjectTypes) }
func ParseProjectStatus(s string) (ProjectStatus, error) {
	return parseEnum("project status", s, ProjectStatuses)
}
func ParseSprintStatus(s string) (SprintStatus, error) {
	return parseEnum("sprint status", s, SprintStatuses)
}

func (s IssueStatus) Valid() bool   { _, err := ParseIssueStatus(string(s)); return err == nil }
func (t IssueType) Valid() bool     { _, err := ParseIssueType(string(t)); return err == nil }
func (p Priority) Valid() bool      { _, err := ParsePriority(string(p)); return err == nil }
func (t ProjectType) Valid() bool   { _, err := ParseProjectType(string(t)); return err == nil }
func (s ProjectStatus) Valid() bool { _, err := ParseProjectStatus(string(s)); return err == nil }
func (s SprintStatus) Valid() bool  { _, err := ParseSprintStatus(string(s)); return err == nil }

func (s *IssueStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", IssueStatuses, s)
}

func (t *IssueType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "type", IssueTypes, t)
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "priority", Priorities, p)
}

func (t *ProjectType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "project type", ProjectTypes, t)
}

func (s *ProjectStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "project status", ProjectStatuses, s)
}

func (s *SprintStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "sprint status", SprintStatuses, s)
}

func parseEnum[T ~string](kind, s string, allowed []T) (T, error) {
	for _, a := range allowed {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: invalid %s %q", common.ErrorValidation, kind, s)
}

func unmarshalEnum[T ~string](b []byte, kind string, allowed []T, dst *T) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s must be a string", common.ErrorValidation, kind)
	}
	v, err := parseEnum(kind, s, allowed)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
