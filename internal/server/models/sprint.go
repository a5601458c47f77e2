package models

import "time"

type Sprint struct {
	ID        string       `json:"_id"`
	ProjectID string       `json:"projectId"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    SprintStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// SprintInput is the body of sprint create and update requests.
// ProjectID is only honoured on create.
type SprintInput struct {
	ProjectID string                 `json:"projectId"`
	Name      Optional[string]       `json:"name"`
	Goal      Optional[string]       `json:"goal"`
	StartDate Optional[Date]         `json:"startDate"`
	EndDate   Optional[Date]         `json:"endDate"`
	Status    Optional[SprintStatus] `json:"status"`
}
