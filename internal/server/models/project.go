package models

import "time"

// Project groups sprints and issues. Key is unique and immutable;
// Members always contains OwnerID.
type Project struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Key         string        `json:"key"`
	Description string        `json:"description"`
	Type        ProjectType   `json:"type"`
	Status      ProjectStatus `json:"status"`
	LeadID      string        `json:"lead"`
	OwnerID     string        `json:"owner"`
	Members     []string      `json:"members"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ProjectInput is the body of project create and update requests.
// Key is only honoured on create.
type ProjectInput struct {
	Name        Optional[string]        `json:"name"`
	Key         Optional[string]        `json:"key"`
	Description Optional[string]        `json:"description"`
	Type        Optional[ProjectType]   `json:"type"`
	Status      Optional[ProjectStatus] `json:"status"`
	Lead        Optional[string]        `json:"lead"`
}

type AddMemberInput struct {
	Email string `json:"email"`
}
