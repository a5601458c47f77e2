package models

import "time"

// Attachment is file metadata for an issue. The object itself lives in S3
// under StorageKey; URL is a short-lived presigned link filled per request.
type Attachment struct {
	ID          string    `json:"_id"`
	IssueID     string    `json:"issueId"`
	ProjectID   string    `json:"projectId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"-"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url,omitempty"`
}

type AttachmentInput struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// AttachmentUpload is returned when an upload is requested: the stored
// metadata plus a presigned URL the client PUTs the file body to.
type AttachmentUpload struct {
	Attachment
	UploadURL string `json:"uploadUrl"`
}
