package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/client/models"
	"github.com/dmitrijs2005/issuetracker/internal/common"
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New returns a client for the API at baseURL. timeout bounds every request.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Token returns the current session token, or "" when logged out.
func (c *Client) Token() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == common.SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetToken restores a previously saved session.
func (c *Client) SetToken(token string) {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  common.SessionCookieName,
		Value: token,
		Path:  "/",
	}})
}

func (c *Client) clearToken() {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:   common.SessionCookieName,
		Path:   "/",
		MaxAge: -1,
	}})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping checks that the server and its database are reachable.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func (c *Client) Register(ctx context.Context, name, email string, password []byte) (*models.User, error) {
	body := map[string]string{"name": name, "email": email, "password": string(password)}
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/api/users/register", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	body := map[string]string{"email": email, "password": string(password)}
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/api/users/login", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout ends the session on the server. The local token is dropped even
// when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/users/logout", nil, nil, nil)
	c.clearToken()
	return err
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProject(ctx context.Context, in models.NewProject) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AddMember(ctx context.Context, projectID, email string) (*models.Project, error) {
	var p models.Project
	path := "/api/projects/" + url.PathEscape(projectID) + "/members"
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"email": email}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListSprints(ctx context.Context, projectID string) ([]models.Sprint, error) {
	var sprints []models.Sprint
	q := url.Values{"projectId": {projectID}}
	if err := c.do(ctx, http.MethodGet, "/api/sprints", q, nil, &sprints); err != nil {
		return nil, err
	}
	return sprints, nil
}

// IssueQuery selects issues of one project. A nil SprintID lists every
// issue unless Backlog is set, which lists issues without a sprint.
type IssueQuery struct {
	ProjectID string
	SprintID  *string
	Backlog   bool
	Status    models.Status
	Assignee  string
}

func (q IssueQuery) values() url.Values {
	v := url.Values{"projectId": {q.ProjectID}}
	switch {
	case q.SprintID != nil:
		v.Set("sprintId", *q.SprintID)
	case q.Backlog:
		v.Set("sprintId", "null")
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Assignee != "" {
		v.Set("assignee", q.Assignee)
	}
	return v
}

func (c *Client) ListIssues(ctx context.Context, q IssueQuery) ([]models.Issue, error) {
	var issues []models.Issue
	if err := c.do(ctx, http.MethodGet, "/api/issues", q.values(), nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (c *Client) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	var i models.Issue
	if err := c.do(ctx, http.MethodGet, "/api/issues/"+url.PathEscape(id), nil, nil, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (c *Client) CreateIssue(ctx context.Context, in models.NewIssue) (*models.Issue, error) {
	var i models.Issue
	if err := c.do(ctx, http.MethodPost, "/api/issues", nil, in, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// PatchStatus moves an issue to another workflow column.
func (c *Client) PatchStatus(ctx context.Context, id string, status models.Status) (*models.Issue, error) {
	var i models.Issue
	path := "/api/issues/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, nil, map[string]models.Status{"status": status}, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/issues/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Analytics(ctx context.Context, projectID string) (*models.Stats, error) {
	var s models.Stats
	if err := c.do(ctx, http.MethodGet, "/api/analytics/"+url.PathEscape(projectID), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RequestUpload registers an attachment and returns it with a presigned
// upload URL.
func (c *Client) RequestUpload(ctx context.Context, issueID, fileName, contentType string, size int64) (*models.Attachment, error) {
	body := map[string]any{"fileName": fileName, "contentType": contentType, "size": size}
	var a models.Attachment
	path := "/api/issues/" + url.PathEscape(issueID) + "/attachments"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ListAttachments(ctx context.Context, issueID string) ([]models.Attachment, error) {
	var list []models.Attachment
	path := "/api/issues/" + url.PathEscape(issueID) + "/attachments"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
