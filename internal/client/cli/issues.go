package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/client/board"
	"github.com/dmitrijs2005/issuetracker/internal/client/client"
	"github.com/dmitrijs2005/issuetracker/internal/client/models"
	"github.com/dmitrijs2005/issuetracker/internal/filex"
	"github.com/dmitrijs2005/issuetracker/internal/netx"
)

const maxAttachmentSize = 25 << 20

// Test seams for file access and the presigned upload.
var (
	readFile = filex.ReadLimited
	uploadFn = netx.UploadToS3PresignedURL
)

// Board loads and prints a board. With no argument it shows the active
// sprint, or the backlog when there is none. "backlog" forces the backlog,
// anything else names a sprint by name or id prefix.
func (a *App) Board(ctx context.Context, args []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}

	sprintID, label, err := a.pickSprint(ctx, args)
	if err != nil {
		return report(err)
	}

	b := board.New(a.api, board.Scope{ProjectID: a.projectID, SprintID: sprintID},
		board.WithTimeout(a.config.RequestTimeout),
		board.WithNotifier(board.NotifierFunc(func(issue models.Issue, err *board.MoveError) {
			printlnFn(fmt.Sprintf("Move of %q reverted: %v", issue.Title, err.Err))
		})),
	)
	if err := b.Load(ctx); err != nil {
		return report(err)
	}
	a.board = b

	printlnFn(fmt.Sprintf("%s board: %s", a.projectKey, label))
	a.printBoard()
	return nil
}

func (a *App) pickSprint(ctx context.Context, args []string) (*string, string, error) {
	if len(args) > 0 && args[0] == "backlog" {
		return nil, "backlog", nil
	}
	sprints, err := a.api.ListSprints(ctx, a.projectID)
	if err != nil {
		return nil, "", err
	}
	if len(args) == 0 {
		for _, s := range sprints {
			if s.Status == "active" {
				id := s.ID
				return &id, s.Name, nil
			}
		}
		return nil, "backlog", nil
	}

	want := strings.Join(args, " ")
	for _, s := range sprints {
		if strings.EqualFold(s.Name, want) || strings.HasPrefix(s.ID, want) {
			id := s.ID
			return &id, s.Name, nil
		}
	}
	return nil, "", fmt.Errorf("no sprint matches %q", want)
}

func (a *App) printBoard() {
	for _, col := range a.board.Columns() {
		printlnFn(fmt.Sprintf("== %s (%d)", col.Status, len(col.Issues)))
		for _, is := range col.Issues {
			line := fmt.Sprintf("  %s  [%s/%s] %s", shortID(is.ID), is.Type, is.Priority, is.Title)
			if is.Assignee != "" {
				line += " @" + is.Assignee
			}
			printlnFn(line)
		}
	}
}

// Move moves an issue on the loaded board: move <ref> <status> [index].
func (a *App) Move(ctx context.Context, args []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	if a.board == nil {
		return report(errors.New("no board loaded, run 'board' first"))
	}
	if len(args) < 2 || len(args) > 3 {
		return report(errors.New("usage: move <issue> <status> [index]"))
	}

	target := models.Status(args[1])
	if !target.Valid() {
		return report(fmt.Errorf("unknown status %q", args[1]))
	}
	index := 0
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 {
			return report(fmt.Errorf("bad index %q", args[2]))
		}
		index = n
	}

	id, err := a.boardIssueID(args[0])
	if err != nil {
		return report(err)
	}

	issue, err := a.board.Move(ctx, id, target, index)
	if err != nil {
		var me *board.MoveError
		if errors.As(err, &me) {
			// the notifier already told the user
			return err
		}
		return report(err)
	}
	printlnFn(fmt.Sprintf("Moved %q to %s", issue.Title, issue.Status))
	return nil
}

func (a *App) boardIssueID(ref string) (string, error) {
	var found []string
	for _, col := range a.board.Columns() {
		for _, is := range col.Issues {
			if is.ID == ref {
				return is.ID, nil
			}
			if strings.HasPrefix(is.ID, ref) {
				found = append(found, is.ID)
			}
		}
	}
	return uniqueRef(ref, found)
}

// resolveIssue finds an issue of the selected project by id or id prefix.
func (a *App) resolveIssue(ctx context.Context, ref string) (string, error) {
	issues, err := a.api.ListIssues(ctx, client.IssueQuery{ProjectID: a.projectID})
	if err != nil {
		return "", err
	}
	var found []string
	for _, is := range issues {
		if is.ID == ref {
			return is.ID, nil
		}
		if strings.HasPrefix(is.ID, ref) {
			found = append(found, is.ID)
		}
	}
	return uniqueRef(ref, found)
}

func uniqueRef(ref string, found []string) (string, error) {
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no issue matches %q", ref)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d issues)", ref, len(found))
	}
}

// Show prints one issue.
func (a *App) Show(ctx context.Context, args []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	if len(args) != 1 {
		return report(errors.New("usage: issue <id>"))
	}
	id, err := a.resolveIssue(ctx, args[0])
	if err != nil {
		return report(err)
	}
	is, err := a.api.GetIssue(ctx, id)
	if err != nil {
		return report(err)
	}

	printlnFn(fmt.Sprintf("%s  %s", is.ID, is.Title))
	printlnFn(fmt.Sprintf("Type: %s  Status: %s  Priority: %s", is.Type, is.Status, is.Priority))
	if is.StoryPoints != nil {
		printlnFn(fmt.Sprintf("Story points: %d", *is.StoryPoints))
	}
	printlnFn(fmt.Sprintf("Reporter: %s  Assignee: %s", is.Reporter, orDash(is.Assignee)))
	if len(is.Labels) > 0 {
		printlnFn("Labels: " + strings.Join(is.Labels, ", "))
	}
	if is.Description != "" {
		printlnFn("")
		printlnFn(is.Description)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NewIssue creates an issue in the selected project. When a sprint board is
// loaded the issue goes into that sprint.
func (a *App) NewIssue(ctx context.Context, _ []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	typ, err := getSimpleText(a.reader, "Type (task, bug, story, epic) [task]", os.Stdout)
	if err != nil {
		return err
	}
	prio, err := getSimpleText(a.reader, "Priority (lowest..highest) [medium]", os.Stdout)
	if err != nil {
		return err
	}
	points, err := getSimpleText(a.reader, "Story points (empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	desc, err := getMultiline(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}

	in := models.NewIssue{
		ProjectID:   a.projectID,
		Title:       title,
		Description: desc,
		Type:        typ,
		Priority:    prio,
	}
	if points != "" {
		n, err := strconv.Atoi(points)
		if err != nil {
			return report(fmt.Errorf("bad story points %q", points))
		}
		in.StoryPoints = &n
	}
	if a.board != nil {
		in.SprintID = a.board.SprintID()
	}

	is, err := a.api.CreateIssue(ctx, in)
	if err != nil {
		return report(err)
	}
	printlnFn(fmt.Sprintf("Created %s %q in %s", shortID(is.ID), is.Title, is.Status))
	return nil
}

// Attach uploads a local file to an issue: attach <issue> <path>.
func (a *App) Attach(ctx context.Context, args []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	if len(args) != 2 {
		return report(errors.New("usage: attach <issue> <path>"))
	}
	id, err := a.resolveIssue(ctx, args[0])
	if err != nil {
		return report(err)
	}

	data, err := readFile(args[1], maxAttachmentSize)
	if err != nil {
		return report(err)
	}
	name := filepath.Base(args[1])
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = http.DetectContentType(data)
	}

	att, err := a.api.RequestUpload(ctx, id, name, ct, int64(len(data)))
	if err != nil {
		return report(err)
	}
	if err := uploadFn(ctx, att.UploadURL, ct, data); err != nil {
		return report(fmt.Errorf("upload %s: %w", name, err))
	}
	printlnFn(fmt.Sprintf("Attached %s (%d bytes)", name, len(data)))
	return nil
}

// Attachments lists an issue's files with download links.
func (a *App) Attachments(ctx context.Context, args []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	if len(args) != 1 {
		return report(errors.New("usage: attachments <issue>"))
	}
	id, err := a.resolveIssue(ctx, args[0])
	if err != nil {
		return report(err)
	}
	atts, err := a.api.ListAttachments(ctx, id)
	if err != nil {
		return report(err)
	}
	if len(atts) == 0 {
		printlnFn("No attachments")
		return nil
	}
	for _, at := range atts {
		printlnFn(fmt.Sprintf("%s  %d bytes  %s", at.FileName, at.Size, at.URL))
	}
	return nil
}
