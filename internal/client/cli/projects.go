package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/client/models"
)

// Projects lists the projects the user belongs to and marks the selected one.
func (a *App) Projects(ctx context.Context, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return report(err)
	}
	projects, err := a.api.ListProjects(ctx)
	if err != nil {
		return report(err)
	}
	if len(projects) == 0 {
		printlnFn("No projects yet, create one with 'newproject'")
		return nil
	}
	for _, p := range projects {
		mark := " "
		if p.ID == a.projectID {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s %-10s %s (%d members)", mark, p.Key, p.Name, len(p.Members)))
	}
	return nil
}

// NewProject creates a project and selects it.
func (a *App) NewProject(ctx context.Context, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return report(err)
	}
	name, err := getSimpleText(a.reader, "Project name", os.Stdout)
	if err != nil {
		return err
	}
	key, err := getSimpleText(a.reader, "Key (empty to derive from name)", os.Stdout)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}

	p, err := a.api.CreateProject(ctx, models.NewProject{Name: name, Key: key, Description: desc})
	if err != nil {
		return report(err)
	}
	a.selectProject(ctx, p)
	printlnFn(fmt.Sprintf("Created project %s", p.Key))
	return nil
}

// Use selects a project by key.
func (a *App) Use(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return report(err)
	}
	if len(args) != 1 {
		return report(errors.New("usage: use <KEY>"))
	}
	projects, err := a.api.ListProjects(ctx)
	if err != nil {
		return report(err)
	}
	key := strings.ToUpper(args[0])
	for i := range projects {
		if projects[i].Key == key {
			a.selectProject(ctx, &projects[i])
			printlnFn(fmt.Sprintf("Using project %s", key))
			return nil
		}
	}
	return report(fmt.Errorf("no project with key %s", key))
}

func (a *App) selectProject(ctx context.Context, p *models.Project) {
	a.projectID, a.projectKey, a.board = p.ID, p.Key, nil
	a.saveSession(ctx)
}

// Invite adds a registered user to the selected project by email.
func (a *App) Invite(ctx context.Context, args []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	if len(args) != 1 {
		return report(errors.New("usage: invite <email>"))
	}
	p, err := a.api.AddMember(ctx, a.projectID, args[0])
	if err != nil {
		return report(err)
	}
	printlnFn(fmt.Sprintf("%s now has %d members", p.Key, len(p.Members)))
	return nil
}

// Sprints lists the selected project's sprints.
func (a *App) Sprints(ctx context.Context, _ []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	sprints, err := a.api.ListSprints(ctx, a.projectID)
	if err != nil {
		return report(err)
	}
	if len(sprints) == 0 {
		printlnFn("No sprints")
		return nil
	}
	for _, s := range sprints {
		printlnFn(fmt.Sprintf("%s  %-20s %-9s %s..%s", shortID(s.ID), s.Name, s.Status,
			s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02")))
	}
	return nil
}

// Stats prints the selected project's analytics.
func (a *App) Stats(ctx context.Context, _ []string) error {
	if err := a.requireProject(); err != nil {
		return report(err)
	}
	s, err := a.api.Analytics(ctx, a.projectID)
	if err != nil {
		return report(err)
	}
	printlnFn(fmt.Sprintf("Issues: %d total, %d done, %d open (%d%% complete)",
		s.TotalIssues, s.CompletedIssues, s.OpenIssues, s.CompletionPercentage))
	for _, st := range models.Statuses {
		printlnFn(fmt.Sprintf("  %-12s %d", st, s.IssuesByStatus[st]))
	}
	printlnFn(fmt.Sprintf("Assigned to you: %d, completed by you: %d",
		s.UserStats.AssignedCount, s.UserStats.CompletedCount))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
