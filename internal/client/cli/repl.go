package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Projects(ctx context.Context, args []string) error
	NewProject(ctx context.Context, args []string) error
	Use(ctx context.Context, args []string) error
	Invite(ctx context.Context, args []string) error
	Sprints(ctx context.Context, args []string) error
	Board(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	NewIssue(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Attachments(ctx context.Context, args []string) error
}

type command func(execIface, context.Context, []string) error

var loggedOutCommands = map[string]command{
	"register": execIface.Register,
	"login":    execIface.Login,
}

var loggedInCommands = map[string]command{
	"logout":      execIface.Logout,
	"projects":    execIface.Projects,
	"newproject":  execIface.NewProject,
	"use":         execIface.Use,
	"invite":      execIface.Invite,
	"sprints":     execIface.Sprints,
	"board":       execIface.Board,
	"b":           execIface.Board,
	"move":        execIface.Move,
	"mv":          execIface.Move,
	"issue":       execIface.Show,
	"newissue":    execIface.NewIssue,
	"stats":       execIface.Stats,
	"attach":      execIface.Attach,
	"attachments": execIface.Attachments,
}

const (
	loggedOutHelp = "Available commands: register, login, exit"
	loggedInHelp  = "Available commands: projects, newproject, use <KEY>, invite <email>, sprints, " +
		"(b)oard [backlog|<sprint>], move <issue> <status> [index], issue <id>, newissue, stats, " +
		"attach <issue> <path>, attachments <issue>, logout, exit"
)

// runREPL reads commands line by line and dispatches them to a.
//
// The first token selects the command and the rest are passed as arguments.
// Which commands are accepted depends on whether a user is logged in.
// The loop exits on EOF or on "exit"/"quit". Handler errors are not fatal;
// handlers report them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("it> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(loggedInHelp)
			} else {
				printlnFn(loggedOutHelp)
			}
			continue
		}

		table := loggedOutCommands
		if a.isLoggedIn() {
			table = loggedInCommands
		}
		fn, ok := table[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		_ = fn(a, ctx, args)
	}
}
