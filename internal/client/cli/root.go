package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.projectKey != "" {
		s = s + a.projectKey + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root checks the saved session, starts the connectivity watcher and runs
// the command loop until the user quits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to the issue tracker CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	a.verifySession(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
