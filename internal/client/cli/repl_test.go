package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(_ context.Context, a []string) error {
	return f.record("register", a)
}
func (f *fakeExec) Login(_ context.Context, a []string) error {
	f.loggedIn = true
	return f.record("login", a)
}
func (f *fakeExec) Logout(_ context.Context, a []string) error {
	f.loggedIn = false
	return f.record("logout", a)
}
func (f *fakeExec) Projects(_ context.Context, a []string) error { return f.record("projects", a) }
func (f *fakeExec) NewProject(_ context.Context, a []string) error {
	return f.record("newproject", a)
}
func (f *fakeExec) Use(_ context.Context, a []string) error     { return f.record("use", a) }
func (f *fakeExec) Invite(_ context.Context, a []string) error  { return f.record("invite", a) }
func (f *fakeExec) Sprints(_ context.Context, a []string) error { return f.record("sprints", a) }
func (f *fakeExec) Board(_ context.Context, a []string) error   { return f.record("board", a) }
func (f *fakeExec) Move(_ context.Context, a []string) error    { return f.record("move", a) }
func (f *fakeExec) Show(_ context.Context, a []string) error    { return f.record("issue", a) }
func (f *fakeExec) NewIssue(_ context.Context, a []string) error {
	return f.record("newissue", a)
}
func (f *fakeExec) Stats(_ context.Context, a []string) error  { return f.record("stats", a) }
func (f *fakeExec) Attach(_ context.Context, a []string) error { return f.record("attach", a) }
func (f *fakeExec) Attachments(_ context.Context, a []string) error {
	return f.record("attachments", a)
}

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := capturePrint(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"board",
		"login",
		"help",
		"use web",
		"b backlog",
		"mv abc done 2",
		"issue abc",
		"",
		"foobar",
		"logout",
		"projects",
		"exit",
		"stats",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{"login", "use", "board", "move", "issue", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := exec.args["move"]; strings.Join(got, " ") != "abc done 2" {
		t.Fatalf("move args = %v", got)
	}
	if got := exec.args["board"]; len(got) != 1 || got[0] != "backlog" {
		t.Fatalf("board args = %v", got)
	}

	joined := strings.Join(*out, "\n")
	for _, s := range []string{loggedOutHelp, loggedInHelp, "Unknown command: foobar", "Unknown command: board", "Unknown command: projects", "Bye!"} {
		if !strings.Contains(joined, s) {
			t.Fatalf("output misses %q:\n%s", s, joined)
		}
	}
}

func TestRunREPL_EOF(t *testing.T) {
	out := capturePrint(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("stats")))

	if len(exec.calls) != 1 || exec.calls[0] != "stats" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if strings.Contains(strings.Join(*out, "\n"), "Bye!") {
		t.Fatalf("EOF should not print Bye")
	}
}
