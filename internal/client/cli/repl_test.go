package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isLoggedIn() bool                       { return s.loggedIn }
func (s *stubExec) Login(ctx context.Context) error        { return s.record("login") }
func (s *stubExec) LoginBySMS(ctx context.Context) error   { return s.record("smslogin") }
func (s *stubExec) LoginByToken(ctx context.Context) error { return s.record("tokenlogin") }
func (s *stubExec) Restore(ctx context.Context) error      { return s.record("restore") }
func (s *stubExec) Status(ctx context.Context) error       { return s.record("status") }
func (s *stubExec) Data(ctx context.Context) error         { return s.record("data") }
func (s *stubExec) Refresh(ctx context.Context) error      { return s.record("refresh") }
func (s *stubExec) Roles(ctx context.Context) error        { return s.record("roles") }
func (s *stubExec) Logout(ctx context.Context) error       { return s.record("logout") }

func runScript(t *testing.T, s *stubExec, script string) []string {
	t.Helper()

	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			if str, ok := v.(string); ok {
				out = append(out, str)
			}
		}
		return 0, nil
	}
	defer func() { printlnFn = orig }()

	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), s, func() string { return "test" }, scanner)
	return out
}

func TestREPL_DispatchesCommands(t *testing.T) {
	s := &stubExec{}
	runScript(t, s, "login\nrestore\nstatus\ndata\nrefresh\nroles\nlogout\nexit\n")

	require.Equal(t,
		[]string{"login", "restore", "status", "data", "refresh", "roles", "logout"},
		s.calls)
}

func TestREPL_Aliases(t *testing.T) {
	s := &stubExec{}
	runScript(t, s, "s\nd\nquit\n")
	require.Equal(t, []string{"status", "data"}, s.calls)
}

func TestREPL_UnknownCommandReported(t *testing.T) {
	s := &stubExec{}
	out := runScript(t, s, "frobnicate\nexit\n")

	require.Empty(t, s.calls)
	require.Contains(t, out, "Unknown command:")
}

func TestREPL_HelpDependsOnLoginState(t *testing.T) {
	out := runScript(t, &stubExec{loggedIn: false}, "help\nexit\n")
	require.Contains(t, strings.Join(out, "\n"), "login, smslogin")

	out = runScript(t, &stubExec{loggedIn: true}, "help\nexit\n")
	require.Contains(t, strings.Join(out, "\n"), "status, data")
}

func TestREPL_BlankLineIgnored(t *testing.T) {
	s := &stubExec{}
	runScript(t, s, "\n\nstatus\nexit\n")
	require.Equal(t, []string{"status"}, s.calls)
}

func TestREPL_EOFExits(t *testing.T) {
	s := &stubExec{}
	runScript(t, s, "status") // no trailing exit: scanner EOF ends the loop
	require.Equal(t, []string{"status"}, s.calls)
}
