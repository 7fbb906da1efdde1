package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it
// with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	LoginBySMS(ctx context.Context) error
	LoginByToken(ctx context.Context) error
	Restore(ctx context.Context) error
	Status(ctx context.Context) error
	Data(ctx context.Context) error
	Refresh(ctx context.Context) error
	Roles(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a read–eval–print loop over the client core.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("skdesk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: status, data, refresh, roles, logout, exit")
			} else {
				printlnFn("Available commands: login, smslogin, tokenlogin, restore, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "smslogin":
			_ = a.LoginBySMS(ctx)

		case "tokenlogin":
			_ = a.LoginByToken(ctx)

		case "restore":
			_ = a.Restore(ctx)

		case "s", "status":
			_ = a.Status(ctx)

		case "d", "data":
			_ = a.Data(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "roles":
			_ = a.Roles(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
