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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Books(ctx context.Context, search string) error
	Book(ctx context.Context, id string) error
	Upload(ctx context.Context, path string) error
	Rate(ctx context.Context, id, score string) error
	Ask(ctx context.Context, id string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: books [search], book <id>, upload <path>, rate <id> <1-5>, ask <id>, whoami, logout, exit"
)

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". Handlers report their own errors; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("bookshelf %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "books", "ls":
			_ = a.Books(ctx, strings.Join(args, " "))

		case "book":
			if len(args) != 1 {
				printlnFn("Usage: book <id>")
				continue
			}
			_ = a.Book(ctx, args[0])

		case "upload":
			if len(args) != 1 {
				printlnFn("Usage: upload <path>")
				continue
			}
			_ = a.Upload(ctx, args[0])

		case "rate":
			if len(args) != 2 {
				printlnFn("Usage: rate <id> <1-5>")
				continue
			}
			_ = a.Rate(ctx, args[0], args[1])

		case "ask":
			if len(args) != 1 {
				printlnFn("Usage: ask <id>")
				continue
			}
			_ = a.Ask(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
