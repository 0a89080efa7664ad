package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// navigator is the command surface the REPL needs. *App satisfies it; tests
// provide a lightweight stub.
type navigator interface {
	Navigate(ctx context.Context, path string, args []string)
	Help()
}

// runREPL reads a command per line and dispatches it as a route: "whoami" and
// "/whoami" both go to /whoami, "home" goes to /. Remaining words are passed as
// arguments. The loop exits on EOF, on "exit" or "quit", or when ctx is done.
func runREPL(ctx context.Context, nav navigator, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn("gophauth (" + statusFn() + ") > ")
		line, err := readLine(reader)
		if err != nil {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			nav.Help()
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			nav.Navigate(ctx, routePath(cmd), args)
		}
	}
}

func routePath(cmd string) string {
	if cmd == "home" {
		return "/"
	}
	if strings.HasPrefix(cmd, "/") {
		return cmd
	}
	return "/" + cmd
}
