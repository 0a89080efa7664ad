package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type navCall struct {
	path string
	args []string
}

type fakeNav struct {
	calls []navCall
	helps int
}

func (f *fakeNav) Navigate(_ context.Context, path string, args []string) {
	f.calls = append(f.calls, navCall{path: path, args: args})
}

func (f *fakeNav) Help() { f.helps++ }

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_DispatchesRoutes(t *testing.T) {
	silencePrintln(t)

	input := strings.Join([]string{
		"help",
		"whoami",
		"",
		"/about",
		"home",
		"logout --global",
		"exit",
		"whoami",
	}, "\n")

	nav := &fakeNav{}
	runREPL(context.Background(), nav, func() string { return "guest" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, 1, nav.helps)
	assert.Equal(t, []navCall{
		{path: "/whoami", args: []string{}},
		{path: "/about", args: []string{}},
		{path: "/", args: []string{}},
		{path: "/logout", args: []string{"--global"}},
	}, nav.calls)
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	silencePrintln(t)

	nav := &fakeNav{}
	runREPL(context.Background(), nav, func() string { return "s" }, bufio.NewReader(strings.NewReader("whoami")))
	assert.Len(t, nav.calls, 1, "a final line without newline still counts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	nav = &fakeNav{}
	runREPL(ctx, nav, func() string { return "s" }, bufio.NewReader(strings.NewReader("whoami\n")))
	assert.Empty(t, nav.calls)
}

func TestRoutePath(t *testing.T) {
	assert.Equal(t, "/", routePath("home"))
	assert.Equal(t, "/login", routePath("login"))
	assert.Equal(t, "/login", routePath("/login"))
}
