package cli

import (
	"os"

	"golang.org/x/term"
)

// hasTTY reports whether both ends of the session are a terminal. Tests
// replace it.
var hasTTY = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
