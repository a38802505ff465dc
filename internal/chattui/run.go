package chattui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/offerchat/internal/chat"
)

// Options configures a terminal chat session.
type Options struct {
	Config         chat.Config
	Transport      chat.Transport
	ConversationID string
	Viewer         chat.Viewer
	Title          string
	Theme          string

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

// Run opens the conversation in a full-screen terminal UI and blocks until
// the user leaves or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	model := NewModel(ctx, opts.Theme)

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	program := tea.NewProgram(model, programOpts...)

	cfg := opts.Config.Normalize()
	host := chat.StaticHost{cfg.ContainerID: NewProgramSurface(program)}
	widget := chat.New(cfg, opts.Transport, host, chat.WithBaseContext(ctx))
	if widget.Inert() {
		return chat.ErrInert
	}
	defer widget.Destroy()

	model.Bind(widget, opts.ConversationID, opts.Viewer, opts.Title)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run chat ui: %w", err)
	}
	return nil
}
