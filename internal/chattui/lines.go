package chattui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tOgg1/offerchat/internal/chat"
)

// LineSurface prints each message once as plain text. It is used when
// stdin or stdout is not a terminal.
type LineSurface struct {
	mu      sync.Mutex
	out     io.Writer
	title   string
	visible bool
	seen    map[string]struct{}
	empty   bool
}

// NewLineSurface writes to out.
func NewLineSurface(out io.Writer) *LineSurface {
	return &LineSurface{out: out, seen: make(map[string]struct{})}
}

func (s *LineSurface) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = SanitizeLine(title)
	s.seen = make(map[string]struct{})
	s.empty = false
}

func (s *LineSurface) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visible == s.visible {
		return
	}
	s.visible = visible
	if visible {
		title := s.title
		if title == "" {
			title = "Conversation"
		}
		fmt.Fprintf(s.out, "== %s ==\n", title)
		return
	}
	fmt.Fprintln(s.out, "-- conversation closed --")
}

func (s *LineSurface) RenderView(view chat.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if view.Empty {
		if !s.empty && len(s.seen) == 0 {
			fmt.Fprintln(s.out, view.Placeholder)
		}
		s.empty = true
		return
	}
	for _, item := range view.Items {
		key := lineKey(item)
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		s.writeItem(item)
	}
}

func (s *LineSurface) writeItem(item chat.ViewItem) {
	sender := SanitizeLine(item.Sender)
	if item.Self {
		sender += " (you)"
	}
	label := ""
	if item.TimeLabel != "" {
		label = "[" + item.TimeLabel + "] "
	}
	lines := strings.Split(Sanitize(item.Text), "\n")
	fmt.Fprintf(s.out, "%s%s: %s\n", label, sender, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(s.out, "    %s\n", line)
	}
}

func lineKey(item chat.ViewItem) string {
	if item.ID != "" {
		return item.ID
	}
	return item.Sender + "\x00" + item.SentAt.String() + "\x00" + item.Text
}

func (s *LineSurface) ScrollToLatest()         {}
func (s *LineSurface) SetComposerEnabled(bool) {}
func (s *LineSurface) ClearDraft()             {}
func (s *LineSurface) FocusComposer()          {}
func (s *LineSurface) DismissNotice()          {}

func (s *LineSurface) ShowNotice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "! %s\n", SanitizeLine(text))
}

// RunLines opens the conversation and treats every input line as a draft.
// "/refresh" fetches immediately and "/quit" or EOF ends the session.
func RunLines(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Input == nil || opts.Output == nil {
		return errors.New("line mode requires input and output")
	}

	cfg := opts.Config.Normalize()
	surface := NewLineSurface(opts.Output)
	widget := chat.New(cfg, opts.Transport, chat.StaticHost{cfg.ContainerID: surface}, chat.WithBaseContext(ctx))
	if widget.Inert() {
		return chat.ErrInert
	}
	defer widget.Destroy()

	widget.Open(opts.ConversationID, opts.Viewer, opts.Title)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(opts.Input)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case line := <-lines:
			switch strings.TrimSpace(line) {
			case "/quit":
				return nil
			case "/refresh":
				_ = widget.Refresh(ctx)
				continue
			}
			// Failures are reported through notices.
			_ = widget.Send(ctx, line)
		}
	}
}
