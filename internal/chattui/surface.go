package chattui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/offerchat/internal/chat"
)

// Surface calls arrive on widget goroutines; they are forwarded to the
// bubbletea event loop as messages and applied in Model.Update.
type (
	titleMsg           struct{ title string }
	visibleMsg         struct{ visible bool }
	viewMsg            struct{ view chat.View }
	scrollLatestMsg    struct{}
	composerEnabledMsg struct{ enabled bool }
	clearDraftMsg      struct{}
	focusComposerMsg   struct{}
	noticeMsg          struct{ text string }
	dismissNoticeMsg   struct{}
)

type sender interface {
	Send(msg tea.Msg)
}

// ProgramSurface adapts a running tea.Program to chat.Surface.
// Its methods must not be called from inside Model.Update.
type ProgramSurface struct {
	program sender
}

// NewProgramSurface wraps program.
func NewProgramSurface(program *tea.Program) *ProgramSurface {
	return &ProgramSurface{program: program}
}

func (s *ProgramSurface) SetTitle(title string)           { s.program.Send(titleMsg{title: title}) }
func (s *ProgramSurface) SetVisible(visible bool)         { s.program.Send(visibleMsg{visible: visible}) }
func (s *ProgramSurface) RenderView(view chat.View)       { s.program.Send(viewMsg{view: view}) }
func (s *ProgramSurface) ScrollToLatest()                 { s.program.Send(scrollLatestMsg{}) }
func (s *ProgramSurface) SetComposerEnabled(enabled bool) { s.program.Send(composerEnabledMsg{enabled: enabled}) }
func (s *ProgramSurface) ClearDraft()                     { s.program.Send(clearDraftMsg{}) }
func (s *ProgramSurface) FocusComposer()                  { s.program.Send(focusComposerMsg{}) }
func (s *ProgramSurface) ShowNotice(text string)          { s.program.Send(noticeMsg{text: text}) }
func (s *ProgramSurface) DismissNotice()                  { s.program.Send(dismissNoticeMsg{}) }
