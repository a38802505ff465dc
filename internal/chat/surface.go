package chat

// Surface is the presentation container the widget drives. Implementations
// must escape Sender and Text of every ViewItem themselves; the view carries
// raw, untrusted strings.
type Surface interface {
	SetTitle(title string)
	SetVisible(visible bool)
	RenderView(view View)
	ScrollToLatest()
	SetComposerEnabled(enabled bool)
	ClearDraft()
	FocusComposer()
	ShowNotice(text string)
	DismissNotice()
}

// Host resolves surfaces by container identifier.
type Host interface {
	Lookup(containerID string) (Surface, bool)
}

// HostFunc adapts a function to Host.
type HostFunc func(containerID string) (Surface, bool)

func (f HostFunc) Lookup(containerID string) (Surface, bool) {
	return f(containerID)
}

// StaticHost serves a fixed set of surfaces.
type StaticHost map[string]Surface

func (h StaticHost) Lookup(containerID string) (Surface, bool) {
	s, ok := h[containerID]
	return s, ok && s != nil
}
