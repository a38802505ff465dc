package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/tOgg1/offerchat/internal/logging"
)

// State is the lifecycle state of a widget.
type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Option customizes a Widget.
type Option func(*Widget)

// WithClock overrides the clock used for relative time labels.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLogger overrides the widget logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// WithBaseContext sets the parent of every request context. Cancelling it
// aborts all in-flight requests.
func WithBaseContext(ctx context.Context) Option {
	return func(w *Widget) {
		if ctx != nil {
			w.parent = ctx
		}
	}
}

// Widget binds one conversation at a time to a Surface, polls it while open
// and sends drafts. Methods are safe for concurrent use. Surface calls are
// made without holding the state mutex.
type Widget struct {
	cfg       Config
	transport Transport
	surface   Surface
	inert     bool
	logger    zerolog.Logger
	now       func() time.Time
	parent    context.Context

	store     *Store
	scheduler *Scheduler
	notifier  *Notifier

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	// renderMu orders activation, apply and render so the surface always
	// shows the most recently applied collection. Acquired before mu.
	renderMu sync.Mutex

	mu         sync.Mutex
	state      State
	viewer     Viewer
	title      string
	sendingGen uint64
	destroyed  bool
}

// New attaches a widget to the container cfg.ContainerID of host. A missing
// container yields an inert widget that logs and ignores lifecycle calls.
func New(cfg Config, transport Transport, host Host, opts ...Option) *Widget {
	cfg = cfg.Normalize()
	w := &Widget{
		cfg:       cfg,
		transport: transport,
		logger:    logging.Component("chat-widget"),
		now:       time.Now,
		parent:    context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	var surface Surface
	var found bool
	if host != nil {
		surface, found = host.Lookup(cfg.ContainerID)
	}
	if !found || surface == nil || transport == nil {
		w.inert = true
		w.logger.Error().
			Str("container", cfg.ContainerID).
			Bool("transport", transport != nil).
			Msg("chat widget init failed: container not found")
		return w
	}

	w.surface = surface
	w.store = NewStore()
	w.notifier = NewNotifier(surface, cfg.NoticeDuration)
	w.baseCtx, w.baseCancel = context.WithCancel(w.parent)
	w.scheduler = NewScheduler(SchedulerConfig{
		Interval:    cfg.PollInterval,
		MaxInFlight: cfg.MaxInFlight,
	}, w.pollTick)
	return w
}

// Inert reports whether the widget failed to attach to its container.
func (w *Widget) Inert() bool {
	return w.inert
}

// Config returns the normalized configuration.
func (w *Widget) Config() Config {
	return w.cfg
}

// Open shows the widget for conversationID, closing any open conversation
// first. The initial load is asynchronous; polling starts immediately.
func (w *Widget) Open(conversationID string, viewer Viewer, title string) {
	if w.inert {
		w.logger.Warn().Msg("open ignored: chat widget is inert")
		return
	}
	id := strings.TrimSpace(conversationID)
	if id == "" {
		w.logger.Warn().Msg("open ignored: empty conversation id")
		return
	}

	w.renderMu.Lock()
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		w.renderMu.Unlock()
		return
	}
	wasOpen := w.state == StateOpen
	w.scheduler.Stop()
	tag := w.store.Activate(id)
	w.state = StateOpen
	w.viewer = viewer
	w.title = title
	w.scheduler.Start(w.baseCtx)
	w.wg.Add(1)
	w.mu.Unlock()

	if wasOpen {
		w.notifier.Dismiss()
	}
	w.surface.SetTitle(title)
	w.surface.SetVisible(true)
	w.surface.ClearDraft()
	w.surface.SetComposerEnabled(true)
	w.surface.FocusComposer()
	w.renderLocked()
	w.renderMu.Unlock()

	log := logging.WithConversation(w.logger, id)
	log.Info().
		Bool("switched", wasOpen).
		Str("viewer_id", viewer.ID).
		Msg("conversation opened")

	go func() {
		defer w.wg.Done()
		_ = w.refresh(w.baseCtx, tag)
	}()
}

// Close hides the widget and stops polling. In-flight fetches complete but
// their results are discarded. Idempotent.
func (w *Widget) Close() {
	if w.inert {
		return
	}

	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	w.mu.Lock()
	wasOpen := w.state == StateOpen
	id := w.store.ConversationID()
	w.scheduler.Stop()
	w.store.Clear()
	w.state = StateClosed
	w.mu.Unlock()

	w.surface.ClearDraft()
	w.surface.SetVisible(false)
	w.notifier.Dismiss()

	if wasOpen {
		log := logging.WithConversation(w.logger, id)
		log.Info().Msg("conversation closed")
	}
}

// Destroy closes the widget, aborts in-flight requests and waits for every
// widget goroutine. The widget cannot be reopened.
func (w *Widget) Destroy() {
	if w.inert {
		return
	}

	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.mu.Unlock()

	w.Close()
	w.baseCancel()
	w.scheduler.Wait()
	w.wg.Wait()
	w.notifier.Close()
	w.logger.Debug().Msg("chat widget destroyed")
}

// State returns the lifecycle state.
func (w *Widget) State() State {
	if w.inert {
		return StateClosed
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ConversationID returns the open conversation, or "".
func (w *Widget) ConversationID() string {
	if w.inert {
		return ""
	}
	return w.store.ConversationID()
}

// Messages returns a copy of the current collection.
func (w *Widget) Messages() []Message {
	if w.inert {
		return nil
	}
	return w.store.Snapshot()
}

// Sending reports whether a send for the open conversation is outstanding.
func (w *Widget) Sending() bool {
	if w.inert {
		return false
	}
	tag, ok := w.store.Begin()
	w.mu.Lock()
	defer w.mu.Unlock()
	return ok && w.sendingGen != 0 && w.sendingGen == tag.Generation
}

// Refresh fetches the open conversation and renders it. Results for a
// conversation that was closed or switched meanwhile are dropped.
func (w *Widget) Refresh(ctx context.Context) error {
	if w.inert {
		return ErrInert
	}
	tag, ok := w.store.Begin()
	if !ok {
		return ErrNotOpen
	}
	return w.refresh(ctx, tag)
}

// Send posts text to the open conversation. On success the draft is cleared
// and the conversation refreshed; on failure the draft is kept.
func (w *Widget) Send(ctx context.Context, text string) error {
	if w.inert {
		return ErrInert
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return ErrDestroyed
	}
	tag, ok := w.store.Begin()
	if w.state != StateOpen || !ok {
		w.mu.Unlock()
		return ErrNotOpen
	}
	if n := utf8.RuneCountInString(trimmed); n > w.cfg.MaxMessageLength {
		w.mu.Unlock()
		w.notifier.Notify(noticeTooLong(w.cfg.MaxMessageLength))
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLong, n, w.cfg.MaxMessageLength)
	}
	if w.sendingGen == tag.Generation {
		w.mu.Unlock()
		return ErrSendInProgress
	}
	w.sendingGen = tag.Generation
	w.mu.Unlock()

	log := logging.WithConversation(w.logger, tag.ConversationID)
	w.surface.SetComposerEnabled(false)

	reqCtx, cancel := w.requestContext(ctx)
	err := w.transport.SendMessage(reqCtx, tag.ConversationID, trimmed)
	cancel()

	w.mu.Lock()
	if w.sendingGen == tag.Generation {
		w.sendingGen = 0
	}
	// A send started after a conversation switch owns the composer.
	otherSending := w.sendingGen != 0
	w.mu.Unlock()

	current := w.store.Current(tag)
	if !otherSending {
		w.surface.SetComposerEnabled(true)
		w.surface.FocusComposer()
	}

	if err != nil {
		log.Warn().Err(err).Bool("current", current).Msg("send message failed")
		w.notifyCurrent(tag, noticeSendFailed)
		return fmt.Errorf("send message: %w", err)
	}

	log.Debug().Int("length", utf8.RuneCountInString(trimmed)).Msg("message sent")
	if !current {
		return nil
	}
	w.surface.ClearDraft()
	if err := w.refresh(ctx, tag); err != nil {
		log.Debug().Err(err).Msg("refresh after send failed")
	}
	return nil
}

func (w *Widget) pollTick(ctx context.Context) {
	tag, ok := w.store.Begin()
	if !ok {
		return
	}
	_ = w.refresh(ctx, tag)
}

func (w *Widget) refresh(ctx context.Context, tag FetchTag) error {
	log := logging.WithConversation(w.logger, tag.ConversationID)

	reqCtx, cancel := w.requestContext(ctx)
	msgs, err := w.transport.FetchMessages(reqCtx, tag.ConversationID)
	cancel()

	if err != nil {
		if !w.store.Current(tag) {
			log.Debug().Err(err).Msg("discarding failed fetch for inactive conversation")
			return nil
		}
		log.Warn().Err(err).Msg("fetch messages failed")
		w.notifyCurrent(tag, noticeFetchFailed)
		return fmt.Errorf("refresh conversation %s: %w", tag.ConversationID, err)
	}

	w.renderMu.Lock()
	defer w.renderMu.Unlock()
	if !w.store.Apply(tag, msgs) {
		log.Debug().Int("messages", len(msgs)).Msg("discarding stale fetch result")
		return nil
	}
	w.renderLocked()
	return nil
}

// notifyCurrent raises a notice only while tag is the active conversation.
// Holding renderMu orders it against Open and Close, which dismiss notices
// after switching.
func (w *Widget) notifyCurrent(tag FetchTag, text string) bool {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()
	if !w.store.Current(tag) {
		return false
	}
	w.notifier.Notify(text)
	return true
}

// renderLocked projects the store onto the surface. Caller holds renderMu.
func (w *Widget) renderLocked() {
	w.mu.Lock()
	viewer, title := w.viewer, w.title
	w.mu.Unlock()

	view := Project(w.store.Snapshot(), viewer, title, w.now())
	w.surface.RenderView(view)
	w.surface.ScrollToLatest()
}

// requestContext bounds a request by RequestTimeout and by the widget's
// lifetime.
func (w *Widget) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = w.baseCtx
	}
	reqCtx, cancel := context.WithTimeout(ctx, w.cfg.RequestTimeout)
	stop := context.AfterFunc(w.baseCtx, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}
