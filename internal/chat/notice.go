package chat

import (
	"sync"
	"time"
)

// Notifier shows one transient notice at a time. A new notice replaces the
// visible one and re-arms the single dismissal timer.
//
// Surface calls are queued under mu and replayed in order by one drainer,
// so the surface always ends in the state of the latest Notify, Dismiss or
// expiry, even when a surface call re-enters the notifier.
type Notifier struct {
	surface  Surface
	duration time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	closed   bool
	ops      []noticeOp
	draining bool
}

type noticeOp struct {
	show bool
	text string
}

// NewNotifier creates a notifier that auto-dismisses after duration.
func NewNotifier(surface Surface, duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultNoticeDuration
	}
	return &Notifier{surface: surface, duration: duration}
}

// Notify shows text and schedules its dismissal.
func (n *Notifier) Notify(text string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.stopTimerLocked()
	n.gen++
	gen := n.gen
	n.timer = time.AfterFunc(n.duration, func() { n.expire(gen) })
	n.ops = append(n.ops, noticeOp{show: true, text: text})
	n.mu.Unlock()

	n.drain()
}

// Dismiss hides the current notice now.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	n.stopTimerLocked()
	n.gen++
	n.ops = append(n.ops, noticeOp{})
	n.mu.Unlock()

	n.drain()
}

// Close dismisses the notice and ignores later Notify calls.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.stopTimerLocked()
	n.gen++
	n.ops = append(n.ops, noticeOp{})
	n.mu.Unlock()

	n.drain()
}

// Pending reports how many dismissal timers are armed (0 or 1).
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer == nil {
		return 0
	}
	return 1
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.ops = append(n.ops, noticeOp{})
	n.mu.Unlock()

	n.drain()
}

// drain replays queued surface calls. A caller that finds another drainer
// running returns at once; its op is replayed by that drainer.
func (n *Notifier) drain() {
	n.mu.Lock()
	if n.draining {
		n.mu.Unlock()
		return
	}
	n.draining = true
	for len(n.ops) > 0 {
		op := n.ops[0]
		n.ops = n.ops[1:]
		n.mu.Unlock()
		if op.show {
			n.surface.ShowNotice(op.text)
		} else {
			n.surface.DismissNotice()
		}
		n.mu.Lock()
	}
	n.ops = nil
	n.draining = false
	n.mu.Unlock()
}

func (n *Notifier) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
