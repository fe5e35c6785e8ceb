// Package notify holds the transient success and error messages shown to the user.
package notify

import (
	"context"
	"sync"
	"time"

	"bloglist/local-app/src/pkg/event"
	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

// DefaultTimeout is how long a message stays visible.
const DefaultTimeout = 5000 * time.Millisecond

// slot is the single active message of one kind.
type slot struct {
	message string
	timer   *time.Timer
	seq     uint64
}

// Notifier keeps at most one message per kind and clears each after a timeout.
// A new message of the same kind replaces the old one and restarts the timer.
type Notifier struct {
	timeout time.Duration
	events  *event.EventManager
	logger  *log.Logger

	mu    sync.Mutex
	slots map[model.NotificationKind]*slot
}

// NewNotifier creates a Notifier. events may be nil.
func NewNotifier(timeout time.Duration, events *event.EventManager, logger *log.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		timeout: timeout,
		events:  events,
		logger:  logger,
		slots:   make(map[model.NotificationKind]*slot),
	}
}

// Show displays message on the kind's channel, pre-empting any pending one.
func (n *Notifier) Show(kind model.NotificationKind, message string) {
	n.mu.Lock()
	s, ok := n.slots[kind]
	if !ok {
		s = &slot{}
		n.slots[kind] = s
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.message = message
	s.timer = time.AfterFunc(n.timeout, func() { n.expire(kind, seq) })
	n.mu.Unlock()

	n.logger.Info(context.Background(), "Notification shown", log.Fields{"kind": string(kind), "message": message})
	n.publish(event.NotificationShown, model.Notification{Message: message, Kind: kind})
}

// Success shows a success message.
func (n *Notifier) Success(message string) {
	n.Show(model.NotificationSuccess, message)
}

// Error shows an error message.
func (n *Notifier) Error(message string) {
	n.Show(model.NotificationError, message)
}

// Current returns the visible message of kind, if any.
func (n *Notifier) Current(kind model.NotificationKind) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, ok := n.slots[kind]
	if !ok || s.message == "" {
		return "", false
	}
	return s.message, true
}

// Active returns the visible messages, error first.
func (n *Notifier) Active() []model.Notification {
	var out []model.Notification
	for _, kind := range []model.NotificationKind{model.NotificationError, model.NotificationSuccess} {
		if msg, ok := n.Current(kind); ok {
			out = append(out, model.Notification{Message: msg, Kind: kind})
		}
	}
	return out
}

// Clear removes the message of kind immediately.
func (n *Notifier) Clear(kind model.NotificationKind) {
	n.mu.Lock()
	s, ok := n.slots[kind]
	if !ok || s.message == "" {
		n.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	msg := s.message
	s.message = ""
	n.mu.Unlock()

	n.publish(event.NotificationCleared, model.Notification{Message: msg, Kind: kind})
}

// Stop cancels all pending timers. Visible messages stay until cleared.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.slots {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
	}
}

// expire clears the slot unless a newer message replaced the one that armed the timer.
func (n *Notifier) expire(kind model.NotificationKind, seq uint64) {
	n.mu.Lock()
	s := n.slots[kind]
	if s == nil || s.seq != seq {
		n.mu.Unlock()
		return
	}
	msg := s.message
	s.message = ""
	s.timer = nil
	n.mu.Unlock()

	n.logger.Debug(context.Background(), "Notification expired", log.Fields{"kind": string(kind)})
	n.publish(event.NotificationCleared, model.Notification{Message: msg, Kind: kind})
}

func (n *Notifier) publish(t event.EventType, note model.Notification) {
	if n.events != nil {
		n.events.Publish(event.Event{Type: t, Data: note})
	}
}
