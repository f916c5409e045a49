package tickets

import (
	"context"
	"sync"
	"time"
)

// Notification tells the UI that the backend saw more of a booking's
// tickets get scanned since the last time we told anybody.
type Notification struct {
	BookingID      int64
	EventName      string
	ScannedTickets int
	TotalTickets   int
	// AllScanned marks the terminal notification: the poller stops
	// itself right after emitting it.
	AllScanned bool
	At         time.Time
}

// Emitter fans scan notifications out to subscriber channels. Same
// shape as a server-sent-events broadcaster: subscribers register a
// buffered channel, unsubscribe through their context, and a slow
// subscriber just misses a beat instead of blocking the poller.
type Emitter struct {
	mu   sync.RWMutex
	subs map[chan Notification]struct{}
}

func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[chan Notification]struct{})}
}

// Subscribe registers a listener. The subscription is removed when ctx
// is done.
func (e *Emitter) Subscribe(ctx context.Context) <-chan Notification {
	ch := make(chan Notification, 8)

	e.mu.Lock()
	e.subs[ch] = struct{}{}
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		delete(e.subs, ch)
		e.mu.Unlock()
	}()

	return ch
}

// Emit broadcasts one notification. Non-blocking sends so a stuck
// subscriber cannot stall polling.
func (e *Emitter) Emit(n Notification) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for ch := range e.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
