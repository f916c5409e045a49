package tickets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

// StatusAPI is the single endpoint the poller talks to.
type StatusAPI interface {
	ScanStatus(ctx context.Context, bookingID int64) (*models.ScanStatus, error)
}

// Poller watches open QR panels for server-side scan events. Each
// watched booking gets its own repeating task keyed by booking id, so
// starting twice is a no-op and stopping is idempotent, so panels that
// open and close quickly cannot leak timers.
//
// Per tick: fetch the booking's scan status. An increase over the last
// count we notified produces exactly one Notification; the same count
// again produces nothing. When every ticket is scanned the poller emits
// a terminal notification and stops itself. Network errors are
// swallowed and retried next tick, up to MaxFailures in a row.
type Poller struct {
	api      StatusAPI
	emitter  *Emitter
	logger   *logger.Logger
	interval time.Duration
	// maxFailures caps consecutive failed ticks before the poller
	// gives up on a booking. Zero means never give up.
	maxFailures int

	mu      sync.Mutex
	running map[int64]context.CancelFunc
}

func NewPoller(apiClient StatusAPI, emitter *Emitter, log *logger.Logger, interval time.Duration, maxFailures int) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{
		api:         apiClient,
		emitter:     emitter,
		logger:      log,
		interval:    interval,
		maxFailures: maxFailures,
		running:     make(map[int64]context.CancelFunc),
	}
}

// Start begins watching a booking. Calling Start for a booking that is
// already being watched does nothing.
func (p *Poller) Start(bookingID int64) {
	p.mu.Lock()
	if _, exists := p.running[bookingID]; exists {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running[bookingID] = cancel
	p.mu.Unlock()

	p.logger.Info("POLL", fmt.Sprintf("Started scan-status polling for booking %d", bookingID))
	go p.loop(ctx, bookingID)
}

// Stop cancels the booking's poll loop. Safe to call when nothing is
// running; this is the close-the-QR-panel path so it must never leak.
func (p *Poller) Stop(bookingID int64) {
	p.mu.Lock()
	cancel, exists := p.running[bookingID]
	if exists {
		delete(p.running, bookingID)
	}
	p.mu.Unlock()

	if exists {
		cancel()
		p.logger.Info("POLL", fmt.Sprintf("Stopped scan-status polling for booking %d", bookingID))
	}
}

// StopAll cancels every loop (view unmount, logout).
func (p *Poller) StopAll() {
	p.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(p.running))
	for id, cancel := range p.running {
		cancels = append(cancels, cancel)
		delete(p.running, id)
	}
	p.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Watching reports whether the booking currently has a live poll loop.
func (p *Poller) Watching(bookingID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, exists := p.running[bookingID]
	return exists
}

func (p *Poller) loop(ctx context.Context, bookingID int64) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	lastNotified := 0
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.api.ScanStatus(ctx, bookingID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			p.logger.Warn("POLL", fmt.Sprintf("Status check failed for booking %d (%d in a row): %v", bookingID, failures, err))
			if p.maxFailures > 0 && failures >= p.maxFailures {
				p.logger.Error("POLL", fmt.Sprintf("Giving up on booking %d after %d consecutive failures", bookingID, failures))
				p.Stop(bookingID)
				return
			}
			continue
		}
		failures = 0

		if status.ScannedTickets > lastNotified {
			lastNotified = status.ScannedTickets
			p.emitter.Emit(Notification{
				BookingID:      bookingID,
				EventName:      status.EventName,
				ScannedTickets: status.ScannedTickets,
				TotalTickets:   status.TotalTickets,
				AllScanned:     status.AllScanned(),
				At:             time.Now(),
			})

			if status.AllScanned() {
				// Terminal: nothing left to watch.
				p.Stop(bookingID)
				return
			}
		}
	}
}
