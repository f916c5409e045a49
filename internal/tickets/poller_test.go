package tickets_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebula-cli/internal/api"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
	"nebula-cli/internal/tickets"
)

// statusScript returns a scripted sequence of poll answers, repeating
// the last one forever.
type statusScript struct {
	mu      sync.Mutex
	answers []models.ScanStatus
	fail    bool
	calls   int
}

func (s *statusScript) ScanStatus(ctx context.Context, bookingID int64) (*models.ScanStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return nil, api.ErrUnavailable
	}
	i := s.calls - 1
	if i >= len(s.answers) {
		i = len(s.answers) - 1
	}
	status := s.answers[i]
	return &status, nil
}

func (s *statusScript) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testLogger() *logger.Logger {
	log := logger.NewLogger()
	log.SetQuiet(true)
	return log
}

func collect(t *testing.T, ch <-chan tickets.Notification, want int, within time.Duration) []tickets.Notification {
	t.Helper()
	var got []tickets.Notification
	deadline := time.After(within)
	for len(got) < want {
		select {
		case n := <-ch:
			got = append(got, n)
		case <-deadline:
			t.Fatalf("expected %d notifications, got %d", want, len(got))
		}
	}
	return got
}

func TestPollerNotifiesOncePerIncrease(t *testing.T) {
	script := &statusScript{answers: []models.ScanStatus{
		{ScannedTickets: 0, TotalTickets: 3, EventName: "Aurora"},
		{ScannedTickets: 1, TotalTickets: 3, EventName: "Aurora"},
		{ScannedTickets: 1, TotalTickets: 3, EventName: "Aurora"},
		{ScannedTickets: 2, TotalTickets: 3, EventName: "Aurora"},
		{ScannedTickets: 2, TotalTickets: 3, EventName: "Aurora"},
	}}
	emitter := tickets.NewEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := emitter.Subscribe(ctx)

	p := tickets.NewPoller(script, emitter, testLogger(), 5*time.Millisecond, 0)
	p.Start(42)
	defer p.StopAll()

	got := collect(t, ch, 2, 2*time.Second)
	assert.Equal(t, 1, got[0].ScannedTickets)
	assert.Equal(t, 2, got[1].ScannedTickets)
	assert.False(t, got[0].AllScanned)
	assert.Equal(t, "Aurora", got[0].EventName)

	// The repeated counts in between must not have produced extras.
	select {
	case n := <-ch:
		t.Fatalf("unexpected extra notification: %+v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerNotifiesPreScannedTicketsOnFirstTick(t *testing.T) {
	script := &statusScript{answers: []models.ScanStatus{
		{ScannedTickets: 2, TotalTickets: 5, EventName: "Aurora"},
	}}
	emitter := tickets.NewEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := emitter.Subscribe(ctx)

	p := tickets.NewPoller(script, emitter, testLogger(), 5*time.Millisecond, 0)
	p.Start(1)
	defer p.StopAll()

	got := collect(t, ch, 1, 2*time.Second)
	assert.Equal(t, 2, got[0].ScannedTickets)
}

func TestPollerStopsItselfWhenAllScanned(t *testing.T) {
	script := &statusScript{answers: []models.ScanStatus{
		{ScannedTickets: 2, TotalTickets: 2, EventName: "Aurora"},
	}}
	emitter := tickets.NewEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := emitter.Subscribe(ctx)

	p := tickets.NewPoller(script, emitter, testLogger(), 5*time.Millisecond, 0)
	p.Start(7)

	got := collect(t, ch, 1, 2*time.Second)
	require.True(t, got[0].AllScanned)

	assert.Eventually(t, func() bool { return !p.Watching(7) },
		time.Second, 5*time.Millisecond)
}

func TestPollerStartIsIdempotent(t *testing.T) {
	script := &statusScript{answers: []models.ScanStatus{
		{ScannedTickets: 0, TotalTickets: 2},
	}}
	p := tickets.NewPoller(script, tickets.NewEmitter(), testLogger(), time.Hour, 0)
	p.Start(3)
	p.Start(3)
	assert.True(t, p.Watching(3))
	p.StopAll()
	assert.False(t, p.Watching(3))
}

func TestPollerStopEndsCalls(t *testing.T) {
	script := &statusScript{answers: []models.ScanStatus{
		{ScannedTickets: 0, TotalTickets: 2},
	}}
	p := tickets.NewPoller(script, tickets.NewEmitter(), testLogger(), 5*time.Millisecond, 0)
	p.Start(4)

	assert.Eventually(t, func() bool { return script.callCount() > 0 },
		time.Second, 5*time.Millisecond)

	p.Stop(4)
	assert.False(t, p.Watching(4))

	settled := script.callCount()
	time.Sleep(50 * time.Millisecond)
	// One in-flight tick may land after Stop; after that, silence.
	assert.LessOrEqual(t, script.callCount(), settled+1)
}

func TestPollerGivesUpAfterConsecutiveFailures(t *testing.T) {
	script := &statusScript{fail: true}
	p := tickets.NewPoller(script, tickets.NewEmitter(), testLogger(), time.Millisecond, 3)
	p.Start(5)

	assert.Eventually(t, func() bool { return !p.Watching(5) },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, script.callCount())
}
