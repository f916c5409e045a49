package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nebula-cli/internal/api"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

// State is the checker workflow's visible state.
type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StateValidating State = "validating"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// ValidateAPI is the slice of the REST client the workflow needs.
type ValidateAPI interface {
	ValidateTicket(ctx context.Context, qrCode string) (*models.ScanResult, error)
}

// Workflow drives the checker's scan/validate loop:
//
//	idle -> scanning -> validating -> success | error
//
// error resumes scanning on its own after ResumeDelay; success waits
// for an explicit "scan next". Exactly one decoded payload is processed
// per scan cycle: once a decode is accepted the decoder is detached and
// anything further is ignored until scanning restarts.
type Workflow struct {
	api     ValidateAPI
	decoder Decoder
	logger  *logger.Logger
	// ResumeDelay is how long the error screen stays before scanning
	// restarts.
	resumeDelay time.Duration

	mu           sync.Mutex
	state        State
	result       *models.ScanResult
	message      string
	scannedToday int
	resumeTimer  *time.Timer
	changes      chan State
}

func NewWorkflow(apiClient ValidateAPI, decoder Decoder, log *logger.Logger, resumeDelay time.Duration) *Workflow {
	if resumeDelay <= 0 {
		resumeDelay = 3 * time.Second
	}
	return &Workflow{
		api:         apiClient,
		decoder:     decoder,
		logger:      log,
		resumeDelay: resumeDelay,
		state:       StateIdle,
		changes:     make(chan State, 16),
	}
}

// Changes delivers state transitions to the UI. Non-blocking emit: the
// UI reads the authoritative state via State() anyway.
func (w *Workflow) Changes() <-chan State { return w.changes }

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Result is the last validation verdict, nil before the first scan.
func (w *Workflow) Result() *models.ScanResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Message is the user-facing text for the error state.
func (w *Workflow) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message
}

// ScannedToday is the client-local success counter. Not authoritative,
// just the number on the checker's screen.
func (w *Workflow) ScannedToday() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scannedToday
}

// Start begins a scan cycle. Allowed from idle, error and success; a
// previous decoder attachment is torn down first so only one capture
// is ever live.
func (w *Workflow) Start() error {
	w.mu.Lock()
	if w.state == StateScanning || w.state == StateValidating {
		w.mu.Unlock()
		return fmt.Errorf("scanner is busy (%s)", w.state)
	}
	w.cancelResumeLocked()
	from := w.state
	w.state = StateScanning
	w.result = nil
	w.message = ""
	w.mu.Unlock()

	// Re-attach from a clean slate even if a previous cycle left the
	// decoder attached.
	w.decoder.Detach()
	if err := w.decoder.Attach(w.handleDecode); err != nil {
		w.mu.Lock()
		w.state = from
		w.mu.Unlock()
		return fmt.Errorf("failed to attach decoder: %w", err)
	}

	w.logger.LogWorkflow("scan", string(from), string(StateScanning))
	w.emit(StateScanning)
	return nil
}

// Stop tears the decoder down and returns to idle. Only meaningful
// while scanning; stopping an idle workflow is a no-op.
func (w *Workflow) Stop() error {
	w.mu.Lock()
	if w.state != StateScanning {
		w.mu.Unlock()
		return nil
	}
	w.cancelResumeLocked()
	w.state = StateIdle
	w.mu.Unlock()

	if err := w.decoder.Detach(); err != nil {
		return fmt.Errorf("failed to detach decoder: %w", err)
	}
	w.logger.LogWorkflow("scan", string(StateScanning), string(StateIdle))
	w.emit(StateIdle)
	return nil
}

// ScanNext is the explicit user action that leaves the success screen
// and starts the next cycle.
func (w *Workflow) ScanNext() error {
	return w.Start()
}

// Shutdown releases everything on view unmount: decoder detached,
// pending auto-resume cancelled.
func (w *Workflow) Shutdown() {
	w.mu.Lock()
	w.cancelResumeLocked()
	w.state = StateIdle
	w.mu.Unlock()
	w.decoder.Detach()
}

// handleDecode is the decoder callback. The state check is the decode
// guard: a payload arriving while validating (or after Stop) belongs to
// a dead cycle and is dropped.
func (w *Workflow) handleDecode(payload string) {
	w.mu.Lock()
	if w.state != StateScanning {
		w.mu.Unlock()
		w.logger.Debug("SCAN", "Ignoring decode outside scanning state")
		return
	}
	w.state = StateValidating
	w.mu.Unlock()

	// One payload per cycle: capture stops before validation starts.
	w.decoder.Detach()
	w.logger.LogWorkflow("scan", string(StateScanning), string(StateValidating))
	w.emit(StateValidating)

	go w.validate(payload)
}

func (w *Workflow) validate(payload string) {
	result, err := w.api.ValidateTicket(context.Background(), payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateValidating {
		// Shutdown raced the validation call; drop the verdict.
		return
	}

	switch {
	case err != nil:
		w.state = StateError
		w.message = api.UserMessage(err)
		w.result = &models.ScanResult{Status: "error", Message: w.message}
		w.scheduleResumeLocked()
	case result.OK():
		w.state = StateSuccess
		w.result = result
		w.scannedToday++
	default:
		w.state = StateError
		w.result = result
		w.message = result.Message
		w.scheduleResumeLocked()
	}

	w.logger.LogWorkflow("scan", string(StateValidating), string(w.state))
	w.emitLocked(w.state)
}

// scheduleResumeLocked arms the error -> scanning auto-restart. Caller
// holds the lock.
func (w *Workflow) scheduleResumeLocked() {
	w.cancelResumeLocked()
	w.resumeTimer = time.AfterFunc(w.resumeDelay, func() {
		w.mu.Lock()
		resume := w.state == StateError
		w.mu.Unlock()
		if resume {
			if err := w.Start(); err != nil {
				w.logger.Error("SCAN", fmt.Sprintf("Auto-resume failed: %v", err))
			}
		}
	})
}

func (w *Workflow) cancelResumeLocked() {
	if w.resumeTimer != nil {
		w.resumeTimer.Stop()
		w.resumeTimer = nil
	}
}

func (w *Workflow) emit(state State) {
	select {
	case w.changes <- state:
	default:
	}
}

// emitLocked is emit for callers already holding the lock (the channel
// send itself never blocks).
func (w *Workflow) emitLocked(state State) {
	select {
	case w.changes <- state:
	default:
	}
}
