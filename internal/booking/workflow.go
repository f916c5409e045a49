package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"nebula-cli/internal/api"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

// State is the booking workflow's visible state.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

const (
	MinTickets = 1
	MaxTickets = 10

	// ConfirmNavigateDelay is how long the confirmation stays on
	// screen before the view navigates back to the bookings list.
	ConfirmNavigateDelay = 2 * time.Second
)

// API is the slice of the REST client the workflow needs.
type API interface {
	EventByID(ctx context.Context, id int64) (*models.Event, error)
	CreateBooking(ctx context.Context, eventID int64, totalTickets int) (*models.Booking, error)
}

// Workflow drives one booking submission: idle -> submitting ->
// confirmed or failed. Only one submission may be in flight; a failed
// submission can be retried without reloading anything.
type Workflow struct {
	api      API
	logger   *logger.Logger
	validate *validator.Validate

	mu      sync.Mutex
	state   State
	event   *models.Event
	booking *models.Booking
	message string
}

type submitRequest struct {
	EventID      int64 `validate:"required"`
	TotalTickets int   `validate:"required,min=1,max=10"`
}

func New(apiClient API, log *logger.Logger) *Workflow {
	return &Workflow{
		api:      apiClient,
		logger:   log,
		validate: validator.New(),
		state:    StateIdle,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Event returns the loaded event detail, nil before LoadEvent succeeds.
func (w *Workflow) Event() *models.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.event
}

// Booking returns the confirmed booking, nil until a submission succeeds.
func (w *Workflow) Booking() *models.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.booking
}

// Message is the last user-facing failure text.
func (w *Workflow) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message
}

// LoadEvent fetches the event detail the booking form renders.
func (w *Workflow) LoadEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	event, err := w.api.EventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			w.logger.Warn("BOOKING", fmt.Sprintf("Event %d not found", eventID))
		}
		return nil, err
	}

	w.mu.Lock()
	w.event = event
	w.mu.Unlock()
	return event, nil
}

// Submit validates the ticket count client-side (1..10, nothing hits
// the wire otherwise) and runs the booking call. The submit control is
// expected to be disabled while the state is submitting; a concurrent
// Submit is refused outright.
func (w *Workflow) Submit(ctx context.Context, eventID int64, totalTickets int) (*models.Booking, error) {
	req := submitRequest{EventID: eventID, TotalTickets: totalTickets}
	if err := w.validate.Struct(req); err != nil {
		return nil, &api.ValidationError{
			Field:   "totalTickets",
			Message: fmt.Sprintf("ticket count must be between %d and %d", MinTickets, MaxTickets),
		}
	}

	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return nil, &api.ValidationError{Message: "a booking is already in progress"}
	}
	w.state = StateSubmitting
	w.message = ""
	w.mu.Unlock()
	w.logger.LogWorkflow("booking", string(StateIdle), string(StateSubmitting))

	booked, err := w.api.CreateBooking(ctx, eventID, totalTickets)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateFailed
		w.message = api.UserMessage(err)
		w.logger.LogWorkflow("booking", string(StateSubmitting), string(StateFailed))
		return nil, err
	}

	w.state = StateConfirmed
	w.booking = booked
	w.logger.LogWorkflow("booking", string(StateSubmitting), string(StateConfirmed))
	return booked, nil
}

// Reset returns a failed workflow to idle so the user can retry.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateIdle
	w.message = ""
}
