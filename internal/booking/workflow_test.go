package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"nebula-cli/internal/api"
	"nebula-cli/internal/booking"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) EventByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockAPI) CreateBooking(ctx context.Context, eventID int64, totalTickets int) (*models.Booking, error) {
	args := m.Called(ctx, eventID, totalTickets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func testLogger() *logger.Logger {
	log := logger.NewLogger()
	log.SetQuiet(true)
	return log
}

func TestSubmitHappyPath(t *testing.T) {
	mockAPI := new(MockAPI)
	w := booking.New(mockAPI, testLogger())

	expected := &models.Booking{ID: 7, TotalTickets: 3}
	mockAPI.On("CreateBooking", mock.Anything, int64(1), 3).Return(expected, nil)

	b, err := w.Submit(context.Background(), 1, 3)
	assert.NoError(t, err)
	assert.Equal(t, expected, b)
	assert.Equal(t, booking.StateConfirmed, w.State())
	mockAPI.AssertExpectations(t)
}

func TestSubmitRejectsTicketCountOutOfRange(t *testing.T) {
	mockAPI := new(MockAPI)
	w := booking.New(mockAPI, testLogger())

	for _, count := range []int{0, -1, 11, 100} {
		_, err := w.Submit(context.Background(), 1, count)
		var validationErr *api.ValidationError
		assert.ErrorAs(t, err, &validationErr, "count %d should be rejected", count)
	}
	// Nothing should have reached the backend.
	mockAPI.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, booking.StateIdle, w.State())
}

func TestSubmitBoundaryCountsAccepted(t *testing.T) {
	mockAPI := new(MockAPI)
	w := booking.New(mockAPI, testLogger())

	mockAPI.On("CreateBooking", mock.Anything, int64(1), 1).Return(&models.Booking{ID: 1}, nil)
	mockAPI.On("CreateBooking", mock.Anything, int64(1), 10).Return(&models.Booking{ID: 2}, nil)

	_, err := w.Submit(context.Background(), 1, 1)
	assert.NoError(t, err)
	w.Reset()
	_, err = w.Submit(context.Background(), 1, 10)
	assert.NoError(t, err)
}

func TestSubmitFailureKeepsUserOnForm(t *testing.T) {
	mockAPI := new(MockAPI)
	w := booking.New(mockAPI, testLogger())

	mockAPI.On("CreateBooking", mock.Anything, int64(1), 2).
		Return(nil, &api.ServerError{StatusCode: 500, Message: "event is sold out"})

	_, err := w.Submit(context.Background(), 1, 2)
	assert.Error(t, err)
	assert.Equal(t, booking.StateFailed, w.State())
	assert.Equal(t, "event is sold out", w.Message())

	// The form stays usable: a second submit goes through.
	mockAPI.On("CreateBooking", mock.Anything, int64(1), 1).Return(&models.Booking{ID: 3}, nil)
	_, err = w.Submit(context.Background(), 1, 1)
	assert.NoError(t, err)
}

func TestSubmitRefusesConcurrentSubmission(t *testing.T) {
	mockAPI := new(MockAPI)
	w := booking.New(mockAPI, testLogger())

	release := make(chan struct{})
	mockAPI.On("CreateBooking", mock.Anything, int64(1), 2).
		Run(func(mock.Arguments) { <-release }).
		Return(&models.Booking{ID: 9}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := w.Submit(context.Background(), 1, 2)
		assert.NoError(t, err)
	}()

	// Wait until the first submission is in flight.
	for w.State() != booking.StateSubmitting {
		time.Sleep(time.Millisecond)
	}

	_, err := w.Submit(context.Background(), 1, 2)
	assert.Error(t, err)

	close(release)
	wg.Wait()
	mockAPI.AssertNumberOfCalls(t, "CreateBooking", 1)
}

func TestLoadEventPropagatesNotFound(t *testing.T) {
	mockAPI := new(MockAPI)
	w := booking.New(mockAPI, testLogger())

	mockAPI.On("EventByID", mock.Anything, int64(99)).Return(nil, api.ErrNotFound)

	_, err := w.LoadEvent(context.Background(), 99)
	assert.True(t, errors.Is(err, api.ErrNotFound))
}
