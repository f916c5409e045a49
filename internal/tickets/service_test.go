package tickets_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"nebula-cli/internal/api"
	"nebula-cli/internal/models"
	"nebula-cli/internal/tickets"
)

type MockTicketAPI struct {
	mock.Mock
}

func (m *MockTicketAPI) GenerateQR(ctx context.Context, bookingID int64) ([]string, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTicketAPI) TicketsByBooking(ctx context.Context, bookingID int64) ([]models.Ticket, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketAPI) MyBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func TestGenerateQRHappyPath(t *testing.T) {
	mockAPI := new(MockTicketAPI)
	s := tickets.NewService(mockAPI, testLogger())

	mockAPI.On("GenerateQR", mock.Anything, int64(1)).Return([]string{"code-a", "code-b"}, nil)

	codes, err := s.GenerateQR(context.Background(), models.Booking{ID: 1, TotalTickets: 2})
	assert.NoError(t, err)
	assert.Len(t, codes, 2)
}

func TestGenerateQRRefusedForGeneratedBooking(t *testing.T) {
	mockAPI := new(MockTicketAPI)
	s := tickets.NewService(mockAPI, testLogger())

	_, err := s.GenerateQR(context.Background(), models.Booking{ID: 1, QRGenerated: true})
	assert.ErrorIs(t, err, tickets.ErrAlreadyGenerated)
	// At-most-once: nothing may reach the backend.
	mockAPI.AssertNotCalled(t, "GenerateQR", mock.Anything, mock.Anything)
}

func TestGenerateQRSurfacesBackendRefusal(t *testing.T) {
	mockAPI := new(MockTicketAPI)
	s := tickets.NewService(mockAPI, testLogger())

	// Stale cache: our copy says not generated, the backend disagrees.
	mockAPI.On("GenerateQR", mock.Anything, int64(2)).
		Return(nil, &api.ServerError{StatusCode: 400, Message: "QR codes already generated for this booking"})

	_, err := s.GenerateQR(context.Background(), models.Booking{ID: 2})
	var serverErr *api.ServerError
	assert.ErrorAs(t, err, &serverErr)
}

func TestViewQRReturnsStoredCodes(t *testing.T) {
	mockAPI := new(MockTicketAPI)
	s := tickets.NewService(mockAPI, testLogger())

	mockAPI.On("TicketsByBooking", mock.Anything, int64(3)).Return([]models.Ticket{
		{ID: 1, QRCode: "code-a"},
		{ID: 2, QRCode: "code-b", CheckedIn: true},
	}, nil)

	codes, err := s.ViewQR(context.Background(), models.Booking{ID: 3, TotalTickets: 2, TicketsUsed: 1, QRGenerated: true})
	assert.NoError(t, err)
	assert.Equal(t, []string{"code-a", "code-b"}, codes)
}

func TestViewQRRefusedWhenAllTicketsUsed(t *testing.T) {
	mockAPI := new(MockTicketAPI)
	s := tickets.NewService(mockAPI, testLogger())

	_, err := s.ViewQR(context.Background(), models.Booking{ID: 4, TotalTickets: 2, TicketsUsed: 2, QRGenerated: true})
	assert.ErrorIs(t, err, tickets.ErrAllUsed)
	mockAPI.AssertNotCalled(t, "TicketsByBooking", mock.Anything, mock.Anything)
}

func TestRenderTerminalProducesDrawableBlock(t *testing.T) {
	out, err := tickets.RenderTerminal("NBL-1-1:some-opaque-payload")
	assert.NoError(t, err)
	assert.NotEmpty(t, out)
}
