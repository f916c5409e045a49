package tickets

import (
	"context"
	"errors"
	"fmt"

	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

// ErrAlreadyGenerated is returned when QR generation is attempted for a
// booking whose codes were already issued. Generation is at-most-once;
// after that only ViewQR makes sense.
var ErrAlreadyGenerated = errors.New("QR codes were already generated for this booking")

// ErrAllUsed is returned when the QR panel is requested for a booking
// whose tickets have all been scanned. The booking is terminal at that
// point; only removal remains.
var ErrAllUsed = errors.New("all tickets of this booking have been used")

// API is the slice of the REST client the ticket service needs.
type API interface {
	GenerateQR(ctx context.Context, bookingID int64) ([]string, error)
	TicketsByBooking(ctx context.Context, bookingID int64) ([]models.Ticket, error)
	MyBookings(ctx context.Context) ([]models.Booking, error)
}

// Service owns the ticket/QR side of a booking: one-time generation,
// idempotent re-view, and the booking list refresh the notification
// path needs.
type Service struct {
	api    API
	logger *logger.Logger
}

func NewService(apiClient API, log *logger.Logger) *Service {
	return &Service{api: apiClient, logger: log}
}

// GenerateQR issues the booking's ticket codes. The booking passed in
// is the client's cached copy; if it already says qrGenerated the call
// is refused locally and nothing hits the wire. The backend enforces
// the same rule for the race where the cache is stale.
func (s *Service) GenerateQR(ctx context.Context, booking models.Booking) ([]string, error) {
	if booking.QRGenerated {
		return nil, ErrAlreadyGenerated
	}

	codes, err := s.api.GenerateQR(ctx, booking.ID)
	if err != nil {
		s.logger.Error("TICKETS", fmt.Sprintf("QR generation failed for booking %d: %v", booking.ID, err))
		return nil, err
	}
	s.logger.Info("TICKETS", fmt.Sprintf("Generated %d QR codes for booking %d", len(codes), booking.ID))
	return codes, nil
}

// ViewQR fetches the persisted codes of an already-generated booking.
// Side-effect free on the booking entity, callable any number of times
// while at least one ticket remains unused.
func (s *Service) ViewQR(ctx context.Context, booking models.Booking) ([]string, error) {
	if booking.FullyScanned() {
		return nil, ErrAllUsed
	}

	ticketList, err := s.api.TicketsByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(ticketList))
	for _, t := range ticketList {
		codes = append(codes, t.QRCode)
	}
	return codes, nil
}

// Bookings refetches the user's booking list (used on view load and
// after a scan notification, to pick up new used-ticket counts).
func (s *Service) Bookings(ctx context.Context) ([]models.Booking, error) {
	return s.api.MyBookings(ctx)
}
