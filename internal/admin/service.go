package admin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"nebula-cli/internal/api"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

// MaxImageSize is the client-side cap on event image attachments.
// A bigger file is rejected before any network call happens.
const MaxImageSize = 5 * 1024 * 1024

// API is the slice of the REST client the admin workflows need.
type API interface {
	Events(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, form api.EventForm) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	AllBookings(ctx context.Context) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	RegisteredUsers(ctx context.Context) ([]models.User, error)
	TicketCheckers(ctx context.Context) ([]models.User, error)
}

// EventInput is the admin's event-creation form. All text/date/time
// fields are required; the image is optional.
type EventInput struct {
	Name      string `validate:"required"`
	Artist    string `validate:"required"`
	Location  string `validate:"required"`
	Date      string `validate:"required,datetime=2006-01-02"`
	Time      string `validate:"required"`
	AmPm      string `validate:"omitempty,oneof=AM PM"`
	ImagePath string
}

// Service is the stateless list-and-act layer behind the admin views.
type Service struct {
	api      API
	logger   *logger.Logger
	validate *validator.Validate
}

func NewService(apiClient API, log *logger.Logger) *Service {
	return &Service{api: apiClient, logger: log, validate: validator.New()}
}

// CreateEvent validates the form, size-checks and reads the optional
// image, and submits the multipart request.
func (s *Service) CreateEvent(ctx context.Context, input EventInput) (*models.Event, error) {
	if err := s.validate.Struct(input); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return nil, &api.ValidationError{
				Field:   errs[0].Field(),
				Message: "field is required or malformed",
			}
		}
		return nil, &api.ValidationError{Message: "event form is incomplete"}
	}

	form := api.EventForm{
		Name:     input.Name,
		Artist:   input.Artist,
		Location: input.Location,
		Date:     input.Date,
		Time:     input.Time,
		AmPm:     input.AmPm,
	}

	if input.ImagePath != "" {
		info, err := os.Stat(input.ImagePath)
		if err != nil {
			return nil, &api.ValidationError{Field: "image", Message: fmt.Sprintf("cannot read image: %v", err)}
		}
		if info.Size() > MaxImageSize {
			return nil, &api.ValidationError{Field: "image", Message: "image must be smaller than 5MB"}
		}
		data, err := os.ReadFile(input.ImagePath)
		if err != nil {
			return nil, &api.ValidationError{Field: "image", Message: fmt.Sprintf("cannot read image: %v", err)}
		}
		form.ImageName = filepath.Base(input.ImagePath)
		form.Image = bytes.NewReader(data)
	}

	event, err := s.api.CreateEvent(ctx, form)
	if err != nil {
		s.logger.Error("ADMIN", fmt.Sprintf("Event creation failed: %v", err))
		return nil, err
	}
	s.logger.Info("ADMIN", fmt.Sprintf("Event created: %s (%d)", event.Name, event.ID))
	return event, nil
}

func (s *Service) Events(ctx context.Context) ([]models.Event, error) {
	return s.api.Events(ctx)
}

func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.api.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("ADMIN", fmt.Sprintf("Event %d deleted", id))
	return nil
}

func (s *Service) Bookings(ctx context.Context) ([]models.Booking, error) {
	return s.api.AllBookings(ctx)
}

func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.api.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.logger.Info("ADMIN", fmt.Sprintf("Booking %d deleted", id))
	return nil
}

func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.api.RegisteredUsers(ctx)
}

func (s *Service) TicketCheckers(ctx context.Context) ([]models.User, error) {
	return s.api.TicketCheckers(ctx)
}
