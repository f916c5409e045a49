package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"nebula-cli/internal/models"
)

// =================== AUTH ===================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.Session, error) {
	var session models.Session
	if err := c.postJSON(ctx, "/auth/login", req, &session); err != nil {
		return nil, err
	}
	// A login response without a credential is useless: treat it the
	// same as a rejected login and store nothing.
	if !session.Authenticated() {
		return nil, ErrUnauthorized
	}
	return &session, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.postJSON(ctx, "/auth/register", req, nil)
}

// =================== EVENTS ===================

func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.getJSON(ctx, "/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) EventsPage(ctx context.Context, page int) (*models.EventPage, error) {
	var result models.EventPage
	if err := c.getJSON(ctx, fmt.Sprintf("/events/page/%d", page), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) EventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	if err := c.getJSON(ctx, fmt.Sprintf("/events/%d", id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// EventForm carries the admin event-creation fields plus an optional
// image attachment. The image is packaged as the multipart "image"
// field, which is the name the backend expects.
type EventForm struct {
	Name     string
	Artist   string
	Location string
	Date     string
	Time     string
	AmPm     string

	ImageName string
	Image     io.Reader
}

func (c *Client) CreateEvent(ctx context.Context, form EventForm) (*models.Event, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":     form.Name,
		"artist":   form.Artist,
		"location": form.Location,
		"date":     form.Date,
		"time":     form.Time,
		"amPm":     form.AmPm,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	if form.Image != nil {
		part, err := writer.CreateFormFile("image", form.ImageName)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, form.Image); err != nil {
			return nil, fmt.Errorf("failed to copy image data: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	var event models.Event
	if err := c.do(ctx, http.MethodPost, "/admin/events", &buf, writer.FormDataContentType(), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/admin/events/%d", id))
}

// =================== BOOKINGS ===================

type BookingRequest struct {
	EventID      int64 `json:"eventId"`
	TotalTickets int   `json:"totalTickets"`
}

func (c *Client) CreateBooking(ctx context.Context, eventID int64, totalTickets int) (*models.Booking, error) {
	var booking models.Booking
	err := c.postJSON(ctx, "/booking", BookingRequest{EventID: eventID, TotalTickets: totalTickets}, &booking)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.getJSON(ctx, "/booking/mybookings", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/booking/%d", id))
}

func (c *Client) TicketsByBooking(ctx context.Context, bookingID int64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := c.getJSON(ctx, fmt.Sprintf("/booking/booking/%d/tickets", bookingID), &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// =================== QR / SCAN ===================

type generateQRResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	QRCodes []string `json:"qrCodes"`
}

// GenerateQR asks the backend to issue the booking's ticket codes. The
// backend enforces at-most-once; a repeat attempt comes back as a
// ServerError with the backend's message.
func (c *Client) GenerateQR(ctx context.Context, bookingID int64) ([]string, error) {
	var result generateQRResponse
	if err := c.postJSON(ctx, fmt.Sprintf("/qr/generate/%d", bookingID), nil, &result); err != nil {
		return nil, err
	}
	if result.Status != "success" {
		return nil, &ServerError{StatusCode: http.StatusBadRequest, Message: result.Message}
	}
	return result.QRCodes, nil
}

type validateRequest struct {
	QRCode string `json:"qrCode"`
}

// ValidateTicket submits one decoded code. The backend answers 200 for
// both outcomes; ScanResult.Status carries the verdict.
func (c *Client) ValidateTicket(ctx context.Context, qrCode string) (*models.ScanResult, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return nil, &ValidationError{Field: "qrCode", Message: "decoded payload is empty"}
	}
	var result models.ScanResult
	if err := c.postJSON(ctx, "/scan/validate", validateRequest{QRCode: qrCode}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ScanStatus(ctx context.Context, bookingID int64) (*models.ScanStatus, error) {
	var status models.ScanStatus
	if err := c.getJSON(ctx, fmt.Sprintf("/scan/public/status/%d", bookingID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// =================== ADMIN ===================

func (c *Client) AllBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.getJSON(ctx, "/admin/bookings", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) RegisteredUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/admin/registerusers", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, fmt.Sprintf("/admin/%s", role), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) TicketCheckers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/admin/ticket-checkers", &users); err != nil {
		return nil, err
	}
	return users, nil
}
