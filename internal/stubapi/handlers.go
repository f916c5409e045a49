package stubapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nebula-cli/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// =================== AUTH ===================

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.mu.Lock()
	user := s.store.userByEmail(req.Email)
	s.store.mu.Unlock()

	if user == nil || user.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.logger.Info("STUB", fmt.Sprintf("Login: %s (%s)", user.Email, user.Role))
	writeJSON(w, http.StatusOK, models.Session{Token: token, User: user.User})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if !req.Role.Valid() {
		req.Role = models.RoleUser
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.userByEmail(req.Email) != nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	user := s.store.addUser(req.Name, req.Email, req.Password, req.Role)
	writeJSON(w, http.StatusCreated, user.User)
}

// =================== EVENTS ===================

func (s *Server) sortedEvents() []models.Event {
	events := make([]models.Event, 0, len(s.store.events))
	for _, e := range s.store.events {
		events = append(events, *e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	events := s.sortedEvents()
	s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleEventsPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "invalid page number")
		return
	}

	s.store.mu.Lock()
	events := s.sortedEvents()
	s.store.mu.Unlock()

	totalItems := len(events)
	totalPages := (totalItems + s.pageSize - 1) / s.pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		writeError(w, http.StatusNotFound, "page out of range")
		return
	}

	start := (page - 1) * s.pageSize
	end := start + s.pageSize
	if end > totalItems {
		end = totalItems
	}

	writeJSON(w, http.StatusOK, models.EventPage{
		Events:      events[start:end],
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	})
}

func (s *Server) handleEventByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	s.store.mu.Lock()
	event, exists := s.store.events[id]
	s.store.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	// The client caps images at 5MB; the stub enforces the same with
	// some slack for the other form fields.
	r.Body = http.MaxBytesReader(w, r.Body, 6*1024*1024)
	if err := r.ParseMultipartForm(6 * 1024 * 1024); err != nil {
		writeError(w, http.StatusBadRequest, "image too large or malformed form")
		return
	}

	event := models.Event{
		Name:     r.FormValue("name"),
		Artist:   r.FormValue("artist"),
		Location: r.FormValue("location"),
		Date:     r.FormValue("date"),
		Time:     r.FormValue("time"),
		AmPm:     r.FormValue("amPm"),
	}
	if event.Name == "" || event.Artist == "" || event.Location == "" || event.Date == "" || event.Time == "" {
		writeError(w, http.StatusBadRequest, "all event fields are required")
		return
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		if err := os.MkdirAll(s.uploadDir, 0755); err == nil {
			name := uuid.New().String() + filepath.Ext(header.Filename)
			dst, err := os.Create(filepath.Join(s.uploadDir, name))
			if err == nil {
				io.Copy(dst, file)
				dst.Close()
				event.ImageURL = "/images/" + name
			}
		}
	}

	s.store.mu.Lock()
	created := s.store.addEvent(event)
	s.store.mu.Unlock()

	s.logger.Info("STUB", fmt.Sprintf("Event created: %s", created.Name))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.events[id]; !exists {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	delete(s.store.events, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}

// =================== BOOKINGS ===================

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID      int64 `json:"eventId"`
		TotalTickets int   `json:"totalTickets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TotalTickets < 1 || req.TotalTickets > 10 {
		writeError(w, http.StatusBadRequest, "totalTickets must be between 1 and 10")
		return
	}

	user := currentUser(r)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.events[req.EventID]; !exists {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	s.store.nextBookingID++
	booking := &storedBooking{
		ID:        s.store.nextBookingID,
		UserID:    user.ID,
		EventID:   req.EventID,
		Total:     req.TotalTickets,
		CreatedAt: time.Now(),
	}
	s.store.bookings[booking.ID] = booking

	s.logger.Info("STUB", fmt.Sprintf("Booking %d created for event %d (%d tickets)", booking.ID, req.EventID, req.TotalTickets))
	writeJSON(w, http.StatusCreated, s.store.bookingView(booking))
}

func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	views := []models.Booking{}
	for _, b := range s.store.bookings {
		if b.UserID == user.ID {
			views = append(views, s.store.bookingView(b))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	user := currentUser(r)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	booking, exists := s.store.bookings[id]
	if !exists {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if user.Role != models.RoleAdmin && booking.UserID != user.ID {
		writeError(w, http.StatusForbidden, "not your booking")
		return
	}

	for _, t := range booking.Tickets {
		delete(s.store.ticketsByCode, t.Code)
	}
	delete(s.store.bookings, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

func (s *Server) handleTicketsByBooking(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	user := currentUser(r)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	booking, exists := s.store.bookings[id]
	if !exists || booking.UserID != user.ID {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}

	tickets := make([]models.Ticket, 0, len(booking.Tickets))
	for _, t := range booking.Tickets {
		ticket := models.Ticket{
			ID:           t.ID,
			TicketNumber: t.TicketNumber,
			QRCode:       t.Code,
			CheckedIn:    t.CheckedIn,
		}
		if t.CheckedIn {
			ticket.CheckedInAt = t.CheckedInAt.Format(time.RFC3339)
		}
		tickets = append(tickets, ticket)
	}
	writeJSON(w, http.StatusOK, tickets)
}

// =================== QR / SCAN ===================

func (s *Server) handleGenerateQR(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "bookingId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	user := currentUser(r)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	booking, exists := s.store.bookings[id]
	if !exists || booking.UserID != user.ID {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if booking.Generated {
		// Same shape the real backend uses for generation errors.
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "QR codes already generated for this booking",
		})
		return
	}

	codes := s.store.issueTickets(booking)
	s.logger.Info("STUB", fmt.Sprintf("Issued %d tickets for booking %d", len(codes), id))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"qrCodes": codes,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRCode string `json:"qrCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.QRCode) == "" {
		writeError(w, http.StatusBadRequest, "qrCode is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	ticket, exists := s.store.ticketsByCode[strings.TrimSpace(req.QRCode)]
	if !exists {
		writeJSON(w, http.StatusOK, models.ScanResult{
			Status:  "error",
			Message: "Invalid ticket",
		})
		return
	}

	booking := s.store.bookings[ticket.BookingID]
	event := s.store.events[booking.EventID]
	attendee := s.store.users[booking.UserID]

	if ticket.CheckedIn {
		result := models.ScanResult{
			Status:       "error",
			Message:      "Ticket already used",
			TicketNumber: ticket.TicketNumber,
			UsedAt:       ticket.CheckedInAt.Format(time.RFC3339),
		}
		if event != nil {
			result.EventName = event.Name
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	ticket.CheckedIn = true
	ticket.CheckedInAt = time.Now()

	scanned := 0
	for _, t := range booking.Tickets {
		if t.CheckedIn {
			scanned++
		}
	}

	result := models.ScanResult{
		Status:         "success",
		Message:        "Valid ticket! Enjoy the event!",
		TicketNumber:   ticket.TicketNumber,
		BookingID:      booking.ID,
		ScannedTickets: scanned,
		TotalTickets:   len(booking.Tickets),
	}
	if event != nil {
		result.EventName = event.Name
	}
	if attendee != nil {
		result.AttendeeName = attendee.Name
	}
	s.logger.Info("STUB", fmt.Sprintf("Ticket %s scanned (%d/%d)", ticket.TicketNumber, scanned, len(booking.Tickets)))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "bookingId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	booking, exists := s.store.bookings[id]
	if !exists || len(booking.Tickets) == 0 {
		writeJSON(w, http.StatusOK, models.ScanStatus{})
		return
	}

	scanned := 0
	for _, t := range booking.Tickets {
		if t.CheckedIn {
			scanned++
		}
	}

	status := models.ScanStatus{
		AnyTicketScanned: scanned > 0,
		ScannedTickets:   scanned,
		TotalTickets:     len(booking.Tickets),
	}
	if event := s.store.events[booking.EventID]; event != nil {
		status.EventName = event.Name
	}
	writeJSON(w, http.StatusOK, status)
}

// =================== ADMIN ===================

func (s *Server) handleAllBookings(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	views := []models.Booking{}
	for _, b := range s.store.bookings {
		views = append(views, s.store.bookingView(b))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) usersWithRole(roles ...models.Role) []models.User {
	users := []models.User{}
	for _, u := range s.store.users {
		if len(roles) == 0 || u.Role.In(roles...) {
			users = append(users, u.User)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *Server) handleRegisteredUsers(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.usersWithRole())
}

func (s *Server) handleTicketCheckers(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.usersWithRole(models.RoleTicketChecker))
}

func (s *Server) handleUsersByRole(w http.ResponseWriter, r *http.Request) {
	role := models.Role(strings.ToUpper(chi.URLParam(r, "role")))
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.usersWithRole(role))
}
