package stubapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"nebula-cli/internal/models"
)

// Store is the stub backend's entire world: users, events, bookings
// and tickets in maps behind one lock. It exists so the client can be
// developed and tested without the real backend; nothing survives a
// restart and that is fine.
type Store struct {
	mu sync.Mutex

	nextUserID    int64
	nextEventID   int64
	nextBookingID int64
	nextTicketID  int64

	users    map[int64]*storedUser
	events   map[int64]*models.Event
	bookings map[int64]*storedBooking
	// ticketsByCode indexes every issued ticket by its opaque code for
	// the scan path.
	ticketsByCode map[string]*storedTicket
}

type storedUser struct {
	models.User
	Password string
}

type storedBooking struct {
	ID        int64
	UserID    int64
	EventID   int64
	Total     int
	Generated bool
	CreatedAt time.Time
	Tickets   []*storedTicket
}

type storedTicket struct {
	ID           int64
	BookingID    int64
	TicketNumber string
	Code         string
	CheckedIn    bool
	CheckedInAt  time.Time
}

func NewStore() *Store {
	s := &Store{
		users:         make(map[int64]*storedUser),
		events:        make(map[int64]*models.Event),
		bookings:      make(map[int64]*storedBooking),
		ticketsByCode: make(map[string]*storedTicket),
	}
	s.seed()
	return s
}

// seed loads the accounts and sample events local development expects.
func (s *Store) seed() {
	s.addUser("Admin", "admin@nebula.dev", "admin123", models.RoleAdmin)
	s.addUser("Demo User", "user@nebula.dev", "user123", models.RoleUser)
	s.addUser("Gate Checker", "checker@nebula.dev", "checker123", models.RoleTicketChecker)

	samples := []models.Event{
		{Name: "Midnight Circuit", Artist: "Nova Pulse", Location: "Harbor Arena", Date: "2026-10-12", Time: "8:00", AmPm: "PM"},
		{Name: "Acoustic Sessions", Artist: "Mara Lane", Location: "Old Theatre", Date: "2026-10-19", Time: "7:30", AmPm: "PM"},
		{Name: "Synthwave Night", Artist: "Retrograde", Location: "Warehouse 9", Date: "2026-11-02", Time: "9:00", AmPm: "PM"},
		{Name: "Jazz on the Rooftop", Artist: "Blue Quartet", Location: "Sky Lounge", Date: "2026-11-08", Time: "6:00", AmPm: "PM"},
		{Name: "Orchestra Gala", Artist: "City Philharmonic", Location: "Grand Hall", Date: "2026-11-15", Time: "7:00", AmPm: "PM"},
		{Name: "Indie Fest", Artist: "Various", Location: "River Park", Date: "2026-11-22", Time: "2:00", AmPm: "PM"},
		{Name: "Winter Electro", Artist: "Glacier", Location: "Dome Club", Date: "2026-12-05", Time: "10:00", AmPm: "PM"},
	}
	for i := range samples {
		s.addEvent(samples[i])
	}
}

func (s *Store) addUser(name, email, password string, role models.Role) *storedUser {
	s.nextUserID++
	user := &storedUser{
		User:     models.User{ID: s.nextUserID, Name: name, Email: email, Role: role},
		Password: password,
	}
	s.users[user.ID] = user
	return user
}

func (s *Store) addEvent(event models.Event) *models.Event {
	s.nextEventID++
	event.ID = s.nextEventID
	s.events[event.ID] = &event
	return &event
}

func (s *Store) userByEmail(email string) *storedUser {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Store) bookingView(b *storedBooking) models.Booking {
	event := s.events[b.EventID]
	view := models.Booking{
		ID:           b.ID,
		TotalTickets: b.Total,
		QRGenerated:  b.Generated,
		Confirmed:    true,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
	if event != nil {
		view.Event = *event
	}
	if user, ok := s.users[b.UserID]; ok {
		u := user.User
		view.User = &u
	}
	for _, t := range b.Tickets {
		if t.CheckedIn {
			view.TicketsUsed++
		}
	}
	return view
}

func (s *Store) issueTickets(b *storedBooking) []string {
	codes := make([]string, 0, b.Total)
	for i := 0; i < b.Total; i++ {
		s.nextTicketID++
		ticket := &storedTicket{
			ID:           s.nextTicketID,
			BookingID:    b.ID,
			TicketNumber: fmt.Sprintf("NBL-%d-%d", b.ID, i+1),
			Code:         uuid.New().String(),
		}
		b.Tickets = append(b.Tickets, ticket)
		s.ticketsByCode[ticket.Code] = ticket
		codes = append(codes, ticket.Code)
	}
	b.Generated = true
	return codes
}
