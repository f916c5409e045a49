package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/models"
	"nebula-cli/internal/scan"
	"nebula-cli/internal/tickets"
)

// view identifies one screen of the client, the terminal equivalent of
// the old routes.
type view int

const (
	viewAuth view = iota
	viewEvents
	viewBooking
	viewMyBookings
	viewChecker
	viewAdmin
)

// navigateMsg asks the app to switch screens. The guard runs on every
// navigation, so a view never has to re-check roles itself.
type navigateMsg struct {
	target view
	// eventID rides along for the booking view.
	eventID int64
}

func navigate(target view) tea.Cmd {
	return func() tea.Msg { return navigateMsg{target: target} }
}

func navigateBooking(eventID int64) tea.Cmd {
	return func() tea.Msg { return navigateMsg{target: viewBooking, eventID: eventID} }
}

// sessionClearedMsg arrives when the session store broadcasts a clear
// (logout or rejected credential).
type sessionClearedMsg struct{}

// scanNotificationMsg wraps a poller notification.
type scanNotificationMsg struct {
	notification tickets.Notification
}

// scanStateMsg wraps a checker workflow transition.
type scanStateMsg struct {
	state scan.State
}

// flashClearMsg dismisses a timed inline message. owner keeps it from
// leaking into another view; seq guards against a stale timer clearing
// a newer message.
type flashClearMsg struct {
	owner view
	seq   int
}

// notifyDismissMsg hides the scan notification banner. seq guards
// against a stale timer clearing a newer banner.
type notifyDismissMsg struct {
	seq int
}

// flashDuration is how long inline success/error messages stay up.
const flashDuration = 3 * time.Second

// --- auth ---

type loginResultMsg struct {
	session *models.Session
	err     error
}

type registerResultMsg struct {
	err error
}

// --- events ---

type eventsPageMsg struct {
	page *models.EventPage
	// fallback carries the unpaginated listing when the page endpoint
	// failed on page 1.
	fallback []models.Event
	err      error
}

// --- booking ---

type eventLoadedMsg struct {
	event *models.Event
	err   error
}

type bookingResultMsg struct {
	booking *models.Booking
	err     error
}

type bookingConfirmedNavMsg struct{}

// --- my bookings ---

type bookingsLoadedMsg struct {
	bookings []models.Booking
	err      error
}

type qrCodesMsg struct {
	bookingID int64
	codes     []string
	generated bool
	err       error
}

type bookingDeletedMsg struct {
	bookingID int64
	err       error
}

// --- admin ---

type adminTab int

const (
	tabEvents adminTab = iota
	tabBookings
	tabUsers
	tabCheckers
	tabCreate
)

type adminListMsg struct {
	tab      adminTab
	events   []models.Event
	bookings []models.Booking
	users    []models.User
	err      error
}

type adminDeletedMsg struct {
	tab adminTab
	id  int64
	err error
}

type adminCreatedMsg struct {
	event *models.Event
	err   error
}

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
