package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/api"
	"nebula-cli/internal/booking"
	"nebula-cli/internal/models"
)

// bookingModel is the single-event booking screen.
type bookingModel struct {
	deps Deps

	eventID int64
	event   *models.Event
	count   textinput.Model
	loading bool
	message string
}

func newBookingModel(deps Deps) bookingModel {
	count := textinput.New()
	count.Placeholder = "1"
	count.CharLimit = 2
	count.Width = 4
	count.Focus()
	return bookingModel{deps: deps, count: count}
}

// open resets the screen for a fresh event and starts loading it.
func (m bookingModel) open(eventID int64) (bookingModel, tea.Cmd) {
	m.eventID = eventID
	m.event = nil
	m.loading = true
	m.message = ""
	m.count.SetValue("")
	m.deps.Booking.Reset()
	deps := m.deps
	return m, func() tea.Msg {
		event, err := deps.Booking.LoadEvent(context.Background(), eventID)
		return eventLoadedMsg{event: event, err: err}
	}
}

func (m bookingModel) submit(totalTickets int) tea.Cmd {
	deps := m.deps
	eventID := m.eventID
	return func() tea.Msg {
		b, err := deps.Booking.Submit(context.Background(), eventID, totalTickets)
		return bookingResultMsg{booking: b, err: err}
	}
}

func (m bookingModel) update(msg tea.Msg) (bookingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case eventLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.message = api.UserMessage(msg.err)
			return m, nil
		}
		m.event = msg.event
		return m, nil

	case bookingResultMsg:
		if msg.err != nil {
			m.message = api.UserMessage(msg.err)
			return m, nil
		}
		m.message = ""
		// Brief confirmation, then over to the bookings list, like the
		// post-booking redirect in the web client.
		return m, tick(booking.ConfirmNavigateDelay, bookingConfirmedNavMsg{})

	case bookingConfirmedNavMsg:
		return m, navigate(viewMyBookings)

	case tea.KeyMsg:
		if m.deps.Booking.State() == booking.StateSubmitting || m.deps.Booking.State() == booking.StateConfirmed {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.event == nil {
				return m, nil
			}
			n, err := strconv.Atoi(strings.TrimSpace(m.count.Value()))
			if err != nil {
				m.message = fmt.Sprintf("Enter a number between %d and %d", booking.MinTickets, booking.MaxTickets)
				return m, nil
			}
			m.message = ""
			return m, m.submit(n)
		case "esc":
			return m, navigate(viewEvents)
		}
	}

	var cmd tea.Cmd
	m.count, cmd = m.count.Update(msg)
	return m, cmd
}

// resolveAsset turns the API's relative image paths into full URLs,
// like the old <img src> base the web client prepended.
func (m bookingModel) resolveAsset(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(m.deps.Config.API.AssetBaseURL, "/") + path
}

func (m bookingModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Book Tickets"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("Loading event..."))
	case m.event == nil:
		if m.message != "" {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(errorStyle.Render("Event not found."))
		}
	default:
		ev := m.event
		card := fmt.Sprintf(
			"%s\n%s\n%s · %s %s\n%s",
			headerStyle.Render(ev.Name), ev.Artist, ev.Date, ev.Time, ev.AmPm, ev.Location,
		)
		if ev.ImageURL != "" {
			card += "\n" + dimStyle.Render("Poster: "+m.resolveAsset(ev.ImageURL))
		} else {
			card += "\n" + dimStyle.Render("No poster")
		}
		b.WriteString(panelStyle.Render(card))
		b.WriteString("\n\n")

		switch m.deps.Booking.State() {
		case booking.StateSubmitting:
			b.WriteString(dimStyle.Render("Booking..."))
		case booking.StateConfirmed:
			b.WriteString(bannerStyle.Render("Booking confirmed! 🎉"))
		default:
			b.WriteString(fmt.Sprintf("Tickets (%d-%d): %s", booking.MinTickets, booking.MaxTickets, m.count.View()))
			if m.message != "" {
				b.WriteString("\n" + errorStyle.Render(m.message))
			}
		}
	}

	b.WriteString("\n\n" + helpStyle.Render("enter book · esc back to events"))
	return b.String()
}
