package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/api"
	"nebula-cli/internal/models"
)

// eventsModel is the paginated event catalogue.
type eventsModel struct {
	deps Deps

	events     []models.Event
	page       int
	totalPages int
	totalItems int
	hasNext    bool
	hasPrev    bool
	cursor     int
	loading    bool
	message    string
}

func newEventsModel(deps Deps) eventsModel {
	return eventsModel{deps: deps, page: 1}
}

// load fetches one page. Page 1 falls back to the unpaginated listing
// when the page endpoint is unavailable.
func (m eventsModel) load(page int) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx := context.Background()
		result, err := deps.API.EventsPage(ctx, page)
		if err == nil {
			return eventsPageMsg{page: result}
		}
		if page == 1 && !errors.Is(err, api.ErrUnauthorized) {
			if all, fallbackErr := deps.API.Events(ctx); fallbackErr == nil {
				return eventsPageMsg{fallback: all}
			}
		}
		return eventsPageMsg{err: err}
	}
}

func (m eventsModel) update(msg tea.Msg) (eventsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsPageMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.message = api.UserMessage(msg.err)
		case msg.page != nil:
			m.events = msg.page.Events
			m.totalPages = msg.page.TotalPages
			m.totalItems = msg.page.TotalItems
			m.hasNext = msg.page.HasNext
			m.hasPrev = msg.page.HasPrevious
			m.cursor = 0
			m.message = ""
		default:
			m.events = msg.fallback
			m.page = 1
			m.totalPages = 1
			m.totalItems = len(msg.fallback)
			m.hasNext = false
			m.hasPrev = false
			m.cursor = 0
			m.message = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.events)-1 {
				m.cursor++
			}
		case "n", "right":
			if m.hasNext {
				m.page++
				m.loading = true
				return m, m.load(m.page)
			}
		case "p", "left":
			if m.hasPrev {
				m.page--
				m.loading = true
				return m, m.load(m.page)
			}
		case "r":
			m.loading = true
			return m, m.load(m.page)
		case "enter":
			if m.cursor < len(m.events) {
				return m, navigateBooking(m.events[m.cursor].ID)
			}
		case "b":
			return m, navigate(viewMyBookings)
		case "q":
			m.deps.Sessions.Clear()
			return m, nil
		}
	}
	return m, nil
}

func (m eventsModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Upcoming Events"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("Loading events..."))
	case m.message != "":
		b.WriteString(errorStyle.Render(m.message))
	case len(m.events) == 0:
		b.WriteString(dimStyle.Render("No events available right now."))
	default:
		for i, ev := range m.events {
			line := fmt.Sprintf("%-28s %-20s %s %s %s @ %s", ev.Name, ev.Artist, ev.Date, ev.Time, ev.AmPm, ev.Location)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("page %d of %d · %d events", m.page, m.totalPages, m.totalItems)))
	}

	b.WriteString("\n\n" + helpStyle.Render("enter book · n/p page · b my bookings · r refresh · q logout"))
	return b.String()
}
