package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/api"
	"nebula-cli/internal/models"
	"nebula-cli/internal/tickets"
)

// qrPanel is the open ticket panel for one booking, the modal of the
// old web client. While it is open the poller watches the booking.
type qrPanel struct {
	open      bool
	bookingID int64
	eventName string
	codes     []string
	index     int
	rendered  string
	exportMsg string
}

// myBookingsModel lists the user's bookings and hosts the QR panel and
// the scan notification banner.
type myBookingsModel struct {
	deps Deps

	bookings []models.Booking
	cursor   int
	loading  bool
	message  string

	panel qrPanel

	confirmDeleteID int64

	banner    *tickets.Notification
	bannerSeq int
	msgSeq    int
}

func newMyBookingsModel(deps Deps) myBookingsModel {
	return myBookingsModel{deps: deps}
}

func (m myBookingsModel) load() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		bookings, err := deps.Tickets.Bookings(context.Background())
		return bookingsLoadedMsg{bookings: bookings, err: err}
	}
}

func (m myBookingsModel) generate(b models.Booking) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		codes, err := deps.Tickets.GenerateQR(context.Background(), b)
		return qrCodesMsg{bookingID: b.ID, codes: codes, generated: true, err: err}
	}
}

func (m myBookingsModel) viewCodes(b models.Booking) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		codes, err := deps.Tickets.ViewQR(context.Background(), b)
		return qrCodesMsg{bookingID: b.ID, codes: codes, err: err}
	}
}

func (m myBookingsModel) remove(id int64) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		err := deps.API.DeleteBooking(context.Background(), id)
		return bookingDeletedMsg{bookingID: id, err: err}
	}
}

// notify shows the scan banner and refreshes the list so ticket
// counters catch up with the backend.
func (m myBookingsModel) notify(n tickets.Notification) (myBookingsModel, tea.Cmd) {
	m.banner = &n
	m.bannerSeq++
	seq := m.bannerSeq
	return m, tea.Batch(
		m.load(),
		tick(m.deps.Config.Poll.NotifyDismiss, notifyDismissMsg{seq: seq}),
	)
}

// closePanel tears the QR panel down and stops the watch on its
// booking. Safe to call when no panel is open.
func (m *myBookingsModel) closePanel() {
	if !m.panel.open {
		return
	}
	m.deps.Poller.Stop(m.panel.bookingID)
	m.panel = qrPanel{}
}

func (m *myBookingsModel) openPanel(bookingID int64, codes []string) {
	m.closePanel()
	eventName := ""
	for _, b := range m.bookings {
		if b.ID == bookingID {
			eventName = b.Event.Name
		}
	}
	m.panel = qrPanel{open: true, bookingID: bookingID, eventName: eventName, codes: codes}
	m.renderCurrent()
	m.deps.Poller.Start(bookingID)
}

func (m *myBookingsModel) renderCurrent() {
	if !m.panel.open || m.panel.index >= len(m.panel.codes) {
		m.panel.rendered = ""
		return
	}
	rendered, err := tickets.RenderTerminal(m.panel.codes[m.panel.index])
	if err != nil {
		m.panel.rendered = errorStyle.Render("Could not render this QR code.")
		return
	}
	m.panel.rendered = rendered
}

// flash shows an inline message that clears itself.
func (m *myBookingsModel) flash(text string) tea.Cmd {
	m.message = text
	m.msgSeq++
	return tick(flashDuration, flashClearMsg{owner: viewMyBookings, seq: m.msgSeq})
}

func ticketErrMessage(err error) string {
	if errors.Is(err, tickets.ErrAlreadyGenerated) || errors.Is(err, tickets.ErrAllUsed) {
		return err.Error()
	}
	return api.UserMessage(err)
}

func (m myBookingsModel) update(msg tea.Msg) (myBookingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookingsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.message = api.UserMessage(msg.err)
			return m, nil
		}
		m.bookings = msg.bookings
		if m.cursor >= len(m.bookings) {
			m.cursor = 0
		}
		m.message = ""
		return m, nil

	case qrCodesMsg:
		if msg.err != nil {
			return m, m.flash(ticketErrMessage(msg.err))
		}
		m.message = ""
		m.openPanel(msg.bookingID, msg.codes)
		if msg.generated {
			// The list still shows the pre-generation flags.
			return m, m.load()
		}
		return m, nil

	case bookingDeletedMsg:
		m.confirmDeleteID = 0
		if msg.err != nil {
			return m, m.flash(api.UserMessage(msg.err))
		}
		if m.panel.open && m.panel.bookingID == msg.bookingID {
			m.closePanel()
		}
		m.message = ""
		return m, m.load()

	case notifyDismissMsg:
		if msg.seq == m.bannerSeq {
			m.banner = nil
		}
		return m, nil

	case flashClearMsg:
		if msg.owner == viewMyBookings && msg.seq == m.msgSeq {
			m.message = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.panel.open {
			return m.updatePanel(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m myBookingsModel) updateList(msg tea.KeyMsg) (myBookingsModel, tea.Cmd) {
	key := msg.String()

	if m.confirmDeleteID != 0 {
		switch key {
		case "y":
			return m, m.remove(m.confirmDeleteID)
		default:
			m.confirmDeleteID = 0
			return m, nil
		}
	}

	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.bookings)-1 {
			m.cursor++
		}
	case "g":
		if m.cursor < len(m.bookings) {
			return m, m.generate(m.bookings[m.cursor])
		}
	case "v", "enter":
		if m.cursor < len(m.bookings) {
			return m, m.viewCodes(m.bookings[m.cursor])
		}
	case "d":
		if m.cursor < len(m.bookings) {
			b := m.bookings[m.cursor]
			if !b.Cancellable() {
				return m, m.flash("Bookings with issued QR codes cannot be cancelled.")
			}
			m.confirmDeleteID = b.ID
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "esc":
		return m, navigate(viewEvents)
	case "q":
		m.deps.Sessions.Clear()
	}
	return m, nil
}

func (m myBookingsModel) updatePanel(msg tea.KeyMsg) (myBookingsModel, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		if m.panel.index > 0 {
			m.panel.index--
			m.panel.exportMsg = ""
			m.renderCurrent()
		}
	case "right", "l":
		if m.panel.index < len(m.panel.codes)-1 {
			m.panel.index++
			m.panel.exportMsg = ""
			m.renderCurrent()
		}
	case "e":
		paths, err := tickets.ExportPNG(fmt.Sprintf("tickets-%d", m.panel.bookingID), m.panel.codes)
		if err != nil {
			m.panel.exportMsg = errorStyle.Render("Export failed: " + err.Error())
		} else {
			m.panel.exportMsg = successStyle.Render(fmt.Sprintf("Saved %d PNG files", len(paths)))
		}
	case "esc", "x":
		m.closePanel()
	}
	return m, nil
}

func (m myBookingsModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My Bookings"))
	b.WriteString("\n")

	if m.banner != nil {
		n := m.banner
		text := fmt.Sprintf("🎟  %s: %d of %d tickets scanned", n.EventName, n.ScannedTickets, n.TotalTickets)
		if n.AllScanned {
			text = fmt.Sprintf("🎟  %s: all tickets scanned, enjoy!", n.EventName)
		}
		b.WriteString("\n" + bannerStyle.Render(text) + "\n")
	}
	b.WriteString("\n")

	if m.panel.open {
		b.WriteString(m.viewPanel())
		return b.String()
	}

	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("Loading bookings..."))
	case m.message != "":
		b.WriteString(errorStyle.Render(m.message))
	case len(m.bookings) == 0:
		b.WriteString(dimStyle.Render("No bookings yet. Book an event first!"))
	default:
		for i, bk := range m.bookings {
			status := "confirmed"
			switch {
			case bk.FullyScanned():
				status = "all tickets used"
			case bk.QRGenerated:
				status = fmt.Sprintf("QR issued · %d/%d used", bk.TicketsUsed, bk.TotalTickets)
			}
			line := fmt.Sprintf("#%-4d %-28s %-10s %2d tickets  %s", bk.ID, bk.Event.Name, bk.Event.Date, bk.TotalTickets, dimStyle.Render(status))
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if m.confirmDeleteID != 0 {
			b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Cancel booking #%d? (y/N)", m.confirmDeleteID)))
		}
	}

	b.WriteString("\n\n" + helpStyle.Render("g generate QR · v view QR · d cancel · r refresh · esc events · q logout"))
	return b.String()
}

func (m myBookingsModel) viewPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · ticket %d of %d", m.panel.eventName, m.panel.index+1, len(m.panel.codes))))
	b.WriteString("\n\n")
	b.WriteString(m.panel.rendered)
	if m.panel.exportMsg != "" {
		b.WriteString("\n" + m.panel.exportMsg)
	}
	if m.message != "" {
		b.WriteString("\n" + errorStyle.Render(m.message))
	}
	b.WriteString("\n" + helpStyle.Render("←/→ switch ticket · e export PNG · esc close"))
	return b.String()
}
