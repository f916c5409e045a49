package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/admin"
	"nebula-cli/internal/api"
	"nebula-cli/internal/models"
)

var adminTabNames = []string{"Events", "Bookings", "Users", "Checkers", "New Event"}

// adminModel is the admin dashboard: list tabs plus the event form.
type adminModel struct {
	deps Deps

	tab      adminTab
	events   []models.Event
	bookings []models.Booking
	users    []models.User
	cursor   int
	loading  bool
	message  string
	isErr    bool
	msgSeq   int

	confirmDeleteID int64

	form      []textinput.Model
	formFocus int
	creating  bool
}

const (
	formName = iota
	formArtist
	formLocation
	formDate
	formTime
	formAmPm
	formImage
	formFields
)

func newAdminModel(deps Deps) adminModel {
	labels := [formFields]string{
		"Event name", "Artist", "Location", "Date (YYYY-MM-DD)", "Time (HH:MM)", "AM/PM", "Image path (optional)",
	}
	form := make([]textinput.Model, formFields)
	for i := range form {
		form[i] = textinput.New()
		form[i].Placeholder = labels[i]
		form[i].CharLimit = 128
		form[i].Width = 40
	}
	form[formName].Focus()
	return adminModel{deps: deps, form: form}
}

func (m adminModel) load(tab adminTab) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx := context.Background()
		switch tab {
		case tabEvents:
			events, err := deps.Admin.Events(ctx)
			return adminListMsg{tab: tab, events: events, err: err}
		case tabBookings:
			bookings, err := deps.Admin.Bookings(ctx)
			return adminListMsg{tab: tab, bookings: bookings, err: err}
		case tabUsers:
			users, err := deps.Admin.Users(ctx)
			return adminListMsg{tab: tab, users: users, err: err}
		case tabCheckers:
			users, err := deps.Admin.TicketCheckers(ctx)
			return adminListMsg{tab: tab, users: users, err: err}
		}
		return adminListMsg{tab: tab}
	}
}

func (m adminModel) submitForm() tea.Cmd {
	deps := m.deps
	input := admin.EventInput{
		Name:      strings.TrimSpace(m.form[formName].Value()),
		Artist:    strings.TrimSpace(m.form[formArtist].Value()),
		Location:  strings.TrimSpace(m.form[formLocation].Value()),
		Date:      strings.TrimSpace(m.form[formDate].Value()),
		Time:      strings.TrimSpace(m.form[formTime].Value()),
		AmPm:      strings.ToUpper(strings.TrimSpace(m.form[formAmPm].Value())),
		ImagePath: strings.TrimSpace(m.form[formImage].Value()),
	}
	return func() tea.Msg {
		event, err := deps.Admin.CreateEvent(context.Background(), input)
		return adminCreatedMsg{event: event, err: err}
	}
}

func (m adminModel) removeSelected() tea.Cmd {
	deps := m.deps
	tab := m.tab
	id := m.confirmDeleteID
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch tab {
		case tabEvents:
			err = deps.Admin.DeleteEvent(ctx, id)
		case tabBookings:
			err = deps.Admin.DeleteBooking(ctx, id)
		}
		return adminDeletedMsg{tab: tab, id: id, err: err}
	}
}

func (m *adminModel) switchTab(tab adminTab) tea.Cmd {
	m.tab = tab
	m.cursor = 0
	m.confirmDeleteID = 0
	m.message = ""
	if tab == tabCreate {
		m.syncFormFocus()
		return nil
	}
	m.loading = true
	return m.load(tab)
}

func (m *adminModel) syncFormFocus() {
	for i := range m.form {
		if i == m.formFocus {
			m.form[i].Focus()
		} else {
			m.form[i].Blur()
		}
	}
}

// flash shows an inline message that clears itself.
func (m *adminModel) flash(text string, isErr bool) tea.Cmd {
	m.message = text
	m.isErr = isErr
	m.msgSeq++
	return tick(flashDuration, flashClearMsg{owner: viewAdmin, seq: m.msgSeq})
}

func (m adminModel) listLen() int {
	switch m.tab {
	case tabEvents:
		return len(m.events)
	case tabBookings:
		return len(m.bookings)
	case tabUsers, tabCheckers:
		return len(m.users)
	}
	return 0
}

func (m adminModel) update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case adminListMsg:
		if msg.tab != m.tab {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.message = api.UserMessage(msg.err)
			m.isErr = true
			return m, nil
		}
		m.message = ""
		switch msg.tab {
		case tabEvents:
			m.events = msg.events
		case tabBookings:
			m.bookings = msg.bookings
		case tabUsers, tabCheckers:
			m.users = msg.users
		}
		if m.cursor >= m.listLen() {
			m.cursor = 0
		}
		return m, nil

	case adminDeletedMsg:
		m.confirmDeleteID = 0
		if msg.err != nil {
			return m, m.flash(api.UserMessage(msg.err), true)
		}
		m.message = ""
		m.loading = true
		return m, m.load(m.tab)

	case adminCreatedMsg:
		m.creating = false
		if msg.err != nil {
			return m, m.flash(api.UserMessage(msg.err), true)
		}
		for i := range m.form {
			m.form[i].SetValue("")
		}
		m.formFocus = formName
		m.syncFormFocus()
		return m, m.flash(fmt.Sprintf("Event %q created", msg.event.Name), false)

	case flashClearMsg:
		if msg.owner == viewAdmin && msg.seq == m.msgSeq {
			m.message = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.tab == tabCreate {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m adminModel) updateList(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	key := msg.String()

	if m.confirmDeleteID != 0 {
		if key == "y" {
			return m, m.removeSelected()
		}
		m.confirmDeleteID = 0
		return m, nil
	}

	switch key {
	case "tab":
		return m, m.switchTab((m.tab + 1) % adminTab(len(adminTabNames)))
	case "shift+tab":
		return m, m.switchTab((m.tab + adminTab(len(adminTabNames)) - 1) % adminTab(len(adminTabNames)))
	case "1", "2", "3", "4", "5":
		return m, m.switchTab(adminTab(key[0] - '1'))
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	case "d":
		if m.cursor >= m.listLen() {
			return m, nil
		}
		switch m.tab {
		case tabEvents:
			m.confirmDeleteID = m.events[m.cursor].ID
		case tabBookings:
			m.confirmDeleteID = m.bookings[m.cursor].ID
		}
	case "r":
		m.loading = true
		return m, m.load(m.tab)
	case "q":
		m.deps.Sessions.Clear()
	}
	return m, nil
}

func (m adminModel) updateForm(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		m.formFocus = (m.formFocus + 1) % formFields
		m.syncFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.formFocus = (m.formFocus + formFields - 1) % formFields
		m.syncFormFocus()
		return m, nil
	case "enter":
		m.creating = true
		m.message = ""
		return m, m.submitForm()
	case "esc":
		return m, m.switchTab(tabEvents)
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

func (m adminModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Admin Dashboard"))
	b.WriteString("\n\n")

	tabs := make([]string, len(adminTabNames))
	for i, name := range adminTabNames {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if adminTab(i) == m.tab {
			tabs[i] = selectedStyle.Render(label)
		} else {
			tabs[i] = dimStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, "|"))
	b.WriteString("\n\n")

	if m.tab == tabCreate {
		b.WriteString(m.viewForm())
		return b.String()
	}

	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("Loading..."))
	case m.message != "" && m.isErr:
		b.WriteString(errorStyle.Render(m.message))
	case m.listLen() == 0:
		b.WriteString(dimStyle.Render("Nothing here yet."))
	default:
		b.WriteString(m.viewRows())
	}

	if m.confirmDeleteID != 0 {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Delete #%d? (y/N)", m.confirmDeleteID)))
	}

	b.WriteString("\n\n" + helpStyle.Render("tab/1-5 switch · d delete · r refresh · q logout"))
	return b.String()
}

func (m adminModel) viewRows() string {
	var b strings.Builder
	write := func(i int, line string) {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	switch m.tab {
	case tabEvents:
		for i, ev := range m.events {
			write(i, fmt.Sprintf("#%-4d %-28s %-20s %s %s %s @ %s", ev.ID, ev.Name, ev.Artist, ev.Date, ev.Time, ev.AmPm, ev.Location))
		}
	case tabBookings:
		for i, bk := range m.bookings {
			owner := "?"
			if bk.User != nil {
				owner = bk.User.Email
			}
			write(i, fmt.Sprintf("#%-4d %-28s %-28s %2d tickets · %d used", bk.ID, bk.Event.Name, owner, bk.TotalTickets, bk.TicketsUsed))
		}
	case tabUsers, tabCheckers:
		for i, u := range m.users {
			write(i, fmt.Sprintf("#%-4d %-24s %-32s %s", u.ID, u.Name, u.Email, u.Role))
		}
	}
	return b.String()
}

func (m adminModel) viewForm() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Create Event"))
	b.WriteString("\n\n")
	for i := range m.form {
		b.WriteString(m.form[i].View() + "\n")
	}
	if m.creating {
		b.WriteString("\n" + dimStyle.Render("Creating..."))
	}
	if m.message != "" {
		b.WriteString("\n")
		if m.isErr {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(successStyle.Render(m.message))
		}
	}
	b.WriteString("\n" + helpStyle.Render("enter create · tab next field · esc back to events"))
	return b.String()
}
