package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/admin"
	"nebula-cli/internal/api"
	"nebula-cli/internal/booking"
	"nebula-cli/internal/config"
	"nebula-cli/internal/guard"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
	"nebula-cli/internal/scan"
	"nebula-cli/internal/session"
	"nebula-cli/internal/tickets"
)

// Deps is everything the views need, wired once in main.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	API           *api.Client
	Sessions      *session.Store
	Guard         *guard.Guard
	Booking       *booking.Workflow
	Tickets       *tickets.Service
	Poller        *tickets.Poller
	Notifications *tickets.Emitter
	Scan          *scan.Workflow
	ScanInput     *scan.PushDecoder
	Admin         *admin.Service
}

// App is the root bubbletea model: it owns navigation, applies the
// route guard and fans messages out to the active view.
type App struct {
	deps    Deps
	current view
	width   int
	height  int

	auth       authModel
	events     eventsModel
	booking    bookingModel
	myBookings myBookingsModel
	checker    checkerModel
	admin      adminModel

	sessionCleared <-chan struct{}
	notifications  <-chan tickets.Notification
	scanStates     <-chan scan.State
}

func NewApp(deps Deps) App {
	ctx := context.Background()
	app := App{
		deps:           deps,
		current:        viewAuth,
		auth:           newAuthModel(deps),
		events:         newEventsModel(deps),
		booking:        newBookingModel(deps),
		myBookings:     newMyBookingsModel(deps),
		checker:        newCheckerModel(deps),
		admin:          newAdminModel(deps),
		sessionCleared: deps.Sessions.Subscribe(ctx),
		notifications:  deps.Notifications.Subscribe(ctx),
		scanStates:     deps.Scan.Changes(),
	}

	// A restored session skips the login screen, same as the web
	// client rehydrating from local storage.
	if s := deps.Sessions.Current(); s.Authenticated() {
		app.current = roleHome(s.User.Role)
	}
	return app
}

func roleHome(role models.Role) view {
	switch guard.HomeView(role) {
	case "admin":
		return viewAdmin
	case "checker":
		return viewChecker
	default:
		return viewEvents
	}
}

// requiredRoles is the role set each view demands, the terminal
// counterpart of the old ProtectedRoute props.
func requiredRoles(target view) []models.Role {
	switch target {
	case viewEvents, viewBooking, viewMyBookings:
		return []models.Role{models.RoleUser}
	case viewChecker:
		return []models.Role{models.RoleTicketChecker}
	case viewAdmin:
		return []models.Role{models.RoleAdmin}
	}
	return nil
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.waitSessionCleared(),
		a.waitNotification(),
		a.waitScanState(),
	}
	if cmd := a.enterView(a.current); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a App) waitSessionCleared() tea.Cmd {
	return func() tea.Msg {
		<-a.sessionCleared
		return sessionClearedMsg{}
	}
}

func (a App) waitNotification() tea.Cmd {
	return func() tea.Msg {
		return scanNotificationMsg{notification: <-a.notifications}
	}
}

func (a App) waitScanState() tea.Cmd {
	return func() tea.Msg {
		return scanStateMsg{state: <-a.scanStates}
	}
}

// enterView is each view's on-mount hook: kick off its initial load.
func (a *App) enterView(target view) tea.Cmd {
	switch target {
	case viewEvents:
		return a.events.load(1)
	case viewMyBookings:
		return a.myBookings.load()
	case viewAdmin:
		return a.admin.load(a.admin.tab)
	}
	return nil
}

// leaveView is the unmount hook: release timers and capture handles
// so nothing keeps running behind a view that is gone.
func (a *App) leaveView(old view) {
	switch old {
	case viewMyBookings:
		a.deps.Poller.StopAll()
		a.myBookings.closePanel()
	case viewChecker:
		a.deps.Scan.Shutdown()
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.deps.Poller.StopAll()
			a.deps.Scan.Shutdown()
			return a, tea.Quit
		}

	case navigateMsg:
		if msg.target != viewAuth && !a.deps.Guard.Admit(requiredRoles(msg.target)...) {
			// Denied: back to the entry view.
			a.leaveView(a.current)
			a.current = viewAuth
			a.auth = newAuthModel(a.deps)
			return a, nil
		}
		a.leaveView(a.current)
		a.current = msg.target
		if msg.target == viewBooking {
			var cmd tea.Cmd
			a.booking, cmd = a.booking.open(msg.eventID)
			return a, cmd
		}
		return a, a.enterView(msg.target)

	case sessionClearedMsg:
		// Rejected credential or logout: every workflow stops and the
		// app lands on the entry view.
		a.leaveView(a.current)
		a.current = viewAuth
		a.auth = newAuthModel(a.deps)
		return a, a.waitSessionCleared()

	case scanNotificationMsg:
		var cmd tea.Cmd
		a.myBookings, cmd = a.myBookings.notify(msg.notification)
		return a, tea.Batch(a.waitNotification(), cmd)

	case scanStateMsg:
		// The checker view reads the workflow state directly; the
		// message only exists to trigger a render and re-arm the
		// listener.
		return a, a.waitScanState()
	}

	return a.dispatch(msg)
}

func (a App) dispatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.current {
	case viewAuth:
		a.auth, cmd = a.auth.update(msg)
	case viewEvents:
		a.events, cmd = a.events.update(msg)
	case viewBooking:
		a.booking, cmd = a.booking.update(msg)
	case viewMyBookings:
		a.myBookings, cmd = a.myBookings.update(msg)
	case viewChecker:
		a.checker, cmd = a.checker.update(msg)
	case viewAdmin:
		a.admin, cmd = a.admin.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	switch a.current {
	case viewAuth:
		return a.auth.view()
	case viewEvents:
		return a.events.view()
	case viewBooking:
		return a.booking.view()
	case viewMyBookings:
		return a.myBookings.view()
	case viewChecker:
		return a.checker.view()
	case viewAdmin:
		return a.admin.view()
	}
	// Unreachable view state: show something recoverable instead of a
	// blank screen.
	return errorStyle.Render("Something went wrong.") + "\n" + helpStyle.Render("press q to go back")
}
