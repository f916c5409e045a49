package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"nebula-cli/internal/admin"
	"nebula-cli/internal/api"
	"nebula-cli/internal/booking"
	"nebula-cli/internal/config"
	"nebula-cli/internal/guard"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/scan"
	"nebula-cli/internal/session"
	"nebula-cli/internal/tickets"
	"nebula-cli/internal/tui"
)

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Close()
	// The TUI owns the terminal; console output would corrupt it.
	log.SetQuiet(true)

	store := session.NewStore(cfg.Session.File, log)
	if err := store.Load(); err != nil {
		log.Warn("SESSION", fmt.Sprintf("Could not restore session: %v", err))
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, store, log)
	client.SetUnauthorizedHook(store.Clear)

	emitter := tickets.NewEmitter()
	scanInput := scan.NewPushDecoder()

	deps := tui.Deps{
		Config:        cfg,
		Logger:        log,
		API:           client,
		Sessions:      store,
		Guard:         guard.New(store),
		Booking:       booking.New(client, log),
		Tickets:       tickets.NewService(client, log),
		Poller:        tickets.NewPoller(client, emitter, log, cfg.Poll.Interval, cfg.Poll.MaxFailures),
		Notifications: emitter,
		Scan:          scan.NewWorkflow(client, scanInput, log, cfg.Scan.ResumeDelay),
		ScanInput:     scanInput,
		Admin:         admin.NewService(client, log),
	}

	program := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "nebula: %v\n", err)
		os.Exit(1)
	}
}
