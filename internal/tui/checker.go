package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/scan"
)

// checkerModel is the ticket-checker scanning screen. The text input
// stands in for a keyboard-wedge scanner: the device types the decoded
// QR payload and terminates it with enter.
type checkerModel struct {
	deps Deps

	input   textinput.Model
	message string
}

func newCheckerModel(deps Deps) checkerModel {
	input := textinput.New()
	input.Placeholder = "scan or paste a ticket code"
	input.CharLimit = 256
	input.Width = 48
	return checkerModel{deps: deps, input: input}
}

func (m checkerModel) update(msg tea.Msg) (checkerModel, tea.Cmd) {
	state := m.deps.Scan.State()

	// The workflow restarts scanning on its own after an error; pull
	// the input back in sync with it.
	if state == scan.StateScanning && !m.input.Focused() {
		m.input.Focus()
	}
	if state != scan.StateScanning && m.input.Focused() {
		m.input.Blur()
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "s":
		if state == scan.StateIdle && !m.input.Focused() {
			if err := m.deps.Scan.Start(); err != nil {
				m.message = err.Error()
				return m, nil
			}
			m.message = ""
			m.input.Focus()
			return m, textinput.Blink
		}
	case "x":
		// x with an empty input stops the scanner; once anything is
		// typed it is treated as part of a code.
		if state == scan.StateScanning && m.input.Value() == "" {
			if err := m.deps.Scan.Stop(); err == nil {
				m.input.Blur()
				m.message = ""
				return m, nil
			}
		}
	case "n":
		if (state == scan.StateSuccess || state == scan.StateError) && !m.input.Focused() {
			if err := m.deps.Scan.ScanNext(); err != nil {
				m.message = err.Error()
				return m, nil
			}
			m.input.Focus()
			return m, textinput.Blink
		}
	case "enter":
		if state == scan.StateScanning {
			payload := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if payload == "" {
				return m, nil
			}
			m.input.Blur()
			// Hand the payload to the decoder; the workflow validates
			// it off the UI loop and emits state changes.
			m.deps.ScanInput.Push(payload)
			return m, nil
		}
	case "esc":
		m.deps.Scan.Shutdown()
		m.input.Blur()
		m.input.SetValue("")
		m.message = ""
		return m, nil
	case "q":
		if !m.input.Focused() {
			m.deps.Sessions.Clear()
			return m, nil
		}
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m checkerModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Ticket Checker"))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Scanned today: %d", m.deps.Scan.ScannedToday())))
	b.WriteString("\n\n")

	switch m.deps.Scan.State() {
	case scan.StateIdle:
		b.WriteString("Scanner is off.\n")
		b.WriteString(helpStyle.Render("press s to start scanning"))
	case scan.StateScanning:
		b.WriteString(headerStyle.Render("Scanning..."))
		b.WriteString("\n\n" + m.input.View() + "\n")
		b.WriteString(helpStyle.Render("enter submit code · x (empty input) stop"))
	case scan.StateValidating:
		b.WriteString(dimStyle.Render("Validating ticket..."))
	case scan.StateSuccess:
		b.WriteString(m.viewResult())
		b.WriteString("\n" + helpStyle.Render("n scan next"))
	case scan.StateError:
		b.WriteString(m.viewResult())
		b.WriteString("\n" + helpStyle.Render("n scan next (auto-resumes shortly)"))
	}

	if m.message != "" {
		b.WriteString("\n\n" + errorStyle.Render(m.message))
	}
	b.WriteString("\n\n" + helpStyle.Render("esc reset · q logout"))
	return b.String()
}

func (m checkerModel) viewResult() string {
	result := m.deps.Scan.Result()
	message := m.deps.Scan.Message()

	if result == nil || !result.OK() {
		text := "✗ " + message
		if text == "✗ " {
			text = "✗ Ticket rejected"
		}
		return errorStyle.Render(text)
	}

	var b strings.Builder
	b.WriteString(successStyle.Render("✓ " + result.Message))
	b.WriteString("\n\n")
	detail := fmt.Sprintf("Ticket   %s\nEvent    %s\nAttendee %s\nUsage    %d of %d",
		result.TicketNumber, result.EventName, result.AttendeeName,
		result.ScannedTickets, result.TotalTickets)
	b.WriteString(panelStyle.Render(detail))
	return b.String()
}
