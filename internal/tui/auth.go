package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"nebula-cli/internal/api"
	"nebula-cli/internal/models"
)

// authModel is the login/register screen.
type authModel struct {
	deps Deps

	registering bool
	name        textinput.Model
	email       textinput.Model
	password    textinput.Model
	role        models.Role
	focus       int
	submitting  bool
	message     string
	messageErr  bool
	seq         int
}

func newAuthModel(deps Deps) authModel {
	name := textinput.New()
	name.Placeholder = "Enter your name"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Enter your email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Enter your password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128

	return authModel{
		deps:     deps,
		name:     name,
		email:    email,
		password: password,
		role:     models.RoleUser,
	}
}

// fieldCount: login has email+password, register adds name+role.
func (m authModel) fieldCount() int {
	if m.registering {
		return 4
	}
	return 2
}

func (m *authModel) syncFocus() {
	m.name.Blur()
	m.email.Blur()
	m.password.Blur()
	if m.registering {
		switch m.focus {
		case 0:
			m.name.Focus()
		case 1:
			m.email.Focus()
		case 2:
			m.password.Focus()
		}
	} else {
		switch m.focus {
		case 0:
			m.email.Focus()
		case 1:
			m.password.Focus()
		}
	}
}

func (m authModel) submit() tea.Cmd {
	deps := m.deps
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if m.registering {
		name := strings.TrimSpace(m.name.Value())
		role := m.role
		return func() tea.Msg {
			if name == "" || email == "" || password == "" {
				return registerResultMsg{err: &api.ValidationError{Message: "all fields are required"}}
			}
			err := deps.API.Register(context.Background(), api.RegisterRequest{
				Name: name, Email: email, Password: password, Role: role,
			})
			return registerResultMsg{err: err}
		}
	}

	return func() tea.Msg {
		if email == "" || password == "" {
			return loginResultMsg{err: &api.ValidationError{Message: "email and password are required"}}
		}
		session, err := deps.API.Login(context.Background(), api.LoginRequest{Email: email, Password: password})
		return loginResultMsg{session: session, err: err}
	}
}

func (m authModel) update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % m.fieldCount()
			m.syncFocus()
			return m, nil
		case "shift+tab", "up":
			m.focus = (m.focus + m.fieldCount() - 1) % m.fieldCount()
			m.syncFocus()
			return m, nil
		case "enter":
			m.submitting = true
			m.message = ""
			return m, m.submit()
		case "ctrl+r":
			// Toggle between login and register forms.
			m.registering = !m.registering
			m.focus = 0
			m.message = ""
			m.syncFocus()
			return m, nil
		case "ctrl+t":
			if m.registering && m.focus == 3 {
				m.role = nextRole(m.role)
			}
			return m, nil
		}

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.message = api.UserMessage(msg.err)
			m.messageErr = true
			return m, nil
		}
		if err := m.deps.Sessions.Set(msg.session); err != nil {
			m.message = "Failed to store session locally"
			m.messageErr = true
			return m, nil
		}
		return m, navigate(roleHome(msg.session.User.Role))

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.message = api.UserMessage(msg.err)
			m.messageErr = true
			return m, nil
		}
		// Same as the web client: drop back to the login form.
		m.registering = false
		m.focus = 0
		m.syncFocus()
		m.message = "Registered! Please log in."
		m.messageErr = false
		return m, nil
	}

	var cmd tea.Cmd
	if m.registering {
		switch m.focus {
		case 0:
			m.name, cmd = m.name.Update(msg)
		case 1:
			m.email, cmd = m.email.Update(msg)
		case 2:
			m.password, cmd = m.password.Update(msg)
		}
	} else {
		switch m.focus {
		case 0:
			m.email, cmd = m.email.Update(msg)
		case 1:
			m.password, cmd = m.password.Update(msg)
		}
	}
	return m, cmd
}

func nextRole(role models.Role) models.Role {
	switch role {
	case models.RoleUser:
		return models.RoleAdmin
	case models.RoleAdmin:
		return models.RoleTicketChecker
	default:
		return models.RoleUser
	}
}

func (m authModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Nebula 🎫"))
	b.WriteString("\n\n")

	if m.registering {
		b.WriteString(headerStyle.Render("Register"))
		b.WriteString("\n\n")
		b.WriteString(m.name.View() + "\n")
		b.WriteString(m.email.View() + "\n")
		b.WriteString(m.password.View() + "\n")
		roleLine := fmt.Sprintf("Role: %s", m.role)
		if m.focus == 3 {
			roleLine = selectedStyle.Render("> " + roleLine + " (ctrl+t to change)")
		}
		b.WriteString(roleLine + "\n")
	} else {
		b.WriteString(headerStyle.Render("Login"))
		b.WriteString("\n\n")
		b.WriteString(m.email.View() + "\n")
		b.WriteString(m.password.View() + "\n")
	}

	if m.submitting {
		b.WriteString("\n" + dimStyle.Render("Signing in..."))
	}
	if m.message != "" {
		b.WriteString("\n")
		if m.messageErr {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(successStyle.Render(m.message))
		}
	}

	b.WriteString("\n" + helpStyle.Render("enter submit · tab next field · ctrl+r switch login/register · ctrl+c quit"))
	return b.String()
}
