package ui

import (
	"strings"

	"printshop/internal/apperr"
	"printshop/internal/auth"
	"printshop/internal/model"
	"printshop/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type authMode int

const (
	authLoginUser authMode = iota
	authLoginAdmin
	authRegister
)

var formKeys = struct {
	Next, Prev, Submit key.Binding
}{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
}

// authPage is the login or registration form.
type authPage struct {
	deps
	mode    authMode
	inputs  []textinput.Model
	focus   int
	loading bool
	err     string
}

func newAuthPage(d deps, mode authMode) *authPage {
	labels := []string{"Email", "Password"}
	if mode == authRegister {
		labels = []string{"Name", "Email", "Password"}
	}
	p := &authPage{deps: d, mode: mode}
	for _, l := range labels {
		ti := textinput.New()
		ti.Placeholder = l
		ti.Prompt = l + ": "
		ti.CharLimit = 128
		if l == "Password" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		p.inputs = append(p.inputs, ti)
	}
	p.inputs[0].Focus()
	return p
}

func (p *authPage) Init() tea.Cmd { return textinput.Blink }

func (p *authPage) title() string {
	switch p.mode {
	case authLoginAdmin:
		return "Admin Login"
	case authRegister:
		return "Register"
	default:
		return "User Login"
	}
}

func (p *authPage) value(label string) string {
	for _, in := range p.inputs {
		if in.Placeholder == label {
			return in.Value()
		}
	}
	return ""
}

func (p *authPage) setFocus(i int) tea.Cmd {
	n := len(p.inputs)
	p.focus = (i%n + n) % n
	for j := range p.inputs {
		p.inputs[j].Blur()
	}
	return p.inputs[p.focus].Focus()
}

func (p *authPage) submit() tea.Cmd {
	p.loading = true
	p.err = ""
	creds := model.Credentials{Email: p.value("Email"), Password: p.value("Password")}
	switch p.mode {
	case authRegister:
		reg := model.Registration{Name: p.value("Name"), Email: creds.Email, Password: creds.Password}
		return runValue(p, "register", func() (auth.Route, error) {
			return p.flows.Register(p.ctx, reg)
		})
	case authLoginAdmin:
		return runValue(p, "login", func() (auth.Route, error) {
			return p.flows.Login(p.ctx, session.RoleAdmin, creds)
		})
	default:
		return runValue(p, "login", func() (auth.Route, error) {
			return p.flows.Login(p.ctx, session.RoleUser, creds)
		})
	}
}

func (p *authPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		p.loading = false
		if msg.err != nil {
			fallback := "Invalid credentials"
			switch p.mode {
			case authLoginAdmin:
				fallback = "Invalid admin credentials"
			case authRegister:
				fallback = "Error occurred"
			}
			p.err = apperr.UserMessage(msg.err, fallback)
			return nil
		}
		if r, ok := msg.value.(auth.Route); ok {
			return navigate(r)
		}
		return nil
	case tea.KeyMsg:
		if p.loading {
			return nil
		}
		switch {
		case key.Matches(msg, formKeys.Submit):
			if p.focus < len(p.inputs)-1 {
				return p.setFocus(p.focus + 1)
			}
			return p.submit()
		case key.Matches(msg, formKeys.Next):
			return p.setFocus(p.focus + 1)
		case key.Matches(msg, formKeys.Prev):
			return p.setFocus(p.focus - 1)
		}
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd
}

func (p *authPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render(p.title()))
	sb.WriteString("\n")
	for _, in := range p.inputs {
		sb.WriteString(in.View() + "\n")
	}
	sb.WriteString("\n")
	switch {
	case p.loading:
		sb.WriteString(p.styles.Muted.Render("Please wait...") + "\n")
	case p.err != "":
		sb.WriteString(p.styles.Error.Render(p.err) + "\n")
	}
	return p.styles.Content.Render(sb.String())
}

func (p *authPage) SetSize(width, height int) {
	w := width - 20
	if w < 10 {
		w = 10
	}
	for i := range p.inputs {
		p.inputs[i].Width = w
	}
}

func (p *authPage) Editing() bool { return false }
func (p *authPage) Close()        {}

func (p *authPage) Help() []key.Binding {
	return []key.Binding{formKeys.Next, formKeys.Prev, formKeys.Submit}
}
