package ui

import (
	"fmt"
	"strings"

	"printshop/internal/apperr"
	"printshop/internal/auth"
	"printshop/internal/session"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type menuEntry struct {
	label string
	route auth.Route
}

// homePage is the landing menu. Its entries depend on the session.
type homePage struct {
	deps
	cursor int
	err    string
	width  int
}

var homeKeys = struct {
	Up, Down, Open key.Binding
}{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
}

func newHomePage(d deps) *homePage { return &homePage{deps: d} }

func (p *homePage) Init() tea.Cmd { return nil }

// logout is a pseudo route handled by the page itself.
const routeLogout auth.Route = "logout"

func (p *homePage) entries() []menuEntry {
	id := p.sess.Current()
	if id.IsZero() {
		return []menuEntry{
			{"User login", auth.RouteUserLogin},
			{"Register", auth.RouteUserRegister},
			{"Admin login", auth.RouteAdminLogin},
		}
	}
	entries := []menuEntry{{"My dashboard", auth.DashboardFor(id.Role)}}
	if id.Role == session.RoleUser {
		entries = append(entries,
			menuEntry{"Marketplace", auth.RouteMarketplace},
			menuEntry{"My listings", auth.RouteMyListings},
		)
	}
	return append(entries, menuEntry{"Logout", routeLogout})
}

func (p *homePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.err != nil {
			p.err = apperr.UserMessage(msg.err, "Logout failed")
			return nil
		}
		p.cursor = 0
		return nil
	case tea.KeyMsg:
		entries := p.entries()
		switch {
		case key.Matches(msg, homeKeys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, homeKeys.Down):
			if p.cursor < len(entries)-1 {
				p.cursor++
			}
		case key.Matches(msg, homeKeys.Open):
			if p.cursor >= len(entries) {
				p.cursor = 0
				return nil
			}
			e := entries[p.cursor]
			if e.route == routeLogout {
				return run(p, "logout", func() error {
					_, err := p.flows.Logout(p.ctx)
					return err
				})
			}
			return navigate(e.route)
		}
	}
	return nil
}

func (p *homePage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Print Shop & Student Marketplace"))
	sb.WriteString("\n")
	sb.WriteString(p.styles.Subtitle.Render("Upload documents for printing, or buy and sell calculators and books."))
	sb.WriteString("\n\n")
	for i, e := range p.entries() {
		line := fmt.Sprintf("  %s", e.label)
		if i == p.cursor {
			line = p.styles.Price.Render("> " + e.label)
		}
		sb.WriteString(line + "\n")
	}
	if p.err != "" {
		sb.WriteString("\n" + p.styles.Error.Render(p.err) + "\n")
	}
	return p.styles.Content.Render(sb.String())
}

func (p *homePage) SetSize(width, height int) { p.width = width }
func (p *homePage) Editing() bool             { return false }
func (p *homePage) Close()                    {}

func (p *homePage) Help() []key.Binding {
	return []key.Binding{homeKeys.Up, homeKeys.Down, homeKeys.Open}
}
