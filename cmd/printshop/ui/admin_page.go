package ui

import (
	"errors"
	"fmt"
	"strings"

	"printshop/internal/collection"
	"printshop/internal/model"
	"printshop/internal/orders"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var listKeys = struct {
	Up, Down, Reload key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
}

var adminKeys = struct {
	Prev, Next, Update key.Binding
}{
	Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "choose status")),
	Next:   key.NewBinding(key.WithKeys("right", "l")),
	Update: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "update")),
}

// adminPage lists every order and lets the administrator move each one
// through the status lifecycle.
type adminPage struct {
	deps
	board   *orders.AdminBoard
	spinner spinner.Model
	cursor  int
	height  int
}

func newAdminPage(d deps) *adminPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = d.styles.Spinner
	return &adminPage{
		deps:    d,
		board:   orders.NewAdminBoard(d.backend, d.sess),
		spinner: sp,
		height:  20,
	}
}

func (p *adminPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.load())
}

func (p *adminPage) load() tea.Cmd {
	return run(p, "load", func() error { return p.board.Load(p.ctx) })
}

func (p *adminPage) current() (model.Order, bool) {
	list := p.board.Orders()
	if p.cursor < 0 || p.cursor >= len(list) {
		return model.Order{}, false
	}
	return list[p.cursor], true
}

// cycle moves the selected status of the current order by delta.
func (p *adminPage) cycle(delta int) {
	o, ok := p.current()
	if !ok || p.board.Updating(o.ID) {
		return
	}
	idx := 0
	cur := p.board.StatusFor(o.ID)
	for i, s := range model.OrderStatuses {
		if s == cur {
			idx = i
		}
	}
	n := len(model.OrderStatuses)
	next := model.OrderStatuses[((idx+delta)%n+n)%n]
	_ = p.board.SelectStatus(o.ID, next)
}

func (p *adminPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		if n := len(p.board.Orders()); p.cursor >= n {
			p.cursor = max(n-1, 0)
		}
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, listKeys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, listKeys.Down):
			if p.cursor < len(p.board.Orders())-1 {
				p.cursor++
			}
		case key.Matches(msg, adminKeys.Prev):
			p.cycle(-1)
		case key.Matches(msg, adminKeys.Next):
			p.cycle(1)
		case key.Matches(msg, adminKeys.Update):
			o, ok := p.current()
			if !ok {
				return nil
			}
			id := o.ID
			return run(p, "update", func() error {
				err := p.board.UpdateStatus(p.ctx, id, p.prompter)
				if errors.Is(err, collection.ErrCancelled) {
					return nil
				}
				return err
			})
		case key.Matches(msg, listKeys.Reload):
			return p.load()
		}
	}
	return nil
}

func (p *adminPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Welcome Admin, " + p.board.Name()))
	sb.WriteString("\n")
	if p.board.Loading() {
		sb.WriteString(p.spinner.View() + " Loading orders...\n")
	}
	if msg := p.board.Message(); msg != "" {
		sb.WriteString(p.styles.Error.Render(msg) + "\n")
	}

	list := p.board.Orders()
	if len(list) == 0 && !p.board.Loading() {
		sb.WriteString(p.styles.Subtitle.Render("No orders found.") + "\n")
	}
	for i, o := range list {
		marker := "  "
		if i == p.cursor {
			marker = p.styles.Price.Render("> ")
		}
		line := fmt.Sprintf("%s%s  %s  %s",
			marker,
			p.styles.Bold.Render(o.DisplayName()),
			p.styles.Muted.Render(o.User.DisplayName()+" <"+o.User.DisplayEmail()+">"),
			p.styles.StatusBadge(string(o.Status), orders.Badge(o.Status)),
		)
		if sel := p.board.StatusFor(o.ID); sel != o.Status {
			line += "  -> " + p.styles.StatusBadge(string(sel), orders.Badge(sel))
		}
		if p.board.Updating(o.ID) {
			line += "  " + p.styles.Muted.Render("Updating...")
		}
		sb.WriteString(line + "\n")
		if msg := p.board.RecordMessage(o.ID); msg != "" {
			sb.WriteString("    " + p.styles.Error.Render(msg) + "\n")
		}
	}
	return p.styles.Content.Render(sb.String())
}

func (p *adminPage) SetSize(width, height int) { p.height = height }
func (p *adminPage) Editing() bool             { return false }
func (p *adminPage) Close()                    { p.board.Close() }

func (p *adminPage) Help() []key.Binding {
	return []key.Binding{listKeys.Up, listKeys.Down, adminKeys.Prev, adminKeys.Update, listKeys.Reload}
}
