package ui

import (
	"errors"
	"fmt"
	"strings"

	"printshop/internal/apperr"
	"printshop/internal/auth"
	"printshop/internal/collection"
	"printshop/internal/market"
	"printshop/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var marketKeys = struct {
	Add, Interest, Delete, Listings, Cancel key.Binding
}{
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add item")),
	Interest: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "bid")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Listings: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my listings")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close form")),
}

type marketForm int

const (
	formNone marketForm = iota
	formAdd
	formInterest
)

// marketPage is the marketplace board with the add-item form and a
// per-item interest form.
type marketPage struct {
	deps
	board   *market.Board
	spinner spinner.Model
	cursor  int

	form     marketForm
	inputs   []textinput.Model
	focus    int
	formItem string
	formErr  string
	notice   string
}

func newMarketPage(d deps) *marketPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = d.styles.Spinner
	return &marketPage{
		deps:    d,
		board:   market.NewBoard(d.backend, d.sess),
		spinner: sp,
	}
}

func (p *marketPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.load())
}

func (p *marketPage) load() tea.Cmd {
	return run(p, "load", func() error { return p.board.Load(p.ctx) })
}

func (p *marketPage) current() (model.Item, bool) {
	list := p.board.Items()
	if p.cursor < 0 || p.cursor >= len(list) {
		return model.Item{}, false
	}
	return list[p.cursor], true
}

func newInput(label string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = label + ": "
	ti.Placeholder = label
	ti.CharLimit = 256
	return ti
}

func (p *marketPage) openForm(f marketForm, labels ...string) tea.Cmd {
	p.form = f
	p.formErr = ""
	p.notice = ""
	p.inputs = p.inputs[:0]
	for _, l := range labels {
		p.inputs = append(p.inputs, newInput(l))
	}
	p.focus = 0
	return p.inputs[0].Focus()
}

func (p *marketPage) closeForm() {
	p.form = formNone
	p.inputs = nil
	p.formItem = ""
}

func (p *marketPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		p.handleDone(msg)
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if p.form != formNone {
			return p.updateForm(msg)
		}
		switch {
		case key.Matches(msg, listKeys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, listKeys.Down):
			if p.cursor < len(p.board.Items())-1 {
				p.cursor++
			}
		case key.Matches(msg, listKeys.Reload):
			return p.load()
		case key.Matches(msg, marketKeys.Listings):
			return navigate(auth.RouteMyListings)
		case key.Matches(msg, marketKeys.Add):
			return p.openForm(formAdd, "Title", "Price", "Description")
		case key.Matches(msg, marketKeys.Interest):
			it, ok := p.current()
			if !ok {
				return nil
			}
			if p.board.IsOwner(it) {
				p.notice = "You own this item. Bidding disabled."
				return nil
			}
			cmd := p.openForm(formInterest, "Contact", "Bid")
			p.formItem = it.ID
			d := p.board.Draft(it.ID)
			p.inputs[0].SetValue(d.Contact)
			p.inputs[1].SetValue(d.BidAmount)
			return cmd
		case key.Matches(msg, marketKeys.Delete):
			it, ok := p.current()
			if !ok || !p.board.IsOwner(it) {
				return nil
			}
			id := it.ID
			p.notice = ""
			return runValue(p, "delete", func() (bool, error) {
				err := p.board.Delete(p.ctx, id, p.prompter)
				if errors.Is(err, collection.ErrCancelled) {
					return false, nil
				}
				return err == nil, err
			})
		}
	}
	return nil
}

func (p *marketPage) handleDone(msg doneMsg) {
	switch msg.op {
	case "add":
		if msg.err == nil {
			p.closeForm()
			p.notice = "Item listed."
		}
	case "interest":
		if msg.err == nil {
			p.notice = "Interest submitted successfully!"
		}
	case "delete":
		if msg.err == nil && msg.value == true {
			p.notice = "Item deleted successfully!"
		}
	}
	if n := len(p.board.Items()); p.cursor >= n {
		p.cursor = max(n-1, 0)
	}
}

func (p *marketPage) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, marketKeys.Cancel):
		p.closeForm()
		return nil
	case key.Matches(msg, formKeys.Submit):
		if p.focus < len(p.inputs)-1 {
			return p.setFocus(p.focus + 1)
		}
		return p.submitForm()
	case key.Matches(msg, formKeys.Next):
		return p.setFocus(p.focus + 1)
	case key.Matches(msg, formKeys.Prev):
		return p.setFocus(p.focus - 1)
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	if p.form == formInterest {
		p.board.SetContact(p.formItem, p.inputs[0].Value())
		p.board.SetBid(p.formItem, p.inputs[1].Value())
	}
	return cmd
}

func (p *marketPage) setFocus(i int) tea.Cmd {
	n := len(p.inputs)
	p.focus = (i%n + n) % n
	for j := range p.inputs {
		p.inputs[j].Blur()
	}
	return p.inputs[p.focus].Focus()
}

func (p *marketPage) submitForm() tea.Cmd {
	p.formErr = ""
	switch p.form {
	case formAdd:
		if p.board.Adding() {
			return nil
		}
		item, err := market.ParseNewItem(p.inputs[0].Value(), p.inputs[1].Value(), p.inputs[2].Value())
		if err != nil {
			p.formErr = apperr.UserMessage(err, "Failed to add item")
			return nil
		}
		return run(p, "add", func() error { return p.board.AddItem(p.ctx, item) })
	case formInterest:
		id := p.formItem
		p.closeForm()
		return run(p, "interest", func() error { return p.board.SubmitInterest(p.ctx, id) })
	}
	return nil
}

func (p *marketPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Student Marketplace"))
	sb.WriteString("\n")
	if p.board.Loading() {
		sb.WriteString(p.spinner.View() + " Loading items...\n")
	}
	if msg := p.board.Message(); msg != "" {
		sb.WriteString(p.styles.Error.Render(msg) + "\n")
	}
	if p.notice != "" {
		sb.WriteString(p.styles.Success.Render(p.notice) + "\n")
	}

	if p.form == formAdd {
		sb.WriteString(p.styles.Bold.Render("List a calculator or book") + "\n")
		for _, in := range p.inputs {
			sb.WriteString(in.View() + "\n")
		}
		if p.board.Adding() {
			sb.WriteString(p.spinner.View() + " Adding...\n")
		}
		if msg := p.formErr; msg != "" {
			sb.WriteString(p.styles.Error.Render(msg) + "\n")
		} else if msg := p.board.AddMessage(); msg != "" {
			sb.WriteString(p.styles.Error.Render(msg) + "\n")
		}
		sb.WriteString("\n")
	}

	list := p.board.Items()
	if len(list) == 0 && !p.board.Loading() {
		sb.WriteString(p.styles.Subtitle.Render("No items listed yet.") + "\n")
	}
	for i, it := range list {
		sb.WriteString(p.renderItem(i, it))
	}
	return p.styles.Content.Render(sb.String())
}

func (p *marketPage) renderItem(i int, it model.Item) string {
	var sb strings.Builder
	marker := "  "
	if i == p.cursor {
		marker = p.styles.Price.Render("> ")
	}
	fmt.Fprintf(&sb, "%s%s  %s  %s\n", marker,
		p.styles.Bold.Render(it.Title),
		p.styles.Price.Render(model.Money(it.Price)),
		p.styles.Muted.Render("by "+it.User.DisplayName()))
	if d := strings.TrimSpace(it.Description); d != "" {
		sb.WriteString("    " + p.styles.Body.Render(d) + "\n")
	}
	switch {
	case p.board.IsOwner(it):
		sb.WriteString("    " + p.styles.Muted.Render("You own this item. Bidding disabled.") + "\n")
	case p.form == formInterest && p.formItem == it.ID:
		for _, in := range p.inputs {
			sb.WriteString("    " + in.View() + "\n")
		}
	default:
		if d := p.board.Draft(it.ID); !d.IsZero() {
			sb.WriteString("    " + p.styles.Muted.Render(fmt.Sprintf("Draft: %s, bid %s", d.Contact, d.BidAmount)) + "\n")
		}
	}
	if p.board.Submitting(it.ID) {
		sb.WriteString("    " + p.styles.Muted.Render("Submitting...") + "\n")
	}
	if msg := p.board.RecordMessage(it.ID); msg != "" {
		sb.WriteString("    " + p.styles.Error.Render(msg) + "\n")
	}
	return sb.String()
}

func (p *marketPage) SetSize(width, height int) {}
func (p *marketPage) Editing() bool             { return p.form != formNone }
func (p *marketPage) Close()                    { p.board.Close() }

func (p *marketPage) Help() []key.Binding {
	if p.form != formNone {
		return []key.Binding{formKeys.Next, formKeys.Submit, marketKeys.Cancel}
	}
	return []key.Binding{listKeys.Up, listKeys.Down, marketKeys.Interest, marketKeys.Add, marketKeys.Delete, marketKeys.Listings, listKeys.Reload}
}
