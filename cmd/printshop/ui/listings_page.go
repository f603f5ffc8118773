package ui

import (
	"errors"
	"fmt"
	"strings"

	"printshop/internal/auth"
	"printshop/internal/collection"
	"printshop/internal/market"
	"printshop/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var listingsKeys = struct {
	Delete, Market key.Binding
}{
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Market: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "marketplace")),
}

// listingsPage shows the user's own items and the interests they received.
type listingsPage struct {
	deps
	listings *market.Listings
	spinner  spinner.Model
	cursor   int
	notice   string
}

func newListingsPage(d deps) *listingsPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = d.styles.Spinner
	return &listingsPage{
		deps:     d,
		listings: market.NewListings(d.backend),
		spinner:  sp,
	}
}

func (p *listingsPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.load())
}

func (p *listingsPage) load() tea.Cmd {
	return run(p, "load", func() error { return p.listings.Load(p.ctx) })
}

func (p *listingsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.op == "delete" && msg.err == nil && msg.value == true {
			p.notice = "Item deleted successfully!"
		}
		if n := len(p.listings.Items()); p.cursor >= n {
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
			if p.cursor < len(p.listings.Items())-1 {
				p.cursor++
			}
		case key.Matches(msg, listKeys.Reload):
			return p.load()
		case key.Matches(msg, listingsKeys.Market):
			return navigate(auth.RouteMarketplace)
		case key.Matches(msg, listingsKeys.Delete):
			list := p.listings.Items()
			if p.cursor >= len(list) {
				return nil
			}
			id := list[p.cursor].ID
			p.notice = ""
			return runValue(p, "delete", func() (bool, error) {
				err := p.listings.Delete(p.ctx, id, p.prompter)
				if errors.Is(err, collection.ErrCancelled) {
					return false, nil
				}
				return err == nil, err
			})
		}
	}
	return nil
}

func (p *listingsPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("My Listings"))
	sb.WriteString("\n")
	if p.listings.Loading() {
		sb.WriteString(p.spinner.View() + " Loading your listings...\n")
	}
	if msg := p.listings.Message(); msg != "" {
		sb.WriteString(p.styles.Error.Render(msg) + "\n")
	}
	if p.notice != "" {
		sb.WriteString(p.styles.Success.Render(p.notice) + "\n")
	}

	list := p.listings.Items()
	if len(list) == 0 && !p.listings.Loading() {
		sb.WriteString(p.styles.Subtitle.Render("You have not listed any items yet.") + "\n")
	}
	for i, it := range list {
		marker := "  "
		if i == p.cursor {
			marker = p.styles.Price.Render("> ")
		}
		fmt.Fprintf(&sb, "%s%s  %s\n", marker, p.styles.Bold.Render(it.Title), p.styles.Price.Render(model.Money(it.Price)))
		if p.listings.Deleting(it.ID) {
			sb.WriteString("    " + p.styles.Muted.Render("Deleting...") + "\n")
		}
		if msg := p.listings.RecordMessage(it.ID); msg != "" {
			sb.WriteString("    " + p.styles.Error.Render(msg) + "\n")
		}
		if len(it.Interests) == 0 {
			sb.WriteString("    " + p.styles.Muted.Render("No interest yet.") + "\n")
			continue
		}
		for _, in := range it.Interests {
			fmt.Fprintf(&sb, "    %s  %s  %s\n",
				in.User.DisplayName(),
				p.styles.Muted.Render(in.Contact),
				p.styles.Price.Render(model.Money(in.BidAmount)))
		}
	}
	return p.styles.Content.Render(sb.String())
}

func (p *listingsPage) SetSize(width, height int) {}
func (p *listingsPage) Editing() bool             { return false }
func (p *listingsPage) Close()                    { p.listings.Close() }

func (p *listingsPage) Help() []key.Binding {
	return []key.Binding{listKeys.Up, listKeys.Down, listingsKeys.Delete, listingsKeys.Market, listKeys.Reload}
}
