package ui

import (
	"strings"

	"printshop/internal/model"
	"printshop/internal/orders"
	"printshop/internal/upload"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

var ordersKeys = struct {
	Upload, Retry, Reset, Reload, Cancel key.Binding
}{
	Upload: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
	Retry:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "retry order")),
	Reset:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear form")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

// ordersPage is the user dashboard: the upload form and the order list.
type ordersPage struct {
	deps
	dash     *orders.Dashboard
	path     textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	formErr  string
}

func newOrdersPage(d deps) *ordersPage {
	ti := textinput.New()
	ti.Prompt = "File: "
	ti.Placeholder = "path/to/document.pdf"
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = d.styles.Spinner

	return &ordersPage{
		deps:     d,
		dash:     orders.NewDashboard(d.backend, d.sess, upload.VariantAnalyze),
		path:     ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		width:    80,
	}
}

func (p *ordersPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.load())
}

func (p *ordersPage) load() tea.Cmd {
	return run(p, "load", func() error { return p.dash.Load(p.ctx) })
}

func (p *ordersPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		p.refresh()
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if p.path.Focused() {
			return p.updateForm(msg)
		}
		flow := p.dash.Upload()
		switch {
		case key.Matches(msg, ordersKeys.Upload):
			if flow.Busy() {
				return nil
			}
			p.formErr = ""
			return p.path.Focus()
		case key.Matches(msg, ordersKeys.Retry):
			if flow.Orphan() == nil {
				return nil
			}
			cmd := run(p, "retry", func() error {
				_, err := flow.RetryCreate(p.ctx)
				return err
			})
			p.refresh()
			return cmd
		case key.Matches(msg, ordersKeys.Reset):
			if err := flow.Reset(); err == nil {
				p.path.SetValue("")
				p.formErr = ""
				p.refresh()
			}
			return nil
		case key.Matches(msg, ordersKeys.Reload):
			return p.load()
		}
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

func (p *ordersPage) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.path.Blur()
		return nil
	case "enter":
		p.path.Blur()
		return p.startUpload(strings.TrimSpace(p.path.Value()))
	}
	var cmd tea.Cmd
	p.path, cmd = p.path.Update(msg)
	return cmd
}

func (p *ordersPage) startUpload(path string) tea.Cmd {
	flow := p.dash.Upload()
	p.formErr = ""
	var a model.Artifact
	if path != "" {
		var err error
		if a, err = model.ArtifactFromFile(path); err != nil {
			p.formErr = "Cannot read " + path + ": " + err.Error()
			return nil
		}
	}
	if err := flow.Select(a); err != nil {
		p.refresh()
		return nil
	}
	cmd := run(p, "upload", func() error {
		_, err := flow.Submit(p.ctx)
		return err
	})
	p.refresh()
	return cmd
}

// refresh rebuilds the scrollable content from the controllers.
func (p *ordersPage) refresh() {
	var sb strings.Builder
	if res, ok := p.dash.Upload().Result(); ok && res.Analysis != nil {
		sb.WriteString(RenderAnalysis(res.Analysis, p.styles.Theme, p.width-4))
		sb.WriteString("\n")
	}
	if msg := p.dash.Message(); msg != "" {
		sb.WriteString(p.styles.Error.Render(msg) + "\n")
	}
	t := NewSimpleTable("Your Print Orders", "File", "Status", "Ordered")
	t.Empty = "No orders yet. Press u to upload a document."
	for _, o := range p.dash.Orders() {
		created := ""
		if !o.CreatedAt.IsZero() {
			created = o.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		t.AddRow(o.DisplayName(), p.styles.StatusBadge(string(o.Status), orders.Badge(o.Status)), created)
	}
	sb.WriteString(t.View(p.styles))
	p.viewport.SetContent(sb.String())
}

func (p *ordersPage) View() string {
	flow := p.dash.Upload()
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Welcome, " + p.dash.Name()))
	sb.WriteString("\n")
	sb.WriteString(p.styles.Bold.Render("Upload a PDF for printing and AI feedback") + "\n")
	sb.WriteString(p.path.View() + "\n")

	switch flow.State() {
	case upload.StateUploading:
		sb.WriteString(p.spinner.View() + " Uploading...\n")
	case upload.StateCreating:
		sb.WriteString(p.spinner.View() + " Creating order...\n")
	case upload.StateDone:
		sb.WriteString(p.styles.Success.Render("Order placed.") + "\n")
	}
	if msg := flow.Message(); msg != "" {
		sb.WriteString(p.styles.Error.Render(msg) + "\n")
	}
	if flow.Orphan() != nil {
		sb.WriteString(p.styles.Warning.Render("Press c to retry creating the order.") + "\n")
	}
	if p.formErr != "" {
		sb.WriteString(p.styles.Error.Render(p.formErr) + "\n")
	}
	if p.dash.Loading() {
		sb.WriteString(p.spinner.View() + " Loading orders...\n")
	}
	sb.WriteString(p.styles.RenderDivider(p.width-4) + "\n")
	sb.WriteString(p.viewport.View())
	return p.styles.Content.Render(sb.String())
}

func (p *ordersPage) SetSize(width, height int) {
	p.width = width
	p.path.Width = max(width-20, 10)
	p.viewport.Width = max(width-4, 10)
	p.viewport.Height = max(height-10, 3)
	p.refresh()
}

func (p *ordersPage) Editing() bool { return p.path.Focused() }

func (p *ordersPage) Help() []key.Binding {
	if p.path.Focused() {
		return []key.Binding{formKeys.Submit, ordersKeys.Cancel}
	}
	return []key.Binding{ordersKeys.Upload, ordersKeys.Retry, ordersKeys.Reset, ordersKeys.Reload}
}

func (p *ordersPage) Close() { p.dash.Close() }
