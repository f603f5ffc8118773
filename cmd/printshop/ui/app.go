package ui

import (
	"context"
	"strings"

	"printshop/internal/auth"
	"printshop/internal/logging"
	"printshop/internal/market"
	"printshop/internal/orders"
	"printshop/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Backend is the remote surface used by every page. *api.Client satisfies it.
type Backend interface {
	auth.Service
	orders.DashboardService
	orders.AdminService
	market.BoardService
	market.ListingsService
}

// SessionStore reads the identity and lets the auth flows write it.
// *session.Session satisfies it.
type SessionStore interface {
	session.Reader
	auth.SessionWriter
}

// page is one routed screen. Pages re-render from their controllers.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	// Editing reports whether a text input has focus, so global keys
	// like esc and q are left to the page.
	Editing() bool
	Help() []key.Binding
	Close()
}

// deps is what pages share.
type deps struct {
	ctx      context.Context
	backend  Backend
	sess     SessionStore
	flows    *auth.Flows
	styles   Styles
	prompter *Prompter
}

// navigateMsg switches the App to another route.
type navigateMsg struct{ route auth.Route }

func navigate(r auth.Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: r} }
}

// doneMsg reports a finished background operation of owner.
type doneMsg struct {
	owner page
	op    string
	value any
	err   error
}

func run(owner page, op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{owner: owner, op: op, err: fn()}
	}
}

func runValue[T any](owner page, op string, fn func() (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fn()
		return doneMsg{owner: owner, op: op, value: v, err: err}
	}
}

type appKeys struct {
	Quit key.Binding
	Home key.Binding
}

var globalKeys = appKeys{
	Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Home: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "home")),
}

// App is the root model. It owns the current page and the confirmation modal.
type App struct {
	deps
	cancel context.CancelFunc

	route  auth.Route
	page   page
	modal  *ConfirmModal
	help   help.Model
	width  int
	height int
}

// NewApp creates the interactive interface starting at the home page.
func NewApp(ctx context.Context, backend Backend, sess SessionStore, styles Styles) *App {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		deps: deps{
			ctx:      ctx,
			backend:  backend,
			sess:     sess,
			flows:    auth.New(backend, sess),
			styles:   styles,
			prompter: NewPrompter(),
		},
		cancel: cancel,
		help:   help.New(),
		width:  80,
		height: 24,
	}
	a.route = auth.RouteHome
	a.page = a.newPage(a.route)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.prompter.Wait(), a.page.Init())
}

// Route returns the current destination.
func (a *App) Route() auth.Route { return a.route }

// Modal returns the open confirmation dialog, or nil.
func (a *App) Modal() *ConfirmModal { return a.modal }

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.page.SetSize(a.width, a.bodyHeight())
		return a, nil

	case confirmRequestMsg:
		a.modal = newConfirmModal(msg, a.styles)
		return a, a.prompter.Wait()

	case navigateMsg:
		return a, a.navigate(msg.route)

	case doneMsg:
		if msg.owner != a.page {
			// Late result of a page that was already left.
			return a, nil
		}
		return a, a.page.Update(msg)

	case tea.KeyMsg:
		if key.Matches(msg, globalKeys.Quit) {
			a.Close()
			return a, tea.Quit
		}
		if a.modal != nil {
			if a.modal.Update(msg) {
				a.modal = nil
			}
			return a, nil
		}
		if !a.page.Editing() && a.route != auth.RouteHome && key.Matches(msg, globalKeys.Home) {
			return a, a.navigate(auth.RouteHome)
		}
	}
	return a, a.page.Update(msg)
}

// navigate closes the current page and opens the one for r, redirecting to
// a login page when the route needs an identity the session lacks.
func (a *App) navigate(r auth.Route) tea.Cmd {
	r = a.guard(r)
	logging.ViewDebug("navigate %s -> %s", a.route, r)
	if a.modal != nil {
		a.modal.reply <- false
		a.modal = nil
	}
	a.page.Close()
	a.route = r
	a.page = a.newPage(r)
	a.page.SetSize(a.width, a.bodyHeight())
	return a.page.Init()
}

func (a *App) guard(r auth.Route) auth.Route {
	id := a.sess.Current()
	switch r {
	case auth.RouteAdminDashboard:
		if id.IsZero() || id.Role != session.RoleAdmin {
			return auth.RouteAdminLogin
		}
	case auth.RouteUserDashboard, auth.RouteMarketplace, auth.RouteMyListings:
		if id.IsZero() {
			return auth.RouteUserLogin
		}
	}
	return r
}

func (a *App) newPage(r auth.Route) page {
	switch r {
	case auth.RouteUserLogin:
		return newAuthPage(a.deps, authLoginUser)
	case auth.RouteAdminLogin:
		return newAuthPage(a.deps, authLoginAdmin)
	case auth.RouteUserRegister:
		return newAuthPage(a.deps, authRegister)
	case auth.RouteUserDashboard:
		return newOrdersPage(a.deps)
	case auth.RouteAdminDashboard:
		return newAdminPage(a.deps)
	case auth.RouteMarketplace:
		return newMarketPage(a.deps)
	case auth.RouteMyListings:
		return newListingsPage(a.deps)
	default:
		return newHomePage(a.deps)
	}
}

func (a *App) bodyHeight() int {
	// header and footer lines
	h := a.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Close stops background work and closes the current page.
func (a *App) Close() {
	a.prompter.Close()
	a.page.Close()
	a.cancel()
}

// View implements tea.Model.
func (a *App) View() string {
	header := a.styles.Header.Render("printshop") + " " + a.styles.Muted.Render(string(a.route))
	if id := a.sess.Current(); !id.IsZero() {
		header += "  " + a.styles.Info.Render(id.Name+" ("+string(id.Role)+")")
	}

	body := a.page.View()
	if a.modal != nil {
		body = lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center, a.modal.View())
	}

	bindings := append([]key.Binding{}, a.page.Help()...)
	if a.route != auth.RouteHome {
		bindings = append(bindings, globalKeys.Home)
	}
	bindings = append(bindings, globalKeys.Quit)
	footer := a.styles.Footer.Render(a.help.ShortHelpView(bindings))

	return strings.Join([]string{header, body, footer}, "\n")
}
