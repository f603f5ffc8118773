package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"printshop/internal/auth"
	"printshop/internal/model"
	"printshop/internal/session"
	"printshop/internal/upload"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type statusCall struct {
	id     string
	status model.OrderStatus
}

type interestCall struct {
	id  string
	req model.InterestRequest
}

// fakeBackend records every call and serves canned data.
type fakeBackend struct {
	mu sync.Mutex

	login        model.LoginResult
	loginErr     error
	myOrders     []model.Order
	allOrders    []model.Order
	items        []model.Item
	mine         []model.Item
	listMine     int
	listAll      int
	listMarket   int
	statusCalls  []statusCall
	interests    []interestCall
	deletes      []string
	analyzeCalls int
	creates      []string
}

func (f *fakeBackend) Register(ctx context.Context, reg model.Registration) error { return nil }

func (f *fakeBackend) LoginUser(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	return f.login, f.loginErr
}

func (f *fakeBackend) LoginAdmin(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	return f.login, f.loginErr
}

func (f *fakeBackend) UploadAndAnalyze(ctx context.Context, a model.Artifact) (model.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzeCalls++
	return model.UploadResult{URL: "https://cdn/" + a.Name, Analysis: &model.Analysis{Summary: "Looks fine"}}, nil
}

func (f *fakeBackend) UploadFile(ctx context.Context, a model.Artifact) (string, error) {
	return "https://cdn/" + a.Name, nil
}

func (f *fakeBackend) CreateOrder(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, fileURL)
	return nil
}

func (f *fakeBackend) ListMyOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listMine++
	return append([]model.Order(nil), f.myOrders...), nil
}

func (f *fakeBackend) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listAll++
	return append([]model.Order(nil), f.allOrders...), nil
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{id, status})
	return nil
}

func (f *fakeBackend) ListMarketplace(ctx context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listMarket++
	return append([]model.Item(nil), f.items...), nil
}

func (f *fakeBackend) ListMyItems(ctx context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Item(nil), f.mine...), nil
}

func (f *fakeBackend) CreateItem(ctx context.Context, item model.NewItem) error { return nil }

func (f *fakeBackend) ExpressInterest(ctx context.Context, id string, req model.InterestRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interests = append(f.interests, interestCall{id, req})
	return nil
}

func (f *fakeBackend) DeleteItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return nil
}

func newTestApp(t *testing.T, backend *fakeBackend, id session.Identity) *App {
	t.Helper()
	ctx := context.Background()
	sess, err := session.New(ctx, session.NewMemoryStore())
	require.NoError(t, err)
	if !id.IsZero() {
		require.NoError(t, sess.Establish(ctx, id))
	}
	app := NewApp(ctx, backend, sess, NewStyles(LightTheme()))
	t.Cleanup(app.Close)
	return app
}

// settle runs cmd and feeds routing and completion messages back into the
// app until nothing is left. Timer and cursor messages are dropped.
func settle(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			settle(t, app, c)
		}
	case doneMsg, navigateMsg:
		_, next := app.Update(msg)
		settle(t, app, next)
	}
}

func goTo(t *testing.T, app *App, r auth.Route) {
	t.Helper()
	_, cmd := app.Update(navigateMsg{route: r})
	settle(t, app, cmd)
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(app *App, msg tea.KeyMsg) tea.Cmd {
	_, cmd := app.Update(msg)
	return cmd
}

// answer runs a confirming command in the background, answers the modal with
// reply and feeds the result back.
func answer(t *testing.T, app *App, cmd tea.Cmd, reply string) {
	t.Helper()
	require.NotNil(t, cmd)
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	select {
	case req := <-app.prompter.requests:
		app.Update(confirmRequestMsg(req))
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation requested")
	}
	require.NotNil(t, app.Modal())
	press(app, keyRunes(reply))
	assert.Nil(t, app.Modal())

	select {
	case msg := <-result:
		_, next := app.Update(msg)
		settle(t, app, next)
	case <-time.After(2 * time.Second):
		t.Fatal("command did not finish")
	}
}

var (
	alice = session.Identity{Token: "t1", Name: "Alice", Role: session.RoleUser, UserID: "u1"}
	admin = session.Identity{Token: "a1", Name: "Root", Role: session.RoleAdmin}
)

func TestApp_LoginLandsOnDashboard(t *testing.T) {
	backend := &fakeBackend{
		login:    model.LoginResult{Token: "t1", Name: "Alice"},
		myOrders: []model.Order{{ID: "o1", OriginalName: "notes.pdf", Status: model.StatusPending}},
	}
	app := newTestApp(t, backend, session.Identity{})

	goTo(t, app, auth.RouteUserLogin)
	require.Equal(t, auth.RouteUserLogin, app.Route())

	press(app, keyRunes("alice@example.com"))
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, keyRunes("secret"))
	settle(t, app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	assert.Equal(t, auth.RouteUserDashboard, app.Route())
	assert.Equal(t, "Alice", app.sess.Current().Name)
	assert.Equal(t, 1, backend.listMine)
	assert.Contains(t, app.View(), "Welcome, Alice")
}

func TestApp_LoginFailureStaysOnForm(t *testing.T) {
	backend := &fakeBackend{loginErr: errors.New("boom")}
	app := newTestApp(t, backend, session.Identity{})

	goTo(t, app, auth.RouteAdminLogin)
	press(app, keyRunes("root@example.com"))
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, keyRunes("nope"))
	settle(t, app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	assert.Equal(t, auth.RouteAdminLogin, app.Route())
	assert.True(t, app.sess.Current().IsZero())
	assert.Contains(t, app.View(), "Invalid admin credentials")
}

func TestApp_GuardsRoutes(t *testing.T) {
	tests := []struct {
		name string
		id   session.Identity
		to   auth.Route
		want auth.Route
	}{
		{"anonymous dashboard", session.Identity{}, auth.RouteUserDashboard, auth.RouteUserLogin},
		{"anonymous marketplace", session.Identity{}, auth.RouteMarketplace, auth.RouteUserLogin},
		{"user on admin board", alice, auth.RouteAdminDashboard, auth.RouteAdminLogin},
		{"admin board", admin, auth.RouteAdminDashboard, auth.RouteAdminDashboard},
		{"user listings", alice, auth.RouteMyListings, auth.RouteMyListings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &fakeBackend{}, tt.id)
			goTo(t, app, tt.to)
			assert.Equal(t, tt.want, app.Route())
		})
	}
}

func TestApp_DropsLateResultsOfLeftPage(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend, alice)
	goTo(t, app, auth.RouteMarketplace)
	old := app.page

	goTo(t, app, auth.RouteHome)
	_, cmd := app.Update(doneMsg{owner: old, op: "delete", value: true})
	assert.Nil(t, cmd)
	assert.Equal(t, auth.RouteHome, app.Route())
}

func TestAdminPage_UpdateStatusRefetchesOnce(t *testing.T) {
	backend := &fakeBackend{
		allOrders: []model.Order{
			{ID: "o1", OriginalName: "a.pdf", Status: model.StatusPending},
			{ID: "o2", OriginalName: "b.pdf", Status: model.StatusCompleted},
		},
	}
	app := newTestApp(t, backend, admin)
	goTo(t, app, auth.RouteAdminDashboard)
	require.Equal(t, 1, backend.listAll)

	press(app, tea.KeyMsg{Type: tea.KeyRight})
	answer(t, app, press(app, tea.KeyMsg{Type: tea.KeyEnter}), "y")

	assert.Equal(t, []statusCall{{"o1", model.StatusInProgress}}, backend.statusCalls)
	assert.Equal(t, 2, backend.listAll)
}

func TestAdminPage_DeclinedUpdateSendsNothing(t *testing.T) {
	backend := &fakeBackend{
		allOrders: []model.Order{{ID: "o1", Status: model.StatusPending}},
	}
	app := newTestApp(t, backend, admin)
	goTo(t, app, auth.RouteAdminDashboard)

	press(app, tea.KeyMsg{Type: tea.KeyRight})
	answer(t, app, press(app, tea.KeyMsg{Type: tea.KeyEnter}), "n")

	assert.Empty(t, backend.statusCalls)
	assert.Equal(t, 1, backend.listAll)
	assert.Contains(t, app.View(), "In Progress")
}

func TestMarketPage_DeleteOwnItem(t *testing.T) {
	backend := &fakeBackend{
		items: []model.Item{
			{ID: "i1", Title: "Casio", Price: decimal.NewFromInt(450), User: &model.Person{ID: "u1", Name: "Alice"}},
			{ID: "i2", Title: "Calculus", Price: decimal.NewFromInt(300), User: &model.Person{ID: "u2", Name: "Bob"}},
		},
	}
	app := newTestApp(t, backend, alice)
	goTo(t, app, auth.RouteMarketplace)

	answer(t, app, press(app, keyRunes("d")), "n")
	assert.Empty(t, backend.deletes)
	assert.Len(t, app.page.(*marketPage).board.Items(), 2)

	answer(t, app, press(app, keyRunes("d")), "y")
	assert.Equal(t, []string{"i1"}, backend.deletes)
	assert.Len(t, app.page.(*marketPage).board.Items(), 1)
	assert.Contains(t, app.View(), "Item deleted successfully!")
}

func TestMarketPage_SubmitInterest(t *testing.T) {
	backend := &fakeBackend{
		items: []model.Item{
			{ID: "i1", Title: "Casio", Price: decimal.NewFromInt(450), User: &model.Person{ID: "u2", Name: "Bob"}},
			{ID: "i2", Title: "Physics", Price: decimal.NewFromInt(200), User: &model.Person{ID: "u3", Name: "Eve"}},
		},
	}
	app := newTestApp(t, backend, alice)
	goTo(t, app, auth.RouteMarketplace)
	page := app.page.(*marketPage)

	press(app, keyRunes("i"))
	require.True(t, page.Editing())
	press(app, keyRunes("555-0100"))
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, keyRunes("400"))
	assert.Equal(t, model.InterestDraft{Contact: "555-0100", BidAmount: "400"}, page.board.Draft("i1"))
	assert.True(t, page.board.Draft("i2").IsZero())

	settle(t, app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	require.Len(t, backend.interests, 1)
	assert.Equal(t, "i1", backend.interests[0].id)
	assert.True(t, decimal.NewFromInt(400).Equal(backend.interests[0].req.BidAmount))
	assert.True(t, page.board.Draft("i1").IsZero())
	assert.Contains(t, app.View(), "Interest submitted successfully!")
}

func TestMarketPage_OwnerCannotBid(t *testing.T) {
	backend := &fakeBackend{
		items: []model.Item{{ID: "i1", Title: "Casio", Price: decimal.NewFromInt(450), User: &model.Person{ID: "u1"}}},
	}
	app := newTestApp(t, backend, alice)
	goTo(t, app, auth.RouteMarketplace)

	press(app, keyRunes("i"))
	assert.False(t, app.page.Editing())
	assert.Contains(t, app.View(), "You own this item. Bidding disabled.")
}

func TestListingsPage_ShowsInterests(t *testing.T) {
	backend := &fakeBackend{
		mine: []model.Item{{
			ID: "i1", Title: "Casio", Price: decimal.NewFromInt(450),
			Interests: []model.Interest{{ID: "x1", User: &model.Person{Name: "Bob"}, Contact: "bob@example.com", BidAmount: decimal.NewFromInt(400)}},
		}},
	}
	app := newTestApp(t, backend, alice)
	goTo(t, app, auth.RouteMyListings)

	view := app.View()
	assert.Contains(t, view, "Casio")
	assert.Contains(t, view, "bob@example.com")

	answer(t, app, press(app, keyRunes("d")), "y")
	assert.Equal(t, []string{"i1"}, backend.deletes)
	assert.Contains(t, app.View(), "You have not listed any items yet.")
}

func TestOrdersPage_UploadAnalyzesAndRefreshes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	backend := &fakeBackend{}
	app := newTestApp(t, backend, alice)
	goTo(t, app, auth.RouteUserDashboard)
	page := app.page.(*ordersPage)
	require.Equal(t, 1, backend.listMine)

	press(app, keyRunes("u"))
	require.True(t, page.Editing())
	press(app, keyRunes(path))
	settle(t, app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	assert.Equal(t, upload.StateDone, page.dash.Upload().State())
	assert.Equal(t, 1, backend.analyzeCalls)
	assert.Empty(t, backend.creates)
	assert.Equal(t, 2, backend.listMine)
	res, ok := page.dash.Upload().Result()
	require.True(t, ok)
	assert.Equal(t, "Looks fine", res.Analysis.Summary)
}

func TestOrdersPage_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	backend := &fakeBackend{}
	app := newTestApp(t, backend, alice)
	goTo(t, app, auth.RouteUserDashboard)

	press(app, keyRunes("u"))
	press(app, keyRunes(path))
	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Zero(t, backend.analyzeCalls)
	assert.Contains(t, app.View(), "Only PDF files can be analyzed.")
}

func TestHomePage_Logout(t *testing.T) {
	app := newTestApp(t, &fakeBackend{}, alice)
	page := app.page.(*homePage)
	require.Equal(t, "Logout", page.entries()[len(page.entries())-1].label)

	for range page.entries() {
		press(app, tea.KeyMsg{Type: tea.KeyDown})
	}
	settle(t, app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	assert.True(t, app.sess.Current().IsZero())
	assert.Contains(t, app.View(), "User login")
}

func TestPrompter(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		p := NewPrompter()
		defer p.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ok, err := p.Confirm(ctx, "Sure?")
		assert.False(t, ok)
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("closed declines", func(t *testing.T) {
		p := NewPrompter()
		p.Close()
		ok, err := p.Confirm(context.Background(), "Sure?")
		assert.False(t, ok)
		assert.NoError(t, err)
		assert.Nil(t, p.Wait()())
	})
}
