package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"printshop/internal/api"
	"printshop/internal/apperr"
	"printshop/internal/collection"
	"printshop/internal/model"
	"printshop/internal/session"
	"printshop/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAPI struct {
	mu        sync.Mutex
	orders    []model.Order
	myFetches int
	allFetch  int
	updates   []model.StatusUpdate
	updateErr error
	listErr   error
}

func (f *fakeAPI) ListMyOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.myFetches++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Order(nil), f.orders...), nil
}

func (f *fakeAPI) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allFetch++
	return append([]model.Order(nil), f.orders...), nil
}

func (f *fakeAPI) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, model.StatusUpdate{Status: status})
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
		}
	}
	return nil
}

func (f *fakeAPI) UploadAndAnalyze(ctx context.Context, a model.Artifact) (model.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, model.Order{ID: "new", OriginalName: a.Name, Status: model.StatusPending})
	return model.UploadResult{URL: "https://cdn/" + a.Name, Analysis: &model.Analysis{Summary: "Looks fine"}}, nil
}

func (f *fakeAPI) UploadFile(ctx context.Context, a model.Artifact) (string, error) {
	return "https://cdn/" + a.Name, nil
}

func (f *fakeAPI) CreateOrder(ctx context.Context, ref string) error { return nil }

func newSession(t *testing.T, id *session.Identity) *session.Session {
	t.Helper()
	s, err := session.New(context.Background(), nil)
	require.NoError(t, err)
	if id != nil {
		require.NoError(t, s.Establish(context.Background(), *id))
	}
	return s
}

func seed() []model.Order {
	return []model.Order{
		{ID: "o1", OriginalName: "a.pdf", Status: model.StatusPending},
		{ID: "o2", OriginalName: "b.pdf", Status: model.StatusInProgress},
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	svc := &fakeAPI{orders: seed()}
	d := NewDashboard(svc, newSession(t, nil), upload.VariantAnalyze)
	defer d.Close()

	err := d.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, "User not authenticated. Please login.", d.Message())
	assert.Zero(t, svc.myFetches)
}

func TestDashboardLoadAndUploadRefresh(t *testing.T) {
	svc := &fakeAPI{orders: seed()}
	d := NewDashboard(svc, newSession(t, &session.Identity{Token: "t1", Name: "Alice", Role: session.RoleUser}), upload.VariantAnalyze)
	defer d.Close()
	ctx := context.Background()

	require.NoError(t, d.Load(ctx))
	assert.Len(t, d.Orders(), 2)
	assert.Equal(t, "Alice", d.Name())

	require.NoError(t, d.Upload().Select(model.ArtifactFromBytes("c.pdf", []byte("%PDF"))))
	res, err := d.Upload().Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Looks fine", res.Analysis.Summary)
	assert.Len(t, d.Orders(), 3, "successful upload refreshes the list")
	assert.Equal(t, 2, svc.myFetches)
}

func TestDashboardLoadFailureMessage(t *testing.T) {
	svc := &fakeAPI{listErr: &api.APIError{StatusCode: 500}}
	d := NewDashboard(svc, newSession(t, &session.Identity{Token: "t", Role: session.RoleUser}), upload.VariantAnalyze)
	defer d.Close()

	require.Error(t, d.Load(context.Background()))
	assert.Equal(t, "Failed to load orders.", d.Message())
}

func admin(t *testing.T, svc *fakeAPI) *AdminBoard {
	b := NewAdminBoard(svc, newSession(t, &session.Identity{Token: "t2", Name: "Root", Role: session.RoleAdmin}))
	t.Cleanup(b.Close)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func TestStatusUpdateRefetchesExactlyOnce(t *testing.T) {
	svc := &fakeAPI{orders: seed()}
	b := admin(t, svc)

	require.NoError(t, b.SelectStatus("o1", model.StatusCompleted))
	assert.Equal(t, model.StatusCompleted, b.StatusFor("o1"))
	assert.Equal(t, model.StatusInProgress, b.StatusFor("o2"), "default is the persisted status")

	require.NoError(t, b.UpdateStatus(context.Background(), "o1", collection.Always))
	assert.Equal(t, 2, svc.allFetch)
	assert.Equal(t, []model.StatusUpdate{{Status: model.StatusCompleted}}, svc.updates)
	assert.Equal(t, model.StatusCompleted, b.Orders()[0].Status)
	assert.False(t, b.Updating("o1"))
}

func TestStatusUpdateNeedsSelection(t *testing.T) {
	svc := &fakeAPI{orders: seed()}
	b := admin(t, svc)

	err := b.UpdateStatus(context.Background(), "o1", collection.Always)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, svc.updates)
	assert.Equal(t, "Select a status first", b.RecordMessage("o1"))

	assert.Error(t, b.SelectStatus("o1", "Shipped"))
}

func TestSelectingStatusClearsValidationMessage(t *testing.T) {
	svc := &fakeAPI{orders: seed()}
	b := admin(t, svc)

	require.Error(t, b.UpdateStatus(context.Background(), "o1", collection.Always))
	assert.Equal(t, "Select a status first", b.RecordMessage("o1"))

	require.NoError(t, b.SelectStatus("o1", model.StatusInProgress))
	assert.Empty(t, b.RecordMessage("o1"))
	assert.Equal(t, model.StatusInProgress, b.StatusFor("o1"))
	assert.Empty(t, b.StatusFor("missing"))
}

func TestStatusUpdateDeclined(t *testing.T) {
	svc := &fakeAPI{orders: seed()}
	b := admin(t, svc)
	require.NoError(t, b.SelectStatus("o1", model.StatusCompleted))

	no := collection.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		assert.Equal(t, UpdatePrompt, prompt)
		return false, nil
	})
	assert.ErrorIs(t, b.UpdateStatus(context.Background(), "o1", no), collection.ErrCancelled)
	assert.Empty(t, svc.updates)
	assert.Equal(t, 1, svc.allFetch)
}

func TestStatusUpdateFailureKeepsSelection(t *testing.T) {
	svc := &fakeAPI{orders: seed(), updateErr: errors.New("boom")}
	b := admin(t, svc)
	require.NoError(t, b.SelectStatus("o2", model.StatusCompleted))

	require.Error(t, b.UpdateStatus(context.Background(), "o2", collection.Always))
	assert.Equal(t, model.StatusCompleted, b.StatusFor("o2"))
	assert.Equal(t, model.StatusInProgress, b.Orders()[1].Status)
	assert.Equal(t, "Failed to update status", b.RecordMessage("o2"))
	assert.Equal(t, 1, svc.allFetch)
}

func TestBadge(t *testing.T) {
	assert.Equal(t, ToneWarning, Badge(model.StatusPending))
	assert.Equal(t, ToneInfo, Badge(model.StatusInProgress))
	assert.Equal(t, ToneSuccess, Badge(model.StatusCompleted))
	assert.Equal(t, ToneNeutral, Badge("Lost"))
}
