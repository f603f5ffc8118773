// Package orders holds the two order views: the user's own dashboard with
// its upload form, and the administrator's board of every order.
package orders

import (
	"context"

	"printshop/internal/apperr"
	"printshop/internal/collection"
	"printshop/internal/logging"
	"printshop/internal/model"
	"printshop/internal/session"
	"printshop/internal/upload"
)

// DashboardService is what the user dashboard needs from the API.
type DashboardService interface {
	upload.Service
	ListMyOrders(ctx context.Context) ([]model.Order, error)
}

// Dashboard lists the caller's orders and owns the upload form. Orders have
// no per-record mutations here.
type Dashboard struct {
	sess   session.Reader
	orders *collection.Controller[model.Order, struct{}]
	upload *upload.Flow
}

// NewDashboard wires the dashboard. A successful upload refreshes the list.
func NewDashboard(svc DashboardService, sess session.Reader, variant upload.Variant) *Dashboard {
	d := &Dashboard{sess: sess}
	d.orders = collection.New[model.Order, struct{}]("my-orders", svc.ListMyOrders)
	d.upload = upload.New(variant, svc, upload.RefreshFunc(d.Load))
	return d
}

// Load fetches the orders. Without a session nothing is sent.
func (d *Dashboard) Load(ctx context.Context) error {
	if _, ok := d.sess.Token(); !ok {
		err := errNotAuthenticated
		d.orders.SetErr(err)
		logging.ViewDebug("my-orders: not authenticated, skipping fetch")
		return err
	}
	return d.orders.Fetch(ctx)
}

// Orders returns the orders in server order.
func (d *Dashboard) Orders() []model.Order { return d.orders.Records() }

// Loading reports whether a fetch is outstanding.
func (d *Dashboard) Loading() bool { return d.orders.Loading() }

// Message returns the collection-level error text, or "".
func (d *Dashboard) Message() string {
	err := d.orders.Err()
	if err == nil {
		return ""
	}
	return apperr.UserMessage(err, "Failed to load orders.")
}

// Upload returns the upload form.
func (d *Dashboard) Upload() *upload.Flow { return d.upload }

// Name returns the logged in user's display name.
func (d *Dashboard) Name() string { return d.sess.Current().Name }

// Close dismantles the view.
func (d *Dashboard) Close() {
	d.orders.Close()
	d.upload.Close()
}

var errNotAuthenticated = &notAuthenticatedError{}

type notAuthenticatedError struct{}

func (*notAuthenticatedError) Error() string { return "not authenticated" }
func (*notAuthenticatedError) Kind() apperr.Kind { return apperr.KindAuth }
func (*notAuthenticatedError) UserMessage() string {
	return "User not authenticated. Please login."
}
