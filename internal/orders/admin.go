package orders

import (
	"context"
	"fmt"

	"printshop/internal/apperr"
	"printshop/internal/collection"
	"printshop/internal/model"
	"printshop/internal/session"
)

// AdminService is what the admin board needs from the API.
type AdminService interface {
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// UpdatePrompt is shown before a status change is sent.
const UpdatePrompt = "Are you sure you want to update the status?"

// AdminBoard lists every order and lets an administrator change statuses.
// The selected status of each order is held as a pending value until sent.
type AdminBoard struct {
	svc    AdminService
	sess   session.Reader
	orders *collection.Controller[model.Order, model.OrderStatus]
}

// NewAdminBoard wires the admin board.
func NewAdminBoard(svc AdminService, sess session.Reader) *AdminBoard {
	return &AdminBoard{
		svc:    svc,
		sess:   sess,
		orders: collection.New[model.Order, model.OrderStatus]("all-orders", svc.ListAllOrders),
	}
}

// Load fetches all orders.
func (b *AdminBoard) Load(ctx context.Context) error {
	return b.orders.Fetch(ctx)
}

// Orders returns all orders in server order.
func (b *AdminBoard) Orders() []model.Order { return b.orders.Records() }

// Loading reports whether a fetch is outstanding.
func (b *AdminBoard) Loading() bool { return b.orders.Loading() }

// Message returns the collection-level error text, or "".
func (b *AdminBoard) Message() string {
	err := b.orders.Err()
	if err == nil {
		return ""
	}
	return apperr.UserMessage(err, "Failed to fetch orders")
}

// SelectStatus records the administrator's choice for id without sending it.
func (b *AdminBoard) SelectStatus(id string, status model.OrderStatus) error {
	if !status.Valid() {
		return apperr.Validation("status", fmt.Sprintf("Unknown status %q", status))
	}
	b.orders.SetPending(id, status)
	return nil
}

// StatusFor returns the selected status for id, defaulting to the persisted one.
func (b *AdminBoard) StatusFor(id string) model.OrderStatus {
	o, _ := b.orders.Get(id)
	return b.orders.Value(id, o.Status)
}

// UpdateStatus asks for confirmation, sends the selected status for id and
// re-fetches the whole list once on success.
func (b *AdminBoard) UpdateStatus(ctx context.Context, id string, confirmer collection.Confirmer) error {
	return b.orders.Confirm(ctx, id, UpdatePrompt, confirmer, collection.Mutation[model.OrderStatus]{
		Name:   "update-status",
		Policy: collection.PolicyRefetch,
		Validate: func(status model.OrderStatus, selected bool) error {
			if !selected || !status.Valid() {
				return apperr.Validation("status", "Select a status first")
			}
			return nil
		},
		Do: func(ctx context.Context, id string, status model.OrderStatus) error {
			return b.svc.UpdateOrderStatus(ctx, id, status)
		},
	})
}

// Updating reports whether a status change for id is in flight.
func (b *AdminBoard) Updating(id string) bool { return b.orders.InFlight(id) }

// RecordMessage returns the error text scoped to id, or "".
func (b *AdminBoard) RecordMessage(id string) string {
	err := b.orders.RecordErr(id)
	if err == nil {
		return ""
	}
	return apperr.UserMessage(err, "Failed to update status")
}

// Name returns the administrator's display name.
func (b *AdminBoard) Name() string { return b.sess.Current().Name }

// Close dismantles the view.
func (b *AdminBoard) Close() { b.orders.Close() }

// Tone is the color class of a status badge.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneWarning
	ToneInfo
	ToneSuccess
)

// Badge maps an order status to its badge color.
func Badge(status model.OrderStatus) Tone {
	switch status {
	case model.StatusPending:
		return ToneWarning
	case model.StatusInProgress:
		return ToneInfo
	case model.StatusCompleted:
		return ToneSuccess
	default:
		return ToneNeutral
	}
}
