package market

import (
	"context"

	"printshop/internal/apperr"
	"printshop/internal/collection"
	"printshop/internal/model"
)

// ListingsService is what the listings manager needs from the API.
type ListingsService interface {
	ListMyItems(ctx context.Context) ([]model.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// Listings shows the user's own items together with the interests received.
type Listings struct {
	svc   ListingsService
	items *collection.Controller[model.Item, struct{}]
}

// NewListings wires the listings manager.
func NewListings(svc ListingsService) *Listings {
	return &Listings{
		svc:   svc,
		items: collection.New[model.Item, struct{}]("my-listings", svc.ListMyItems),
	}
}

// Load fetches the user's listings.
func (l *Listings) Load(ctx context.Context) error { return l.items.Fetch(ctx) }

// Items returns the listings in server order.
func (l *Listings) Items() []model.Item { return l.items.Records() }

// Loading reports whether a fetch is outstanding.
func (l *Listings) Loading() bool { return l.items.Loading() }

// Message returns the collection-level error text, or "".
func (l *Listings) Message() string {
	err := l.items.Err()
	if err == nil {
		return ""
	}
	return apperr.UserMessage(err, "Failed to fetch your listings")
}

// Delete removes a listing after confirmation. No re-fetch follows.
func (l *Listings) Delete(ctx context.Context, id string, confirmer collection.Confirmer) error {
	return l.items.Confirm(ctx, id, DeletePrompt, confirmer, collection.Mutation[struct{}]{
		Name:   "delete-listing",
		Policy: collection.PolicyRemove,
		Do: func(ctx context.Context, id string, _ struct{}) error {
			return l.svc.DeleteItem(ctx, id)
		},
	})
}

// Deleting reports whether id's deletion is in flight.
func (l *Listings) Deleting(id string) bool { return l.items.InFlight(id) }

// RecordMessage returns the error text scoped to id, or "".
func (l *Listings) RecordMessage(id string) string {
	err := l.items.RecordErr(id)
	if err == nil {
		return ""
	}
	return apperr.UserMessage(err, "Failed to delete item")
}

// Close dismantles the view.
func (l *Listings) Close() { l.items.Close() }
