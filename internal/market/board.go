// Package market holds the marketplace views: the public board where users
// list items and bid on others' items, and the seller's own listings.
package market

import (
	"context"
	"errors"
	"strings"
	"sync"

	"printshop/internal/apperr"
	"printshop/internal/collection"
	"printshop/internal/logging"
	"printshop/internal/model"
	"printshop/internal/session"

	"github.com/shopspring/decimal"
)

// DeletePrompt is shown before an item is deleted.
const DeletePrompt = "Are you sure you want to delete this item?"

// BoardService is what the board needs from the API.
type BoardService interface {
	ListMarketplace(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, item model.NewItem) error
	ExpressInterest(ctx context.Context, id string, req model.InterestRequest) error
	DeleteItem(ctx context.Context, id string) error
}

// Board lists other users' items. Each item carries a pending interest draft
// (contact and bid) until it is submitted.
type Board struct {
	svc   BoardService
	sess  session.Reader
	items *collection.Controller[model.Item, model.InterestDraft]

	mu     sync.Mutex
	adding bool
	addErr error
}

// NewBoard wires the marketplace board.
func NewBoard(svc BoardService, sess session.Reader) *Board {
	return &Board{
		svc:   svc,
		sess:  sess,
		items: collection.New[model.Item, model.InterestDraft]("marketplace", svc.ListMarketplace),
	}
}

// Load fetches the board.
func (b *Board) Load(ctx context.Context) error { return b.items.Fetch(ctx) }

// Items returns the items in server order.
func (b *Board) Items() []model.Item { return b.items.Records() }

// Loading reports whether a fetch is outstanding.
func (b *Board) Loading() bool { return b.items.Loading() }

// Message returns the collection-level error text, or "".
func (b *Board) Message() string {
	err := b.items.Err()
	if err == nil {
		return ""
	}
	return apperr.UserMessage(err, "Failed to load marketplace")
}

// IsOwner reports whether the logged in user listed item.
func (b *Board) IsOwner(item model.Item) bool {
	uid := b.sess.Current().UserID
	return uid != "" && item.User != nil && item.User.ID == uid
}

// ParseNewItem validates the add-item form. Title and a positive price are
// required; the description is optional.
func ParseNewItem(title, price, description string) (model.NewItem, error) {
	title = strings.TrimSpace(title)
	price = strings.TrimSpace(price)
	if title == "" || price == "" {
		return model.NewItem{}, apperr.Validation("item", "Title and Price are required")
	}
	p, err := decimal.NewFromString(price)
	if err != nil || !p.IsPositive() {
		return model.NewItem{}, apperr.Validation("price", "Price must be a positive number")
	}
	return model.NewItem{Title: title, Price: p, Description: strings.TrimSpace(description)}, nil
}

// AddItem lists a new item and re-fetches the board. Only one add runs at a
// time.
func (b *Board) AddItem(ctx context.Context, item model.NewItem) error {
	if strings.TrimSpace(item.Title) == "" {
		return b.setAddErr(apperr.Validation("item", "Title and Price are required"))
	}
	if !item.Price.IsPositive() {
		return b.setAddErr(apperr.Validation("price", "Price must be a positive number"))
	}

	b.mu.Lock()
	if b.adding {
		b.mu.Unlock()
		return collection.ErrInFlight
	}
	b.adding = true
	b.addErr = nil
	b.mu.Unlock()

	err := b.svc.CreateItem(ctx, item)

	b.mu.Lock()
	b.adding = false
	b.addErr = err
	b.mu.Unlock()

	if err != nil {
		logging.Get(logging.CategoryView).Warn("marketplace: add %q failed: %v", item.Title, err)
		return err
	}
	logging.View("marketplace: listed %q at %s", item.Title, model.Money(item.Price))
	if err := b.items.Fetch(ctx); err != nil && !errors.Is(err, collection.ErrClosed) {
		logging.Get(logging.CategoryView).Warn("marketplace: re-fetch after add failed: %v", err)
	}
	return nil
}

func (b *Board) setAddErr(err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addErr = err
	return err
}

// Adding reports whether an add is in flight.
func (b *Board) Adding() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adding
}

// AddMessage returns the add-form error text, or "".
func (b *Board) AddMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addErr == nil {
		return ""
	}
	return apperr.UserMessage(b.addErr, "Failed to add item")
}

// Draft returns the interest draft for id.
func (b *Board) Draft(id string) model.InterestDraft {
	d, _ := b.items.Pending(id)
	return d
}

// SetContact updates the contact field of id's draft.
func (b *Board) SetContact(id, contact string) {
	d := b.Draft(id)
	d.Contact = contact
	b.items.SetPending(id, d)
}

// SetBid updates the bid field of id's draft.
func (b *Board) SetBid(id, bid string) {
	d := b.Draft(id)
	d.BidAmount = bid
	b.items.SetPending(id, d)
}

// SubmitInterest sends id's draft. On success only that draft is reset.
func (b *Board) SubmitInterest(ctx context.Context, id string) error {
	return b.items.Submit(ctx, id, collection.Mutation[model.InterestDraft]{
		Name:   "express-interest",
		Policy: collection.PolicyResetPending,
		Validate: func(d model.InterestDraft, _ bool) error {
			if item, ok := b.items.Get(id); ok && b.IsOwner(item) {
				return apperr.Validation("item", "You own this item. Bidding disabled.")
			}
			_, err := parseDraft(d)
			return err
		},
		Do: func(ctx context.Context, id string, d model.InterestDraft) error {
			req, err := parseDraft(d)
			if err != nil {
				return err
			}
			return b.svc.ExpressInterest(ctx, id, req)
		},
	})
}

func parseDraft(d model.InterestDraft) (model.InterestRequest, error) {
	contact := strings.TrimSpace(d.Contact)
	bid := strings.TrimSpace(d.BidAmount)
	if contact == "" || bid == "" {
		return model.InterestRequest{}, apperr.Validation("interest", "Please enter contact and bid")
	}
	amount, err := decimal.NewFromString(bid)
	if err != nil || !amount.IsPositive() {
		return model.InterestRequest{}, apperr.Validation("bidAmount", "Bid must be a positive number")
	}
	return model.InterestRequest{BidAmount: amount, Contact: contact}, nil
}

// Submitting reports whether id's interest is in flight.
func (b *Board) Submitting(id string) bool { return b.items.InFlight(id) }

// RecordMessage returns the error text scoped to id, or "".
func (b *Board) RecordMessage(id string) string {
	err := b.items.RecordErr(id)
	if err == nil {
		return ""
	}
	return apperr.UserMessage(err, "Failed to submit interest")
}

// Delete removes an item the user owns after confirmation.
func (b *Board) Delete(ctx context.Context, id string, confirmer collection.Confirmer) error {
	return b.items.Confirm(ctx, id, DeletePrompt, confirmer, collection.Mutation[model.InterestDraft]{
		Name:   "delete-item",
		Policy: collection.PolicyRemove,
		Validate: func(model.InterestDraft, bool) error {
			item, ok := b.items.Get(id)
			if !ok || !b.IsOwner(item) {
				return apperr.Validation("item", "Only the owner can delete this item")
			}
			return nil
		},
		Do: func(ctx context.Context, id string, _ model.InterestDraft) error {
			return b.svc.DeleteItem(ctx, id)
		},
	})
}

// Close dismantles the view.
func (b *Board) Close() { b.items.Close() }
