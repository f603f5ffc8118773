package model

import (
	"github.com/shopspring/decimal"
)

// Item is a marketplace listing.
type Item struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	User        *Person         `json:"user,omitempty"`
	Interests   []Interest      `json:"interests,omitempty"`
}

// RecordID implements Record.
func (i Item) RecordID() string { return i.ID }

// Interest is a bid expressed on an item.
type Interest struct {
	ID        string          `json:"_id"`
	User      *Person         `json:"user,omitempty"`
	Contact   string          `json:"contact"`
	BidAmount decimal.Decimal `json:"bidAmount"`
}

// RecordID implements Record.
func (i Interest) RecordID() string { return i.ID }

// NewItem is the body of a listing creation.
type NewItem struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// InterestRequest is the body of an interest submission.
type InterestRequest struct {
	BidAmount decimal.Decimal `json:"bidAmount"`
	Contact   string          `json:"contact"`
}

// InterestDraft is the unsubmitted interest form for one item, kept as the
// raw text the user typed.
type InterestDraft struct {
	Contact   string
	BidAmount string
}

// IsZero reports whether nothing has been typed.
func (d InterestDraft) IsZero() bool {
	return d.Contact == "" && d.BidAmount == ""
}

// Money formats an amount in rupees with two decimals.
func Money(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}
