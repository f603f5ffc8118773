package model

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the print order lifecycle state.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusInProgress OrderStatus = "In Progress"
	StatusCompleted  OrderStatus = "Completed"
)

// OrderStatuses lists the statuses an administrator can select, in display order.
var OrderStatuses = []OrderStatus{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseOrderStatus accepts the display names case-insensitively, plus
// "in-progress" / "in_progress" for command-line use.
func ParseOrderStatus(s string) (OrderStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	for _, v := range OrderStatuses {
		if strings.ToLower(string(v)) == norm {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q (valid: Pending, In Progress, Completed)", s)
}

// Order is a print order.
type Order struct {
	ID           string      `json:"_id"`
	OriginalName string      `json:"originalName,omitempty"`
	FileURL      string      `json:"fileUrl"`
	Status       OrderStatus `json:"status"`
	User         *Person     `json:"userId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt,omitempty"`
}

// RecordID implements Record.
func (o Order) RecordID() string { return o.ID }

// DisplayName returns the uploaded file name or "Unnamed File".
func (o Order) DisplayName() string {
	if o.OriginalName == "" {
		return "Unnamed File"
	}
	return o.OriginalName
}

// StatusUpdate is the body of an order status change.
type StatusUpdate struct {
	Status OrderStatus `json:"status"`
}

// CreateOrderRequest references an already uploaded file.
type CreateOrderRequest struct {
	FileURL string `json:"fileUrl"`
}
