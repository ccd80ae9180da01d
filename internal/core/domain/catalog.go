package domain

import (
	"fmt"
	"time"
)

// Product is a storefront catalog entry. Immutable once fetched within a run.
type Product struct {
	ID     int64    `json:"id"`
	Handle string   `json:"handle"`
	Tags   []string `json:"tags"`
}

// LineItem references a catalog product within an order.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Order struct {
	ID         int64      `json:"id"`
	CustomerID int64      `json:"customer_id"`
	CreatedAt  time.Time  `json:"created_at"`
	LineItems  []LineItem `json:"line_items"`
}

type Customer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type OrderStatus string

const (
	StatusAny       OrderStatus = "any"
	StatusOpen      OrderStatus = "open"
	StatusClosed    OrderStatus = "closed"
	StatusCancelled OrderStatus = "cancelled"
)

// MaxOrderFetchLimit is the storefront Admin API page-size ceiling.
const MaxOrderFetchLimit = 250

// OrderFilter narrows an order fetch. Zero values mean "no bound" except
// Status, where empty is normalized to StatusAny.
type OrderFilter struct {
	Status       OrderStatus `json:"status"`
	Limit        int         `json:"limit,omitempty"`
	MinOrders    int         `json:"min_orders,omitempty"`
	CreatedAtMin *time.Time  `json:"created_at_min,omitempty"`
	CreatedAtMax *time.Time  `json:"created_at_max,omitempty"`
}

// Normalize returns the filter with an explicit status.
func (f OrderFilter) Normalize() OrderFilter {
	if f.Status == "" {
		f.Status = StatusAny
	}
	return f
}

// Validate rejects out-of-range filter parameters before any fetch happens.
// The HTTP layer validates too; this is the defensive check for direct callers.
func (f OrderFilter) Validate() error {
	switch f.Normalize().Status {
	case StatusAny, StatusOpen, StatusClosed, StatusCancelled:
	default:
		return WrapError(ErrInvalidInput, "validate filter", fmt.Errorf("unknown status %q", f.Status))
	}
	if f.Limit < 0 || f.Limit > MaxOrderFetchLimit {
		return WrapError(ErrInvalidInput, "validate filter", fmt.Errorf("limit %d outside [0,%d]", f.Limit, MaxOrderFetchLimit))
	}
	if f.MinOrders < 0 {
		return WrapError(ErrInvalidInput, "validate filter", fmt.Errorf("min_orders %d is negative", f.MinOrders))
	}
	if f.CreatedAtMin != nil && f.CreatedAtMax != nil && f.CreatedAtMin.After(*f.CreatedAtMax) {
		return WrapError(ErrInvalidInput, "validate filter", fmt.Errorf("created_at_min after created_at_max"))
	}
	return nil
}
