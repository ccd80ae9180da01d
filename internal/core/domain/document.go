package domain

import "time"

// CategorizedOrdersDocument is the persisted per-customer snapshot. Writes
// always replace the whole document; only tag lists are merged, and that
// happens before the write while the lookup is built.
type CategorizedOrdersDocument struct {
	CustomerID  int64                                `json:"customer_id"`
	Customer    Customer                             `json:"customer"`
	Buckets     map[Category][]Order                 `json:"buckets"`
	Predictions map[Category]*NextPurchasePrediction `json:"predictions"`
	TagLookup   TagLookup                            `json:"tag_lookup"`
	Filter      OrderFilter                          `json:"filter"`
	UpdatedAt   time.Time                            `json:"updated_at"`
}

// SyncReport is the outcome of one synchronization run.
type SyncReport struct {
	RunID       string    `json:"run_id"`
	Processed   []int64   `json:"processed"`
	Updated     int       `json:"updated"`
	Created     int       `json:"created"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
