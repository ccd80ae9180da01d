package domain

import "time"

type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "Low"
	ConfidenceMedium ConfidenceLabel = "Medium"
	ConfidenceHigh   ConfidenceLabel = "High"
)

// InsufficientDataReason explains a prediction that could not be computed.
// Fewer than two orders is not a fault; it is surfaced through
// HasSufficientData and this reason string, never as an error.
const InsufficientDataReason = "insufficient data, need at least 2 orders"

// NextPurchasePrediction is the persisted per-category prediction.
// Confidence is the two-level stored score (0.5 once two orders exist, 0
// otherwise); the three-level label lives on the insights surface and is
// intentionally a separate scale.
type NextPurchasePrediction struct {
	Category          Category    `json:"category"`
	HasSufficientData bool        `json:"has_sufficient_data"`
	PredictedDate     *time.Time  `json:"predicted_date,omitempty"`
	Reason            string      `json:"reason,omitempty"`
	CalculatedAt      time.Time   `json:"calculated_at"`
	Confidence        float64     `json:"confidence"`
	PurchaseDates     []time.Time `json:"purchase_dates"`
}

// CategoryInsight is the human-facing summary for one category of one
// customer. DaysSinceLastOrder is relative to request time, not snapshot time.
type CategoryInsight struct {
	Category           Category        `json:"category"`
	PredictedDate      *time.Time      `json:"predicted_date,omitempty"`
	TotalOrders        int             `json:"total_orders"`
	LastOrderDate      *time.Time      `json:"last_order_date,omitempty"`
	DaysSinceLastOrder int             `json:"days_since_last_order"`
	Confidence         ConfidenceLabel `json:"confidence"`
	Reason             string          `json:"reason,omitempty"`
}

type CustomerInsights struct {
	CustomerID  int64                                `json:"customer_id"`
	Predictions map[Category]*NextPurchasePrediction `json:"predictions"`
	Insights    []CategoryInsight                    `json:"insights"`
	GeneratedAt time.Time                            `json:"generated_at"`
}
