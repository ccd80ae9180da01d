package ports

import (
	"context"
	"time"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

// SnapshotSynchronizer is the inbound contract for a full synchronization run.
type SnapshotSynchronizer interface {
	Sync(ctx context.Context, runID string, filter domain.OrderFilter) (*domain.SyncReport, error)
}

// InsightsReader exposes per-customer predictions and the human-facing
// summary computed against the supplied "now".
type InsightsReader interface {
	CustomerInsights(ctx context.Context, customerID int64, now time.Time) (*domain.CustomerInsights, error)
	CustomerDocument(ctx context.Context, customerID int64) (*domain.CategorizedOrdersDocument, error)
}

// ReportBuilder renders a prediction report over all persisted documents.
type ReportBuilder interface {
	BuildPredictionReport(ctx context.Context, runID string) ([]byte, error)
}
