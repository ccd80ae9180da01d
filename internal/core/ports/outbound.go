package ports

import (
	"context"
	"io"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

// OrderSource fetches raw commerce records from the live storefront.
// Pagination, rate limiting and authentication are the adapter's concern.
type OrderSource interface {
	FetchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchCustomers(ctx context.Context) ([]domain.Customer, error)
}

// DocumentStore persists categorized-orders documents keyed by customer id.
// Upsert fully replaces the document for an existing key.
type DocumentStore interface {
	Upsert(ctx context.Context, doc *domain.CategorizedOrdersDocument) error
	GetByCustomerID(ctx context.Context, customerID int64) (*domain.CategorizedOrdersDocument, error)
	ListCustomerIDs(ctx context.Context) (map[int64]struct{}, error)
	ListAll(ctx context.Context) ([]domain.CategorizedOrdersDocument, error)
}

// SyncQueue carries sync requests from the API to the worker.
type SyncQueue interface {
	PublishSyncRequested(ctx context.Context, runID string, filter domain.OrderFilter) error
	SubscribeSyncRequested(ctx context.Context, handler func(ctx context.Context, runID string, filter domain.OrderFilter) error) error
}

// ReportRenderer turns persisted documents into a downloadable report
// artifact (the excel adapter implements this).
type ReportRenderer interface {
	Render(docs []domain.CategorizedOrdersDocument) ([]byte, error)
}

// ReportArchive stores generated report artifacts keyed by run id.
type ReportArchive interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
