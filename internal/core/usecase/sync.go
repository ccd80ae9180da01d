package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kirillkom/order-insights/internal/core/domain"
	"github.com/kirillkom/order-insights/internal/core/ports"
)

// SyncUseCase runs one full synchronization pass: fetch the live snapshot,
// categorize and predict per customer, and upsert every document while
// diffing against the ids that were persisted before the run started.
type SyncUseCase struct {
	source      ports.OrderSource
	store       ports.DocumentStore
	categorizer *Categorizer
	now         func() time.Time
}

func NewSyncUseCase(source ports.OrderSource, store ports.DocumentStore, categorizer *Categorizer) *SyncUseCase {
	return &SyncUseCase{
		source:      source,
		store:       store,
		categorizer: categorizer,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source. Used by tests to pin UpdatedAt.
func (uc *SyncUseCase) WithClock(now func() time.Time) *SyncUseCase {
	uc.now = now
	return uc
}

func (uc *SyncUseCase) Sync(ctx context.Context, runID string, filter domain.OrderFilter) (*domain.SyncReport, error) {
	startedAt := uc.now()

	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := uc.fetchSnapshot(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Captured once, before any write, so the update/create split never
	// observes this run's own upserts.
	existing, err := uc.store.ListCustomerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list existing customer ids: %w", err)
	}

	index := uc.categorizer.BuildIndex(snapshot.products)
	buckets := uc.categorizer.BuildBuckets(snapshot.orders, index)

	report := &domain.SyncReport{
		RunID:     runID,
		StartedAt: startedAt,
	}
	for _, customerID := range sortedCustomerIDs(buckets) {
		if !meetsOrderThreshold(snapshot.orderCounts[customerID], filter.MinOrders) {
			continue
		}
		doc := uc.buildDocument(customerID, snapshot.customers[customerID], buckets[customerID], index, filter)
		if err := uc.store.Upsert(ctx, doc); err != nil {
			return nil, fmt.Errorf("upsert document for customer %d: %w", customerID, err)
		}
		if _, ok := existing[customerID]; ok {
			report.Updated++
		} else {
			report.Created++
		}
		report.Processed = append(report.Processed, customerID)
	}
	report.CompletedAt = uc.now()
	return report, nil
}

type liveSnapshot struct {
	orders      []domain.Order
	products    []domain.Product
	customers   map[int64]domain.Customer
	orderCounts map[int64]int
}

func (uc *SyncUseCase) fetchSnapshot(ctx context.Context, filter domain.OrderFilter) (*liveSnapshot, error) {
	products, err := uc.source.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	orders, err := uc.source.FetchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	customers, err := uc.source.FetchCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch customers: %w", err)
	}

	snapshot := &liveSnapshot{
		orders:      orders,
		products:    products,
		customers:   make(map[int64]domain.Customer, len(customers)),
		orderCounts: make(map[int64]int),
	}
	for _, customer := range customers {
		snapshot.customers[customer.ID] = customer
	}
	for _, order := range orders {
		snapshot.orderCounts[order.CustomerID]++
	}
	return snapshot, nil
}

// buildDocument assembles the full-replace document for one customer:
// sorted buckets, merged tag lookup across the categories the customer
// touches, and one prediction per non-empty bucket. A bucket with a single
// order yields an insufficient-data prediction, it is not skipped.
func (uc *SyncUseCase) buildDocument(
	customerID int64,
	customer domain.Customer,
	customerBuckets map[domain.Category][]domain.Order,
	index *CategoryIndex,
	filter domain.OrderFilter,
) *domain.CategorizedOrdersDocument {
	now := uc.now()

	merged := domain.TagLookup{}
	predictions := make(map[domain.Category]*domain.NextPurchasePrediction, len(customerBuckets))
	for _, category := range sortedCategories(customerBuckets) {
		orders := customerBuckets[category]
		SortBucket(orders)

		merged = MergeTagLookups(merged, index.TagLookupFor(category))
		predictions[category] = PredictNextPurchase(category, purchaseDates(orders), now)
	}

	customer.ID = customerID
	return &domain.CategorizedOrdersDocument{
		CustomerID:  customerID,
		Customer:    customer,
		Buckets:     customerBuckets,
		Predictions: predictions,
		TagLookup:   merged,
		Filter:      filter,
		UpdatedAt:   now,
	}
}

func purchaseDates(orders []domain.Order) []time.Time {
	dates := make([]time.Time, 0, len(orders))
	for _, order := range orders {
		dates = append(dates, order.CreatedAt)
	}
	return dates
}

func meetsOrderThreshold(count, minOrders int) bool {
	return minOrders <= 0 || count >= minOrders
}

func sortedCustomerIDs(buckets map[int64]map[domain.Category][]domain.Order) []int64 {
	ids := make([]int64, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedCategories(buckets map[domain.Category][]domain.Order) []domain.Category {
	categories := make([]domain.Category, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
