package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kirillkom/order-insights/internal/core/domain"
	"github.com/kirillkom/order-insights/internal/core/ports"
)

// InsightsUseCase serves the per-customer prediction surface from persisted
// documents.
type InsightsUseCase struct {
	store ports.DocumentStore
}

func NewInsightsUseCase(store ports.DocumentStore) *InsightsUseCase {
	return &InsightsUseCase{store: store}
}

func (uc *InsightsUseCase) CustomerDocument(ctx context.Context, customerID int64) (*domain.CategorizedOrdersDocument, error) {
	doc, err := uc.store.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load categorized orders: %w", err)
	}
	return doc, nil
}

// CustomerInsights builds the human-facing summary per category. Days since
// last order is computed against the supplied now, not the snapshot time, so
// the figure stays current between sync runs.
func (uc *InsightsUseCase) CustomerInsights(ctx context.Context, customerID int64, now time.Time) (*domain.CustomerInsights, error) {
	doc, err := uc.store.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load categorized orders: %w", err)
	}

	insights := &domain.CustomerInsights{
		CustomerID:  customerID,
		Predictions: doc.Predictions,
		GeneratedAt: now,
	}
	for _, category := range sortedCategories(doc.Buckets) {
		insights.Insights = append(insights.Insights, categoryInsight(category, doc, now))
	}
	return insights, nil
}

func categoryInsight(category domain.Category, doc *domain.CategorizedOrdersDocument, now time.Time) domain.CategoryInsight {
	orders := doc.Buckets[category]
	dates := purchaseDates(orders)

	insight := domain.CategoryInsight{
		Category:    category,
		TotalOrders: len(orders),
		Confidence:  ConfidenceFor(dates),
	}
	if len(dates) > 0 {
		last := dates[len(dates)-1]
		insight.LastOrderDate = &last
		insight.DaysSinceLastOrder = int(math.Floor(now.Sub(last).Hours() / 24))
	}
	if prediction, ok := doc.Predictions[category]; ok && prediction != nil {
		insight.PredictedDate = prediction.PredictedDate
		insight.Reason = prediction.Reason
	}
	return insight
}
