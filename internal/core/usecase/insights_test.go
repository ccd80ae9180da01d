package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

func TestCustomerInsightsComputesDaysSinceLastOrderAgainstNow(t *testing.T) {
	uc, source, store := syncFixture(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	source.orders = []domain.Order{
		orderAt(10, 2, 1, base),
		orderAt(11, 2, 1, base.AddDate(0, 0, 10)),
	}
	if _, err := uc.Sync(context.Background(), "run-1", domain.OrderFilter{}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	insightsUC := NewInsightsUseCase(store)
	now := base.AddDate(0, 0, 17)
	insights, err := insightsUC.CustomerInsights(context.Background(), 2, now)
	if err != nil {
		t.Fatalf("CustomerInsights() error = %v", err)
	}

	if len(insights.Insights) != 1 {
		t.Fatalf("expected one category insight, got %d", len(insights.Insights))
	}
	insight := insights.Insights[0]
	if insight.Category != domain.CategoryAutomation {
		t.Fatalf("unexpected category %s", insight.Category)
	}
	if insight.TotalOrders != 2 {
		t.Fatalf("expected 2 orders, got %d", insight.TotalOrders)
	}
	if insight.DaysSinceLastOrder != 7 {
		t.Fatalf("expected 7 days since last order, got %d", insight.DaysSinceLastOrder)
	}
	if insight.Confidence != domain.ConfidenceLow {
		t.Fatalf("expected Low label for 2 orders, got %s", insight.Confidence)
	}
	want := base.AddDate(0, 0, 20)
	if insight.PredictedDate == nil || !insight.PredictedDate.Equal(want) {
		t.Fatalf("expected predicted date %v, got %v", want, insight.PredictedDate)
	}
}

func TestCustomerInsightsUnknownCustomer(t *testing.T) {
	_, _, store := syncFixture(nil)
	insightsUC := NewInsightsUseCase(store)

	_, err := insightsUC.CustomerInsights(context.Background(), 42, time.Now())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
