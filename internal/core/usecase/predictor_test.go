package usecase

import (
	"testing"
	"time"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

func day(t *testing.T, offsetDays int) time.Time {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offsetDays)
}

func datesAt(t *testing.T, offsets ...int) []time.Time {
	t.Helper()
	out := make([]time.Time, 0, len(offsets))
	for _, offset := range offsets {
		out = append(out, day(t, offset))
	}
	return out
}

func TestPredictNextPurchaseWithFewerThanTwoOrders(t *testing.T) {
	now := day(t, 100)
	for _, dates := range [][]time.Time{nil, datesAt(t, 0)} {
		prediction := PredictNextPurchase(domain.CategoryAutomation, dates, now)
		if prediction.HasSufficientData {
			t.Fatalf("expected insufficient data for %d dates", len(dates))
		}
		if prediction.PredictedDate != nil {
			t.Fatalf("expected no predicted date, got %v", prediction.PredictedDate)
		}
		if prediction.Reason != domain.InsufficientDataReason {
			t.Fatalf("unexpected reason %q", prediction.Reason)
		}
		if prediction.Confidence != 0 {
			t.Fatalf("expected zero confidence, got %f", prediction.Confidence)
		}
	}
}

func TestPredictNextPurchaseRegularIntervals(t *testing.T) {
	dates := datesAt(t, 0, 10, 20, 30, 40)
	prediction := PredictNextPurchase(domain.CategoryAutomation, dates, day(t, 41))

	if !prediction.HasSufficientData {
		t.Fatalf("expected sufficient data")
	}
	if prediction.Confidence != 0.5 {
		t.Fatalf("expected stored confidence 0.5, got %f", prediction.Confidence)
	}
	want := day(t, 50)
	if prediction.PredictedDate == nil || !prediction.PredictedDate.Equal(want) {
		t.Fatalf("expected predicted date %v, got %v", want, prediction.PredictedDate)
	}
}

func TestPredictNextPurchaseZeroMeanGapCollapsesOntoLastOrder(t *testing.T) {
	same := day(t, 5)
	prediction := PredictNextPurchase(domain.CategoryDefault, []time.Time{same, same, same}, day(t, 6))

	if prediction.PredictedDate == nil || !prediction.PredictedDate.Equal(same) {
		t.Fatalf("expected predicted date equal to last order %v, got %v", same, prediction.PredictedDate)
	}
}

func TestConfidenceLabelByOrderCount(t *testing.T) {
	if got := ConfidenceFor(nil); got != domain.ConfidenceLow {
		t.Fatalf("0 orders: expected Low, got %s", got)
	}
	if got := ConfidenceFor(datesAt(t, 0, 7)); got != domain.ConfidenceLow {
		t.Fatalf("2 orders: expected Low, got %s", got)
	}
	// Four perfectly regular orders: the n<5 rule dominates regardless of
	// variance.
	if got := ConfidenceFor(datesAt(t, 0, 10, 20, 30)); got != domain.ConfidenceMedium {
		t.Fatalf("4 regular orders: expected Medium, got %s", got)
	}
}

func TestConfidenceLabelByVariation(t *testing.T) {
	if got := ConfidenceFor(datesAt(t, 0, 10, 20, 30, 40)); got != domain.ConfidenceHigh {
		t.Fatalf("zero variance: expected High, got %s", got)
	}
	highVariance := []time.Time{day(t, 0), day(t, 1), day(t, 20), day(t, 2), day(t, 25)}
	if got := ConfidenceFor(highVariance); got != domain.ConfidenceLow {
		t.Fatalf("high variance: expected Low, got %s", got)
	}
}

func TestConfidenceLabelAllGapsZero(t *testing.T) {
	same := day(t, 0)
	dates := []time.Time{same, same, same, same, same}
	if got := ConfidenceFor(dates); got != domain.ConfidenceLow {
		t.Fatalf("all-zero gaps: expected Low, got %s", got)
	}
}

func TestGapsInDaysWholeDayRounding(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dates := []time.Time{start, start.Add(10*24*time.Hour + 5*time.Hour)}
	gaps := gapsInDays(dates)
	if len(gaps) != 1 || gaps[0] != 10 {
		t.Fatalf("expected single whole-day gap of 10, got %v", gaps)
	}
}
