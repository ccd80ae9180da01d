package usecase

import (
	"math"
	"time"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

const (
	sufficientDataScore   = 0.5
	highConfidenceMaxCV   = 0.3
	mediumConfidenceMaxCV = 0.6
)

// PredictNextPurchase computes the persisted prediction for one category
// bucket. Purchase dates must already be sorted ascending; the synchronizer
// enforces that before calling. With fewer than two dates the prediction
// carries no date, a reason string and zero confidence.
func PredictNextPurchase(category domain.Category, purchaseDates []time.Time, calculatedAt time.Time) *domain.NextPurchasePrediction {
	prediction := &domain.NextPurchasePrediction{
		Category:      category,
		CalculatedAt:  calculatedAt,
		PurchaseDates: purchaseDates,
	}
	if len(purchaseDates) < 2 {
		prediction.Reason = domain.InsufficientDataReason
		return prediction
	}

	gaps := gapsInDays(purchaseDates)
	meanGap := mean(gaps)

	// round(mean) of 0 means rapid repeats; the predicted date collapses onto
	// the last order date, no floor is imposed.
	predicted := purchaseDates[len(purchaseDates)-1].AddDate(0, 0, int(math.Round(meanGap)))

	prediction.HasSufficientData = true
	prediction.PredictedDate = &predicted
	prediction.Confidence = sufficientDataScore
	return prediction
}

// ConfidenceFor assigns the three-level reliability label for a sorted list
// of purchase dates. Below five orders the order count alone decides; from
// five on, the coefficient of variation of the purchase gaps does.
func ConfidenceFor(purchaseDates []time.Time) domain.ConfidenceLabel {
	switch n := len(purchaseDates); {
	case n < 3:
		return domain.ConfidenceLow
	case n < 5:
		return domain.ConfidenceMedium
	}

	gaps := gapsInDays(purchaseDates)
	meanGap := mean(gaps)
	if meanGap == 0 {
		// cv undefined for all-zero gaps, treated as unreliable.
		return domain.ConfidenceLow
	}
	cv := populationStdDev(gaps, meanGap) / meanGap
	switch {
	case cv < highConfidenceMaxCV:
		return domain.ConfidenceHigh
	case cv < mediumConfidenceMaxCV:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// gapsInDays returns the n-1 whole-day gaps between successive timestamps.
func gapsInDays(dates []time.Time) []float64 {
	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gaps = append(gaps, math.Round(dates[i].Sub(dates[i-1]).Hours()/24))
	}
	return gaps
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
