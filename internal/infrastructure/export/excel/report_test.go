package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

func TestRenderBuildsOneRowPerCustomerCategory(t *testing.T) {
	last := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	predicted := last.AddDate(0, 0, 14)
	docs := []domain.CategorizedOrdersDocument{{
		CustomerID: 7,
		Customer:   domain.Customer{ID: 7, Email: "seven@example.com"},
		Buckets: map[domain.Category][]domain.Order{
			domain.CategoryAutomation: {
				{ID: 1, CreatedAt: last.AddDate(0, 0, -14)},
				{ID: 2, CreatedAt: last},
			},
			domain.CategoryDogExtra: {{ID: 3, CreatedAt: last}},
		},
		Predictions: map[domain.Category]*domain.NextPurchasePrediction{
			domain.CategoryAutomation: {
				Category:          domain.CategoryAutomation,
				HasSufficientData: true,
				PredictedDate:     &predicted,
				Confidence:        0.5,
			},
		},
	}}

	artifact, err := NewRenderer().Render(docs)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(artifact))
	if err != nil {
		t.Fatalf("open rendered workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "Automation" || rows[2][2] != "DogExtra" {
		t.Fatalf("unexpected category order: %v / %v", rows[1], rows[2])
	}
	if rows[1][5] != predicted.Format(time.DateOnly) {
		t.Fatalf("expected predicted date in automation row, got %q", rows[1][5])
	}
}
