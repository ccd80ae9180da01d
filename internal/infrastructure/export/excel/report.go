package excel

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

const sheetName = "Predictions"

// Renderer builds the XLSX prediction report: one row per customer/category
// with the order count, last purchase, predicted date and stored confidence.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(docs []domain.CategorizedOrdersDocument) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	header := []any{"Customer ID", "Email", "Category", "Orders", "Last Order", "Predicted Next Order", "Confidence", "Reason"}
	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	rowNum := 2
	for _, doc := range docs {
		for _, category := range sortedCategories(doc.Buckets) {
			row := reportRow(doc, category)
			cell := fmt.Sprintf("A%d", rowNum)
			if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
				return nil, fmt.Errorf("write row %d: %w", rowNum, err)
			}
			rowNum++
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func reportRow(doc domain.CategorizedOrdersDocument, category domain.Category) []any {
	orders := doc.Buckets[category]

	var lastOrder, predicted string
	if len(orders) > 0 {
		lastOrder = orders[len(orders)-1].CreatedAt.Format(time.DateOnly)
	}
	confidence := 0.0
	reason := ""
	if prediction, ok := doc.Predictions[category]; ok && prediction != nil {
		confidence = prediction.Confidence
		reason = prediction.Reason
		if prediction.PredictedDate != nil {
			predicted = prediction.PredictedDate.Format(time.DateOnly)
		}
	}

	return []any{
		doc.CustomerID,
		doc.Customer.Email,
		string(category),
		len(orders),
		lastOrder,
		predicted,
		confidence,
		reason,
	}
}

func sortedCategories(buckets map[domain.Category][]domain.Order) []domain.Category {
	categories := make([]domain.Category, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
