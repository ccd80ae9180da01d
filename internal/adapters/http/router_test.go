package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/order-insights/internal/config"
	"github.com/kirillkom/order-insights/internal/core/domain"
)

type stubQueue struct {
	published []domain.OrderFilter
	err       error
}

func (q *stubQueue) PublishSyncRequested(_ context.Context, _ string, filter domain.OrderFilter) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, filter)
	return nil
}

func (q *stubQueue) SubscribeSyncRequested(context.Context, func(context.Context, string, domain.OrderFilter) error) error {
	return nil
}

type stubInsights struct {
	insights *domain.CustomerInsights
	doc      *domain.CategorizedOrdersDocument
	err      error
}

func (s *stubInsights) CustomerInsights(_ context.Context, _ int64, _ time.Time) (*domain.CustomerInsights, error) {
	return s.insights, s.err
}

func (s *stubInsights) CustomerDocument(_ context.Context, _ int64) (*domain.CategorizedOrdersDocument, error) {
	return s.doc, s.err
}

type stubReports struct {
	artifact []byte
	err      error
}

func (s *stubReports) BuildPredictionReport(context.Context, string) ([]byte, error) {
	return s.artifact, s.err
}

func testRouter(queue *stubQueue, insights *stubInsights, reports *stubReports) http.Handler {
	cfg := config.Config{
		APIRateLimitRPS:   1000,
		APIRateLimitBurst: 1000,
		APIMaxInFlight:    16,
	}
	return NewRouter(queue, insights, reports, cfg, nil).Handler()
}

func TestRequestSyncPublishesAndReturnsRunID(t *testing.T) {
	queue := &stubQueue{}
	handler := testRouter(queue, &stubInsights{}, &stubReports{})

	body := bytes.NewBufferString(`{"status":"closed","limit":50}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sync", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["run_id"] == "" {
		t.Fatalf("expected run id in response")
	}
	if len(queue.published) != 1 || queue.published[0].Status != domain.StatusClosed {
		t.Fatalf("unexpected published filter: %v", queue.published)
	}
}

func TestRequestSyncRejectsInvalidStatus(t *testing.T) {
	queue := &stubQueue{}
	handler := testRouter(queue, &stubInsights{}, &stubReports{})

	body := bytes.NewBufferString(`{"status":"shipped"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sync", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if len(queue.published) != 0 {
		t.Fatalf("expected no publish for invalid filter")
	}
}

func TestRequestSyncDefaultsToAnyStatus(t *testing.T) {
	queue := &stubQueue{}
	handler := testRouter(queue, &stubInsights{}, &stubReports{})

	req := httptest.NewRequest(http.MethodPost, "/v1/sync", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if queue.published[0].Status != domain.StatusAny {
		t.Fatalf("expected status normalized to any, got %q", queue.published[0].Status)
	}
}

func TestCustomerInsightsHappyPath(t *testing.T) {
	insights := &stubInsights{insights: &domain.CustomerInsights{
		CustomerID: 7,
		Insights: []domain.CategoryInsight{
			{Category: domain.CategoryAutomation, TotalOrders: 3, Confidence: domain.ConfidenceMedium},
		},
	}}
	handler := testRouter(&stubQueue{}, insights, &stubReports{})

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/7/insights", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload domain.CustomerInsights
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.CustomerID != 7 || len(payload.Insights) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCustomerInsightsNotFound(t *testing.T) {
	insights := &stubInsights{err: domain.WrapError(domain.ErrCustomerNotFound, "get", errors.New("missing"))}
	handler := testRouter(&stubQueue{}, insights, &stubReports{})

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/42/insights", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestCustomerSubresourceRejectsNonNumericID(t *testing.T) {
	handler := testRouter(&stubQueue{}, &stubInsights{}, &stubReports{})

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/abc/insights", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestDownloadPredictionReportSetsAttachmentHeaders(t *testing.T) {
	handler := testRouter(&stubQueue{}, &stubInsights{}, &stubReports{artifact: []byte("xlsx-bytes")})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/predictions", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Disposition"); got == "" {
		t.Fatalf("expected attachment disposition header")
	}
	if res.Body.String() != "xlsx-bytes" {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}
