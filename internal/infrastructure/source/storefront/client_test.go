package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

func TestFetchProductsParsesCommaSeparatedTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(tokenHeader); got != "secret" {
			t.Errorf("expected access token header, got %q", got)
		}
		fmt.Fprint(w, `{"products":[{"id":1,"handle":"feeder","tags":"automation, subscription"}]}`)
	}))
	defer server.Close()

	client := New(server.URL, "secret", Options{RequestsPerSecond: 100})
	products, err := client.FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("FetchProducts() error = %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if len(products[0].Tags) != 2 || products[0].Tags[0] != "automation" {
		t.Fatalf("unexpected tags %v", products[0].Tags)
	}
}

func TestFetchOrdersPaginatesWithSinceID(t *testing.T) {
	var sinceIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sinceID := r.URL.Query().Get("since_id")
		sinceIDs = append(sinceIDs, sinceID)
		if sinceID == "" {
			fmt.Fprint(w, `{"orders":[{"id":1,"customer_id":9,"created_at":"2026-01-01T00:00:00Z","line_items":[{"product_id":5,"quantity":1}]},{"id":2,"customer_id":9,"created_at":"2026-01-05T00:00:00Z","line_items":[]}]}`)
			return
		}
		fmt.Fprint(w, `{"orders":[{"id":3,"customer_id":9,"created_at":"2026-01-10T00:00:00Z","line_items":[]}]}`)
	}))
	defer server.Close()

	client := New(server.URL, "", Options{RequestsPerSecond: 100, PageSize: 2})
	orders, err := client.FetchOrders(context.Background(), domain.OrderFilter{})
	if err != nil {
		t.Fatalf("FetchOrders() error = %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders across pages, got %d", len(orders))
	}
	if len(sinceIDs) != 2 || sinceIDs[1] != "2" {
		t.Fatalf("expected second page cursor since_id=2, got %v", sinceIDs)
	}
}

func TestFetchOrdersMapsFilterToQuery(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		fmt.Fprint(w, `{"orders":[]}`)
	}))
	defer server.Close()

	client := New(server.URL, "", Options{RequestsPerSecond: 100})
	_, err := client.FetchOrders(context.Background(), domain.OrderFilter{Status: domain.StatusClosed, Limit: 10})
	if err != nil {
		t.Fatalf("FetchOrders() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodGet, "/?"+query, nil)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if got := req.URL.Query().Get("status"); got != "closed" {
		t.Fatalf("expected status=closed, got %q", got)
	}
	if got := req.URL.Query().Get("limit"); got != "10" {
		t.Fatalf("expected limit=10, got %q", got)
	}
}

func TestFetchOrdersRejectsInvalidFilter(t *testing.T) {
	client := New("http://unused", "", Options{})
	_, err := client.FetchOrders(context.Background(), domain.OrderFilter{Limit: -1})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFetchOrdersSurfacesHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(server.URL, "", Options{RequestsPerSecond: 100})
	_, err := client.FetchOrders(context.Background(), domain.OrderFilter{})
	if err == nil {
		t.Fatalf("expected error")
	}
}
