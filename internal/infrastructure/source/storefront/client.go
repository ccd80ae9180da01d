package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/order-insights/internal/core/domain"
	"github.com/kirillkom/order-insights/internal/infrastructure/resilience"
)

const defaultPageSize = 250

// Client talks to the storefront Admin REST API. It paces requests with a
// token-bucket limiter (the Admin API throttles hard) and pages through
// collections with since_id cursors.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	pageSize   int
}

type Options struct {
	RequestsPerSecond  float64
	Burst              int
	PageSize           int
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, token string, options Options) *Client {
	rps := options.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := options.Burst
	if burst <= 0 {
		burst = 4
	}
	pageSize := options.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		executor:   options.ResilienceExecutor,
		pageSize:   pageSize,
	}
}

type orderPayload struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
	LineItems  []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	} `json:"line_items"`
}

type productPayload struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
	Tags   string `json:"tags"`
}

type customerPayload struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (c *Client) FetchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	limit := filter.Limit
	var orders []domain.Order
	sinceID := int64(0)
	for {
		query := url.Values{}
		query.Set("status", string(filter.Status))
		query.Set("limit", strconv.Itoa(c.pagedLimit(limit, len(orders))))
		if sinceID > 0 {
			query.Set("since_id", strconv.FormatInt(sinceID, 10))
		}
		if filter.CreatedAtMin != nil {
			query.Set("created_at_min", filter.CreatedAtMin.UTC().Format(time.RFC3339))
		}
		if filter.CreatedAtMax != nil {
			query.Set("created_at_max", filter.CreatedAtMax.UTC().Format(time.RFC3339))
		}

		var page struct {
			Orders []orderPayload `json:"orders"`
		}
		if err := c.getJSON(ctx, "/admin/api/orders.json", query, &page, "fetch orders"); err != nil {
			return nil, err
		}
		for _, payload := range page.Orders {
			orders = append(orders, mapOrder(payload))
			sinceID = payload.ID
		}
		if len(page.Orders) < c.pageSize || (limit > 0 && len(orders) >= limit) {
			break
		}
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	sinceID := int64(0)
	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(c.pageSize))
		if sinceID > 0 {
			query.Set("since_id", strconv.FormatInt(sinceID, 10))
		}

		var page struct {
			Products []productPayload `json:"products"`
		}
		if err := c.getJSON(ctx, "/admin/api/products.json", query, &page, "fetch products"); err != nil {
			return nil, err
		}
		for _, payload := range page.Products {
			products = append(products, domain.Product{
				ID:     payload.ID,
				Handle: payload.Handle,
				Tags:   splitTags(payload.Tags),
			})
			sinceID = payload.ID
		}
		if len(page.Products) < c.pageSize {
			break
		}
	}
	return products, nil
}

func (c *Client) FetchCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	sinceID := int64(0)
	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(c.pageSize))
		if sinceID > 0 {
			query.Set("since_id", strconv.FormatInt(sinceID, 10))
		}

		var page struct {
			Customers []customerPayload `json:"customers"`
		}
		if err := c.getJSON(ctx, "/admin/api/customers.json", query, &page, "fetch customers"); err != nil {
			return nil, err
		}
		for _, payload := range page.Customers {
			customers = append(customers, domain.Customer{
				ID:        payload.ID,
				Email:     payload.Email,
				FirstName: payload.FirstName,
				LastName:  payload.LastName,
			})
			sinceID = payload.ID
		}
		if len(page.Customers) < c.pageSize {
			break
		}
	}
	return customers, nil
}

func (c *Client) pagedLimit(limit, fetched int) int {
	if limit <= 0 {
		return c.pageSize
	}
	remaining := limit - fetched
	if remaining > c.pageSize {
		return c.pageSize
	}
	if remaining < 1 {
		return 1
	}
	return remaining
}

func mapOrder(payload orderPayload) domain.Order {
	order := domain.Order{
		ID:         payload.ID,
		CustomerID: payload.CustomerID,
		CreatedAt:  payload.CreatedAt,
	}
	for _, item := range payload.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return order
}

// splitTags parses the Admin API's comma-separated tag field.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
