package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/order-insights/internal/config"
	"github.com/kirillkom/order-insights/internal/core/domain"
	"github.com/kirillkom/order-insights/internal/core/ports"
	"github.com/kirillkom/order-insights/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	queue    ports.SyncQueue
	insights ports.InsightsReader
	reports  ports.ReportBuilder
	cfg      config.Config
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	queue ports.SyncQueue,
	insights ports.InsightsReader,
	reports ports.ReportBuilder,
	cfg config.Config,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		queue:    queue,
		insights: insights,
		reports:  reports,
		cfg:      cfg,
		metrics:  serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/sync", rt.requestSync)
	mux.HandleFunc("/v1/customers/", rt.customerSubresource)
	mux.HandleFunc("/v1/reports/predictions", rt.downloadPredictionReport)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 50*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.MetricsMiddleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type syncRequestBody struct {
	Status       string `json:"status"`
	Limit        int    `json:"limit"`
	MinOrders    int    `json:"min_orders"`
	CreatedAtMin string `json:"created_at_min"`
	CreatedAtMax string `json:"created_at_max"`
}

func (rt *Router) requestSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body syncRequestBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	filter, err := filterFromRequest(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := filter.Validate(); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	runID := uuid.NewString()
	if err := rt.queue.PublishSyncRequested(r.Context(), runID, filter); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveSyncRequested(serviceName)
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (rt *Router) customerSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/customers/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer id is required"})
		return
	}
	customerID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer id must be numeric"})
		return
	}

	switch parts[1] {
	case "insights":
		rt.customerInsights(w, r, customerID)
	case "orders":
		rt.customerOrders(w, r, customerID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func (rt *Router) customerInsights(w http.ResponseWriter, r *http.Request, customerID int64) {
	insights, err := rt.insights.CustomerInsights(r.Context(), customerID, time.Now().UTC())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		insufficient := 0
		for _, insight := range insights.Insights {
			if insight.TotalOrders < 2 {
				insufficient++
			}
		}
		rt.metrics.ObserveInsights(serviceName, insufficient)
	}
	writeJSON(w, http.StatusOK, insights)
}

func (rt *Router) customerOrders(w http.ResponseWriter, r *http.Request, customerID int64) {
	doc, err := rt.insights.CustomerDocument(r.Context(), customerID)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) downloadPredictionReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	runID := uuid.NewString()
	artifact, err := rt.reports.BuildPredictionReport(r.Context(), runID)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveReportDownload(serviceName)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="predictions-`+runID+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

func filterFromRequest(body syncRequestBody) (domain.OrderFilter, error) {
	filter := domain.OrderFilter{
		Status:    domain.OrderStatus(body.Status),
		Limit:     body.Limit,
		MinOrders: body.MinOrders,
	}
	if body.CreatedAtMin != "" {
		from, err := time.Parse(time.RFC3339, body.CreatedAtMin)
		if err != nil {
			return domain.OrderFilter{}, err
		}
		filter.CreatedAtMin = &from
	}
	if body.CreatedAtMax != "" {
		until, err := time.Parse(time.RFC3339, body.CreatedAtMax)
		if err != nil {
			return domain.OrderFilter{}, err
		}
		filter.CreatedAtMax = &until
	}
	return filter.Normalize(), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
