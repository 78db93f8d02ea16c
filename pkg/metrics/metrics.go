package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests     *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec
	Commands     *prometheus.CounterVec
	GatewayCalls *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

// NewServerMetrics registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry(); main uses the default registry.
func NewServerMetrics(service string, reg *prometheus.Registry) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quickbites",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quickbites",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quickbites",
		Subsystem: service,
		Name:      "chat_commands_total",
		Help:      "Chat commands handled, by effect and outcome.",
	}, []string{"effect", "outcome"})
	gateway := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quickbites",
		Subsystem: service,
		Name:      "gateway_calls_total",
		Help:      "Payment gateway calls, by operation and outcome.",
	}, []string{"operation", "outcome"})

	reg.MustRegister(requests, latency, commands, gateway)
	return &ServerMetrics{
		Requests:     requests,
		LatencyMS:    latency,
		Commands:     commands,
		GatewayCalls: gateway,
		gatherer:     reg,
	}
}

func (m *ServerMetrics) ObserveCommand(effect, outcome string) {
	m.Commands.WithLabelValues(effect, outcome).Inc()
}

func (m *ServerMetrics) ObserveGatewayCall(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GatewayCalls.WithLabelValues(operation, outcome).Inc()
}

// Middleware records request count and latency per chi route pattern.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		handler := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				handler = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
