package middlewares

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	loginAttemptsTotal *prometheus.CounterVec
	hostRedirectsTotal *prometheus.CounterVec
)

// RegisterMetrics initializes the gateway metrics on the given registry and
// returns the handler for /metrics. Duplicate registration is ignored so
// tests can call this repeatedly.
func RegisterMetrics(registry prometheus.Registerer) (http.Handler, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gateway_http_inflight_requests",
			Help: "In-flight requests by method and path",
		}, []string{"method", "path"})

		loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_login_attempts_total",
			Help: "Login attempts by flow and result",
		}, []string{"flow", "result"}) // flow: code|password, result: success|invalid_credentials|failed

		hostRedirectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_host_redirects_total",
			Help: "Host-routing redirects and rejections by host kind",
		}, []string{"kind", "action"}) // action: redirect|not_found

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			loginAttemptsTotal, hostRedirectsTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	return promhttp.Handler(), nil
}

// WithMetrics instruments requests with counters, latency and in-flight
// gauges. A no-op until RegisterMetrics has run.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}

			method := strings.ToUpper(r.Method)
			pathLabel := normalizePath(r.URL.Path)

			httpInflight.WithLabelValues(method, pathLabel).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				httpInflight.WithLabelValues(method, pathLabel).Dec()
				httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

				status := rec.status
				if status == 0 {
					status = http.StatusOK
				}
				httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// RecordLogin counts a login attempt outcome.
func RecordLogin(flow, result string) {
	if loginAttemptsTotal != nil {
		loginAttemptsTotal.WithLabelValues(flow, result).Inc()
	}
}

// RecordHostAction counts a routing redirect or rejection.
func RecordHostAction(kind, action string) {
	if hostRedirectsTotal != nil {
		hostRedirectsTotal.WithLabelValues(kind, action).Inc()
	}
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

var tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)

// normalizePath collapses dynamic path segments so the label set stays
// bounded.
func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	segments := strings.Split(p, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if len(seg) > 48 || tokenSegmentRE.MatchString(seg) {
			out = append(out, ":param")
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			out = append(out, ":param")
			continue
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}
