package metrics

import (
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biolink_http_requests_total",
			Help: "Total count of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biolink_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PageViewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biolink_page_views_total",
			Help: "Public page views recorded per tenant",
		},
		[]string{"tenant"},
	)

	LinkClicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biolink_link_clicks_total",
			Help: "Link clicks recorded per tenant",
		},
		[]string{"tenant"},
	)

	MagicLinksSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biolink_magic_links_sent_total",
			Help: "Magic link emails by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(PageViewsTotal)
	prometheus.MustRegister(LinkClicksTotal)
	prometheus.MustRegister(MagicLinksSent)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records count and latency for every request passing through next.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start).Seconds()

		p := sanitizePath(r.URL.Path)
		HTTPRequestsTotal.WithLabelValues(r.Method, p, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, p).Observe(elapsed)
	})
}

// sanitizePath keeps label cardinality bounded: slugs and ids become "...".
func sanitizePath(p string) string {
	clean := path.Clean(p)
	if clean == "" || clean == "." {
		return "/"
	}

	segments := strings.Split(clean, "/")
	if len(segments) > 4 {
		segments = append(segments[:4], "...")
	}

	res := strings.Join(segments, "/")
	if !strings.HasPrefix(res, "/") {
		res = "/" + res
	}
	return res
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}
