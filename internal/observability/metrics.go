package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admob_switch_requests_total",
			Help: "Total HTTP requests",
		}, []string{"code"},
	)
	Latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "admob_switch_request_duration_seconds",
		Help:    "Request latency seconds",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "admob_switch_in_flight",
		Help: "In-flight HTTP requests",
	})
	SelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admob_switch_selections_total",
			Help: "Account selections by strategy",
		}, []string{"strategy"},
	)
	EligibilityRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admob_switch_eligibility_rejections_total",
			Help: "Notifications filtered out, by rejecting predicate",
		}, []string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, Latency, InFlight, SelectionsTotal, EligibilityRejections)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		Latency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
	})
}
