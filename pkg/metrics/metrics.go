package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "sunsetdash",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	oracleCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "oracle_calls_total",
			Subsystem: "sunsetdash",
			Help:      "Sun oracle consultations by outcome.",
		},
		[]string{"outcome"},
	)

	searchDays = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "search_days_scanned",
			Subsystem: "sunsetdash",
			Help:      "Days scanned by each milestone search.",
			Buckets:   []float64{1, 7, 30, 60, 90, 120, 180, 270, 365},
		},
		[]string{"found"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		oracleCalls,
		searchDays,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveSearch records one milestone search. It fits milestone.Engine's
// OnSearch hook.
func ObserveSearch(scanned int, found bool) {
	searchDays.WithLabelValues(strconv.FormatBool(found)).Observe(float64(scanned))
}

// InstrumentOracle counts every call to o by whether it produced a value.
func InstrumentOracle(o sunset.Oracle) sunset.Oracle {
	return sunset.OracleFunc(func(lat, long float64, day time.Time) (time.Time, time.Time, bool) {
		rise, set, ok := o.SunriseSunset(lat, long, day)
		outcome := "value"
		if !ok {
			outcome = "no_value"
		}
		oracleCalls.WithLabelValues(outcome).Inc()
		return rise, set, ok
	})
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
