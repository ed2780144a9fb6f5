package metrics

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Loads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workstate",
		Name:      "loads_total",
		Help:      "Total state objects loaded.",
	})
	Persists = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workstate",
		Name:      "persists_total",
		Help:      "Total state objects persisted.",
	})
	BytesLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workstate",
		Name:      "bytes_loaded_total",
		Help:      "Total bytes loaded from stores.",
	})
	BytesPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workstate",
		Name:      "bytes_persisted_total",
		Help:      "Total bytes persisted to stores.",
	})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(Loads, Persists, BytesLoaded, BytesPersisted)
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Non-blocking when run in goroutine.
func Serve(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, nil)
}

// AddrFromEnv returns listen address from METRICS_ADDR or default ":9090".
func AddrFromEnv() string {
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		return v
	}
	return ":9090"
}
