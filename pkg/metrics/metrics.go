package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gatrack components.
type Registry struct {
	// Rate Limiting Metrics
	RateLimitRequests *prometheus.CounterVec
	RateLimitAllowed  *prometheus.CounterVec
	RateLimitDenied   *prometheus.CounterVec
	RateLimitTokens   *prometheus.GaugeVec

	// Tracker Metrics
	HitsSent     *prometheus.CounterVec
	HitsDropped  *prometheus.CounterVec
	SendFailures *prometheus.CounterVec
	SendDuration *prometheus.HistogramVec

	// Dispatch Metrics
	WorkerPoolActive *prometheus.GaugeVec
	WorkerPoolQueued *prometheus.GaugeVec
}

type registryKey struct {
	reg       prometheus.Registerer
	namespace string
}

var (
	registriesMu sync.Mutex
	registries   = make(map[registryKey]*Registry)
)

// NewRegistry creates a new metrics registry with the given Prometheus
// registerer under the default namespace. Registering twice on the same
// registerer panics; use For to share one Registry between components.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return newRegistry(reg, DefaultNamespace)
}

// For returns the Registry bound to the registerer and namespace in cfg,
// creating it on first use.
func For(cfg Config) *Registry {
	cfg = cfg.withDefaults()
	key := registryKey{reg: cfg.Registry, namespace: cfg.Namespace}

	registriesMu.Lock()
	defer registriesMu.Unlock()

	if r, ok := registries[key]; ok {
		return r
	}
	r := newRegistry(cfg.Registry, cfg.Namespace)
	registries[key] = r
	return r
}

func newRegistry(reg prometheus.Registerer, namespace string) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		RateLimitRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "requests_total",
				Help:      "Total number of tokens requested from rate limiters",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		RateLimitAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "allowed_total",
				Help:      "Total number of tokens admitted",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		RateLimitDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "denied_total",
				Help:      "Total number of tokens rejected",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		RateLimitTokens: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "tokens_available",
				Help:      "Number of tokens in the bucket after the last check",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		HitsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tracker",
				Name:      "hits_sent_total",
				Help:      "Total number of hits handed to the transport",
			},
			[]string{"hit_type"},
		),

		HitsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tracker",
				Name:      "hits_dropped_total",
				Help:      "Total number of hits dropped by the rate limiter",
			},
			[]string{"hit_type"},
		),

		SendFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tracker",
				Name:      "send_failures_total",
				Help:      "Total number of hits the transport failed to deliver",
			},
			[]string{"hit_type"},
		),

		SendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tracker",
				Name:      "send_duration_seconds",
				Help:      "Time spent delivering a hit to the collect endpoint",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"hit_type"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of workers currently delivering hits",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of hits waiting for a worker",
			},
			[]string{"pool_name"},
		),
	}
}
