// Package metrics provides Prometheus instrumentation for gatrack components.
//
// # Overview
//
// Three groups of metrics are exported:
//   - Rate limiting: tokens requested, admitted and rejected, plus the
//     current bucket level
//   - Tracker: hits sent, hits dropped by the limiter, delivery failures
//     and delivery latency, labelled by hit type
//   - Dispatch: active workers and queued hits of the asynchronous transport
//
// # Quick Start
//
//	cfg := metrics.Config{Enabled: true, Registry: prometheus.NewRegistry()}
//
//	limiter, _ := bucket.NewWithMetrics(bucket.DefaultConfig(), "ga", cfg)
//	tracker, _ := analytics.New(limiter, transport, analytics.WithMetrics(cfg))
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Components that share a Config share one Registry (see For), so a single
// Prometheus registerer can back the limiter, the tracker and the dispatcher.
//
// # Available Metrics
//
//   - gatrack_ratelimit_requests_total{limiter_type,limiter_name}
//   - gatrack_ratelimit_allowed_total{limiter_type,limiter_name}
//   - gatrack_ratelimit_denied_total{limiter_type,limiter_name}
//   - gatrack_ratelimit_tokens_available{limiter_type,limiter_name}
//   - gatrack_tracker_hits_sent_total{hit_type}
//   - gatrack_tracker_hits_dropped_total{hit_type}
//   - gatrack_tracker_send_failures_total{hit_type}
//   - gatrack_tracker_send_duration_seconds{hit_type}
//   - gatrack_workerpool_active_workers{pool_name}
//   - gatrack_workerpool_queued_tasks{pool_name}
package metrics
