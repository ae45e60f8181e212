// Package metrics exports dispatch metrics to Prometheus.
//
// A Collector subscribes to the request.after_handle,
// parameter.validate_error and request.error hooks and records:
//
//   - restina_requests_total{handler,method,status}
//   - restina_request_duration_seconds{handler,method}
//   - restina_validation_errors_total{handler}
//   - restina_handler_errors_total{handler}
//
// Usage:
//
//	m := metrics.New()
//	app, err := restina.New(
//	    restina.WithControllers(users),
//	    restina.WithMetrics(m, "/metrics"),
//	)
package metrics
