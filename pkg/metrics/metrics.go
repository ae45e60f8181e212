package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ivupcn/restina-framework/pkg/hook"
)

// Event is the view of a dispatch event the collector records.
type Event interface {
	Handler() string
	HTTPMethod() string
	StatusCode() int
	Elapsed() time.Duration
}

// Config configures a Collector.
type Config struct {
	// Registry receives the collectors and backs Handler.
	// Default: a new prometheus.Registry.
	Registry    *prometheus.Registry
	ConstLabels prometheus.Labels
	Namespace   string
	Subsystem   string
	Buckets     []float64
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metric namespace. Default: "restina".
func WithNamespace(ns string) Option {
	return func(c *Config) {
		c.Namespace = ns
	}
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(s string) Option {
	return func(c *Config) {
		c.Subsystem = s
	}
}

// WithConstLabels adds constant labels to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(b []float64) Option {
	return func(c *Config) {
		if len(b) > 0 {
			c.Buckets = b
		}
	}
}

// WithRegistry sets the registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(c *Config) {
		if r != nil {
			c.Registry = r
		}
	}
}

// Collector records dispatch outcomes. Request counts and durations come
// from Observe; failure counters come from the dispatch hooks.
type Collector struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	validationErrors *prometheus.CounterVec
	handlerErrors    *prometheus.CounterVec
}

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	cfg := Config{
		Namespace: "restina",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)
	return &Collector{
		registry: cfg.Registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_total",
			Help:        "Dispatched requests by handler, method and status.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"handler", "method", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Dispatch duration in seconds.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"handler", "method"}),

		validationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "validation_errors_total",
			Help:        "Requests rejected by parameter validation.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"handler"}),

		handlerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "handler_errors_total",
			Help:        "Handler failures answered with 500.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"handler"}),
	}
}

// Register subscribes the failure counters to the dispatch hooks of bus.
// It must run before the bus is frozen.
func (c *Collector) Register(bus *hook.Bus) error {
	return errors.Join(
		bus.AddAction(hook.ParameterValidateError, c.validationFailed, hook.WithID("restina.metrics.validation"), hook.WithPriority(-100)),
		bus.AddAction(hook.RequestError, c.handlerFailed, hook.WithID("restina.metrics.error"), hook.WithPriority(-100)),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Observe records one answered request. A nil ev is ignored.
func (c *Collector) Observe(ev Event) {
	if ev == nil {
		return
	}
	c.requests.WithLabelValues(ev.Handler(), ev.HTTPMethod(), strconv.Itoa(ev.StatusCode())).Inc()
	c.duration.WithLabelValues(ev.Handler(), ev.HTTPMethod()).Observe(ev.Elapsed().Seconds())
}

func (c *Collector) validationFailed(_ context.Context, args ...any) error {
	if ev, ok := event(args); ok {
		c.validationErrors.WithLabelValues(ev.Handler()).Inc()
	}
	return nil
}

func (c *Collector) handlerFailed(_ context.Context, args ...any) error {
	if ev, ok := event(args); ok {
		c.handlerErrors.WithLabelValues(ev.Handler()).Inc()
	}
	return nil
}

func event(args []any) (Event, bool) {
	if len(args) == 0 {
		return nil, false
	}
	ev, ok := args[0].(Event)
	return ev, ok
}
