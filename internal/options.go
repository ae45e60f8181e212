package internal

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ivupcn/restina-framework/pkg/cache"
	"github.com/ivupcn/restina-framework/pkg/config"
	"github.com/ivupcn/restina-framework/pkg/hook"
	"github.com/ivupcn/restina-framework/pkg/metrics"
	"github.com/ivupcn/restina-framework/pkg/openapi"
	"github.com/ivupcn/restina-framework/pkg/validator"
)

// Option configures the application.
type Option func(*App)

// WithControllers registers controllers whose documented endpoints become
// routes. Registration order decides which of two same-named controllers
// wins: the first.
//
// Example:
//
//	restina.New(
//	    restina.WithControllers(
//	        &UserController{repo: repo},
//	        &OrderController{repo: repo},
//	    ),
//	)
func WithControllers(c ...Controller) Option {
	return func(a *App) {
		for _, ctrl := range c {
			if isNil(ctrl) {
				a.optErrs = append(a.optErrs, ErrNilController)
				continue
			}
			a.controllers = append(a.controllers, ctrl)
		}
	}
}

// WithConfig sets the file configuration. Without WithLogger the logger is
// built from its log and sentry sections.
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		if err := cfg.Validate(); err != nil {
			a.optErrs = append(a.optErrs, err)
			return
		}
		a.config = cfg
		a.configSet = true
	}
}

// WithConfigFile loads the configuration from a YAML file.
//
// Example:
//
//	restina.New(restina.WithConfigFile("config/app.yaml"))
func WithConfigFile(path string) Option {
	return func(a *App) {
		cfg, err := config.Load(path)
		if err != nil {
			a.optErrs = append(a.optErrs, err)
			return
		}
		a.config = cfg
		a.configSet = true
	}
}

// WithLogger sets the application logger.
//
// Example:
//
//	restina.New(
//	    restina.WithLogger(logger.New(
//	        logger.WithComponent("api"),
//	        logger.WithExtractors(middlewares.RequestIDExtractor()),
//	    )),
//	)
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDebug overrides app.debug. Debug mode bypasses the route cache and
// keeps internal error messages in 500 responses even when redaction is on.
func WithDebug(on bool) Option {
	return func(a *App) {
		a.debug = &on
	}
}

// WithRedactErrors overrides app.redact_errors. When on, 500 responses carry
// the generic status text instead of the fault's message.
func WithRedactErrors(on bool) Option {
	return func(a *App) {
		a.redact = &on
	}
}

// WithHookBus uses b instead of a fresh bus. The bus is frozen by New.
func WithHookBus(b *hook.Bus) Option {
	return func(a *App) {
		if b != nil {
			a.hooks = b
		}
	}
}

// WithHookRegistry resolves callback names in the hooks section of the
// configuration.
//
// Example:
//
//	reg := hook.NewRegistry().
//	    Action("audit.request", audit.Request).
//	    Filter("envelope", envelope.Wrap)
//	restina.New(restina.WithConfigFile("app.yaml"), restina.WithHookRegistry(reg))
func WithHookRegistry(r *hook.Registry) Option {
	return func(a *App) {
		a.registry = r
	}
}

// WithHooks runs fn against the hook bus during boot, after hook config is
// loaded and before the bus is frozen.
//
// Example:
//
//	restina.WithHooks(func(b *hook.Bus) error {
//	    return b.AddAction(hook.RequestError, reportError)
//	})
func WithHooks(fn func(*hook.Bus) error) Option {
	return func(a *App) {
		if fn != nil {
			a.setup = append(a.setup, fn)
		}
	}
}

// WithAction subscribes fn to an action hook.
func WithAction(name string, fn hook.ActionFunc, opts ...hook.HookOption) Option {
	return WithHooks(func(b *hook.Bus) error {
		return b.AddAction(name, fn, opts...)
	})
}

// WithFilter subscribes fn to a filter hook.
func WithFilter(name string, fn hook.FilterFunc, opts ...hook.HookOption) Option {
	return WithHooks(func(b *hook.Bus) error {
		return b.AddFilter(name, fn, opts...)
	})
}

// WithValidator sets the rule validator, for example one with a custom
// resolver for urlActive.
func WithValidator(v *validator.Validator) Option {
	return func(a *App) {
		if v != nil {
			a.validator = v
		}
	}
}

// WithRouteCache caches the route table in c instead of the app.cache
// driver. A nil c disables caching. A non-positive ttl uses cache.ttl.
func WithRouteCache(c cache.Cache[[]byte], ttl time.Duration) Option {
	return func(a *App) {
		a.store = c
		a.cacheTTL = ttl
		a.cacheSet = true
	}
}

// WithDuplicateRoutes selects how two endpoints on the same method and
// path are handled. Default: RejectDuplicates.
func WithDuplicateRoutes(p DuplicatePolicy) Option {
	return func(a *App) {
		a.duplicates = p
	}
}

// WithInputSanitizer passes every string request value through fn before
// coercion and validation.
//
// Example:
//
//	restina.WithInputSanitizer(sanitizer.StripHTML)
func WithInputSanitizer(fn func(string) string) Option {
	return func(a *App) {
		a.sanitize = fn
	}
}

// WithMiddleware adds net/http middleware in front of every route.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks. A redis route
// cache adds a "cache" check.
//
// Example:
//
//	restina.WithHealthChecks(
//	    restina.WithReadinessCheck("db", pingDB),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithOpenAPI serves the OpenAPI document of the route table at path.
//
// Example:
//
//	restina.WithOpenAPI("/openapi.json",
//	    openapi.WithVersion("2.1.0"),
//	    openapi.WithServer("https://api.example.com", "production"),
//	)
func WithOpenAPI(path string, opts ...openapi.Option) Option {
	return func(a *App) {
		if path == "" {
			path = "/openapi.json"
		}
		a.openAPIConfig = &openAPIConfig{path: path, options: opts}
	}
}

// WithMetrics records dispatch metrics in m and serves them at path.
// An empty path records without serving.
func WithMetrics(m *metrics.Collector, path string) Option {
	return func(a *App) {
		a.metrics = m
		a.metricsPath = path
	}
}

// WithTracer sets the tracer for dispatch spans. Default: the global
// OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(a *App) {
		a.tracer = t
	}
}

// WithShutdownHook registers a cleanup function run by App.Run during
// graceful shutdown, after the HTTP server stops.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}
