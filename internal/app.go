package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivupcn/restina-framework/pkg/cache"
	"github.com/ivupcn/restina-framework/pkg/config"
	"github.com/ivupcn/restina-framework/pkg/health"
	"github.com/ivupcn/restina-framework/pkg/hook"
	"github.com/ivupcn/restina-framework/pkg/logger"
	"github.com/ivupcn/restina-framework/pkg/metrics"
	"github.com/ivupcn/restina-framework/pkg/openapi"
	"github.com/ivupcn/restina-framework/pkg/sanitizer"
	"github.com/ivupcn/restina-framework/pkg/validator"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App owns the route table, the hook bus and the HTTP router.
// It is immutable after New returns.
type App struct {
	router        chi.Router
	tracer        trace.Tracer
	logger        *slog.Logger
	hooks         *hook.Bus
	registry      *hook.Registry
	validator     *validator.Validator
	dispatcher    *Dispatcher
	routeCache    *RouteCache
	store         cache.Cache[[]byte]
	ownedStore    *Store
	healthConfig  *healthConfig
	openAPIConfig *openAPIConfig
	metrics       *metrics.Collector
	debug         *bool
	redact        *bool
	sanitize      func(string) string
	setup         []func(*hook.Bus) error
	optErrs       []error
	controllers   []Controller
	middlewares   []Middleware
	shutdownHooks []func(context.Context) error
	config        config.Config
	metricsPath   string
	cacheTTL      time.Duration
	duplicates    DuplicatePolicy
	cacheSet      bool
	configSet     bool
}

// New builds an App: it loads configuration, builds the logger, loads
// hook config, discovers routes (or loads them from the route cache),
// freezes the hook bus and mounts every route.
//
// Example:
//
//	app, err := restina.New(
//	    restina.WithConfigFile("config/app.yaml"),
//	    restina.WithControllers(&UserController{repo: repo}),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		router:     chi.NewRouter(),
		config:     config.Default(),
		duplicates: RejectDuplicates,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := errors.Join(a.optErrs...); err != nil {
		return nil, err
	}

	if err := a.boot(context.Background()); err != nil {
		_ = a.closeStore(context.Background())
		return nil, err
	}
	return a, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("restina: %v", err))
	}
	return a
}

func (a *App) boot(ctx context.Context) error {
	if a.logger == nil {
		a.logger = logger.NewNope()
		if a.configSet {
			a.logger = a.config.Logger()
		}
	}
	if a.hooks == nil {
		a.hooks = hook.New(hook.WithLogger(a.logger))
	}
	if a.validator == nil {
		a.validator = validator.Default()
	}
	if a.sanitize == nil && a.config.App.Sanitize != "" {
		mode, err := sanitizer.ParseMode(a.config.App.Sanitize)
		if err != nil {
			return err
		}
		a.sanitize = mode.Func()
	}

	if err := a.hooks.LoadFromConfig(a.config.Hooks, a.registry); err != nil {
		return fmt.Errorf("load hooks: %w", err)
	}
	for _, fn := range a.setup {
		if err := fn(a.hooks); err != nil {
			return fmt.Errorf("register hooks: %w", err)
		}
	}
	if a.metrics != nil {
		if err := a.metrics.Register(a.hooks); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	if err := a.openRouteCache(ctx); err != nil {
		return err
	}

	table, handlers, err := a.loadRoutes(ctx)
	if err != nil {
		return err
	}

	dispatchOpts := []DispatcherOption{
		withDispatchApp(a),
		WithDispatchHooks(a.hooks),
		WithDispatchValidator(a.validator),
		WithDispatchLogger(a.logger),
		WithDispatchDebug(a.Debug()),
		WithDispatchRedactErrors(a.redactErrors()),
		WithDispatchSanitizer(a.sanitize),
		WithDispatchTracer(a.tracer),
	}
	if a.metrics != nil {
		dispatchOpts = append(dispatchOpts, WithDispatchObserver(func(ev *Event) { a.metrics.Observe(ev) }))
	}
	a.dispatcher = NewDispatcher(table, handlers, dispatchOpts...)

	if err := a.hooks.DoAction(ctx, hook.AppBootstrap, a); err != nil {
		return fmt.Errorf("%s: %w", hook.AppBootstrap, err)
	}
	a.hooks.Freeze()

	a.setupRoutes()
	a.logger.Info("application booted",
		slog.Int("routes", table.Len()),
		slog.Bool("debug", a.Debug()),
		slog.Bool("route_cache", a.routeCache != nil),
	)
	return nil
}

// loadRoutes discovers routes, going through the route cache unless debug
// mode is on or no cache is configured.
func (a *App) loadRoutes(ctx context.Context) (*Table, map[HandlerID]HandlerFunc, error) {
	types := Scan(a.controllers)
	live := LiveEndpoints(types)
	tableOpts := []TableOption{WithDuplicatePolicy(a.duplicates)}

	build := func(context.Context) ([]string, *Table, error) {
		routes := ExtractRoutes(types, a.logger)
		table, err := BuildTable(routes, tableOpts...)
		if err != nil {
			return nil, nil, err
		}
		return table.Handlers(), table, nil
	}

	if a.routeCache == nil || a.Debug() {
		_, table, err := build(ctx)
		return table, live, err
	}

	table, hit, err := a.routeCache.LoadOrBuild(ctx, build, func(t *Table) bool {
		for _, r := range t.Routes() {
			if _, ok := live[r.Handler]; !ok {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	if hit {
		table = table.RestoreDefaults(LiveDefaults(types))
	}
	a.logger.Debug("route table ready", slog.Bool("cached", hit))
	return table, live, nil
}

// Dispatch runs in through the dispatch pipeline without HTTP routing.
func (a *App) Dispatch(ctx context.Context, in *Inbound) (*Response, error) {
	return a.dispatcher.Dispatch(ctx, in)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router { return a.router }

// Routes returns the route table in declaration order.
func (a *App) Routes() []Route { return a.dispatcher.Table().Routes() }

// Table returns the route table.
func (a *App) Table() *Table { return a.dispatcher.Table() }

// Hooks returns the hook bus. It is frozen once New returns.
func (a *App) Hooks() *hook.Bus { return a.hooks }

// Config returns the application configuration.
func (a *App) Config() config.Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) redactErrors() bool {
	if a.redact != nil {
		return *a.redact
	}
	return a.config.App.RedactErrors
}

// Debug reports whether debug mode is on.
func (a *App) Debug() bool {
	if a.debug != nil {
		return *a.debug
	}
	return a.config.App.Debug
}

// RouteCache returns the route cache, or nil when caching is off.
func (a *App) RouteCache() *RouteCache { return a.routeCache }

// ClearCache removes every engine key from the route cache.
func (a *App) ClearCache(ctx context.Context) error {
	if a.routeCache == nil {
		return nil
	}
	return a.routeCache.Clear(ctx)
}

// OpenAPI renders the OpenAPI document of the route table as JSON.
// With a route cache the rendered document is cached too.
func (a *App) OpenAPI(ctx context.Context) ([]byte, error) {
	render := func() ([]byte, error) {
		return OpenAPIDocument(a.Routes(), a.openAPIOptions()...).JSON()
	}
	if a.routeCache == nil || a.Debug() {
		return render()
	}
	return cache.GetOrSet(ctx, a.routeCache.Backend(), CacheKeyOpenAPI, func(context.Context) ([]byte, time.Duration, error) {
		data, err := render()
		return data, a.routeCache.ttl, err
	})
}

func (a *App) openAPIOptions() []openapi.Option {
	opts := []openapi.Option{openapi.WithTitle(a.config.App.Name)}
	if a.openAPIConfig != nil {
		opts = append(opts, a.openAPIConfig.options...)
	}
	return opts
}

// setupRoutes mounts middleware, service endpoints and every route.
func (a *App) setupRoutes() {
	a.router.NotFound(a.writeHTTPError(NewHTTPError(http.StatusNotFound, "route not found", nil)))
	a.router.MethodNotAllowed(a.writeHTTPError(NewHTTPError(http.StatusMethodNotAllowed, "", nil)))

	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	if a.healthConfig != nil {
		opts := []health.Option{health.WithLogger(a.logger)}
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, opts...))
	}
	if a.openAPIConfig != nil {
		a.router.Get(a.openAPIConfig.path, a.serveOpenAPI)
	}
	if a.metrics != nil && a.metricsPath != "" {
		a.router.Handle(a.metricsPath, a.metrics.Handler())
	}

	for _, route := range a.Routes() {
		a.router.Method(route.Method, route.Path, a.serveRoute(route))
	}
}

// serveRoute adapts one route to net/http.
func (a *App) serveRoute(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := NewInbound(r, pathArgs(r))
		if err != nil {
			a.handleError(w, r, err)
			return
		}
		resp, err := a.dispatcher.dispatchRoute(r.Context(), route, in)
		if err != nil {
			a.handleError(w, r, err)
			return
		}
		if err := resp.WriteTo(w); err != nil {
			a.logger.WarnContext(r.Context(), "response write failed", slog.String("error", err.Error()))
		}
	}
}

func (a *App) serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	data, err := a.OpenAPI(r.Context())
	if err != nil {
		a.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleError writes transport and hook failures. HTTPErrors keep their
// status; anything else is logged and answered with a bare 500.
func (a *App) handleError(w http.ResponseWriter, r *http.Request, err error) {
	he, ok := AsHTTPError(err)
	if !ok {
		a.logger.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	a.writeHTTPError(he)(w, r)
}

func (a *App) writeHTTPError(he *HTTPError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := NewResponse()
		if err := resp.JSON(he.Code, he.Body()); err != nil {
			http.Error(w, he.Message, he.Code)
			return
		}
		_ = resp.WriteTo(w)
	}
}

func pathArgs(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return map[string]string{}
	}
	args := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		if k == "*" {
			continue
		}
		args[k] = rctx.URLParams.Values[i]
	}
	return args
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	restina.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

type openAPIConfig struct {
	path    string
	options []openapi.Option
}
