package restina

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ivupcn/restina-framework/internal"
	"github.com/ivupcn/restina-framework/pkg/cache"
	"github.com/ivupcn/restina-framework/pkg/config"
	"github.com/ivupcn/restina-framework/pkg/health"
	"github.com/ivupcn/restina-framework/pkg/hook"
	"github.com/ivupcn/restina-framework/pkg/logger"
	"github.com/ivupcn/restina-framework/pkg/metrics"
	"github.com/ivupcn/restina-framework/pkg/openapi"
	"github.com/ivupcn/restina-framework/pkg/validator"
)

// Type aliases - public API
type (
	// App owns the route table, the hook bus and the HTTP router.
	App = internal.App

	// Controller groups endpoints discovered from their documentation.
	Controller = internal.Controller

	// Namer overrides the registered name of a controller.
	Namer = internal.Namer

	// Endpoint is a handler function plus the documentation it is routed by.
	Endpoint = internal.Endpoint

	// HandlerFunc handles one routed request.
	HandlerFunc = internal.HandlerFunc

	// HandlerID identifies an endpoint as "Type::Method".
	HandlerID = internal.HandlerID

	// Context gives handlers access to the request being dispatched.
	Context = internal.Context

	// Args holds bound parameter values in declared order.
	Args = internal.Args

	// ParamSpec describes how one handler parameter is bound.
	ParamSpec = internal.ParamSpec

	// ParamType is the declared type of a handler parameter.
	ParamType = internal.ParamType

	// Route describes one routed endpoint.
	Route = internal.Route

	// Table is the compiled route table.
	Table = internal.Table

	// RouteCache persists the route table.
	RouteCache = internal.RouteCache

	// Store is a route cache backend opened from configuration.
	Store = internal.Store

	// Dispatcher runs matched requests through the dispatch pipeline.
	Dispatcher = internal.Dispatcher

	// DispatcherOption configures a standalone Dispatcher.
	DispatcherOption = internal.DispatcherOption

	// Inbound is a transport-neutral request.
	Inbound = internal.Inbound

	// Response is the outgoing response assembled by the dispatcher.
	Response = internal.Response

	// Event is passed to every dispatch hook.
	Event = internal.Event

	// HTTPError is an error with an HTTP status.
	HTTPError = internal.HTTPError

	// ErrorBody is the JSON body of error responses.
	ErrorBody = internal.ErrorBody

	// Middleware wraps the router with net/http middleware.
	Middleware = internal.Middleware

	// Extractor tries value sources in order.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from a handler context.
	ExtractorSource = internal.ExtractorSource

	// DuplicatePolicy decides what happens to two routes on one method and path.
	DuplicatePolicy = internal.DuplicatePolicy

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ValidationError describes a single rule violation.
	ValidationError = validator.ValidationError

	// ContextExtractor extracts a slog attribute from context.
	// Used with logger.WithExtractors to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Config is the YAML application configuration.
	Config = config.Config
)

// Parameter types.
const (
	TypeInt      = internal.TypeInt
	TypeFloat    = internal.TypeFloat
	TypeBool     = internal.TypeBool
	TypeString   = internal.TypeString
	TypeArray    = internal.TypeArray
	TypeMixed    = internal.TypeMixed
	TypeRequest  = internal.TypeRequest
	TypeResponse = internal.TypeResponse
)

// Duplicate route policies.
const (
	RejectDuplicates = internal.RejectDuplicates
	LastWins         = internal.LastWins
)

// Hook names fired by the engine.
const (
	HookAppBootstrap            = hook.AppBootstrap
	HookAppStarted              = hook.AppStarted
	HookRequestBeforeHandle     = hook.RequestBeforeHandle
	HookControllerBeforeExecute = hook.ControllerBeforeExecute
	HookParameterValidateBefore = hook.ParameterValidateBefore
	HookParameterValidateAfter  = hook.ParameterValidateAfter
	HookParameterValidateError  = hook.ParameterValidateError
	HookControllerResult        = hook.ControllerResult
	HookControllerAfterExecute  = hook.ControllerAfterExecute
	HookRequestAfterHandle      = hook.RequestAfterHandle
	HookRequestError            = hook.RequestError
)

// Errors
var (
	ErrRouteNotFound  = internal.ErrRouteNotFound
	ErrDuplicateRoute = internal.ErrDuplicateRoute
	ErrInvalidRoute   = internal.ErrInvalidRoute
	ErrCorruptTable   = internal.ErrCorruptTable
	ErrNilController  = internal.ErrNilController
	ErrHandlerPanic   = internal.ErrHandlerPanic
)

// Constructors

// New boots an application: configuration, logger, hooks, route discovery
// or cache load, then routing.
//
// Example:
//
//	app, err := restina.New(
//	    restina.WithConfigFile("config/app.yaml"),
//	    restina.WithControllers(&UserController{repo: repo}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.Run(":8080")
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *App {
	return internal.MustNew(opts...)
}

// Run serves several Apps under path prefixes and blocks until shutdown.
//
// Example:
//
//	err := restina.Run(
//	    restina.Mount("/v1", v1),
//	    restina.Mount("/v2", v2),
//	    restina.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// Handle creates an endpoint named name routed by the tags in doc.
func Handle(name string, fn HandlerFunc, doc string) Endpoint {
	return internal.Handle(name, fn, doc)
}

// NewHTTPError creates an error answered with the given status.
func NewHTTPError(code int, message string, err error) *HTTPError {
	return internal.NewHTTPError(code, message, err)
}

// NewDispatcher creates a Dispatcher over table.
func NewDispatcher(table *Table, handlers map[HandlerID]HandlerFunc, opts ...DispatcherOption) *Dispatcher {
	return internal.NewDispatcher(table, handlers, opts...)
}

// NewInbound builds an Inbound from r, parsing its body.
func NewInbound(r *http.Request, pathArgs map[string]string) (*Inbound, error) {
	return internal.NewInbound(r, pathArgs)
}

// BuildTable compiles routes into a table.
func BuildTable(routes []Route, policy DuplicatePolicy) (*Table, error) {
	return internal.BuildTable(routes, internal.WithDuplicatePolicy(policy))
}

// Dispatcher options
var (
	WithDispatchHooks        = internal.WithDispatchHooks
	WithDispatchValidator    = internal.WithDispatchValidator
	WithDispatchLogger       = internal.WithDispatchLogger
	WithDispatchDebug        = internal.WithDispatchDebug
	WithDispatchRedactErrors = internal.WithDispatchRedactErrors
	WithDispatchObserver     = internal.WithDispatchObserver
	WithDispatchSanitizer    = internal.WithDispatchSanitizer
	WithDispatchTracer       = internal.WithDispatchTracer
)

// NewRouteCache wraps store as a route cache.
func NewRouteCache(store cache.Cache[[]byte], ttl time.Duration, log *slog.Logger) *RouteCache {
	return internal.NewRouteCache(store, ttl, log)
}

// OpenStore opens the route cache backend selected by app.cache.
func OpenStore(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	return internal.OpenStore(ctx, cfg, log)
}

// OpenAPIDocument describes routes as an OpenAPI 3.0 document.
func OpenAPIDocument(routes []Route, opts ...openapi.Option) *openapi.Document {
	return internal.OpenAPIDocument(routes, opts...)
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// App options

// WithControllers registers controllers whose documented endpoints become routes.
func WithControllers(c ...Controller) Option { return internal.WithControllers(c...) }

// WithConfig sets the application configuration.
func WithConfig(cfg Config) Option { return internal.WithConfig(cfg) }

// WithConfigFile loads the configuration from a YAML file.
func WithConfigFile(path string) Option { return internal.WithConfigFile(path) }

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option { return internal.WithLogger(l) }

// WithDebug overrides app.debug.
func WithDebug(on bool) Option { return internal.WithDebug(on) }

// WithRedactErrors overrides app.redact_errors.
func WithRedactErrors(on bool) Option { return internal.WithRedactErrors(on) }

// WithHookBus uses b instead of a fresh bus.
func WithHookBus(b *hook.Bus) Option { return internal.WithHookBus(b) }

// WithHookRegistry resolves callback names in the hooks configuration.
func WithHookRegistry(r *hook.Registry) Option { return internal.WithHookRegistry(r) }

// WithHooks runs fn against the hook bus before it is frozen.
func WithHooks(fn func(*hook.Bus) error) Option { return internal.WithHooks(fn) }

// WithAction subscribes fn to an action hook.
func WithAction(name string, fn hook.ActionFunc, opts ...hook.HookOption) Option {
	return internal.WithAction(name, fn, opts...)
}

// WithFilter subscribes fn to a filter hook.
func WithFilter(name string, fn hook.FilterFunc, opts ...hook.HookOption) Option {
	return internal.WithFilter(name, fn, opts...)
}

// WithValidator sets the rule validator.
func WithValidator(v *validator.Validator) Option { return internal.WithValidator(v) }

// WithRouteCache caches the route table in c.
func WithRouteCache(c cache.Cache[[]byte], ttl time.Duration) Option {
	return internal.WithRouteCache(c, ttl)
}

// WithDuplicateRoutes selects the duplicate route policy.
func WithDuplicateRoutes(p DuplicatePolicy) Option { return internal.WithDuplicateRoutes(p) }

// WithInputSanitizer passes every string request value through fn.
func WithInputSanitizer(fn func(string) string) Option { return internal.WithInputSanitizer(fn) }

// WithMiddleware adds net/http middleware in front of every route.
func WithMiddleware(mw ...Middleware) Option { return internal.WithMiddleware(mw...) }

// WithHealthChecks enables liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option { return internal.WithHealthChecks(opts...) }

// WithOpenAPI serves the OpenAPI document at path.
func WithOpenAPI(path string, opts ...openapi.Option) Option {
	return internal.WithOpenAPI(path, opts...)
}

// WithMetrics records dispatch metrics in m and serves them at path.
func WithMetrics(m *metrics.Collector, path string) Option { return internal.WithMetrics(m, path) }

// WithTracer sets the tracer for dispatch spans.
func WithTracer(t trace.Tracer) Option { return internal.WithTracer(t) }

// WithShutdownHook registers a cleanup function run during graceful shutdown.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption { return internal.WithLivenessPath(path) }

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption { return internal.WithReadinessPath(path) }

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the listen address.
func Address(addr string) RunOption { return internal.Address(addr) }

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption { return internal.Logger(l) }

// ShutdownTimeout sets the graceful shutdown timeout.
func ShutdownTimeout(d time.Duration) RunOption { return internal.ShutdownTimeout(d) }

// StartupHook registers a function run once the listener is bound.
func StartupHook(fn func(context.Context) error) RunOption { return internal.StartupHook(fn) }

// ShutdownHook registers a function run after the server stops.
func ShutdownHook(fn func(context.Context) error) RunOption { return internal.ShutdownHook(fn) }

// Mount serves app under prefix.
func Mount(prefix string, app *App) RunOption { return internal.Mount(prefix, app) }

// WithContext sets the base context; cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption { return internal.WithContext(ctx) }

// Helpers

// AppFromContext returns the application dispatching the request.
func AppFromContext(ctx context.Context) (*App, bool) { return internal.AppFromContext(ctx) }

// ContextValue returns the value stored under key asserted to T.
func ContextValue[T any](c Context, key any) T { return internal.ContextValue[T](c, key) }

// ArgAs returns a bound argument asserted to T.
func ArgAs[T any](a Args, name string) T { return internal.ArgAs[T](a, name) }

// NewExtractor creates an Extractor that tries sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor { return internal.NewExtractor(sources...) }

// Extractor sources
var (
	FromHeader      = internal.FromHeader
	FromQuery       = internal.FromQuery
	FromParam       = internal.FromParam
	FromBody        = internal.FromBody
	FromValue       = internal.FromValue
	FromBearerToken = internal.FromBearerToken
)

// IsValidationError reports whether err is a parameter validation failure.
func IsValidationError(err error) bool { return validator.IsValidationError(err) }
