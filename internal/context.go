package internal

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type appKey struct{}

// WithApp attaches the owning application to ctx.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// AppFromContext returns the application that is dispatching the request.
func AppFromContext(ctx context.Context) (*App, bool) {
	app, ok := ctx.Value(appKey{}).(*App)
	return app, ok && app != nil
}

// Context gives handlers access to the request being dispatched.
// It implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the inbound request with the dispatch context attached.
	Request() *http.Request

	// Response returns the outgoing response. Returning it from a handler
	// skips result filtering and encoding.
	Response() *Response

	// Context returns the dispatch context.
	Context() context.Context

	// Route returns the matched route.
	Route() Route

	// Param returns a path argument, or "".
	Param(name string) string

	// Query returns the first query value for name, or "".
	Query(name string) string

	// Body returns the parsed request body, or nil.
	Body() map[string]any

	// Header returns a request header.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// App returns the owning application, or nil outside an App.
	App() *App

	// Logger returns the dispatcher logger.
	Logger() *slog.Logger

	// Set stores a request-scoped value.
	Set(key, value any)

	// Get returns a value stored with Set, or from the request context.
	Get(key any) any
}

type requestContext struct {
	ctx    context.Context
	in     *Inbound
	resp   *Response
	logger *slog.Logger
	values map[any]any
	route  Route
	mu     sync.RWMutex
}

func newContext(ctx context.Context, in *Inbound, route Route, resp *Response, logger *slog.Logger) *requestContext {
	return &requestContext{ctx: ctx, in: in, route: route, resp: resp, logger: logger}
}

func (c *requestContext) Deadline() (time.Time, bool) { return c.ctx.Deadline() }

func (c *requestContext) Done() <-chan struct{} { return c.ctx.Done() }

func (c *requestContext) Err() error { return c.ctx.Err() }

func (c *requestContext) Value(key any) any { return c.Get(key) }

func (c *requestContext) Request() *http.Request { return c.in.Request }

func (c *requestContext) Response() *Response { return c.resp }

func (c *requestContext) Context() context.Context { return c.ctx }

func (c *requestContext) Route() Route { return c.route }

func (c *requestContext) Param(name string) string { return c.in.PathArgs[name] }

func (c *requestContext) Query(name string) string { return c.in.Query.Get(name) }

func (c *requestContext) Body() map[string]any { return c.in.Body }

func (c *requestContext) Header(name string) string {
	if c.in.Request == nil {
		return ""
	}
	return c.in.Request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.resp.Header().Set(name, value)
}

func (c *requestContext) App() *App {
	app, _ := AppFromContext(c.ctx)
	return app
}

func (c *requestContext) Logger() *slog.Logger { return c.logger }

func (c *requestContext) Set(key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = value
}

func (c *requestContext) Get(key any) any {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return v
	}
	return c.ctx.Value(key)
}
