package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivupcn/restina-framework/pkg/hook"
	"github.com/ivupcn/restina-framework/pkg/logger"
	"github.com/ivupcn/restina-framework/pkg/validator"
)

// TracerName is the instrumentation name of dispatch spans.
const TracerName = "github.com/ivupcn/restina-framework"

// Event is passed to every dispatch hook. Fields fill in as dispatch
// progresses: Args after binding, Result after invocation, Err on failure.
type Event struct {
	started  time.Time
	Request  *http.Request
	Response *Response
	Result   any
	Err      error
	Args     Args
	Route    Route
	Status   int
}

// Handler returns the matched handler identity as "Type::Method".
func (e *Event) Handler() string { return e.Route.Handler.String() }

// RoutePattern returns the matched route pattern.
func (e *Event) RoutePattern() string { return e.Route.Path }

// HTTPMethod returns the matched route method.
func (e *Event) HTTPMethod() string { return e.Route.Method }

// StatusCode returns the response status, or 0 before encoding.
func (e *Event) StatusCode() int { return e.Status }

// Elapsed returns the time since dispatch started.
func (e *Event) Elapsed() time.Duration { return time.Since(e.started) }

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchHooks sets the hook bus. Default: an empty bus.
func WithDispatchHooks(b *hook.Bus) DispatcherOption {
	return func(d *Dispatcher) {
		if b != nil {
			d.hooks = b
		}
	}
}

// WithDispatchValidator sets the rule validator. Default: validator.Default().
func WithDispatchValidator(v *validator.Validator) DispatcherOption {
	return func(d *Dispatcher) {
		if v != nil {
			d.validator = v
		}
	}
}

// WithDispatchLogger sets the dispatch logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatchDebug keeps internal error messages in 500 bodies even when
// WithDispatchRedactErrors is set.
func WithDispatchDebug(on bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.debug = on
	}
}

// WithDispatchRedactErrors replaces the message of 500 bodies with the
// generic status text. Default: off, the fault's message is written.
func WithDispatchRedactErrors(on bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.redact = on
	}
}

// WithDispatchObserver calls fn once for every request the dispatcher
// answers, after the trailing hooks.
func WithDispatchObserver(fn func(*Event)) DispatcherOption {
	return func(d *Dispatcher) {
		d.observe = fn
	}
}

// WithDispatchSanitizer passes every string request value through fn
// before coercion.
func WithDispatchSanitizer(fn func(string) string) DispatcherOption {
	return func(d *Dispatcher) {
		d.binder.sanitize = fn
	}
}

// WithDispatchTracer overrides the tracer. Default: the global provider.
func WithDispatchTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

func withDispatchApp(a *App) DispatcherOption {
	return func(d *Dispatcher) {
		d.app = a
	}
}

// Dispatcher runs matched requests through binding, validation, the
// handler, hooks and response encoding. It is safe for concurrent use.
type Dispatcher struct {
	tracer    trace.Tracer
	observe   func(*Event)
	app       *App
	table     *Table
	handlers  map[HandlerID]HandlerFunc
	hooks     *hook.Bus
	validator *validator.Validator
	logger    *slog.Logger
	binder    binder
	debug     bool
	redact    bool
}

// NewDispatcher creates a Dispatcher over table. handlers must contain a
// function for every route in table.
func NewDispatcher(table *Table, handlers map[HandlerID]HandlerFunc, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		table:     table,
		handlers:  handlers,
		hooks:     hook.New(),
		validator: validator.Default(),
		logger:    logger.NewNope(),
		tracer:    otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Table returns the route table.
func (d *Dispatcher) Table() *Table { return d.table }

// Dispatch matches in against the table and runs the matched handler.
// An unmatched request returns ErrRouteNotFound. Hook errors are returned
// unchanged; handler and validation failures are encoded in the response.
func (d *Dispatcher) Dispatch(ctx context.Context, in *Inbound) (*Response, error) {
	route, args, ok := d.table.Match(in.Method, in.Path)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrRouteNotFound, in.Method, in.Path)
	}
	if in.PathArgs == nil {
		in.PathArgs = args
	}
	return d.dispatchRoute(ctx, route, in)
}

func (d *Dispatcher) dispatchRoute(ctx context.Context, route Route, in *Inbound) (*Response, error) {
	fn, ok := d.handlers[route.Handler]
	if !ok {
		return nil, fmt.Errorf("%w: no handler for %s", ErrRouteNotFound, route.Handler)
	}

	if d.app != nil {
		ctx = WithApp(ctx, d.app)
	}
	ctx, span := d.tracer.Start(ctx, "restina.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", route.Method),
			attribute.String("http.route", route.Path),
			attribute.String("restina.handler", route.Handler.String()),
		),
	)
	defer span.End()

	if in.Request != nil {
		in.Request = in.Request.WithContext(ctx)
	}

	resp := NewResponse()
	ev := &Event{started: time.Now(), Route: route, Request: in.Request, Response: resp}
	c := newContext(ctx, in, route, resp, d.logger)

	for _, name := range []string{hook.RequestBeforeHandle, hook.ControllerBeforeExecute, hook.ParameterValidateBefore} {
		if err := d.hooks.DoAction(ctx, name, ev); err != nil {
			return nil, d.hookFailed(ctx, span, name, err)
		}
	}

	args, err := d.bindArgs(ctx, in, route, resp)
	if err != nil {
		return d.validationFailed(ctx, span, ev, err)
	}
	ev.Args = args

	if err := d.hooks.DoAction(ctx, hook.ParameterValidateAfter, ev); err != nil {
		return nil, d.hookFailed(ctx, span, hook.ParameterValidateAfter, err)
	}

	result, err := invoke(c, fn, args)
	if err != nil {
		if validator.IsValidationError(err) {
			return d.validationFailed(ctx, span, ev, err)
		}
		return d.faulted(ctx, span, ev, err)
	}

	// A finished response is written as is; the result filter and the
	// trailing actions do not run.
	if r, ok := result.(*Response); ok && r != nil {
		ev.Result = r
		ev.Response = r
		ev.Status = r.Status()
		return d.finish(ctx, span, ev)
	}

	result, err = d.hooks.ApplyFilters(ctx, hook.ControllerResult, result, ev)
	if err != nil {
		return nil, d.hookFailed(ctx, span, hook.ControllerResult, err)
	}
	ev.Result = result

	if err := d.hooks.DoAction(ctx, hook.ControllerAfterExecute, ev); err != nil {
		return nil, d.hookFailed(ctx, span, hook.ControllerAfterExecute, err)
	}

	status := http.StatusOK
	if hasErrorKey(result) {
		status = http.StatusBadRequest
	}
	if err := resp.JSON(status, result); err != nil {
		return d.faulted(ctx, span, ev, fmt.Errorf("encode result: %w", err))
	}
	ev.Status = status

	return d.finish(ctx, span, ev, hook.RequestAfterHandle)
}

// bindArgs binds and validates parameters one at a time in declared order.
func (d *Dispatcher) bindArgs(ctx context.Context, in *Inbound, route Route, resp *Response) (Args, error) {
	var args Args
	for _, spec := range route.Params {
		v, err := d.binder.bind(in, spec, resp)
		if err != nil {
			return args, err
		}
		if !spec.Special() {
			if v, err = d.validator.Evaluate(ctx, spec.Name, v, spec.Rules); err != nil {
				return args, err
			}
		}
		args.add(spec.Name, v)
	}
	return args, nil
}

// invoke calls fn, converting a panic into an ErrHandlerPanic error.
func invoke(c Context, fn HandlerFunc, args Args) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return fn(c, args)
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("%v", e.value) }

func (e *panicError) Unwrap() error { return ErrHandlerPanic }

func (d *Dispatcher) validationFailed(ctx context.Context, span trace.Span, ev *Event, err error) (*Response, error) {
	ve, _ := validator.AsValidationError(err)
	ev.Err = err
	ev.Status = http.StatusBadRequest
	span.SetAttributes(attribute.String("restina.validation.field", ve.Field))

	d.logger.InfoContext(ctx, "parameter validation failed",
		slog.String("handler", ev.Handler()),
		slog.String("field", ve.Field),
		slog.String("rule", ve.Rule),
	)

	if hookErr := d.hooks.DoAction(ctx, hook.ParameterValidateError, ev); hookErr != nil {
		return nil, d.hookFailed(ctx, span, hook.ParameterValidateError, hookErr)
	}
	if encErr := ev.Response.JSON(http.StatusBadRequest, ErrorBody{Error: validationErrorTitle, Message: ve.Message}); encErr != nil {
		return nil, encErr
	}
	d.observed(ev)
	return ev.Response, nil
}

func (d *Dispatcher) faulted(ctx context.Context, span trace.Span, ev *Event, err error) (*Response, error) {
	ev.Err = err
	status := http.StatusInternalServerError
	body := ErrorBody{Error: internalErrorTitle, Message: err.Error()}
	if he, ok := AsHTTPError(err); ok && he.Code < http.StatusInternalServerError {
		status = he.Code
		body = he.Body()
	} else if d.redact && !d.debug {
		body.Message = http.StatusText(status)
	}
	ev.Status = status

	attrs := []any{
		slog.String("handler", ev.Handler()),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	var pe *panicError
	if errors.As(err, &pe) {
		attrs = append(attrs, slog.String("stack", string(pe.stack)))
	}

	if status >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.ErrorContext(ctx, "handler failed", attrs...)

		if hookErr := d.hooks.DoAction(ctx, hook.RequestError, ev); hookErr != nil {
			return nil, d.hookFailed(ctx, span, hook.RequestError, hookErr)
		}
	} else {
		d.logger.InfoContext(ctx, "handler rejected request", attrs...)
	}

	if encErr := ev.Response.JSON(status, body); encErr != nil {
		return nil, encErr
	}
	d.observed(ev)
	return ev.Response, nil
}

// finish fires the trailing actions and logs the outcome.
func (d *Dispatcher) finish(ctx context.Context, span trace.Span, ev *Event, hooks ...string) (*Response, error) {
	for _, name := range hooks {
		if err := d.hooks.DoAction(ctx, name, ev); err != nil {
			return nil, d.hookFailed(ctx, span, name, err)
		}
	}
	span.SetAttributes(attribute.Int("http.status_code", ev.Status))
	span.SetStatus(codes.Ok, "")
	d.logger.DebugContext(ctx, "request dispatched",
		slog.String("handler", ev.Handler()),
		slog.Int("status", ev.Status),
		slog.Duration("duration", ev.Elapsed()),
	)
	d.observed(ev)
	return ev.Response, nil
}

func (d *Dispatcher) observed(ev *Event) {
	if d.observe != nil {
		d.observe(ev)
	}
}

func (d *Dispatcher) hookFailed(ctx context.Context, span trace.Span, name string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	d.logger.ErrorContext(ctx, "hook failed", slog.String("hook", name), slog.String("error", err.Error()))
	return err
}
