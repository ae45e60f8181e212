// Package internal implements the restina engine: route discovery from
// endpoint documentation, the compiled route table and its cache, parameter
// binding and the dispatch pipeline.
//
// This package is internal and should not be used directly. Import
// "github.com/ivupcn/restina-framework" instead, which re-exports the
// public API.
//
// # Core Types
//
//   - App: boots the engine, owns the chi router and runs the server
//   - Controller: groups Endpoints declared with Handle
//   - Table: compiled (method, path) index, serializable with msgpack
//   - RouteCache: persists the Table in a cache.Cache[[]byte]
//   - Dispatcher: binds, validates, invokes and encodes one request
//   - Context: what a handler sees of the request being dispatched
//
// # Endpoint Documentation
//
// Routes and parameters come from free text attached to each endpoint:
//
//	restina.Handle("Show", u.Show, `
//	    Show a user.
//	    @route GET /users/{id}
//	    @param int $id user id {@v required|min:1}
//	`)
//
// Only the first @route tag of an endpoint is used. Parameters bind, in
// order, from the path, the query string, the parsed body and finally a
// declared default. An array parameter named payload, data or body
// receives the whole body.
//
// # Dispatch
//
// Every request fires, in order: request.before_handle,
// controller.before_execute, parameter.validate_before, then after binding
// parameter.validate_after. The controller.result filter may rewrite the
// handler's return value before controller.after_execute and
// request.after_handle fire. A failed parameter fires
// parameter.validate_error and answers 400; a failed handler fires
// request.error and answers 500. A handler that returns its *Response skips
// the filter and both trailing actions. A null body field counts as absent.
//
// # Route Cache
//
// With a cache configured, New loads the table instead of scanning
// controllers. A cached table naming an endpoint that no longer exists is
// discarded and rebuilt. Parameter defaults of a cached table are taken
// from the live endpoints. Debug mode always rebuilds.
package internal
