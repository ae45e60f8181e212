package internal

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/vmihailenco/msgpack/v5"
)

// tableFormat versions the serialized table layout.
const tableFormat = 1

// Route describes one routed endpoint. Routes are immutable once a table
// is built.
type Route struct {
	Handler HandlerID   `msgpack:"handler" json:"handler"`
	Method  string      `msgpack:"method" json:"method"`
	Path    string      `msgpack:"path" json:"path"`
	Doc     string      `msgpack:"doc,omitempty" json:"doc,omitempty"`
	Params  []ParamSpec `msgpack:"params,omitempty" json:"params,omitempty"`
}

func (r Route) String() string {
	return r.Method + " " + r.Path + " -> " + r.Handler.String()
}

// DuplicatePolicy decides what BuildTable does with a second route for the
// same method and path.
type DuplicatePolicy int

const (
	// RejectDuplicates fails the build with ErrDuplicateRoute.
	RejectDuplicates DuplicatePolicy = iota
	// LastWins replaces the earlier route in place.
	LastWins
)

// TableOption configures BuildTable.
type TableOption func(*tableOptions)

type tableOptions struct {
	duplicates DuplicatePolicy
}

// WithDuplicatePolicy sets the duplicate (method, path) policy.
func WithDuplicatePolicy(p DuplicatePolicy) TableOption {
	return func(o *tableOptions) {
		o.duplicates = p
	}
}

type routeKey struct {
	method string
	path   string
}

// Table is the compiled route table. It is safe for concurrent reads.
type Table struct {
	index  map[routeKey]int
	mux    *chi.Mux
	routes []Route
}

// BuildTable indexes routes by (method, path) and compiles their patterns.
func BuildTable(routes []Route, opts ...TableOption) (*Table, error) {
	o := &tableOptions{}
	for _, opt := range opts {
		opt(o)
	}

	t := &Table{
		index:  make(map[routeKey]int, len(routes)),
		mux:    chi.NewMux(),
		routes: make([]Route, 0, len(routes)),
	}
	for _, r := range routes {
		k := routeKey{method: r.Method, path: r.Path}
		if i, ok := t.index[k]; ok {
			if o.duplicates != LastWins {
				return nil, fmt.Errorf("%w: %s %s declared by %s and %s",
					ErrDuplicateRoute, r.Method, r.Path, t.routes[i].Handler, r.Handler)
			}
			t.routes[i] = r
			continue
		}
		if err := t.compile(r); err != nil {
			return nil, err
		}
		t.index[k] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// compile registers the pattern on the matcher; chi reports invalid
// patterns by panicking.
func (t *Table) compile(r Route) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s %s: %v", ErrInvalidRoute, r.Method, r.Path, rec)
		}
	}()
	t.mux.MethodFunc(r.Method, r.Path, func(http.ResponseWriter, *http.Request) {})
	return nil
}

// Lookup returns the route declared for method and pattern.
func (t *Table) Lookup(method, pattern string) (Route, bool) {
	i, ok := t.index[routeKey{method: method, path: pattern}]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Match resolves a concrete request path and returns the route with its
// path arguments.
func (t *Table) Match(method, path string) (Route, map[string]string, bool) {
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, method, path) || len(rctx.RoutePatterns) == 0 {
		return Route{}, nil, false
	}
	r, ok := t.Lookup(method, rctx.RoutePatterns[len(rctx.RoutePatterns)-1])
	if !ok {
		return Route{}, nil, false
	}

	args := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		args[k] = rctx.URLParams.Values[i]
	}
	return r, args, true
}

// Routes returns a copy of the routes in build order.
func (t *Table) Routes() []Route {
	return slices.Clone(t.routes)
}

// Len returns the number of routes.
func (t *Table) Len() int { return len(t.routes) }

// Handlers returns the distinct handler types in route order.
func (t *Table) Handlers() []string {
	var out []string
	for _, r := range t.routes {
		if !slices.Contains(out, r.Handler.Type) {
			out = append(out, r.Handler.Type)
		}
	}
	return out
}

// RestoreDefaults returns a copy of t whose parameter defaults are replaced
// by the values in defaults, keyed by handler. A decoded table carries
// defaults in their msgpack types (int8 for 10, []any for []string);
// restoring them from live endpoints makes it dispatch like a fresh build.
func (t *Table) RestoreDefaults(defaults map[HandlerID]map[string]any) *Table {
	out := &Table{index: t.index, mux: t.mux, routes: make([]Route, len(t.routes))}
	for i, r := range t.routes {
		if d, ok := defaults[r.Handler]; ok {
			r.Params = slices.Clone(r.Params)
			for j := range r.Params {
				if v, ok := d[r.Params[j].Name]; ok && r.Params[j].HasDefault {
					r.Params[j].Default = v
				}
			}
		}
		out.routes[i] = r
	}
	return out
}

type tableBlob struct {
	Routes []Route `msgpack:"routes"`
	Format int     `msgpack:"format"`
}

// MarshalBinary encodes the table with msgpack.
func (t *Table) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(tableBlob{Format: tableFormat, Routes: t.routes})
}

// UnmarshalTable rebuilds a table from MarshalBinary output.
func UnmarshalTable(data []byte, opts ...TableOption) (*Table, error) {
	var blob tableBlob
	if err := msgpack.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}
	if blob.Format != tableFormat {
		return nil, fmt.Errorf("%w: format %d", ErrCorruptTable, blob.Format)
	}
	return BuildTable(blob.Routes, opts...)
}
