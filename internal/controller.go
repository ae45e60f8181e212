package internal

import (
	"maps"
	"reflect"
	"slices"
)

// HandlerID identifies an endpoint: the controller's registered name and
// the endpoint name.
type HandlerID struct {
	Type   string `msgpack:"type" json:"type"`
	Method string `msgpack:"method" json:"method"`
}

func (h HandlerID) String() string {
	return h.Type + "::" + h.Method
}

// HandlerFunc handles one routed request. args holds the bound and
// validated parameters in declared order.
//
// The returned value is encoded as JSON unless it is a *Response, which is
// written as-is. Returning a validator.ValidationError produces a 400.
type HandlerFunc func(c Context, args Args) (any, error)

// Controller groups endpoints. Endpoints are discovered from the route tags
// in each endpoint's documentation.
//
//	func (u *Users) Endpoints() []restina.Endpoint {
//	    return []restina.Endpoint{
//	        restina.Handle("Show", u.Show, `
//	            Show a user.
//	            @route GET /users/{id}
//	            @param int $id user id {@v required|min:1}
//	        `),
//	    }
//	}
type Controller interface {
	Endpoints() []Endpoint
}

// Namer overrides the registered name of a controller.
// Without it the Go type name is used.
type Namer interface {
	ControllerName() string
}

// ControllerName returns the registered name of c.
func ControllerName(c Controller) string {
	if n, ok := c.(Namer); ok {
		if name := n.ControllerName(); name != "" {
			return name
		}
	}
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Endpoint is a handler function plus the documentation it is routed by.
// Build endpoints with Handle.
type Endpoint struct {
	Name     string
	Doc      string
	Func     HandlerFunc
	params   []ParamSpec
	defaults map[string]any
}

// Handle creates an endpoint named name. doc carries the free-text route
// and parameter tags.
func Handle(name string, fn HandlerFunc, doc string) Endpoint {
	return Endpoint{Name: name, Doc: doc, Func: fn}
}

// Default sets the value bound to param when no request source carries it.
// A parameter with a default is optional.
func (e Endpoint) Default(param string, value any) Endpoint {
	d := maps.Clone(e.defaults)
	if d == nil {
		d = make(map[string]any, 1)
	}
	d[param] = value
	e.defaults = d
	return e
}

// Param declares or overrides a parameter spec. A spec whose name matches a
// documented @param replaces it in place; otherwise it is appended.
func (e Endpoint) Param(spec ParamSpec) Endpoint {
	e.params = append(slices.Clone(e.params), spec)
	return e
}

// defaultValues returns the defaults set through Param and Default,
// keyed by parameter name.
func (e Endpoint) defaultValues() map[string]any {
	out := make(map[string]any, len(e.defaults))
	for _, p := range e.params {
		if p.HasDefault {
			out[p.Name] = p.Default
		}
	}
	maps.Copy(out, e.defaults)
	return out
}

// Params returns the parameter specs of the endpoint: documented @param
// tags first, then explicit overrides and defaults.
func (e Endpoint) Params() []ParamSpec {
	return buildParamSpecs(e.Doc, e.params, e.defaults)
}
