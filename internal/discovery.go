package internal

import (
	"log/slog"
	"reflect"

	"github.com/ivupcn/restina-framework/pkg/annotation"
)

// HandlerType is a controller selected for routing under its registered
// name.
type HandlerType struct {
	Controller Controller
	Name       string
}

// Scan selects the controllers that expose at least one routed endpoint.
// The result keeps input order and holds each controller name once; the
// first controller registered under a name wins.
func Scan(controllers []Controller) []HandlerType {
	seen := make(map[string]struct{}, len(controllers))
	var out []HandlerType
	for _, c := range controllers {
		if isNil(c) || !hasRoutedEndpoint(c) {
			continue
		}
		name := ControllerName(c)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, HandlerType{Name: name, Controller: c})
	}
	return out
}

// ExtractRoutes returns one route per routed endpoint in controller order,
// then endpoint declaration order. Only the first route tag of an endpoint
// is used; endpoints without one are skipped.
func ExtractRoutes(types []HandlerType, logger *slog.Logger) []Route {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var routes []Route
	for _, ht := range types {
		seen := make(map[string]struct{})
		for _, ep := range ht.Controller.Endpoints() {
			tags := annotation.ParseRoutes(ep.Doc)
			if len(tags) == 0 || ep.Func == nil {
				continue
			}
			id := HandlerID{Type: ht.Name, Method: ep.Name}
			if _, dup := seen[ep.Name]; dup {
				logger.Warn("duplicate endpoint name ignored", slog.String("handler", id.String()))
				continue
			}
			seen[ep.Name] = struct{}{}

			if len(tags) > 1 {
				logger.Warn("extra route tags ignored",
					slog.String("handler", id.String()),
					slog.Int("ignored", len(tags)-1),
				)
			}
			routes = append(routes, Route{
				Handler: id,
				Method:  tags[0].Method,
				Path:    tags[0].Path,
				Doc:     ep.Doc,
				Params:  ep.Params(),
			})
		}
	}
	return routes
}

// LiveEndpoints maps every routed endpoint of types to its function.
func LiveEndpoints(types []HandlerType) map[HandlerID]HandlerFunc {
	out := make(map[HandlerID]HandlerFunc)
	for _, ht := range types {
		for _, ep := range ht.Controller.Endpoints() {
			if ep.Func == nil || !annotation.HasRoute(ep.Doc) {
				continue
			}
			id := HandlerID{Type: ht.Name, Method: ep.Name}
			if _, ok := out[id]; !ok {
				out[id] = ep.Func
			}
		}
	}
	return out
}

// LiveDefaults maps every routed endpoint of types to its parameter
// defaults. Endpoints without defaults are omitted.
func LiveDefaults(types []HandlerType) map[HandlerID]map[string]any {
	out := make(map[HandlerID]map[string]any)
	for _, ht := range types {
		for _, ep := range ht.Controller.Endpoints() {
			if ep.Func == nil || !annotation.HasRoute(ep.Doc) {
				continue
			}
			id := HandlerID{Type: ht.Name, Method: ep.Name}
			if _, ok := out[id]; ok {
				continue
			}
			if d := ep.defaultValues(); len(d) > 0 {
				out[id] = d
			}
		}
	}
	return out
}

func hasRoutedEndpoint(c Controller) bool {
	for _, ep := range c.Endpoints() {
		if ep.Func != nil && annotation.HasRoute(ep.Doc) {
			return true
		}
	}
	return false
}

func isNil(c Controller) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
