package internal

import (
	"slices"
	"strings"

	"github.com/ivupcn/restina-framework/pkg/openapi"
)

// OpenAPIDocument describes routes as an OpenAPI 3.0 document.
// Controllers are grouped by tag, with a trailing "Controller" trimmed.
func OpenAPIDocument(routes []Route, opts ...openapi.Option) *openapi.Document {
	out := make([]openapi.Route, 0, len(routes))
	for _, r := range routes {
		or := openapi.Route{
			Method:      r.Method,
			Path:        r.Path,
			Doc:         r.Doc,
			Tag:         strings.TrimSuffix(r.Handler.Type, "Controller"),
			OperationID: r.Handler.Type + "." + r.Handler.Method,
			Params:      make([]openapi.Param, 0, len(r.Params)),
		}
		for _, p := range r.Params {
			or.Params = append(or.Params, openapi.Param{
				Name:        p.Name,
				Type:        string(p.Type),
				Description: p.Description,
				Rules:       p.Rules,
				Optional:    p.Optional,
				Default:     p.Default,
				HasDefault:  p.HasDefault,
				Whole:       p.Type == TypeArray && slices.Contains(reservedBodyNames, p.Name),
				Skip:        p.Special(),
			})
		}
		out = append(out, or)
	}
	return openapi.Generate(out, opts...)
}
