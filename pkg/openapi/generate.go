package openapi

import (
	"strconv"
	"strings"

	"github.com/ivupcn/restina-framework/pkg/annotation"
)

const (
	contentJSON = "application/json"
	errorRef    = "#/components/schemas/Error"
)

// Route is one documented endpoint.
type Route struct {
	Method string
	Path   string
	// Doc is the endpoint documentation; its prose becomes the summary and
	// description.
	Doc string
	// Tag groups operations, usually the controller name.
	Tag         string
	OperationID string
	Params      []Param
}

// Param is one documented handler parameter.
type Param struct {
	Default     any
	Name        string
	Type        string
	Description string
	Rules       []annotation.Rule
	Optional    bool
	HasDefault  bool
	// Whole marks a parameter bound to the entire request body.
	Whole bool
	// Skip marks a parameter that is not request data.
	Skip bool
}

// Option configures Generate.
type Option func(*Document)

// WithTitle sets info.title. Default: "API".
func WithTitle(title string) Option {
	return func(d *Document) {
		if title != "" {
			d.Info.Title = title
		}
	}
}

// WithDescription sets info.description.
func WithDescription(desc string) Option {
	return func(d *Document) {
		d.Info.Description = desc
	}
}

// WithVersion sets info.version. Default: "1.0.0".
func WithVersion(v string) Option {
	return func(d *Document) {
		if v != "" {
			d.Info.Version = v
		}
	}
}

// WithServer appends a server entry.
func WithServer(url, description string) Option {
	return func(d *Document) {
		if url != "" {
			d.Servers = append(d.Servers, Server{URL: url, Description: description})
		}
	}
}

// Generate builds a document describing routes.
func Generate(routes []Route, opts ...Option) *Document {
	doc := &Document{
		OpenAPI: Version,
		Info:    Info{Title: "API", Version: "1.0.0"},
		Paths:   make(map[string]PathItem),
		Components: Components{Schemas: map[string]*Schema{
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error":   {Type: "string", Description: "error kind"},
					"message": {Type: "string", Description: "error detail"},
				},
			},
		}},
	}
	for _, opt := range opts {
		opt(doc)
	}

	for _, r := range routes {
		item, ok := doc.Paths[r.Path]
		if !ok {
			item = make(PathItem)
			doc.Paths[r.Path] = item
		}
		item[strings.ToLower(r.Method)] = operation(r)
	}
	return doc
}

func operation(r Route) *Operation {
	summary, description := annotation.Summary(r.Doc)
	op := &Operation{
		Summary:     summary,
		Description: description,
		OperationID: r.OperationID,
		Responses: map[string]Response{
			"200": {Description: "Successful response", Content: jsonContent(&Schema{Type: "object"})},
			"500": {Description: "Internal error", Content: jsonContent(&Schema{Ref: errorRef})},
		},
	}
	if op.Summary == "" {
		op.Summary = r.OperationID
	}
	if r.Tag != "" {
		op.Tags = []string{r.Tag}
	}

	hasBody := bodyMethod(r.Method)
	body := &Schema{Type: "object", Properties: map[string]*Schema{}}
	documented, whole := false, false

	for _, p := range r.Params {
		if p.Skip {
			continue
		}
		documented = true
		schema := schemaFor(p)

		switch {
		case inPath(r.Path, p.Name):
			op.Parameters = append(op.Parameters, Parameter{
				Name: p.Name, In: "path", Description: schema.Description, Required: true, Schema: schema,
			})
		case p.Whole:
			whole = true
			body.Description = schema.Description
		case hasBody:
			body.Properties[p.Name] = schema
			if required(p) {
				body.Required = append(body.Required, p.Name)
			}
		default:
			op.Parameters = append(op.Parameters, Parameter{
				Name: p.Name, In: "query", Description: schema.Description, Required: required(p), Schema: schema,
			})
		}
	}
	for _, p := range op.Parameters {
		p.Schema.Description = ""
	}

	if hasBody && (whole || len(body.Properties) > 0) {
		op.RequestBody = &RequestBody{Required: true, Content: jsonContent(body)}
	}
	if documented {
		op.Responses["400"] = Response{Description: "Validation error", Content: jsonContent(&Schema{Ref: errorRef})}
	}
	return op
}

// schemaFor maps the declared type and validation rules to a schema.
func schemaFor(p Param) *Schema {
	s := &Schema{Type: jsonType(p.Type), Description: p.Description}
	if p.HasDefault {
		s.Default = p.Default
	}
	var notes []string

	for _, rule := range p.Rules {
		v := rule.Value
		switch rule.Name {
		case "equals":
			s.Enum = []string{v}
		case "different":
			notes = append(notes, "must not equal "+v)
		case "accepted", "boolean":
			s.Type = "boolean"
		case "numeric":
			if s.Type != "number" && s.Type != "integer" {
				s.Type = "number"
			}
		case "integer":
			s.Type = "integer"
		case "array":
			s.Type = "array"
		case "length":
			s.MinLength, s.MaxLength = intPtr(v), intPtr(v)
		case "lengthBetween":
			if lo, hi, ok := strings.Cut(v, ","); ok {
				s.MinLength, s.MaxLength = intPtr(lo), intPtr(hi)
			}
		case "lengthMin":
			s.MinLength = intPtr(v)
		case "lengthMax":
			s.MaxLength = intPtr(v)
		case "min":
			s.Minimum = floatPtr(v)
		case "max":
			s.Maximum = floatPtr(v)
		case "in":
			s.Enum = splitTrim(v)
		case "notIn":
			notes = append(notes, "must not be one of "+v)
		case "ip":
			s.Format = "ipv4"
		case "email":
			s.Format = "email"
		case "url", "urlActive":
			s.Format = "uri"
		case "alpha":
			s.Pattern = "^[a-zA-Z]+$"
		case "alphaNum":
			s.Pattern = "^[a-zA-Z0-9]+$"
		case "slug":
			s.Pattern = "^[a-z0-9_-]+$"
		case "regex":
			s.Pattern = stripDelimiters(v)
		case "date":
			s.Format = "date"
		case "dateFormat":
			s.Format = "date"
			notes = append(notes, "date format "+v)
		case "dateBefore":
			notes = append(notes, "before "+v)
		case "dateAfter":
			notes = append(notes, "after "+v)
		case "contains":
			notes = append(notes, "must contain "+v)
		case "creditCard":
			s.Pattern = "^[0-9 ]+$"
		}
	}
	if len(notes) > 0 {
		s.Description = strings.TrimSpace(s.Description + " (" + strings.Join(notes, "; ") + ")")
	}
	if s.Type == "array" {
		s.Enum = nil
	}
	return s
}

func required(p Param) bool {
	if annotation.HasRule(p.Rules, "optional") {
		return false
	}
	return !p.Optional || annotation.HasRule(p.Rules, "required")
}

func jsonType(t string) string {
	switch strings.ToLower(t) {
	case "int", "integer":
		return "integer"
	case "float", "double", "number":
		return "number"
	case "bool", "boolean":
		return "boolean"
	case "array", "object", "map":
		return "object"
	default:
		return "string"
	}
}

func inPath(path, name string) bool {
	return strings.Contains(path, "{"+name+"}") || strings.Contains(path, "{"+name+":")
}

func bodyMethod(m string) bool {
	switch strings.ToUpper(m) {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

func jsonContent(s *Schema) map[string]MediaType {
	return map[string]MediaType{contentJSON: {Schema: s}}
}

func intPtr(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func floatPtr(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// stripDelimiters turns "/^a+$/i" into "^a+$".
func stripDelimiters(p string) string {
	if len(p) < 2 {
		return p
	}
	d := p[0]
	if !strings.ContainsRune("/#~!%@+", rune(d)) {
		return p
	}
	if end := strings.LastIndexByte(p, d); end > 0 {
		return p[1:end]
	}
	return p
}
