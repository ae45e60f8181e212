package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/ivupcn/restina-framework/pkg/sanitizer"
	"github.com/ivupcn/restina-framework/pkg/validator"
)

const maxMultipartMemory = 32 << 20

// Inbound is a transport-neutral request handed to the Dispatcher.
type Inbound struct {
	Request  *http.Request
	PathArgs map[string]string
	Query    url.Values
	Body     map[string]any
	Method   string
	Path     string
}

// NewInbound builds an Inbound from r, parsing its body by content type.
// pathArgs may be nil; the dispatcher fills them from the route match.
func NewInbound(r *http.Request, pathArgs map[string]string) (*Inbound, error) {
	body, err := ParseBody(r)
	if err != nil {
		return nil, err
	}
	return &Inbound{
		Method:   r.Method,
		Path:     r.URL.Path,
		PathArgs: pathArgs,
		Query:    r.URL.Query(),
		Body:     body,
		Request:  r,
	}, nil
}

// ParseBody decodes a JSON, form-encoded or multipart body into a map.
// Other content types and empty bodies yield nil.
func ParseBody(r *http.Request) (map[string]any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, NewHTTPError(http.StatusBadRequest, "malformed JSON body", err)
		}
		return body, nil

	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, NewHTTPError(http.StatusBadRequest, "malformed form body", err)
		}
		return formValues(r.PostForm), nil

	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, NewHTTPError(http.StatusBadRequest, "malformed multipart body", err)
		}
		return formValues(r.MultipartForm.Value), nil
	}
	return nil, nil
}

func formValues(values map[string][]string) map[string]any {
	body := make(map[string]any, len(values))
	for k, v := range values {
		body[k] = listOrSingle(v)
	}
	return body
}

// listOrSingle binds a single value as a string and repeats as []string.
func listOrSingle(v []string) any {
	if len(v) == 1 {
		return v[0]
	}
	return slices.Clone(v)
}

type binder struct {
	sanitize func(string) string
}

// resolve finds the raw value for spec. ok is false when no source
// supplied one and the parameter has no default.
func (b binder) resolve(in *Inbound, spec ParamSpec, resp *Response) (any, bool) {
	switch spec.Type {
	case TypeRequest:
		return in.Request, true
	case TypeResponse:
		return resp, true
	}

	if v, ok := in.PathArgs[spec.Name]; ok {
		return b.clean(v), true
	}
	if vs, ok := in.Query[spec.Name]; ok && len(vs) > 0 {
		return b.clean(listOrSingle(vs)), true
	}
	if v, ok := in.Body[spec.Name]; ok && v != nil {
		return b.clean(v), true
	}
	if spec.Type == TypeArray && slices.Contains(reservedBodyNames, spec.Name) {
		if in.Body == nil {
			return map[string]any{}, true
		}
		return b.clean(in.Body), true
	}
	if spec.HasDefault {
		return spec.Default, true
	}
	return nil, false
}

// bind resolves and coerces the value for spec.
func (b binder) bind(in *Inbound, spec ParamSpec, resp *Response) (any, error) {
	raw, ok := b.resolve(in, spec, resp)
	if !ok {
		if spec.Optional {
			return nil, nil
		}
		return nil, validator.Missing(spec.Name)
	}
	if spec.Special() || raw == nil {
		return raw, nil
	}
	return coerce(spec, raw)
}

func (b binder) clean(v any) any {
	if b.sanitize == nil {
		return v
	}
	return sanitizer.Value(v, b.sanitize)
}

func coerce(spec ParamSpec, v any) (any, error) {
	switch spec.Type {
	case TypeInt:
		if n, ok := toInt(v); ok {
			return n, nil
		}
		return nil, typeError(spec.Name, "an integer")
	case TypeFloat:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
		return nil, typeError(spec.Name, "a number")
	case TypeBool:
		return toBool(v), nil
	case TypeString:
		switch v.(type) {
		case string, []string, []any, map[string]any:
			return v, nil
		}
		return fmt.Sprint(v), nil
	}
	return v, nil
}

func typeError(field, want string) validator.ValidationError {
	return validator.ValidationError{
		Field:             field,
		Rule:              "type",
		Message:           "parameter '" + field + "' must be " + want,
		TranslationKey:    "validation.type",
		TranslationValues: map[string]any{"field": field, "value": want},
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return fromInt64(n)
	case uint:
		return fromUint64(uint64(n))
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return fromUint64(uint64(n))
	case uint64:
		return fromUint64(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return fromInt64(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func fromInt64(n int64) (int, bool) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func fromUint64(n uint64) (int, bool) {
	if n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

// fromFloat accepts whole numbers inside the int range.
func fromFloat(n float64) (int, bool) {
	if n < math.MinInt || n >= -math.MinInt || n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(fmt.Sprint(v))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
