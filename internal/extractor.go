package internal

import (
	"fmt"
	"strings"
)

// ExtractorSource extracts a value from the handler context.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
// Handlers use it for values that are not declared parameters, such as
// API keys or tenant IDs that may arrive in several places.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract iterates sources in order and returns the first non-empty value.
// Returns ("", false) if all sources miss.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// FromHeader returns a source that reads from a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Header(name))
	}
}

// FromQuery returns a source that reads from a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Query(name))
	}
}

// FromParam returns a source that reads from a path argument.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Param(name))
	}
}

// FromBody returns a source that reads a top-level field of the parsed
// body. Non-string scalars are formatted with fmt.Sprint; objects and
// arrays miss.
func FromBody(field string) ExtractorSource {
	return func(c Context) (string, bool) {
		switch v := c.Body()[field].(type) {
		case nil, map[string]any, []any:
			return "", false
		case string:
			return nonEmpty(v)
		default:
			return nonEmpty(fmt.Sprint(v))
		}
	}
}

// FromValue returns a source that reads a value stored with Context.Set
// or carried by the request context.
func FromValue(key any) ExtractorSource {
	return func(c Context) (string, bool) {
		switch v := c.Get(key).(type) {
		case nil:
			return "", false
		case string:
			return nonEmpty(v)
		case fmt.Stringer:
			return nonEmpty(v.String())
		default:
			return nonEmpty(fmt.Sprint(v))
		}
	}
}

// FromBearerToken returns a source that reads a Bearer token from the Authorization header.
// Uses case-insensitive comparison on the "Bearer " prefix.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return nonEmpty(auth[7:])
	}
}

func nonEmpty(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	return v, true
}
