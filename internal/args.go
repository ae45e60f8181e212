package internal

import (
	"net/http"
	"slices"
)

// Args holds bound parameter values in declared order.
type Args struct {
	names  []string
	values []any
}

// NewArgs pairs names with values. Extra values are dropped.
func NewArgs(names []string, values []any) Args {
	n := min(len(names), len(values))
	return Args{names: slices.Clone(names[:n]), values: slices.Clone(values[:n])}
}

func (a *Args) add(name string, value any) {
	a.names = append(a.names, name)
	a.values = append(a.values, value)
}

// Len returns the number of bound parameters.
func (a Args) Len() int { return len(a.values) }

// Names returns parameter names in declared order.
func (a Args) Names() []string { return slices.Clone(a.names) }

// Values returns parameter values in declared order.
func (a Args) Values() []any { return slices.Clone(a.values) }

// At returns the i-th value, or nil when out of range.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

// Lookup returns the value bound to name.
func (a Args) Lookup(name string) (any, bool) {
	i := slices.Index(a.names, name)
	if i < 0 {
		return nil, false
	}
	return a.values[i], true
}

// Get returns the value bound to name, or nil.
func (a Args) Get(name string) any {
	v, _ := a.Lookup(name)
	return v
}

// Map returns the arguments keyed by name.
func (a Args) Map() map[string]any {
	m := make(map[string]any, len(a.names))
	for i, n := range a.names {
		m[n] = a.values[i]
	}
	return m
}

// Int returns name as int. Values are already coerced for int params.
func (a Args) Int(name string) int { return ArgAs[int](a, name) }

// Float returns name as float64.
func (a Args) Float(name string) float64 { return ArgAs[float64](a, name) }

// Bool returns name as bool.
func (a Args) Bool(name string) bool { return ArgAs[bool](a, name) }

// String returns name as string.
func (a Args) String(name string) string { return ArgAs[string](a, name) }

// Array returns a whole-body or object parameter.
func (a Args) Array(name string) map[string]any { return ArgAs[map[string]any](a, name) }

// Request returns the first *http.Request parameter, if any.
func (a Args) Request() *http.Request {
	for _, v := range a.values {
		if r, ok := v.(*http.Request); ok {
			return r
		}
	}
	return nil
}

// ArgAs returns name asserted to T, or the zero T.
func ArgAs[T any](a Args, name string) T {
	if v, ok := a.Get(name).(T); ok {
		return v
	}
	var zero T
	return zero
}
