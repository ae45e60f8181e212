package validator

import (
	"context"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// check reports whether value satisfies a rule with the given argument.
// A non-empty message replaces the rule's default message on failure.
type check func(ctx context.Context, v *Validator, value any, arg string) (string, bool)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

const isoDate = "2006-01-02"

var checks map[string]check

func init() {
	checks = map[string]check{
		"optional": pass,
		"required": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			return "", !isEmpty(value)
		},
		"equals": func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
			return "", stringify(value) == arg
		},
		"different": func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
			return "", stringify(value) != arg
		},
		"accepted": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			return "", isAccepted(value)
		},
		"numeric": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			_, ok := toFloat(value)
			return "", ok
		},
		"integer": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			return "", isInteger(value)
		},
		"boolean": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			return "", isBoolean(value)
		},
		"array": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			return "", isCollection(value)
		},
		"length":        stringLength(func(n, a int) bool { return n == a }),
		"lengthMin":     stringLength(func(n, a int) bool { return n >= a }),
		"lengthMax":     stringLength(func(n, a int) bool { return n <= a }),
		"lengthBetween": lengthBetween,
		"min": numericBound(func(v, a float64) bool { return v >= a }),
		"max": numericBound(func(v, a float64) bool { return v <= a }),
		"in": func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
			return "", slices.Contains(splitList(arg), stringify(value))
		},
		"notIn": func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
			return "", !slices.Contains(splitList(arg), stringify(value))
		},
		"ip":       formatTag("ip"),
		"email":    formatTag("email"),
		"url":      formatTag("url"),
		"alpha":    formatTag("alpha"),
		"alphaNum": formatTag("alphanum"),
		"urlActive": func(ctx context.Context, v *Validator, value any, _ string) (string, bool) {
			if !v.format(value, "url") {
				return "", false
			}
			u, err := url.Parse(value.(string))
			if err != nil {
				return "", false
			}
			return "", v.hostResolves(ctx, u.Hostname())
		},
		"slug": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			s, ok := value.(string)
			return "", ok && slugPattern.MatchString(s)
		},
		"regex": func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
			s, ok := value.(string)
			if !ok {
				return "", false
			}
			re, err := compilePattern(arg)
			if err != nil {
				return "", false
			}
			return "", re.MatchString(s)
		},
		"date": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			_, ok := parseDate(value, isoDate)
			return "", ok
		},
		"dateFormat": func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
			_, ok := parseDate(value, Layout(arg))
			return "", ok
		},
		"dateBefore": dateOrder("dateBefore", func(v, a time.Time) bool { return v.Before(a) }),
		"dateAfter":  dateOrder("dateAfter", func(v, a time.Time) bool { return v.After(a) }),
		"contains": func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
			s, ok := value.(string)
			return "", ok && strings.Contains(s, arg)
		},
		"creditCard": func(_ context.Context, _ *Validator, value any, _ string) (string, bool) {
			return "", Luhn(stringify(value))
		},
	}
}

func pass(context.Context, *Validator, any, string) (string, bool) { return "", true }

func formatTag(tag string) check {
	return func(_ context.Context, v *Validator, value any, _ string) (string, bool) {
		return "", v.format(value, tag)
	}
}

func stringLength(cmp func(n, a int) bool) check {
	return func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
		s, ok := value.(string)
		if !ok {
			return "", false
		}
		a, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return "", false
		}
		return "", cmp(len(s), a)
	}
}

func lengthBetween(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	lo, hi, found := strings.Cut(arg, ",")
	if !found {
		return "", false
	}
	minLen, err1 := strconv.Atoi(strings.TrimSpace(lo))
	maxLen, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil {
		return "", false
	}
	return "", len(s) >= minLen && len(s) <= maxLen
}

func numericBound(cmp func(v, a float64) bool) check {
	return func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
		v, ok := toFloat(value)
		if !ok {
			return "", false
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return "", false
		}
		return "", cmp(v, a)
	}
}

func dateOrder(rule string, cmp func(v, a time.Time) bool) check {
	return func(_ context.Context, _ *Validator, value any, arg string) (string, bool) {
		v, ok := parseDate(value, isoDate)
		if !ok {
			return "", false
		}
		a, err := time.Parse(isoDate, strings.TrimSpace(arg))
		if err != nil {
			return "rule '" + rule + "' has an invalid comparison date", false
		}
		return "", cmp(v, a)
	}
}

func parseDate(value any, layout string) (time.Time, bool) {
	s, ok := value.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func splitList(arg string) []string {
	items := strings.Split(arg, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isCollection(value any) bool {
	if value == nil {
		return false
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return true
	}
	return false
}

func isAccepted(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch v {
		case "1", "on", "yes", "true":
			return true
		}
		return false
	}
	f, ok := numberValue(value)
	return ok && f == 1
}

func isBoolean(value any) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		switch v {
		case "0", "1", "true", "false":
			return true
		}
		return false
	}
	f, ok := numberValue(value)
	return ok && (f == 0 || f == 1)
}

func isInteger(value any) bool {
	if s, ok := value.(string); ok {
		_, err := strconv.Atoi(s)
		return err == nil
	}
	f, ok := numberValue(value)
	return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
}

// toFloat converts numbers and numeric strings to float64.
func toFloat(value any) (float64, bool) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || s == "" {
			return 0, false
		}
		return f, true
	}
	return numberValue(value)
}

// numberValue converts Go numeric kinds to float64. Booleans are not numbers.
func numberValue(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f, !math.IsNaN(f)
	}
	return 0, false
}

// compilePattern compiles a rule pattern. Delimited patterns such as
// "/^[a-z]+$/i" are unwrapped and their i, m and s flags honored.
func compilePattern(raw string) (*regexp.Regexp, error) {
	if len(raw) >= 2 {
		delim := raw[0]
		if strings.IndexByte(patternDelimiters, delim) >= 0 {
			if end := strings.LastIndexByte(raw, delim); end > 0 {
				pattern, flags := raw[1:end], raw[end+1:]
				var prefix string
				for _, f := range flags {
					switch f {
					case 'i', 'm', 's':
						prefix += string(f)
					}
				}
				if prefix != "" {
					pattern = "(?" + prefix + ")" + pattern
				}
				return regexp.Compile(pattern)
			}
		}
	}
	return regexp.Compile(raw)
}

const patternDelimiters = "/#~!%@+"
