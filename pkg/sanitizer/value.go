package sanitizer

import "fmt"

// Mode selects how request input strings are cleaned.
type Mode string

const (
	ModeNone  Mode = ""
	ModeStrip Mode = "strip"
	ModeSafe  Mode = "safe"
)

// ParseMode accepts "", "none", "strip" and "safe".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none":
		return ModeNone, nil
	case string(ModeStrip):
		return ModeStrip, nil
	case string(ModeSafe):
		return ModeSafe, nil
	}
	return ModeNone, fmt.Errorf("sanitizer: unknown mode %q", s)
}

// Func returns the string cleaner for m, or nil for ModeNone.
func (m Mode) Func() func(string) string {
	switch m {
	case ModeStrip:
		return StripHTML
	case ModeSafe:
		return SanitizeHTML
	default:
		return nil
	}
}

// Value cleans every string inside v, descending into the maps and slices
// produced by JSON decoding. Other values are returned unchanged.
// A nil fn returns v as-is.
func Value(v any, fn func(string) string) any {
	if fn == nil {
		return v
	}
	switch t := v.(type) {
	case string:
		return fn(t)
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = fn(s)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Value(e, fn)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Value(e, fn)
		}
		return out
	default:
		return v
	}
}
