package internal

// ContextValue returns the value stored under key asserted to T, or the
// zero T.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}
