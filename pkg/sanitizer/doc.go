// Package sanitizer cleans user-supplied HTML with bluemonday.
//
// StripHTML removes all markup, SanitizeHTML keeps a small formatting
// allow-list. Value applies either to every string in a decoded request
// payload; the parameter binder uses it when a sanitize mode is configured.
package sanitizer
