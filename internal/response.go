package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Response is the outgoing response assembled by the dispatcher. Handlers
// receive it through Context.Response or a "response" typed parameter and
// may return it to bypass result filtering and encoding.
type Response struct {
	header http.Header
	body   bytes.Buffer
	status int
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{header: make(http.Header), status: http.StatusOK}
}

func (r *Response) Header() http.Header { return r.header }

func (r *Response) Status() int { return r.status }

// SetStatus sets the status code; values outside 100-999 are ignored.
func (r *Response) SetStatus(code int) *Response {
	if code >= 100 && code <= 999 {
		r.status = code
	}
	return r
}

// Write appends to the body.
func (r *Response) Write(p []byte) (int, error) { return r.body.Write(p) }

// WriteString appends to the body.
func (r *Response) WriteString(s string) (int, error) { return r.body.WriteString(s) }

// Body returns the buffered body.
func (r *Response) Body() []byte { return r.body.Bytes() }

// Reset clears the body, keeping headers and status.
func (r *Response) Reset() { r.body.Reset() }

// JSON replaces the body with v encoded as JSON. HTML characters and
// non-ASCII text are written unescaped.
func (r *Response) JSON(status int, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	r.body.Reset()
	r.body.Write(data)
	r.header.Set("Content-Type", contentTypeJSON)
	r.SetStatus(status)
	return nil
}

// WriteTo copies headers, status and body to w.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = v
	}
	if dst.Get("Content-Length") == "" {
		dst.Set("Content-Length", strconv.Itoa(r.body.Len()))
	}
	w.WriteHeader(r.status)
	_, err := w.Write(r.body.Bytes())
	return err
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// hasErrorKey reports whether v encodes to a JSON object with an "error"
// key. String-keyed maps are checked directly; structs are encoded.
func hasErrorKey(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		return rv.MapIndex(reflect.ValueOf("error").Convert(rv.Type().Key())).IsValid()
	case reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return false
		}
		var obj map[string]json.RawMessage
		if json.Unmarshal(data, &obj) != nil {
			return false
		}
		_, ok := obj["error"]
		return ok
	default:
		return false
	}
}
