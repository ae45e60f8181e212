package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/middlewares"
	"github.com/ivupcn/restina-framework/pkg/id"
)

func captureRequestID(dst *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = middlewares.GetRequestID(r.Context())
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a UUID when no header is set", func(t *testing.T) {
		t.Parallel()

		var got string
		rec := httptest.NewRecorder()
		middlewares.RequestID()(captureRequestID(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.True(t, id.Valid(got))
		require.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses incoming header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "upstream-1")

		var got string
		rec := httptest.NewRecorder()
		middlewares.RequestID()(captureRequestID(&got)).ServeHTTP(rec, req)

		require.Equal(t, "upstream-1", got)
		require.Equal(t, "upstream-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("first configured header wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace", "trace")
		req.Header.Set("X-Request-ID", "request")

		var got string
		middlewares.RequestID(middlewares.WithRequestIDHeaders("X-Trace", "X-Request-ID"))(captureRequestID(&got)).
			ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, "trace", got)
	})

	t.Run("custom generator and response header", func(t *testing.T) {
		t.Parallel()

		var got string
		rec := httptest.NewRecorder()
		middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace-ID"),
		)(captureRequestID(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, "fixed", got)
		require.Equal(t, "fixed", rec.Header().Get("X-Trace-ID"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("nil generator keeps the default", func(t *testing.T) {
		t.Parallel()

		var got string
		middlewares.RequestID(middlewares.WithRequestIDGenerator(nil))(captureRequestID(&got)).
			ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, got)
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := middlewares.RequestIDExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)
	assert.Empty(t, middlewares.GetRequestID(context.Background()))

	var ctx context.Context
	middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "abc" }))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ctx = r.Context() }),
	).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	attr, ok := extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
