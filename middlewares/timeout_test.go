package middlewares_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler output is forwarded", func(t *testing.T) {
		t.Parallel()

		handler := middlewares.Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Done", "yes")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("created"))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "yes", rec.Header().Get("X-Done"))
		assert.Equal(t, "created", rec.Body.String())
	})

	t.Run("slow handler gets 503", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)
		handler := middlewares.Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
			_, _ = w.Write([]byte("late"))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "request timeout", body["message"])
		assert.NotContains(t, rec.Body.String(), "late")
	})

	t.Run("handler sees context deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool
		middlewares.Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
		})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.True(t, hasDeadline)
	})

	t.Run("handler panic propagates", func(t *testing.T) {
		t.Parallel()

		handler := middlewares.Timeout(time.Second)(panicking("inside"))
		require.PanicsWithValue(t, "inside", func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})

	t.Run("recover wraps timeout panics", func(t *testing.T) {
		t.Parallel()

		handler := middlewares.Recover()(middlewares.Timeout(time.Second)(panicking("inside")))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestTimeoutErrorHelpers(t *testing.T) {
	t.Parallel()

	te := &middlewares.TimeoutError{Duration: 5 * time.Second}
	require.Equal(t, "request timeout after 5s", te.Error())

	got, ok := middlewares.AsTimeoutError(errors.Join(errors.New("x"), te))
	require.True(t, ok)
	require.Equal(t, 5*time.Second, got.Duration)

	_, ok = middlewares.AsTimeoutError(errors.New("plain"))
	require.False(t, ok)
}
