package internal_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/internal"
	"github.com/ivupcn/restina-framework/pkg/hook"
	"github.com/ivupcn/restina-framework/pkg/sanitizer"
)

func newDispatcher(t *testing.T, opts ...internal.DispatcherOption) *internal.Dispatcher {
	t.Helper()

	table, handlers := buildTable(t, &usersController{}, &faultsController{})
	return internal.NewDispatcher(table, handlers, opts...)
}

func dispatch(t *testing.T, d *internal.Dispatcher, req *http.Request) (*internal.Response, error) {
	t.Helper()

	in, err := internal.NewInbound(req, nil)
	require.NoError(t, err)
	return d.Dispatch(req.Context(), in)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *internal.Response) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	return body
}

func TestDispatcher_Success(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)

	t.Run("path argument is coerced", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, d, httptest.NewRequest(http.MethodGet, "/users/42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status())
		assert.Equal(t, "application/json; charset=utf-8", resp.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"id":42}`, string(resp.Body()))
	})

	t.Run("json body fields bind by name", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, d, jsonRequest(http.MethodPost, "/users", `{"name":"Ann","age":"31"}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ann","age":31}`, string(resp.Body()))
	})

	t.Run("form body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("name=Bob"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := dispatch(t, d, req)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Bob","age":null}`, string(resp.Body()))
	})

	t.Run("default applies when no source has the value", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, d, httptest.NewRequest(http.MethodGet, "/users", nil))
		require.NoError(t, err)
		assert.JSONEq(t, `["all"]`, string(resp.Body()))

		resp, err = dispatch(t, d, httptest.NewRequest(http.MethodGet, "/users?q=ann", nil))
		require.NoError(t, err)
		assert.JSONEq(t, `["ann"]`, string(resp.Body()))
	})

	t.Run("result with error key is a 400", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, d, httptest.NewRequest(http.MethodGet, "/soft", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status())
	})

	t.Run("returned response is written as-is", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, d, httptest.NewRequest(http.MethodPost, "/raw", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Status())
		assert.Equal(t, "/raw/1", resp.Header().Get("Location"))
		assert.Equal(t, "created", string(resp.Body()))
	})

	t.Run("unmatched request", func(t *testing.T) {
		t.Parallel()

		_, err := dispatch(t, d, httptest.NewRequest(http.MethodDelete, "/users/1", nil))
		require.ErrorIs(t, err, internal.ErrRouteNotFound)
	})
}

func TestDispatcher_Validation(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)

	cases := []struct {
		name    string
		req     *http.Request
		message string
	}{
		{"missing required", jsonRequest(http.MethodPost, "/users", `{}`), "parameter 'name' is required"},
		{"type mismatch", httptest.NewRequest(http.MethodGet, "/users/abc", nil), "parameter 'id' must be an integer"},
		{"rule failure", httptest.NewRequest(http.MethodGet, "/users/0", nil), ""},
		{"optional value still validated", jsonRequest(http.MethodPost, "/users", `{"name":"Ann","age":-1}`), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp, err := dispatch(t, d, tc.req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.Status())

			body := decodeBody(t, resp)
			assert.Equal(t, "Validation Error", body["error"])
			if tc.message != "" {
				assert.Equal(t, tc.message, body["message"])
			}
		})
	}
}

func TestDispatcher_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := internal.NewInbound(jsonRequest(http.MethodPost, "/users", `{"name":`), nil)
	he, ok := internal.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestDispatcher_Failures(t *testing.T) {
	t.Parallel()

	t.Run("handler error is a 500 with its message", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, newDispatcher(t), httptest.NewRequest(http.MethodGet, "/broken", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.Status())
		assert.Equal(t, map[string]any{"error": "Internal Error", "message": "db down"}, decodeBody(t, resp))
	})

	t.Run("redaction hides the message", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, newDispatcher(t, internal.WithDispatchRedactErrors(true)), httptest.NewRequest(http.MethodGet, "/broken", nil))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"error": "Internal Error", "message": "Internal Server Error"}, decodeBody(t, resp))
	})

	t.Run("debug overrides redaction", func(t *testing.T) {
		t.Parallel()

		d := newDispatcher(t, internal.WithDispatchRedactErrors(true), internal.WithDispatchDebug(true))
		resp, err := dispatch(t, d, httptest.NewRequest(http.MethodGet, "/broken", nil))
		require.NoError(t, err)
		assert.Equal(t, "db down", decodeBody(t, resp)["message"])
	})

	t.Run("client HTTP errors keep their status", func(t *testing.T) {
		t.Parallel()

		resp, err := dispatch(t, newDispatcher(t), httptest.NewRequest(http.MethodGet, "/teapot", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, resp.Status())
		assert.Equal(t, "short and stout", decodeBody(t, resp)["message"])
	})

	t.Run("panic is recovered and reported", func(t *testing.T) {
		t.Parallel()

		var got error
		bus := hook.New()
		require.NoError(t, bus.AddAction(hook.RequestError, func(_ context.Context, args ...any) error {
			got = args[0].(*internal.Event).Err
			return nil
		}))

		resp, err := dispatch(t, newDispatcher(t, internal.WithDispatchHooks(bus)), httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.Status())
		require.ErrorIs(t, got, internal.ErrHandlerPanic)
		assert.Equal(t, "kaboom", got.Error())
	})

	t.Run("hook error aborts dispatch", func(t *testing.T) {
		t.Parallel()

		denied := errors.New("denied")
		bus := hook.New()
		require.NoError(t, bus.AddAction(hook.RequestBeforeHandle, func(context.Context, ...any) error {
			return denied
		}))

		_, err := dispatch(t, newDispatcher(t, internal.WithDispatchHooks(bus)), httptest.NewRequest(http.MethodGet, "/users/1", nil))
		require.ErrorIs(t, err, denied)
	})
}

func TestDispatcher_HookOrder(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		fired []string
	)
	bus := hook.New()
	record := func(name string) {
		require.NoError(t, bus.AddAction(name, func(_ context.Context, args ...any) error {
			mu.Lock()
			defer mu.Unlock()
			fired = append(fired, name)
			return nil
		}))
	}
	for _, name := range []string{
		hook.RequestBeforeHandle,
		hook.ControllerBeforeExecute,
		hook.ParameterValidateBefore,
		hook.ParameterValidateAfter,
		hook.ParameterValidateError,
		hook.ControllerAfterExecute,
		hook.RequestAfterHandle,
		hook.RequestError,
	} {
		record(name)
	}
	require.NoError(t, bus.AddFilter(hook.ControllerResult, func(_ context.Context, value any, args ...any) (any, error) {
		ev := args[0].(*internal.Event)
		return map[string]any{"data": value, "handler": ev.Handler()}, nil
	}))

	d := newDispatcher(t, internal.WithDispatchHooks(bus))

	t.Run("success", func(t *testing.T) {
		fired = nil
		resp, err := dispatch(t, d, httptest.NewRequest(http.MethodGet, "/users/5", nil))
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"id":5},"handler":"usersController::Show"}`, string(resp.Body()))
		assert.Equal(t, []string{
			hook.RequestBeforeHandle,
			hook.ControllerBeforeExecute,
			hook.ParameterValidateBefore,
			hook.ParameterValidateAfter,
			hook.ControllerAfterExecute,
			hook.RequestAfterHandle,
		}, fired)
	})

	t.Run("validation failure", func(t *testing.T) {
		fired = nil
		_, err := dispatch(t, d, httptest.NewRequest(http.MethodGet, "/users/x", nil))
		require.NoError(t, err)
		assert.Equal(t, []string{
			hook.RequestBeforeHandle,
			hook.ControllerBeforeExecute,
			hook.ParameterValidateBefore,
			hook.ParameterValidateError,
		}, fired)
	})

	t.Run("handler failure", func(t *testing.T) {
		fired = nil
		_, err := dispatch(t, d, httptest.NewRequest(http.MethodGet, "/broken", nil))
		require.NoError(t, err)
		assert.Equal(t, []string{
			hook.RequestBeforeHandle,
			hook.ControllerBeforeExecute,
			hook.ParameterValidateBefore,
			hook.ParameterValidateAfter,
			hook.RequestError,
		}, fired)
	})

	t.Run("returned response skips filters and trailing actions", func(t *testing.T) {
		fired = nil
		resp, err := dispatch(t, d, httptest.NewRequest(http.MethodPost, "/raw", nil))
		require.NoError(t, err)
		assert.Equal(t, "created", string(resp.Body()))
		assert.Equal(t, []string{
			hook.RequestBeforeHandle,
			hook.ControllerBeforeExecute,
			hook.ParameterValidateBefore,
			hook.ParameterValidateAfter,
		}, fired)
	})
}

func TestDispatcher_Observer(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)
	d := newDispatcher(t, internal.WithDispatchObserver(func(ev *internal.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, fmt.Sprintf("%s %d", ev.Handler(), ev.StatusCode()))
	}))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/users/5", nil),
		httptest.NewRequest(http.MethodGet, "/users/x", nil),
		httptest.NewRequest(http.MethodGet, "/broken", nil),
		httptest.NewRequest(http.MethodPost, "/raw", nil),
	} {
		_, err := dispatch(t, d, req)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"usersController::Show 200",
		"usersController::Show 400",
		"faultsController::Broken 500",
		"faultsController::Raw 201",
	}, seen)
}

func TestDispatcher_ErrorKeyInStruct(t *testing.T) {
	t.Parallel()

	table, handlers := buildTable(t, paramsController{})
	resp, err := dispatch(t, internal.NewDispatcher(table, handlers), httptest.NewRequest(http.MethodGet, "/reject", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Status())
	assert.JSONEq(t, `{"error":"Rejected","message":"not today"}`, string(resp.Body()))
}

func TestDispatcher_Sanitizer(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, internal.WithDispatchSanitizer(sanitizer.StripHTML))

	resp, err := dispatch(t, d, jsonRequest(http.MethodPost, "/users", `{"name":"<b>Ann</b>"}`))
	require.NoError(t, err)
	assert.Equal(t, "Ann", decodeBody(t, resp)["name"])
}
