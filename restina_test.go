package restina_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	restina "github.com/ivupcn/restina-framework"
	"github.com/ivupcn/restina-framework/middlewares"
)

type greeter struct{}

func (g *greeter) Endpoints() []restina.Endpoint {
	return []restina.Endpoint{
		restina.Handle("Hello", g.hello, `
			Greet someone.
			@route GET /hello/{name}
			@param string $name {@v lengthMin:2}
			@param string $greeting {@v in:hello,hi}
		`).Default("greeting", "hello"),
		restina.Handle("Who", g.who, "@route GET /who"),
	}
}

func (g *greeter) hello(c restina.Context, args restina.Args) (any, error) {
	return map[string]string{"message": args.String("greeting") + " " + args.String("name")}, nil
}

func (g *greeter) who(c restina.Context, args restina.Args) (any, error) {
	return map[string]string{"request_id": middlewares.GetRequestID(c)}, nil
}

func TestApp(t *testing.T) {
	t.Parallel()

	app, err := restina.New(
		restina.WithControllers(&greeter{}),
		restina.WithMiddleware(middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-1" }))),
		restina.WithFilter(restina.HookControllerResult, func(_ context.Context, v any, _ ...any) (any, error) {
			return map[string]any{"data": v}, nil
		}),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(app)
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		var sb strings.Builder
		_, err = io.Copy(&sb, resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, sb.String()
	}

	code, body := get("/hello/ann")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"message":"hello ann"}}`, body)

	code, body = get("/hello/ann?greeting=hi")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"message":"hi ann"}}`, body)

	code, _ = get("/hello/ann?greeting=yo")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = get("/who")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"request_id":"req-1"}}`, body)
}

func TestMustNew(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		restina.MustNew(restina.WithControllers(nil))
	})
}
