package internal_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/internal"
)

type usersController struct{}

func (u *usersController) Endpoints() []internal.Endpoint {
	return []internal.Endpoint{
		internal.Handle("Show", u.show, `
			Show a user.
			@route GET /users/{id}
			@param int $id user id {@v required|min:1}
		`),
		internal.Handle("Create", u.create, `
			Create a user.
			@route POST /users
			@param string $name display name {@v required|lengthMin:2}
			@param int $age {@v optional|min:0}
		`),
		internal.Handle("Search", u.search, `
			@route GET /users
			@param string $q
		`).Default("q", "all"),
		internal.Handle("Helper", u.show, "Not routed."),
	}
}

func (u *usersController) show(c internal.Context, args internal.Args) (any, error) {
	return map[string]any{"id": args.Int("id")}, nil
}

func (u *usersController) create(c internal.Context, args internal.Args) (any, error) {
	return map[string]any{"name": args.String("name"), "age": args.Get("age")}, nil
}

func (u *usersController) search(c internal.Context, args internal.Args) (any, error) {
	return []string{args.String("q")}, nil
}

type faultsController struct{}

func (f *faultsController) Endpoints() []internal.Endpoint {
	return []internal.Endpoint{
		internal.Handle("Boom", func(internal.Context, internal.Args) (any, error) {
			panic("kaboom")
		}, "@route GET /boom"),
		internal.Handle("Broken", func(internal.Context, internal.Args) (any, error) {
			return nil, errors.New("db down")
		}, "@route GET /broken"),
		internal.Handle("Teapot", func(internal.Context, internal.Args) (any, error) {
			return nil, internal.NewHTTPError(http.StatusTeapot, "short and stout", nil)
		}, "@route GET /teapot"),
		internal.Handle("Soft", func(internal.Context, internal.Args) (any, error) {
			return map[string]any{"error": "soft failure"}, nil
		}, "@route GET /soft"),
		internal.Handle("Raw", func(c internal.Context, args internal.Args) (any, error) {
			resp := c.Response()
			resp.SetStatus(http.StatusCreated)
			resp.Header().Set("Location", "/raw/1")
			_, _ = resp.WriteString("created")
			return resp, nil
		}, `
			@route POST /raw
			@param response $res
		`),
	}
}

// ordersController collides with usersController on GET /users/{id}.
type ordersController struct{}

func (o *ordersController) Endpoints() []internal.Endpoint {
	return []internal.Endpoint{
		internal.Handle("Show", func(internal.Context, internal.Args) (any, error) {
			return "order", nil
		}, `
			@route GET /users/{id}
			@param int $id
		`),
	}
}

type emptyController struct{}

func (emptyController) Endpoints() []internal.Endpoint {
	return []internal.Endpoint{internal.Handle("Noop", nil, "@route GET /noop")}
}

func buildTable(t *testing.T, controllers ...internal.Controller) (*internal.Table, map[internal.HandlerID]internal.HandlerFunc) {
	t.Helper()

	types := internal.Scan(controllers)
	table, err := internal.BuildTable(internal.ExtractRoutes(types, nil))
	require.NoError(t, err)
	return table, internal.LiveEndpoints(types)
}
