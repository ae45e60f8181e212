// Package restina is an annotation-driven REST framework. Handlers declare
// their route and parameters in free-text documentation; restina discovers
// them, compiles a route table, caches it, and dispatches requests with
// typed parameter binding, rule validation and lifecycle hooks.
//
// # Quick Start
//
//	type Users struct{ repo *Repo }
//
//	func (u *Users) Endpoints() []restina.Endpoint {
//	    return []restina.Endpoint{
//	        restina.Handle("Show", u.Show, `
//	            Show a user.
//	            @route GET /users/{id}
//	            @param int $id user id {@v required|min:1}
//	        `),
//	    }
//	}
//
//	func (u *Users) Show(c restina.Context, args restina.Args) (any, error) {
//	    return u.repo.Find(c, args.Int("id"))
//	}
//
//	func main() {
//	    app, err := restina.New(
//	        restina.WithConfigFile("config/app.yaml"),
//	        restina.WithControllers(&Users{repo: repo}),
//	        restina.WithHealthChecks(),
//	        restina.WithOpenAPI("/openapi.json"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := app.Run(""); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Parameters
//
// Values bind from path arguments, then the query string, then the JSON,
// form or multipart body, then a default set with Endpoint.Default. Rules
// in {@v ...} run in order; the first failure answers 400 with
//
//	{"error": "Validation Error", "message": "parameter 'id' is required"}
//
// A handler error answers 500 with {"error": "Internal Error", "message": ...}
// carrying the error text. WithRedactErrors swaps the text for the generic
// status text outside debug mode.
//
// # Hooks
//
// Subscribe with WithAction and WithFilter, or by name from the hooks
// section of the configuration with WithHookRegistry. The bus is frozen
// once New returns.
//
//	restina.WithFilter(restina.HookControllerResult, func(ctx context.Context, v any, args ...any) (any, error) {
//	    return map[string]any{"data": v}, nil
//	})
//
// # Route Cache
//
// app.cache selects memory, file or redis. The cached table is reused
// across restarts until an endpoint it names disappears. The restina
// command clears it:
//
//	restina cache clear --config config/app.yaml
package restina
