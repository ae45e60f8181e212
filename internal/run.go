package internal

import (
	"context"
	"errors"

	"github.com/go-chi/chi/v5"

	"github.com/ivupcn/restina-framework/pkg/hook"
)

// Run starts an HTTP server for the App and blocks until shutdown.
// An empty addr uses server.address from the configuration. app.started
// fires once the listener accepts connections; the cache opened from
// configuration is closed after the registered shutdown hooks.
//
// Example:
//
//	app, err := restina.New(restina.WithControllers(users))
//	if err != nil {
//	    return err
//	}
//	err = app.Run("", restina.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if addr == "" {
		addr = a.config.Server.Address
	}
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	if !cfg.timeoutSet && a.config.Server.ShutdownTimeout > 0 {
		cfg.shutdownTimeout = a.config.Server.ShutdownTimeout
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    append(a.startupHooks(), cfg.startupHooks...),
		shutdownHooks:   append(append(cfg.shutdownHooks, a.shutdownHooks...), a.closeStore),
		baseCtx:         cfg.baseCtx,
	})
}

func (a *App) startupHooks() []func(context.Context) error {
	return []func(context.Context) error{
		func(ctx context.Context) error {
			return a.hooks.DoAction(ctx, hook.AppStarted, a)
		},
	}
}

// Run serves several Apps under path prefixes and blocks until shutdown.
//
// Example:
//
//	err := restina.Run(
//	    restina.Mount("/v1", v1),
//	    restina.Mount("/v2", v2),
//	    restina.Address(":8080"),
//	    restina.Logger(log),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if len(cfg.mounts) == 0 {
		return errors.New("restina.Run: no apps mounted")
	}

	router := chi.NewRouter()
	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks
	for _, m := range cfg.mounts {
		router.Mount(m.prefix, m.app)
		startupHooks = append(startupHooks, m.app.startupHooks()...)
		shutdownHooks = append(shutdownHooks, m.app.shutdownHooks...)
		shutdownHooks = append(shutdownHooks, m.app.closeStore)
	}

	return runServer(runtimeConfig{
		handler:         router,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
