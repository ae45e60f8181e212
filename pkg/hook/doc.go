// Package hook provides a named publish/subscribe bus with two kinds of
// subscribers: actions, which observe, and filters, which transform a value.
//
// Subscribers run in descending priority order (default 10); ties keep
// registration order. Registering a callback whose identity is already
// present on a hook is a no-op. The identity is the function value itself
// unless WithID sets one explicitly, so two closures from one factory are
// separate subscribers.
//
//	bus := hook.New(hook.WithLogger(log))
//
//	_ = bus.AddAction(hook.RequestBeforeHandle, func(ctx context.Context, args ...any) error {
//	    log.InfoContext(ctx, "request received")
//	    return nil
//	}, hook.WithPriority(20))
//
//	_ = bus.AddFilter(hook.ControllerResult, func(ctx context.Context, v any, args ...any) (any, error) {
//	    return map[string]any{"data": v}, nil
//	})
//
//	out, err := bus.ApplyFilters(ctx, hook.ControllerResult, result)
//
// # Configuration
//
// Subscriptions can also be declared in YAML and resolved by name through a
// [Registry]. LoadFromConfig runs once per bus; call Reset to load again.
//
//	reg := hook.NewRegistry().
//	    Action("audit", auditAction).
//	    Filter("envelope", envelopeFilter)
//
//	cfg, err := hook.LoadConfigFile("hooks.yaml")
//	err = bus.LoadFromConfig(cfg, reg)
//
// # Lifecycle
//
// Register during boot, then call Freeze. Dispatch takes a read snapshot,
// so callbacks never run under the bus lock.
package hook
