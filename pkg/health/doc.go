// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "redis":  redis.Healthcheck(client),
//	    "routes": app.RoutesLoaded,
//	}))
//
// Checks run concurrently. Responses are plain text unless the client sends
// Accept: application/json or ?format=json.
package health
