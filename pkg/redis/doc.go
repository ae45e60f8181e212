// Package redis opens go-redis clients for the route cache and readiness
// checks.
//
//	client, err := redis.Open(ctx, cfg.Redis.URL,
//	    redis.WithPoolSize(20),
//	    redis.WithRetry(5, time.Second),
//	    redis.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	app := restina.New(
//	    restina.WithShutdownHook(redis.Shutdown(client)),
//	    restina.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
//
// Open accepts redis:// and rediss:// URLs, pings the server and retries
// with a linearly growing wait. All failures wrap one of the sentinel
// errors in this package.
package redis
