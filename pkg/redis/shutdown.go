package redis

import (
	"context"
	"io"
)

// Shutdown adapts client.Close to a shutdown hook.
//
//	app, err := restina.New(restina.WithShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
