package hook_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/pkg/hook"
)

// recorder collects the labels of invoked callbacks.
type recorder struct {
	calls []string
	mu    sync.Mutex
}

func (r *recorder) action(label string) hook.ActionFunc {
	return func(context.Context, ...any) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, label)
		return nil
	}
}

type counter struct{ n int }

func (c *counter) inc(context.Context, ...any) error {
	c.n++
	return nil
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestBus_PriorityOrder(t *testing.T) {
	t.Parallel()

	bus := hook.New()
	rec := &recorder{}

	require.NoError(t, bus.AddAction("evt", rec.action("low"), hook.WithPriority(1)))
	require.NoError(t, bus.AddAction("evt", rec.action("high"), hook.WithPriority(50)))
	require.NoError(t, bus.AddAction("evt", rec.action("default-a")))
	require.NoError(t, bus.AddAction("evt", rec.action("default-b")))

	require.NoError(t, bus.DoAction(context.Background(), "evt"))
	assert.Equal(t, []string{"high", "default-a", "default-b", "low"}, rec.list())
}

func TestBus_IdempotentRegistration(t *testing.T) {
	t.Parallel()

	t.Run("same function twice", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		calls := 0
		fn := func(context.Context, ...any) error {
			calls++
			return nil
		}

		require.NoError(t, bus.AddAction("evt", fn))
		require.NoError(t, bus.AddAction("evt", fn, hook.WithPriority(99)))
		assert.Equal(t, 1, bus.Actions("evt"))

		require.NoError(t, bus.DoAction(context.Background(), "evt"))
		assert.Equal(t, 1, calls)
	})

	t.Run("closures from one factory stay distinct", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		rec := &recorder{}

		require.NoError(t, bus.AddAction("evt", rec.action("a")))
		require.NoError(t, bus.AddAction("evt", rec.action("b")))
		assert.Equal(t, 2, bus.Actions("evt"))

		require.NoError(t, bus.DoAction(context.Background(), "evt"))
		assert.Equal(t, []string{"a", "b"}, rec.list())
	})

	t.Run("method values on different receivers stay distinct", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		var first, second counter

		require.NoError(t, bus.AddAction("evt", first.inc))
		require.NoError(t, bus.AddAction("evt", second.inc))
		require.NoError(t, bus.DoAction(context.Background(), "evt"))
		assert.Equal(t, 1, first.n)
		assert.Equal(t, 1, second.n)
	})

	t.Run("same closure value twice", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		rec := &recorder{}
		fn := rec.action("once")

		require.NoError(t, bus.AddAction("evt", fn))
		require.NoError(t, bus.AddAction("evt", fn))
		assert.Equal(t, 1, bus.Actions("evt"))
	})

	t.Run("same explicit id", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		rec := &recorder{}

		require.NoError(t, bus.AddAction("evt", rec.action("a"), hook.WithID("x")))
		require.NoError(t, bus.AddAction("evt", rec.action("b"), hook.WithID("x")))
		assert.Equal(t, 1, bus.Actions("evt"))
	})

	t.Run("same function on different hooks", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		fn := func(context.Context, ...any) error { return nil }

		require.NoError(t, bus.AddAction("one", fn))
		require.NoError(t, bus.AddAction("two", fn))
		assert.True(t, bus.HasAction("one"))
		assert.True(t, bus.HasAction("two"))
	})
}

func TestBus_ExtremePriorities(t *testing.T) {
	t.Parallel()

	bus := hook.New()
	rec := &recorder{}

	require.NoError(t, bus.AddAction("evt", rec.action("min"), hook.WithPriority(math.MinInt)))
	require.NoError(t, bus.AddAction("evt", rec.action("max"), hook.WithPriority(math.MaxInt)))
	require.NoError(t, bus.AddAction("evt", rec.action("zero"), hook.WithPriority(0)))

	require.NoError(t, bus.DoAction(context.Background(), "evt"))
	assert.Equal(t, []string{"max", "zero", "min"}, rec.list())
}

func TestBus_DoAction(t *testing.T) {
	t.Parallel()

	t.Run("no registrations is a no-op", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, hook.New().DoAction(context.Background(), "nothing", 1, 2))
	})

	t.Run("arguments are passed through", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		var got []any
		require.NoError(t, bus.AddAction("evt", func(_ context.Context, args ...any) error {
			got = args
			return nil
		}))
		require.NoError(t, bus.DoAction(context.Background(), "evt", "a", 2))
		assert.Equal(t, []any{"a", 2}, got)
	})

	t.Run("error stops the chain", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		rec := &recorder{}
		boom := errors.New("boom")

		require.NoError(t, bus.AddAction("evt", func(context.Context, ...any) error { return boom }, hook.WithPriority(20)))
		require.NoError(t, bus.AddAction("evt", rec.action("later")))

		err := bus.DoAction(context.Background(), "evt")
		require.ErrorIs(t, err, boom)
		assert.Empty(t, rec.list())
	})
}

func TestBus_ApplyFilters(t *testing.T) {
	t.Parallel()

	t.Run("identity with no filters", func(t *testing.T) {
		t.Parallel()
		out, err := hook.New().ApplyFilters(context.Background(), "f", 42)
		require.NoError(t, err)
		assert.Equal(t, 42, out)
	})

	t.Run("chains in priority order", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		require.NoError(t, bus.AddFilter("f", func(_ context.Context, v any, _ ...any) (any, error) {
			return v.(string) + "-low", nil
		}, hook.WithPriority(1)))
		require.NoError(t, bus.AddFilter("f", func(_ context.Context, v any, _ ...any) (any, error) {
			return v.(string) + "-high", nil
		}, hook.WithPriority(100)))

		out, err := bus.ApplyFilters(context.Background(), "f", "v")
		require.NoError(t, err)
		assert.Equal(t, "v-high-low", out)
	})

	t.Run("extra arguments reach every filter", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		require.NoError(t, bus.AddFilter("f", func(_ context.Context, v any, args ...any) (any, error) {
			return v.(int) + args[0].(int), nil
		}))

		out, err := bus.ApplyFilters(context.Background(), "f", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 11, out)
	})

	t.Run("error aborts", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		boom := errors.New("boom")
		require.NoError(t, bus.AddFilter("f", func(context.Context, any, ...any) (any, error) {
			return nil, boom
		}))

		_, err := bus.ApplyFilters(context.Background(), "f", 1)
		require.ErrorIs(t, err, boom)
	})
}

func TestBus_Remove(t *testing.T) {
	t.Parallel()

	t.Run("remove one callback", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		rec := &recorder{}
		keep := rec.action("keep")
		drop := func(context.Context, ...any) error { return errors.New("should not run") }

		require.NoError(t, bus.AddAction("evt", keep, hook.WithID("keep")))
		require.NoError(t, bus.AddAction("evt", drop))
		require.NoError(t, bus.RemoveAction("evt", drop))

		require.NoError(t, bus.DoAction(context.Background(), "evt"))
		assert.Equal(t, []string{"keep"}, rec.list())
	})

	t.Run("remove by explicit id", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		rec := &recorder{}
		require.NoError(t, bus.AddAction("evt", rec.action("a"), hook.WithID("a")))
		require.NoError(t, bus.AddAction("evt", rec.action("b"), hook.WithID("b")))

		require.NoError(t, bus.RemoveAction("evt", nil, hook.WithID("a")))
		assert.Equal(t, 1, bus.Actions("evt"))
	})

	t.Run("nil callback clears the hook", func(t *testing.T) {
		t.Parallel()
		bus := hook.New()
		require.NoError(t, bus.AddFilter("f", func(_ context.Context, v any, _ ...any) (any, error) { return v, nil }))
		require.NoError(t, bus.AddFilter("f", func(_ context.Context, v any, _ ...any) (any, error) { return v, nil }))
		require.Equal(t, 2, bus.Filters("f"))

		require.NoError(t, bus.RemoveFilter("f", nil))
		assert.False(t, bus.HasFilter("f"))
	})
}

func TestBus_Freeze(t *testing.T) {
	t.Parallel()

	bus := hook.New()
	fn := func(context.Context, ...any) error { return nil }
	require.NoError(t, bus.AddAction("evt", fn))

	bus.Freeze()
	assert.True(t, bus.Frozen())
	require.ErrorIs(t, bus.AddAction("other", fn), hook.ErrFrozen)
	require.ErrorIs(t, bus.RemoveAction("evt", nil), hook.ErrFrozen)
	require.NoError(t, bus.DoAction(context.Background(), "evt"))

	bus.Reset()
	assert.False(t, bus.Frozen())
	assert.False(t, bus.HasAction("evt"))
	require.NoError(t, bus.AddAction("evt", fn))
}

func TestBus_NilCallback(t *testing.T) {
	t.Parallel()

	bus := hook.New()
	require.ErrorIs(t, bus.AddAction("evt", nil), hook.ErrNilCallback)
	require.ErrorIs(t, bus.AddFilter("evt", nil), hook.ErrNilCallback)
}

func TestBus_ConcurrentDispatch(t *testing.T) {
	t.Parallel()

	bus := hook.New()
	require.NoError(t, bus.AddFilter("f", func(_ context.Context, v any, _ ...any) (any, error) {
		return v.(int) * 2, nil
	}))
	bus.Freeze()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			out, err := bus.ApplyFilters(context.Background(), "f", n)
			assert.NoError(t, err)
			assert.Equal(t, n*2, out)
		}(i)
	}
	wg.Wait()
}
