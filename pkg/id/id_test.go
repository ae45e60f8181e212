package id_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/pkg/id"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("version 7", func(t *testing.T) {
		t.Parallel()
		u, err := uuid.Parse(id.New())
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), u.Version())
	})

	t.Run("sortable", func(t *testing.T) {
		t.Parallel()
		prev := id.New()
		for range 100 {
			next := id.New()
			assert.Less(t, prev, next)
			prev = next
		}
	})

	t.Run("unique under concurrency", func(t *testing.T) {
		t.Parallel()
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{})
			wg   sync.WaitGroup
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 250 {
					v := id.New()
					mu.Lock()
					seen[v] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 2000)
	})
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, id.Valid(id.New()))
	assert.True(t, id.Valid("urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, id.Valid("not-a-uuid"))
	assert.False(t, id.Valid(""))
}
