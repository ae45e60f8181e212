package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivupcn/restina-framework/internal"
)

func TestArgs(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	args := internal.NewArgs(
		[]string{"id", "ratio", "active", "name", "payload", "req"},
		[]any{7, 0.5, true, "ann", map[string]any{"k": "v"}, req, "extra"},
	)

	assert.Equal(t, 6, args.Len())
	assert.Equal(t, 7, args.Int("id"))
	assert.InDelta(t, 0.5, args.Float("ratio"), 0)
	assert.True(t, args.Bool("active"))
	assert.Equal(t, "ann", args.String("name"))
	assert.Equal(t, map[string]any{"k": "v"}, args.Array("payload"))
	assert.Same(t, req, args.Request())
	assert.Equal(t, "ann", args.At(3))
	assert.Nil(t, args.At(10))
	assert.Equal(t, []string{"id", "ratio", "active", "name", "payload", "req"}, args.Names())

	_, ok := args.Lookup("missing")
	assert.False(t, ok)
	assert.Zero(t, args.Int("name"))
	assert.Equal(t, "ann", internal.ArgAs[string](args, "name"))
	assert.Len(t, args.Map(), 6)
}
