package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/internal"
)

func TestResponse(t *testing.T) {
	t.Parallel()

	t.Run("json keeps html and unicode unescaped", func(t *testing.T) {
		t.Parallel()

		resp := internal.NewResponse()
		require.NoError(t, resp.JSON(http.StatusAccepted, map[string]string{"msg": "<b>héllo</b>"}))

		assert.Equal(t, http.StatusAccepted, resp.Status())
		assert.Equal(t, `{"msg":"<b>héllo</b>"}`, string(resp.Body()))
	})

	t.Run("write to recorder", func(t *testing.T) {
		t.Parallel()

		resp := internal.NewResponse()
		resp.SetStatus(http.StatusCreated).Header().Set("X-Id", "1")
		_, _ = resp.WriteString("done")

		rec := httptest.NewRecorder()
		require.NoError(t, resp.WriteTo(rec))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-Id"))
		assert.Equal(t, "4", rec.Header().Get("Content-Length"))
		assert.Equal(t, "done", rec.Body.String())
	})

	t.Run("invalid status is ignored", func(t *testing.T) {
		t.Parallel()

		resp := internal.NewResponse().SetStatus(42)
		assert.Equal(t, http.StatusOK, resp.Status())
	})

	t.Run("reset clears the body", func(t *testing.T) {
		t.Parallel()

		resp := internal.NewResponse()
		_, _ = resp.WriteString("x")
		resp.Reset()
		assert.Empty(t, resp.Body())
	})
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	he := internal.NewHTTPError(http.StatusNotFound, "", nil)
	assert.Equal(t, "Not Found", he.Message)
	assert.Equal(t, internal.ErrorBody{Error: "Not Found", Message: "Not Found"}, he.Body())

	he = internal.NewHTTPError(http.StatusInternalServerError, "", nil)
	assert.Equal(t, "Internal Error", he.Body().Error)

	_, ok := internal.AsHTTPError(assert.AnError)
	assert.False(t, ok)
}
