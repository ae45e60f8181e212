package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ivupcn/restina-framework/pkg/annotation"
	"github.com/ivupcn/restina-framework/pkg/openapi"
)

func rules(raw string) []annotation.Rule { return annotation.ParseRules(raw) }

func TestGenerate(t *testing.T) {
	t.Parallel()

	routes := []openapi.Route{
		{
			Method:      "GET",
			Path:        "/users/{id}",
			Doc:         "Show a user.\nLoads one record.\n@route GET /users/{id}",
			Tag:         "Users",
			OperationID: "Users.Show",
			Params: []openapi.Param{
				{Name: "id", Type: "int", Rules: rules("required|integer|min:1")},
				{Name: "fields", Type: "string", Description: "field list", Rules: rules("optional|in:name, email"), Optional: true},
				{Name: "r", Type: "request", Skip: true},
			},
		},
		{
			Method:      "POST",
			Path:        "/users",
			OperationID: "Users.Create",
			Params: []openapi.Param{
				{Name: "email", Type: "string", Rules: rules("required|email")},
				{Name: "name", Type: "string", Rules: rules("lengthBetween:2,32"), Optional: true, HasDefault: true, Default: "anon"},
			},
		},
		{Method: "DELETE", Path: "/cache", OperationID: "Cache.Clear"},
	}

	doc := openapi.Generate(routes, openapi.WithTitle("Users API"), openapi.WithServer("http://localhost:8080", "dev"))
	assert.Equal(t, openapi.Version, doc.OpenAPI)
	assert.Equal(t, "Users API", doc.Info.Title)
	assert.Equal(t, 3, doc.Operations())

	t.Run("path and query parameters", func(t *testing.T) {
		t.Parallel()
		op := doc.Paths["/users/{id}"]["get"]
		require.NotNil(t, op)
		assert.Equal(t, "Show a user.", op.Summary)
		assert.Equal(t, "Loads one record.", op.Description)
		assert.Equal(t, []string{"Users"}, op.Tags)
		require.Len(t, op.Parameters, 2)

		id := op.Parameters[0]
		assert.Equal(t, "path", id.In)
		assert.True(t, id.Required)
		assert.Equal(t, "integer", id.Schema.Type)
		require.NotNil(t, id.Schema.Minimum)
		assert.InDelta(t, 1, *id.Schema.Minimum, 0)

		fields := op.Parameters[1]
		assert.Equal(t, "query", fields.In)
		assert.False(t, fields.Required)
		assert.Equal(t, "field list", fields.Description)
		assert.Equal(t, []string{"name", "email"}, fields.Schema.Enum)

		assert.Contains(t, op.Responses, "400")
	})

	t.Run("body parameters", func(t *testing.T) {
		t.Parallel()
		op := doc.Paths["/users"]["post"]
		require.NotNil(t, op)
		assert.Empty(t, op.Parameters)
		require.NotNil(t, op.RequestBody)

		schema := op.RequestBody.Content["application/json"].Schema
		assert.Equal(t, []string{"email"}, schema.Required)
		assert.Equal(t, "email", schema.Properties["email"].Format)

		name := schema.Properties["name"]
		require.NotNil(t, name.MinLength)
		require.NotNil(t, name.MaxLength)
		assert.Equal(t, 2, *name.MinLength)
		assert.Equal(t, 32, *name.MaxLength)
		assert.Equal(t, "anon", name.Default)
	})

	t.Run("undocumented operation", func(t *testing.T) {
		t.Parallel()
		op := doc.Paths["/cache"]["delete"]
		require.NotNil(t, op)
		assert.Equal(t, "Cache.Clear", op.Summary)
		assert.Nil(t, op.RequestBody)
		assert.NotContains(t, op.Responses, "400")
		assert.Contains(t, op.Responses, "500")
	})

	t.Run("json and yaml", func(t *testing.T) {
		t.Parallel()
		data, err := doc.JSON()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "3.0.0", decoded["openapi"])

		data, err = doc.YAML()
		require.NoError(t, err)
		var fromYAML map[string]any
		require.NoError(t, yaml.Unmarshal(data, &fromYAML))
		assert.Contains(t, fromYAML["paths"], "/users/{id}")
	})
}

func TestGenerate_RuleNotes(t *testing.T) {
	t.Parallel()

	doc := openapi.Generate([]openapi.Route{{
		Method: "GET",
		Path:   "/search",
		Params: []openapi.Param{
			{Name: "q", Type: "string", Description: "term", Rules: rules("contains:x|regex:/^[a-z]+$/i")},
		},
	}})
	p := doc.Paths["/search"]["get"].Parameters[0]
	assert.Equal(t, "term (must contain x)", p.Description)
	assert.Equal(t, "^[a-z]+$", p.Schema.Pattern)
}
