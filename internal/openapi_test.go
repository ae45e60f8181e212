package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/internal"
	"github.com/ivupcn/restina-framework/pkg/openapi"
)

func TestOpenAPIDocument(t *testing.T) {
	t.Parallel()

	table, _ := buildTable(t, &usersController{}, bodyController{}, &faultsController{})
	doc := internal.OpenAPIDocument(table.Routes(), openapi.WithTitle("Users API"))

	assert.Equal(t, "Users API", doc.Info.Title)
	assert.Equal(t, table.Len(), doc.Operations())

	show := doc.Paths["/users/{id}"]["get"]
	require.NotNil(t, show)
	assert.Equal(t, "usersController.Show", show.OperationID)
	assert.Equal(t, []string{"users"}, show.Tags)
	require.Len(t, show.Parameters, 1)
	assert.Equal(t, "path", show.Parameters[0].In)
	assert.True(t, show.Parameters[0].Required)

	create := doc.Paths["/users"]["post"]
	require.NotNil(t, create)
	require.NotNil(t, create.RequestBody)
	assert.Contains(t, create.RequestBody.Content["application/json"].Schema.Properties, "name")

	raw := doc.Paths["/raw"]["post"]
	require.NotNil(t, raw)
	assert.Nil(t, raw.RequestBody)
}
