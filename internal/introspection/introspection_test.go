package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishgraph/phishgraph/internal/executor"
	"github.com/phishgraph/phishgraph/internal/schema"
)

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	r := schema.NewRegistry()
	campaign, err := r.RegisterNode("Campaign",
		schema.NewField("id", "", schema.NamedType("ID")),
		schema.NewField("name", "The campaign name.", schema.NonNullType(schema.NamedType("String"))),
		schema.NewField("related", "", schema.ConnectionType(schema.NamedType("Campaign"))),
		schema.NewField("old", "", schema.NamedType("String")).Deprecate("use name"),
	)
	require.NoError(t, err)
	campaign.Description = "A phishing campaign."
	require.NoError(t, r.EntryPoint(schema.NewField("campaign", "", schema.NamedType("Campaign"))))
	require.NoError(t, Register(r))
	s, err := r.Build()
	require.NoError(t, err)
	return s
}

func run(t *testing.T, query string) *executor.Result {
	t.Helper()
	res := executor.New(buildSchema(t)).Execute(context.Background(), executor.Params{Query: query}, nil)
	require.Empty(t, res.Errors)
	return res
}

func TestTypeIntrospection(t *testing.T) {
	res := run(t, `{
		__type(name: "Campaign") {
			kind name description
			fields { name description type { kind name ofType { kind name } } }
		}
	}`)
	want := map[string]any{
		"__type": map[string]any{
			"kind":        "OBJECT",
			"name":        "Campaign",
			"description": "A phishing campaign.",
			"fields": []any{
				map[string]any{"name": "id", "description": nil, "type": map[string]any{"kind": "SCALAR", "name": "ID", "ofType": nil}},
				map[string]any{"name": "name", "description": "The campaign name.", "type": map[string]any{
					"kind": "NON_NULL", "name": nil, "ofType": map[string]any{"kind": "SCALAR", "name": "String"},
				}},
				map[string]any{"name": "related", "description": nil, "type": map[string]any{"kind": "OBJECT", "name": "CampaignConnection", "ofType": nil}},
			},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("introspection mismatch (-want +got):\n%s", diff)
	}
}

func TestDeprecatedFields(t *testing.T) {
	res := run(t, `{ __type(name: "Campaign") { fields(includeDeprecated: true) { name isDeprecated deprecationReason } } }`)
	fields := res.Data["__type"].(map[string]any)["fields"].([]any)
	require.Len(t, fields, 4)
	assert.Equal(t, map[string]any{"name": "old", "isDeprecated": true, "deprecationReason": "use name"}, fields[3])
}

func TestConnectionArguments(t *testing.T) {
	res := run(t, `{ __type(name: "Campaign") { fields { name args { name defaultValue type { name } } } } }`)
	fields := res.Data["__type"].(map[string]any)["fields"].([]any)
	related := fields[2].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"name": "first", "defaultValue": nil, "type": map[string]any{"name": "Int"}},
		map[string]any{"name": "after", "defaultValue": nil, "type": map[string]any{"name": "String"}},
	}, related["args"])
}

func TestSchemaIntrospection(t *testing.T) {
	res := run(t, `{ __schema { queryType { name } mutationType { name } types { name } directives { name locations } } }`)
	s := res.Data["__schema"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Query"}, s["queryType"])
	assert.Nil(t, s["mutationType"])

	var names []string
	for _, typ := range s["types"].([]any) {
		names = append(names, typ.(map[string]any)["name"].(string))
	}
	assert.Subset(t, names, []string{"Campaign", "CampaignConnection", "CampaignEdge", "PageInfo", "Query", "String", "__Type", "__TypeKind"})
	assert.IsIncreasing(t, names)

	assert.Equal(t, []any{
		map[string]any{"name": "include", "locations": []any{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"}},
		map[string]any{"name": "skip", "locations": []any{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"}},
	}, s["directives"])
}

func TestEnumIntrospection(t *testing.T) {
	res := run(t, `{ __type(name: "__TypeKind") { kind enumValues { name } } }`)
	tk := res.Data["__type"].(map[string]any)
	assert.Equal(t, "ENUM", tk["kind"])
	assert.Len(t, tk["enumValues"], 8)
}

func TestUnknownType(t *testing.T) {
	res := run(t, `{ __type(name: "Nope") { name } }`)
	assert.Equal(t, map[string]any{"__type": nil}, res.Data)
}

func TestMetaTypesStayOutOfSDL(t *testing.T) {
	assert.NotContains(t, buildSchema(t).SDL(), "__")
}
