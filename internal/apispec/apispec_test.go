package apispec

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/m-kr/cms-nano/pkg/apierr"
	"github.com/m-kr/cms-nano/pkg/schema"
)

func buildDefault(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := Build(context.Background(), schema.Default(), Options{ServerURL: "http://localhost:3000/api"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return doc
}

func TestBuildDeclaresEveryOperation(t *testing.T) {
	doc := buildDefault(t)

	var ids []string
	for _, item := range doc.Paths.Map() {
		for _, op := range item.Operations() {
			ids = append(ids, op.OperationID)
		}
	}
	sort.Strings(ids)
	want := []string{
		"createComponentPattern",
		"deleteComponentPattern",
		"getComponentPattern",
		"listComponentPatterns",
		"listFieldTypes",
		"listPages",
		"updateComponentPattern",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://localhost:3000/api" {
		t.Fatalf("unexpected servers: %#v", doc.Servers)
	}
}

func TestComponentSchemasFollowRegistry(t *testing.T) {
	doc := buildDefault(t)

	pattern := doc.Components.Schemas["ComponentPattern"].Value
	if diff := cmp.Diff([]string{"name"}, pattern.Required); diff != "" {
		t.Fatalf("required mismatch:\n%s", diff)
	}
	name := pattern.Properties["name"].Value
	if name.MinLength != 3 || name.MaxLength == nil || *name.MaxLength != 100 {
		t.Fatalf("unexpected name bounds: min=%d max=%v", name.MinLength, name.MaxLength)
	}
	fields := pattern.Properties["fields"].Value
	if fields.Items == nil || fields.Items.Ref != "#/components/schemas/Field" {
		t.Fatalf("fields items should reference Field, got %#v", fields.Items)
	}

	field := doc.Components.Schemas["Field"].Value
	sort.Strings(field.Required)
	if diff := cmp.Diff([]string{"fieldTypeId", "name"}, field.Required); diff != "" {
		t.Fatalf("field required mismatch:\n%s", diff)
	}
	if field.Properties["required"].Value.Default != false {
		t.Fatalf("expected required default false")
	}
}

func TestDocumentMarshalsToJSON(t *testing.T) {
	doc := buildDefault(t)
	payload, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["openapi"] != "3.0.3" {
		t.Fatalf("unexpected openapi version %v", decoded["openapi"])
	}
}

func TestBuildRequiresRegistry(t *testing.T) {
	if _, err := Build(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected error without registry")
	}
}

func TestValidateBody(t *testing.T) {
	doc := buildDefault(t)

	valid := map[string]any{
		"name":   "HeroBanner",
		"fields": []any{map[string]any{"name": "title", "fieldTypeId": "ft-text"}},
	}
	if err := ValidateBody(doc, "ComponentPattern", valid); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}

	cases := map[string]map[string]any{
		"wrong type":     {"name": 42},
		"missing nested": {"name": "HeroBanner", "fields": []any{map[string]any{"name": "title"}}},
		"too short":      {"name": "Hi"},
	}
	for label, body := range cases {
		if err := ValidateBody(doc, "ComponentPattern", body); !errors.Is(err, apierr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", label, err)
		}
	}

	if err := ValidateBody(doc, "Nope", valid); !errors.Is(err, apierr.ErrUnknownSchema) {
		t.Fatalf("expected unknown schema error, got %v", err)
	}
}

func TestComponentName(t *testing.T) {
	if got := ComponentName(schema.FieldOption); got != "FieldOption" {
		t.Fatalf("unexpected component name %q", got)
	}
	if got := ComponentName(""); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
}
