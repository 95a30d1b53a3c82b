package schema

import (
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/m-kr/cms-nano/pkg/apierr"
)

func TestDeriveFormAttributesFiltersServerKeys(t *testing.T) {
	reg := NewRegistry(map[Name]map[string]Metadata{
		ComponentPattern: {
			"name": {
				"type":     "String",
				"required": true,
				"unique":   true,
				"trim":     true,
				"min":      3,
				"max":      100,
				"index":    map[string]any{"sparse": true},
			},
			"label": {"type": "String", "default": "Untitled", "lowercase": true},
			"notes": {"type": "String", "select": false},
		},
	})

	attrs := DeriveFormAttributes(ComponentPattern, reg)
	if attrs == nil {
		t.Fatalf("expected attributes for declared schema")
	}

	allowed := map[string]struct{}{KeyMin: {}, KeyMax: {}, KeyRequired: {}, KeyDefault: {}}
	for field, attr := range attrs {
		payload, err := json.Marshal(attr)
		if err != nil {
			t.Fatalf("marshal %s: %v", field, err)
		}
		var keys map[string]any
		if err := json.Unmarshal(payload, &keys); err != nil {
			t.Fatalf("unmarshal %s: %v", field, err)
		}
		for key := range keys {
			if _, ok := allowed[key]; !ok {
				t.Fatalf("field %s surfaced server-only key %q", field, key)
			}
		}
	}

	if diff := cmp.Diff([]string{KeyMin, KeyMax, KeyRequired}, attrs["name"].Keys()); diff != "" {
		t.Fatalf("name keys mismatch (-want +got):\n%s", diff)
	}
	if got, ok := attrs["name"].MaxBound(); !ok || got != 100 {
		t.Fatalf("expected max 100, got %v", got)
	}
	if attrs["label"].Default != "Untitled" {
		t.Fatalf("expected default to survive, got %#v", attrs["label"].Default)
	}
	if notes, ok := attrs["notes"]; !ok || !notes.Empty() {
		t.Fatalf("expected an empty attribute set for notes, got %#v (present=%v)", notes, ok)
	}
}

func TestDeriveFormAttributesKeepsNonNumericBounds(t *testing.T) {
	reg := NewRegistry(map[Name]map[string]Metadata{
		"event": {
			"startsAt": {"type": "Date", "min": "2020-01-01", "max": "2030-12-31"},
			"title":    {"type": "String", "required": "a title is required"},
			"slug":     {"type": "String", "required": []any{true, "a slug is required"}},
			"draft":    {"type": "Boolean", "required": "false"},
		},
	})

	attrs := DeriveFormAttributes("event", reg)

	startsAt := attrs["startsAt"]
	if diff := cmp.Diff([]string{KeyMin, KeyMax}, startsAt.Keys()); diff != "" {
		t.Fatalf("startsAt keys mismatch (-want +got):\n%s", diff)
	}
	if startsAt.Min != "2020-01-01" || startsAt.Max != "2030-12-31" {
		t.Fatalf("expected date bounds as declared, got %#v / %#v", startsAt.Min, startsAt.Max)
	}
	if _, ok := startsAt.MinBound(); ok {
		t.Fatalf("expected a date bound not to read as a number")
	}

	if diff := cmp.Diff([]string{KeyRequired}, attrs["title"].Keys()); diff != "" {
		t.Fatalf("title keys mismatch (-want +got):\n%s", diff)
	}
	if !attrs["title"].IsRequired() || !attrs["slug"].IsRequired() {
		t.Fatalf("expected message-style required flags to read as true")
	}
	if attrs["draft"].IsRequired() {
		t.Fatalf("expected required \"false\" to read as false")
	}

	payload, err := json.Marshal(startsAt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"min":"2020-01-01","max":"2030-12-31"}` {
		t.Fatalf("unexpected JSON %s", payload)
	}

	if err := reg.Validate("event", map[string]any{"startsAt": "2024-05-01", "title": "Launch", "slug": "launch"}); err != nil {
		t.Fatalf("expected date bounds not to be applied as lengths, got %v", err)
	}
}

func TestDeriveFormAttributesUnknownSchema(t *testing.T) {
	if got := DeriveFormAttributes("unknownSchema", Default()); got != nil {
		t.Fatalf("expected nil for unknown schema, got %#v", got)
	}
	if got := DeriveFormAttributes(Field, nil); got != nil {
		t.Fatalf("expected nil for nil registry, got %#v", got)
	}
}

func TestDefaultRegistryDeclaresKnownSchemas(t *testing.T) {
	reg := Default()
	if diff := cmp.Diff([]Name{ComponentPattern, Field, FieldOption, Fieldset}, reg.Names()); diff != "" {
		t.Fatalf("schema names mismatch (-want +got):\n%s", diff)
	}

	attrs := DeriveFormAttributes(Field, reg)
	if !attrs["name"].IsRequired() {
		t.Fatalf("expected field.name to be required")
	}
	if _, ok := attrs["fieldTypeId"]; !ok {
		t.Fatalf("expected fieldTypeId attributes")
	}
}

func TestLoadFSRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("schemas:\n  field:\n    name:\n      required: true\n")},
		"b.json": {Data: []byte(`{"schemas":{"field":{"label":{"max":10}}}}`)},
	}
	if _, err := LoadFS(fsys); err == nil {
		t.Fatalf("expected duplicate schema error")
	}
}

func TestLoadFSIgnoresOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":    {Data: []byte("# models")},
		"field.json":   {Data: []byte(`{"schemas":{"field":{"label":{"max":10,"trim":true}}}}`)},
		"nested/x.yml": {Data: []byte("schemas:\n  fieldset:\n    name:\n      required: true\n")},
	}
	reg, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]Name{Field, Fieldset}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	reg := Default()

	valid := map[string]any{
		"name": "HeroBanner",
		"fields": []any{
			map[string]any{"name": "title", "fieldTypeId": "ft-text"},
		},
		"fieldset": []any{
			map[string]any{
				"name":   "cta",
				"fields": []any{map[string]any{"name": "link", "fieldTypeId": "ft-text"}},
			},
		},
	}
	if err := reg.Validate(ComponentPattern, valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	cases := []struct {
		name    string
		payload map[string]any
		field   string
	}{
		{"missing name", map[string]any{"label": "x"}, "name"},
		{"name too short", map[string]any{"name": "Ab"}, "name"},
		{"nested field missing type", map[string]any{
			"name":   "Hero",
			"fields": []any{map[string]any{"name": "title"}},
		}, "fields[0].fieldTypeId"},
		{"empty fieldset", map[string]any{
			"name":     "Hero",
			"fieldset": []any{map[string]any{"name": "cta", "fields": []any{}}},
		}, "fieldset[0].fields"},
	}

	for _, tc := range cases {
		err := reg.Validate(ComponentPattern, tc.payload)
		var vErr *apierr.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if vErr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q (%v)", tc.name, tc.field, vErr.Field, err)
		}
	}

	if err := reg.Validate("page", map[string]any{}); !errors.Is(err, apierr.ErrUnknownSchema) {
		t.Fatalf("expected unknown schema error, got %v", err)
	}
}
