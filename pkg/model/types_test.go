package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/m-kr/cms-nano/pkg/apierr"
)

func TestFieldWithPreservesOtherAttributes(t *testing.T) {
	original := Field{
		FieldTypeID: "text",
		Name:        "title",
		Label:       "Title",
		Options:     []FieldOption{{Name: "a", Value: "1"}},
	}

	updated, err := original.With(AttrName, "heading")
	if err != nil {
		t.Fatalf("with: %v", err)
	}

	want := original
	want.Name = "heading"
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("updated field mismatch (-want +got):\n%s", diff)
	}
	if original.Name != "title" {
		t.Fatalf("receiver modified: %q", original.Name)
	}
}

func TestFieldWithCoercesRequired(t *testing.T) {
	updated, err := Field{}.With(AttrRequired, "true")
	if err != nil {
		t.Fatalf("with: %v", err)
	}
	if !updated.Required {
		t.Fatalf("expected required to be true")
	}
}

func TestFieldWithRejectsUnknownAttribute(t *testing.T) {
	original := Field{Name: "title"}
	got, err := original.With("colour", "red")
	if !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if diff := cmp.Diff(original, got); diff != "" {
		t.Fatalf("field changed on failure:\n%s", diff)
	}
}

func TestFieldWithOptionsFromDecodedJSON(t *testing.T) {
	var raw []any
	if err := json.Unmarshal([]byte(`[{"name":"Small","value":"s"},{"name":"Large","value":"l"}]`), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	updated, err := Field{}.With(AttrOptions, raw)
	if err != nil {
		t.Fatalf("with: %v", err)
	}
	want := []FieldOption{{Name: "Small", Value: "s"}, {Name: "Large", Value: "l"}}
	if diff := cmp.Diff(want, updated.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsetWithFieldsCopiesInput(t *testing.T) {
	fields := []Field{{Name: "a"}}
	set, err := Fieldset{Name: "group"}.With(AttrFields, fields)
	if err != nil {
		t.Fatalf("with: %v", err)
	}
	fields[0].Name = "mutated"
	if set.Fields[0].Name != "a" {
		t.Fatalf("fieldset aliases caller slice")
	}
}

func TestComponentPatternAcceptsLegacyID(t *testing.T) {
	var pattern ComponentPattern
	payload := `{"_id":"5e1","name":"Hero","fields":[{"name":"title"}],"fieldset":[]}`
	if err := json.Unmarshal([]byte(payload), &pattern); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if pattern.ID != "5e1" || pattern.Name != "Hero" || len(pattern.Fields) != 1 {
		t.Fatalf("unexpected pattern: %#v", pattern)
	}

	var fieldType FieldTypeDescriptor
	if err := json.Unmarshal([]byte(`{"_id":"ft1","type":"text"}`), &fieldType); err != nil {
		t.Fatalf("unmarshal field type: %v", err)
	}
	if fieldType.ID != "ft1" || fieldType.Type != "text" {
		t.Fatalf("unexpected field type: %#v", fieldType)
	}
}

func TestNestedFieldsAcceptLegacyID(t *testing.T) {
	payload := `{"_id":"p1","name":"Hero",
		"fields":[{"_id":"f1","name":"title"},{"id":"f2","_id":"ignored","name":"body"}],
		"fieldset":[{"_id":"s1","name":"cta","fields":[{"_id":"f3","name":"link"}]}]}`
	var pattern ComponentPattern
	if err := json.Unmarshal([]byte(payload), &pattern); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := []string{pattern.Fields[0].ID, pattern.Fields[1].ID, pattern.Fieldset[0].ID, pattern.Fieldset[0].Fields[0].ID}
	if diff := cmp.Diff([]string{"f1", "f2", "s1", "f3"}, got); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	// The ids travel back in the update payload.
	data := NewComponentData(map[string]any{AttrName: pattern.Name}, pattern.Fields, pattern.Fieldset)
	encoded, err := json.Marshal(data.Fieldset())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(encoded), `"id":"s1"`) || !strings.Contains(string(encoded), `"id":"f3"`) {
		t.Fatalf("expected nested ids in payload, got %s", encoded)
	}
}

func TestNewComponentDataDoesNotAlias(t *testing.T) {
	main := map[string]any{"name": "Hero"}
	fields := []Field{{Name: "title"}}
	data := NewComponentData(main, fields, nil)

	main["name"] = "Changed"
	fields[0].Name = "changed"

	if data.Name() != "Hero" {
		t.Fatalf("main data aliased: %q", data.Name())
	}
	if data.Fields()[0].Name != "title" {
		t.Fatalf("fields aliased: %#v", data.Fields())
	}
	if data.Fieldset() != nil {
		t.Fatalf("expected nil fieldset, got %#v", data.Fieldset())
	}
}

func TestComponentDataPayloadIsDecodedJSON(t *testing.T) {
	data := NewComponentData(
		map[string]any{AttrName: "Teaser"},
		[]Field{{Name: "title", FieldTypeID: "ft-text"}},
		[]Fieldset{{Name: "meta", Fields: []Field{{Name: "author"}}}},
	)
	payload, err := data.Payload()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	fields, ok := payload[AttrFields].([]any)
	if !ok || len(fields) != 1 {
		t.Fatalf("expected decoded field list, got %#v", payload[AttrFields])
	}
	first, ok := fields[0].(map[string]any)
	if !ok || first[AttrName] != "title" || first[AttrFieldTypeID] != "ft-text" {
		t.Fatalf("unexpected field payload: %#v", fields[0])
	}
	if payload[AttrName] != "Teaser" {
		t.Fatalf("unexpected name %#v", payload[AttrName])
	}
}
