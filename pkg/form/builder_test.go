package form

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/schema"
	"github.com/m-kr/cms-nano/pkg/testsupport"
)

func TestFieldFormMatchesGolden(t *testing.T) {
	builder := New(schema.Default())
	got := builder.FieldForm(testsupport.FieldTypes())

	want := []string{"required", "fieldTypeId", "name", "label", "description", "definedOptionsId", "options", "defaultValue"}
	if diff := cmp.Diff(want, got.Keys()); diff != "" {
		t.Fatalf("field form order mismatch (-want +got):\n%s", diff)
	}

	testsupport.AssertJSONGolden(t, "testdata/field_form.golden.json", got)
}

func TestBuildersAreDeterministic(t *testing.T) {
	first := New(schema.Default())
	second := New(schema.Default())

	if diff := cmp.Diff(first.MainParameters(), second.MainParameters()); diff != "" {
		t.Fatalf("main parameters differ:\n%s", diff)
	}
	if diff := cmp.Diff(first.FieldForm(testsupport.FieldTypes()), second.FieldForm(testsupport.FieldTypes())); diff != "" {
		t.Fatalf("field form differs:\n%s", diff)
	}
	if diff := cmp.Diff(first.FieldsetForm(), second.FieldsetForm()); diff != "" {
		t.Fatalf("fieldset form differs:\n%s", diff)
	}
}

func TestFieldTypeInputHiddenWithoutCatalog(t *testing.T) {
	form := New(schema.Default()).FieldForm(nil)

	desc, ok := form.Get(model.AttrFieldTypeID)
	if !ok {
		t.Fatalf("fieldTypeId descriptor missing")
	}
	if !desc.Hidden || desc.Options != nil {
		t.Fatalf("expected hidden input without options, got %#v", desc)
	}

	loaded, _ := New(schema.Default()).FieldForm([]model.FieldTypeDescriptor{}).Get(model.AttrFieldTypeID)
	if loaded.Hidden {
		t.Fatalf("an empty but loaded catalog should not hide the input")
	}
}

func TestMainParametersWithoutRegistryDegrades(t *testing.T) {
	form := New(nil).MainParameters()

	if diff := cmp.Diff([]string{"name", "label", "description"}, form.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	for _, entry := range form {
		if !entry.Descriptor.Attributes.Empty() {
			t.Fatalf("expected empty attributes for %s, got %#v", entry.Key, entry.Descriptor.Attributes)
		}
	}
	name, _ := form.Get(model.AttrName)
	if name.Label != "Name (Upper CamelCase)" {
		t.Fatalf("unexpected name label %q", name.Label)
	}
}

func TestFieldsetFormAttributes(t *testing.T) {
	form := New(schema.Default()).FieldsetForm()
	name, ok := form.Get(model.AttrName)
	if !ok {
		t.Fatalf("name descriptor missing")
	}
	if !name.Attributes.IsRequired() || name.Label != "Name (camelCase)" {
		t.Fatalf("unexpected fieldset name descriptor: %#v", name)
	}
	required, _ := form.Get(model.AttrRequired)
	if required.Type != TypeBoolean {
		t.Fatalf("expected boolean required input, got %q", required.Type)
	}
}

func TestResolveTypeFollowsSelectedFieldType(t *testing.T) {
	form := New(schema.Default()).FieldForm(testsupport.FieldTypes())

	got := form.ResolveType(model.AttrDefaultValue, map[string]any{model.AttrFieldTypeID: "ft-bool"}, testsupport.FieldTypes())
	if got != "boolean" {
		t.Fatalf("expected boolean, got %q", got)
	}

	got = form.ResolveType(model.AttrDefaultValue, map[string]any{}, testsupport.FieldTypes())
	if got != TypeText {
		t.Fatalf("expected fallback to text, got %q", got)
	}
}

func TestFormMarshalKeepsOrder(t *testing.T) {
	form := Form{
		{Key: "zeta", Descriptor: Descriptor{Type: TypeText}},
		{Key: "alpha", Descriptor: Descriptor{Type: TypeBoolean}},
	}
	payload, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":{"type":"text","attributes":{}},"alpha":{"type":"boolean","attributes":{}}}`
	if string(payload) != want {
		t.Fatalf("unexpected payload:\n%s", payload)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"definedOptionsId": "Defined options ID",
		"field_type":       "Field type",
		"defaultValue":     "Default value",
		"cta_link":         "CTA link",
		"backgroundUrl":    "Background URL",
		"heading2Text":     "Heading 2 text",
		"name":             "Name",
		"":                 "",
	}
	for input, want := range cases {
		if got := DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
