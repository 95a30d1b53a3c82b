package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/m-kr/cms-nano/pkg/model"
)

// FieldTypes returns the field-type catalog used across tests.
func FieldTypes() []model.FieldTypeDescriptor {
	return []model.FieldTypeDescriptor{
		{ID: "ft-text", Type: "text"},
		{ID: "ft-bool", Type: "boolean"},
	}
}

// HeroPattern returns a populated component pattern with two fields and two
// fieldsets, the second holding two fields.
func HeroPattern() model.ComponentPattern {
	return model.ComponentPattern{
		ID:          "cp-hero",
		Name:        "HeroBanner",
		Label:       "Hero banner",
		Description: "Top of page banner",
		Fields: []model.Field{
			{ID: "f-title", FieldTypeID: "ft-text", Name: "title", Label: "Title", Required: true},
			{ID: "f-dark", FieldTypeID: "ft-bool", Name: "dark", Label: "Dark mode", DefaultValue: false},
		},
		Fieldset: []model.Fieldset{
			{ID: "fs-meta", Name: "meta", Fields: []model.Field{{Name: "author", FieldTypeID: "ft-text"}}},
			{ID: "fs-cta", Name: "cta", Fields: []model.Field{
				{Name: "link", FieldTypeID: "ft-text"},
				{Name: "caption", FieldTypeID: "ft-text"},
			}},
		},
	}
}

// LoadPattern reads a JSON fixture into a ComponentPattern.
func LoadPattern(path string) (model.ComponentPattern, error) {
	if path == "" {
		return model.ComponentPattern{}, errors.New("testsupport: pattern path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ComponentPattern{}, fmt.Errorf("testsupport: read pattern: %w", err)
	}
	var out model.ComponentPattern
	if err := json.Unmarshal(data, &out); err != nil {
		return model.ComponentPattern{}, fmt.Errorf("testsupport: unmarshal pattern: %w", err)
	}
	return out, nil
}

// MustLoadPattern is LoadPattern failing the test on error.
func MustLoadPattern(t *testing.T, path string) model.ComponentPattern {
	t.Helper()

	pattern, err := LoadPattern(path)
	if err != nil {
		t.Fatalf("load pattern: %v", err)
	}
	return pattern
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
// Returns true if the golden was written.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// AssertJSONGolden marshals value and compares it structurally with the JSON
// golden at path, so key order and whitespace do not matter.
func AssertJSONGolden(t *testing.T, path string, value any) {
	t.Helper()

	if WriteGolden(t, path, value) {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var got, want any
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	if diff := CompareGolden(want, got); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
