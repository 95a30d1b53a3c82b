// Package form builds the hand-authored descriptor trees the editing UI uses
// to render inputs for component patterns, fields and fieldsets. Constraint
// attributes come from the schema registry through
// schema.DeriveFormAttributes; everything else is fixed per form. Builders are
// pure: identical registry and field-type catalog yield identical trees.
package form

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/schema"
)

// Input types understood by renderers.
const (
	TypeText        = "text"
	TypeBoolean     = "boolean"
	TypeFieldsGroup = "fieldsGroup"
)

// Descriptor describes how one attribute is presented and edited. It is
// derived, never persisted. A descriptor with TypeFrom set has no fixed type:
// its effective type is the value currently held by the referenced sibling.
type Descriptor struct {
	Type         string              `json:"type,omitempty"`
	Label        string              `json:"label,omitempty"`
	Attributes   schema.Attributes   `json:"attributes"`
	Options      []model.FieldOption `json:"options,omitempty"`
	Hidden       bool                `json:"hidden,omitempty"`
	Fields       Form                `json:"fields,omitempty"`
	TypeFrom     string              `json:"typeFrom,omitempty"`
	DefaultValue any                 `json:"defaultValue,omitempty"`
}

// Entry binds a descriptor to the attribute key it edits.
type Entry struct {
	Key        string
	Descriptor Descriptor
}

// Form is an ordered descriptor tree. Order is the presentation order.
type Form []Entry

// Get returns the descriptor for key.
func (f Form) Get(key string) (Descriptor, bool) {
	for _, entry := range f {
		if entry.Key == key {
			return entry.Descriptor, true
		}
	}
	return Descriptor{}, false
}

// Keys lists the attribute keys in presentation order.
func (f Form) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, entry := range f {
		keys = append(keys, entry.Key)
	}
	return keys
}

// ResolveType returns the effective input type of the descriptor for key,
// following TypeFrom to the sibling value in values. The sibling value is a
// field type id, resolved to its type name through fieldTypes.
func (f Form) ResolveType(key string, values map[string]any, fieldTypes []model.FieldTypeDescriptor) string {
	desc, ok := f.Get(key)
	if !ok {
		return ""
	}
	if desc.TypeFrom == "" {
		return desc.Type
	}
	ref, _ := values[desc.TypeFrom].(string)
	for _, fieldType := range fieldTypes {
		if fieldType.ID == ref {
			return fieldType.Type
		}
	}
	if sibling, ok := f.Get(desc.TypeFrom); ok {
		if fallback, ok := sibling.DefaultValue.(string); ok {
			return fallback
		}
	}
	return TypeText
}

// MarshalJSON encodes the form as a JSON object keeping presentation order.
func (f Form) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("form: marshal %s: %w", entry.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DisplayLabel returns the authored label or one derived from key.
func (d Descriptor) DisplayLabel(key string, labeler func(string) string) string {
	if d.Label != "" {
		return d.Label
	}
	if labeler == nil {
		labeler = DefaultLabeler
	}
	return labeler(key)
}
