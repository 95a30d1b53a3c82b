package model

import (
	"encoding/json"
	"time"

	"github.com/spf13/cast"

	"github.com/m-kr/cms-nano/pkg/apierr"
)

// Attribute names shared by Field and Fieldset. They match the JSON names used
// on the wire so form descriptors, commands and payloads agree on keys.
const (
	AttrID               = "id"
	AttrFieldTypeID      = "fieldTypeId"
	AttrName             = "name"
	AttrLabel            = "label"
	AttrDescription      = "description"
	AttrRequired         = "required"
	AttrDefinedOptionsID = "definedOptionsId"
	AttrOptions          = "options"
	AttrDefaultValue     = "defaultValue"
	AttrFields           = "fields"
	AttrFieldset         = "fieldset"
	AttrValue            = "value"
)

// FieldOption is a custom name/value pair local to a field, used when the
// field does not reference a globally defined option list.
type FieldOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Field is one typed, named editable attribute of a component pattern or a
// fieldset. DefaultValue is loosely bound to the referenced field type.
type Field struct {
	ID               string        `json:"id,omitempty"`
	FieldTypeID      string        `json:"fieldTypeId,omitempty"`
	Name             string        `json:"name,omitempty"`
	Label            string        `json:"label,omitempty"`
	Description      string        `json:"description,omitempty"`
	Required         bool          `json:"required,omitempty"`
	DefinedOptionsID string        `json:"definedOptionsId,omitempty"`
	Options          []FieldOption `json:"options,omitempty"`
	DefaultValue     any           `json:"defaultValue,omitempty"`
}

// Fieldset groups fields one level under a component pattern.
type Fieldset struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Label       string  `json:"label,omitempty"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Fields      []Field `json:"fields"`
}

// ComponentPattern is a reusable structured content-type definition.
type ComponentPattern struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Label       string     `json:"label,omitempty"`
	Description string     `json:"description,omitempty"`
	Fields      []Field    `json:"fields"`
	Fieldset    []Fieldset `json:"fieldset"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// FieldTypeDescriptor is a catalog entry such as "text" or "boolean".
type FieldTypeDescriptor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ListPage is the list envelope returned by paginated endpoints.
type ListPage[T any] struct {
	Data         []T `json:"data"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// PageSummary is the reference shape of the sibling "pages" listing.
type PageSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
}

// UnmarshalJSON accepts both "id" and the legacy "_id" key.
func (d *FieldTypeDescriptor) UnmarshalJSON(data []byte) error {
	type plain FieldTypeDescriptor
	var aux struct {
		plain
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = FieldTypeDescriptor(aux.plain)
	if d.ID == "" {
		d.ID = aux.LegacyID
	}
	return nil
}

// UnmarshalJSON accepts both "id" and the legacy "_id" key.
func (p *ComponentPattern) UnmarshalJSON(data []byte) error {
	type plain ComponentPattern
	var aux struct {
		plain
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = ComponentPattern(aux.plain)
	if p.ID == "" {
		p.ID = aux.LegacyID
	}
	return nil
}

// UnmarshalJSON accepts both "id" and the legacy "_id" key, which servers
// storing fields as subdocuments send.
func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	var aux struct {
		plain
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = Field(aux.plain)
	if f.ID == "" {
		f.ID = aux.LegacyID
	}
	return nil
}

// UnmarshalJSON accepts both "id" and the legacy "_id" key.
func (s *Fieldset) UnmarshalJSON(data []byte) error {
	type plain Fieldset
	var aux struct {
		plain
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Fieldset(aux.plain)
	if s.ID == "" {
		s.ID = aux.LegacyID
	}
	return nil
}

// With returns a copy of f carrying the single updated attribute. Every other
// attribute is preserved. The receiver is never modified.
func (f Field) With(name string, value any) (Field, error) {
	out := f
	var err error
	switch name {
	case AttrID:
		err = setString(&out.ID, name, value)
	case AttrFieldTypeID:
		err = setString(&out.FieldTypeID, name, value)
	case AttrName:
		err = setString(&out.Name, name, value)
	case AttrLabel:
		err = setString(&out.Label, name, value)
	case AttrDescription:
		err = setString(&out.Description, name, value)
	case AttrDefinedOptionsID:
		err = setString(&out.DefinedOptionsID, name, value)
	case AttrRequired:
		err = setBool(&out.Required, name, value)
	case AttrOptions:
		out.Options, err = toOptions(value)
	case AttrDefaultValue:
		out.DefaultValue = value
	default:
		err = apierr.Validation(name, "unknown field attribute")
	}
	if err != nil {
		return f, err
	}
	return out, nil
}

// With returns a copy of s carrying the single updated attribute. The fields
// attribute accepts a []Field which is copied.
func (s Fieldset) With(name string, value any) (Fieldset, error) {
	out := s
	var err error
	switch name {
	case AttrID:
		err = setString(&out.ID, name, value)
	case AttrName:
		err = setString(&out.Name, name, value)
	case AttrLabel:
		err = setString(&out.Label, name, value)
	case AttrDescription:
		err = setString(&out.Description, name, value)
	case AttrRequired:
		err = setBool(&out.Required, name, value)
	case AttrFields:
		fields, ok := value.([]Field)
		if !ok && value != nil {
			err = apierr.Validation(name, "expected []Field, got %T", value)
			break
		}
		out.Fields = CloneFields(fields)
	default:
		err = apierr.Validation(name, "unknown fieldset attribute")
	}
	if err != nil {
		return s, err
	}
	return out, nil
}

// Clone returns a deep copy of the field's slices.
func (f Field) Clone() Field {
	if f.Options != nil {
		f.Options = append([]FieldOption(nil), f.Options...)
	}
	return f
}

// Clone returns a deep copy of the fieldset including its fields.
func (s Fieldset) Clone() Fieldset {
	s.Fields = CloneFields(s.Fields)
	return s
}

// CloneFields deep-copies a field list, preserving nil.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

// CloneFieldset deep-copies a fieldset list, preserving nil.
func CloneFieldset(fieldset []Fieldset) []Fieldset {
	if fieldset == nil {
		return nil
	}
	out := make([]Fieldset, len(fieldset))
	for i, set := range fieldset {
		out[i] = set.Clone()
	}
	return out
}

func setString(dst *string, name string, value any) error {
	str, err := cast.ToStringE(value)
	if err != nil {
		return apierr.Validation(name, "expected text, got %T", value)
	}
	*dst = str
	return nil
}

func setBool(dst *bool, name string, value any) error {
	b, err := cast.ToBoolE(value)
	if err != nil {
		return apierr.Validation(name, "expected boolean, got %T", value)
	}
	*dst = b
	return nil
}

func toOptions(value any) ([]FieldOption, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []FieldOption:
		return append([]FieldOption(nil), typed...), nil
	case []any:
		out := make([]FieldOption, 0, len(typed))
		for i, raw := range typed {
			entry, err := cast.ToStringMapStringE(raw)
			if err != nil {
				return nil, apierr.Validation(AttrOptions, "option %d: %v", i, err)
			}
			out = append(out, FieldOption{Name: entry[AttrName], Value: entry[AttrValue]})
		}
		return out, nil
	default:
		return nil, apierr.Validation(AttrOptions, "expected option list, got %T", value)
	}
}
