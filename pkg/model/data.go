package model

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// ComponentData is the payload submitted when creating or saving a component
// pattern: the main parameters plus the current fields and fieldset.
type ComponentData map[string]any

// NewComponentData projects main data and the given snapshots into a fresh
// payload. The main map is copied; fields and fieldset are deep-copied so the
// payload never aliases editor state.
func NewComponentData(main map[string]any, fields []Field, fieldset []Fieldset) ComponentData {
	data := make(ComponentData, len(main)+2)
	for key, value := range main {
		data[key] = value
	}
	data[AttrFields] = CloneFields(fields)
	data[AttrFieldset] = CloneFieldset(fieldset)
	return data
}

// Name returns the pattern name carried by the payload, if any.
func (d ComponentData) Name() string {
	return cast.ToString(d[AttrName])
}

// Fields returns the field snapshot carried by the payload.
func (d ComponentData) Fields() []Field {
	fields, _ := d[AttrFields].([]Field)
	return fields
}

// Fieldset returns the fieldset snapshot carried by the payload.
func (d ComponentData) Fieldset() []Fieldset {
	fieldset, _ := d[AttrFieldset].([]Fieldset)
	return fieldset
}

// Payload returns the wire form of the data as decoded JSON, the shape
// schema validation works on.
func (d ComponentData) Payload() (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
