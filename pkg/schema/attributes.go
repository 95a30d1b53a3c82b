package schema

import (
	"sort"

	"github.com/spf13/cast"
)

// Form-facing metadata keys. Everything else in a declaration is server-only.
const (
	KeyMin      = "min"
	KeyMax      = "max"
	KeyRequired = "required"
	KeyDefault  = "default"
)

var formKeys = []string{KeyMin, KeyMax, KeyRequired, KeyDefault}

// Attributes is the filtered constraint set surfaced to the form layer. Its
// JSON form only ever carries min, max, required and default. Values are kept
// as declared, so a date bound such as min: "2020-01-01" survives; MinBound,
// MaxBound and IsRequired read them as numbers and flags.
type Attributes struct {
	Min      any `json:"min,omitempty"`
	Max      any `json:"max,omitempty"`
	Required any `json:"required,omitempty"`
	Default  any `json:"default,omitempty"`
}

// Empty reports whether no constraint is set.
func (a Attributes) Empty() bool {
	return a.Min == nil && a.Max == nil && a.Required == nil && a.Default == nil
}

// Keys returns the constraint keys that are set, in a stable order.
func (a Attributes) Keys() []string {
	var keys []string
	if a.Min != nil {
		keys = append(keys, KeyMin)
	}
	if a.Max != nil {
		keys = append(keys, KeyMax)
	}
	if a.Required != nil {
		keys = append(keys, KeyRequired)
	}
	if a.Default != nil {
		keys = append(keys, KeyDefault)
	}
	return keys
}

// IsRequired reports whether the required flag is set and reads as true.
// Mongoose-style messages (required: "please enter a name") count as true.
func (a Attributes) IsRequired() bool {
	if a.Required == nil {
		return false
	}
	if v, err := cast.ToBoolE(a.Required); err == nil {
		return v
	}
	switch typed := a.Required.(type) {
	case string:
		return typed != ""
	case []any:
		// [true, "message"]
		if len(typed) > 0 {
			v, err := cast.ToBoolE(typed[0])
			return err == nil && v
		}
	}
	return false
}

// MinBound returns the lower bound when it is numeric.
func (a Attributes) MinBound() (float64, bool) {
	return numericBound(a.Min)
}

// MaxBound returns the upper bound when it is numeric.
func (a Attributes) MaxBound() (float64, bool) {
	return numericBound(a.Max)
}

func numericBound(raw any) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	if _, ok := raw.(bool); ok {
		return 0, false
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DeriveFormAttributes returns, for every field declared by the named schema,
// the subset of its metadata drawn from {min, max, required, default}. It
// returns nil when the schema is not declared; callers treat nil as "no
// attributes available".
func DeriveFormAttributes(name Name, registry *Registry) map[string]Attributes {
	if registry == nil {
		return nil
	}
	fields, ok := registry.schemas[name]
	if !ok {
		return nil
	}

	out := make(map[string]Attributes, len(fields))
	for field, meta := range fields {
		out[field] = filterAttributes(meta)
	}
	return out
}

// FormKeys returns the metadata keys that survive filtering.
func FormKeys() []string {
	keys := append([]string(nil), formKeys...)
	sort.Strings(keys)
	return keys
}

func filterAttributes(meta Metadata) Attributes {
	var attrs Attributes
	for _, key := range formKeys {
		raw, ok := meta[key]
		if !ok || raw == nil {
			continue
		}
		switch key {
		case KeyMin:
			attrs.Min = raw
		case KeyMax:
			attrs.Max = raw
		case KeyRequired:
			attrs.Required = raw
		case KeyDefault:
			attrs.Default = raw
		}
	}
	return attrs
}
