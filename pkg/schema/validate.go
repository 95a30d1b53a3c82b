package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/m-kr/cms-nano/pkg/apierr"
)

const keyItems = "items"

// Validate checks a decoded JSON payload against the named schema: required
// fields must be present and non-empty, and min/max bound string length,
// numeric value or list length. Lists whose declaration names an items schema
// are validated element by element. The first violation is returned as an
// *apierr.ValidationError whose Field is a dotted path.
func (r *Registry) Validate(name Name, payload map[string]any) error {
	if r == nil {
		return &apierr.UnknownSchemaError{Name: string(name)}
	}
	return r.validate(name, payload, "")
}

func (r *Registry) validate(name Name, payload map[string]any, prefix string) error {
	fields, ok := r.schemas[name]
	if !ok {
		return &apierr.UnknownSchemaError{Name: string(name)}
	}

	for _, field := range r.Fields(name) {
		meta := fields[field]
		attrs := filterAttributes(meta)
		path := joinPath(prefix, field)
		value, present := payload[field]

		if isEmpty(value) || !present {
			if attrs.IsRequired() {
				return &apierr.ValidationError{Field: path, Message: "is required"}
			}
			continue
		}

		if err := checkBounds(path, value, attrs); err != nil {
			return err
		}

		itemsName, _ := meta[keyItems].(string)
		if itemsName == "" {
			continue
		}
		items, ok := value.([]any)
		if !ok {
			return &apierr.ValidationError{Field: path, Message: "must be a list"}
		}
		for i, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				return &apierr.ValidationError{Field: fmt.Sprintf("%s[%d]", path, i), Message: "must be an object"}
			}
			if err := r.validate(Name(itemsName), entry, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkBounds(path string, value any, attrs Attributes) error {
	minBound, hasMin := attrs.MinBound()
	maxBound, hasMax := attrs.MaxBound()
	if !hasMin && !hasMax {
		return nil
	}

	var (
		size float64
		unit string
	)
	switch typed := value.(type) {
	case string:
		size = float64(utf8.RuneCountInString(typed))
		unit = "characters"
	case bool:
		return nil
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			size = float64(rv.Len())
			unit = "items"
		default:
			n, err := cast.ToFloat64E(value)
			if err != nil {
				return nil
			}
			size = n
		}
	}

	if hasMin && size < minBound {
		return &apierr.ValidationError{Field: path, Message: boundMessage("at least", minBound, unit)}
	}
	if hasMax && size > maxBound {
		return &apierr.ValidationError{Field: path, Message: boundMessage("at most", maxBound, unit)}
	}
	return nil
}

func boundMessage(qualifier string, bound float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("must be %s %g", qualifier, bound)
	}
	return fmt.Sprintf("must have %s %g %s", qualifier, bound, unit)
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	default:
		return false
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
