package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/m-kr/cms-nano/pkg/form"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/schema"
)

// Filler asks for every visible entry of a form and returns the answers keyed
// by attribute.
type Filler struct {
	Driver     Driver
	FieldTypes []model.FieldTypeDescriptor
	Labeler    func(string) string
}

// Fill walks f in presentation order. current seeds defaults; hidden entries
// keep their current value. Entries whose type comes from a sibling are
// resolved against the answers collected so far.
func (fl Filler) Fill(ctx context.Context, f form.Form, current map[string]any) (map[string]any, error) {
	if fl.Driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	values := make(map[string]any, len(f))
	for key, value := range current {
		values[key] = value
	}

	for _, entry := range f {
		if entry.Descriptor.Hidden {
			continue
		}
		value, err := fl.ask(ctx, f, entry, values)
		if err != nil {
			return nil, fmt.Errorf("prompt: %s: %w", entry.Key, err)
		}
		values[entry.Key] = value
	}
	return values, nil
}

func (fl Filler) ask(ctx context.Context, f form.Form, entry form.Entry, values map[string]any) (any, error) {
	desc := entry.Descriptor
	label := desc.DisplayLabel(entry.Key, fl.Labeler)
	current := values[entry.Key]

	if len(desc.Options) > 0 {
		return fl.choose(ctx, label, desc, current)
	}

	kind := desc.Type
	if desc.TypeFrom != "" {
		kind = f.ResolveType(entry.Key, values, fl.FieldTypes)
	}

	switch kind {
	case form.TypeBoolean:
		def := cast.ToBool(current)
		if current == nil && desc.Attributes.Default != nil {
			def = cast.ToBool(desc.Attributes.Default)
		}
		return fl.Driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def})
	case form.TypeFieldsGroup:
		return fl.repeat(ctx, label, desc, current)
	case "number":
		raw, err := fl.Driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   cast.ToString(current),
			Validator: numberValidator(desc.Attributes),
		})
		if err != nil || strings.TrimSpace(raw) == "" {
			return nil, err
		}
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	default:
		raw, err := fl.Driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   cast.ToString(current),
			Validator: textValidator(desc.Attributes),
		})
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if desc.TypeFrom != "" && raw == "" {
			return nil, nil
		}
		return raw, nil
	}
}

func (fl Filler) choose(ctx context.Context, label string, desc form.Descriptor, current any) (any, error) {
	names := make([]string, 0, len(desc.Options))
	def := 0
	for i, option := range desc.Options {
		names = append(names, option.Name)
		if option.Value == cast.ToString(current) {
			def = i
		}
	}
	idx, err := fl.Driver.Select(ctx, SelectConfig{Message: label, Options: names, DefaultIndex: def})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(desc.Options) {
		return nil, fmt.Errorf("selection %d out of range", idx)
	}
	return desc.Options[idx].Value, nil
}

// repeat keeps the current entries and asks for more until declined.
func (fl Filler) repeat(ctx context.Context, label string, desc form.Descriptor, current any) (any, error) {
	var entries []any
	if existing, ok := current.([]any); ok {
		entries = append(entries, existing...)
	}
	if existing, ok := current.([]model.FieldOption); ok {
		for _, option := range existing {
			entries = append(entries, map[string]any{model.AttrName: option.Name, model.AttrValue: option.Value})
		}
	}

	for {
		more, err := fl.Driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add to %s?", label)})
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		entry, err := fl.Fill(ctx, desc.Fields, nil)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func textValidator(attrs schema.Attributes) func(string) error {
	return func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			if attrs.IsRequired() {
				return errors.New("a value is required")
			}
			return nil
		}
		n := float64(utf8.RuneCountInString(raw))
		if minBound, ok := attrs.MinBound(); ok && n < minBound {
			return fmt.Errorf("must have at least %g characters", minBound)
		}
		if maxBound, ok := attrs.MaxBound(); ok && n > maxBound {
			return fmt.Errorf("must have at most %g characters", maxBound)
		}
		return nil
	}
}

func numberValidator(attrs schema.Attributes) func(string) error {
	return func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			if attrs.IsRequired() {
				return errors.New("a value is required")
			}
			return nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.New("must be a number")
		}
		if minBound, ok := attrs.MinBound(); ok && n < minBound {
			return fmt.Errorf("must be at least %g", minBound)
		}
		if maxBound, ok := attrs.MaxBound(); ok && n > maxBound {
			return fmt.Errorf("must be at most %g", maxBound)
		}
		return nil
	}
}
