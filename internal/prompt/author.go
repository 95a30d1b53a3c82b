package prompt

import (
	"context"
	"fmt"

	"github.com/m-kr/cms-nano/pkg/editor"
	"github.com/m-kr/cms-nano/pkg/form"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/remotesync"
)

// Author drives the editor through prompts: main parameters first, then any
// number of new fields and fieldsets.
type Author struct {
	Filler
}

// NewAuthor returns an Author asking through driver.
func NewAuthor(driver Driver, fieldTypes []model.FieldTypeDescriptor) Author {
	return Author{Filler: Filler{Driver: driver, FieldTypes: fieldTypes, Labeler: form.DefaultLabeler}}
}

// Compose runs the whole authoring flow on state.
func (a Author) Compose(ctx context.Context, state *editor.State, forms remotesync.Forms) error {
	if err := a.EditMain(ctx, state, forms.Main); err != nil {
		return err
	}
	if err := a.AddFields(ctx, state, forms.Field); err != nil {
		return err
	}
	return a.AddFieldsets(ctx, state, forms.Fieldset, forms.Field)
}

// EditMain asks for the main parameters, seeded from the current main data.
func (a Author) EditMain(ctx context.Context, state *editor.State, f form.Form) error {
	values, err := a.Fill(ctx, f, state.MainData())
	if err != nil {
		return err
	}
	for _, key := range f.Keys() {
		if value, ok := values[key]; ok {
			state.SetMainField(key, value)
		}
	}
	return nil
}

// AddFields appends top-level fields until the user declines.
func (a Author) AddFields(ctx context.Context, state *editor.State, f form.Form) error {
	for {
		more, err := a.Driver.Confirm(ctx, ConfirmConfig{Message: "Add a field?"})
		if err != nil || !more {
			return err
		}
		state.AppendField()
		index := len(state.Fields()) - 1
		if err := a.fillField(ctx, f, nil, func(key string, value any) error {
			return state.SetFieldValue(index, key, value)
		}); err != nil {
			return err
		}
	}
}

// AddFieldsets appends fieldsets until the user declines. Each new fieldset
// starts with one field, and more can be added to it.
func (a Author) AddFieldsets(ctx context.Context, state *editor.State, fieldsetForm, fieldForm form.Form) error {
	for {
		more, err := a.Driver.Confirm(ctx, ConfirmConfig{Message: "Add a fieldset?"})
		if err != nil || !more {
			return err
		}
		state.AppendFieldset()
		setIndex := len(state.Fieldset()) - 1

		if err := a.fillField(ctx, fieldsetForm, nil, func(key string, value any) error {
			return state.SetFieldsetValue(setIndex, key, value)
		}); err != nil {
			return err
		}

		name := state.Fieldset()[setIndex].Name
		for fieldIndex := 0; ; fieldIndex++ {
			if fieldIndex > 0 {
				more, err := a.Driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add another field to %s?", name)})
				if err != nil {
					return err
				}
				if !more {
					break
				}
				if err := state.AppendFieldsetField(setIndex); err != nil {
					return err
				}
			}
			idx := fieldIndex
			if err := a.Driver.Info(ctx, fmt.Sprintf("Field %d of %s", idx+1, name)); err != nil {
				return err
			}
			if err := a.fillField(ctx, fieldForm, nil, func(key string, value any) error {
				return state.SetFieldsetFieldValue(setIndex, idx, key, value)
			}); err != nil {
				return err
			}
		}
	}
}

func (a Author) fillField(ctx context.Context, f form.Form, current map[string]any, set func(string, any) error) error {
	values, err := a.Fill(ctx, f, current)
	if err != nil {
		return err
	}
	for _, key := range f.Keys() {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := set(key, value); err != nil {
			return err
		}
	}
	return nil
}
