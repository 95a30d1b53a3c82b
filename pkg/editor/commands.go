package editor

import (
	"fmt"

	"github.com/m-kr/cms-nano/pkg/apierr"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/reorder"
)

// SetMainField sets one main parameter.
func (s *State) SetMainField(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneMain(s.mainData)
	next[name] = value
	s.mainData = next
	s.versions[SlotMainData]++
}

// ReplaceFields replaces the whole field list with a copy of fields.
func (s *State) ReplaceFields(fields []model.Field) {
	next := model.CloneFields(fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitFields(next)
}

// ReplaceFieldset replaces the whole fieldset list with a copy of fieldset.
func (s *State) ReplaceFieldset(fieldset []model.Fieldset) {
	next := model.CloneFieldset(fieldset)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitFieldset(next)
}

// SetFieldValue replaces the field at index with a copy carrying the one
// updated attribute.
func (s *State) SetFieldValue(index int, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apierr.CheckIndex("fields", index, len(s.fields)); err != nil {
		return err
	}
	updated, err := s.fields[index].With(name, value)
	if err != nil {
		return err
	}
	s.commitFields(replaceAt(s.fields, index, updated))
	return nil
}

// AppendField appends one empty field.
func (s *State) AppendField() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitFields(appendCopy(s.fields, model.Field{}))
}

// AppendFieldset appends a fieldset holding a single empty field.
func (s *State) AppendFieldset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitFieldset(appendCopy(s.fieldset, model.Fieldset{Fields: []model.Field{{}}}))
}

// AppendFieldsetField appends one empty field to fieldset[fieldsetIndex].
func (s *State) AppendFieldsetField(fieldsetIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apierr.CheckIndex("fieldset", fieldsetIndex, len(s.fieldset)); err != nil {
		return err
	}
	set := s.fieldset[fieldsetIndex]
	set.Fields = appendCopy(set.Fields, model.Field{})
	s.commitFieldset(replaceAt(s.fieldset, fieldsetIndex, set))
	return nil
}

// SetFieldsetValue replaces fieldset[fieldsetIndex] with a copy carrying the
// one updated attribute.
func (s *State) SetFieldsetValue(fieldsetIndex int, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apierr.CheckIndex("fieldset", fieldsetIndex, len(s.fieldset)); err != nil {
		return err
	}
	updated, err := s.fieldset[fieldsetIndex].With(name, value)
	if err != nil {
		return err
	}
	s.commitFieldset(replaceAt(s.fieldset, fieldsetIndex, updated))
	return nil
}

// SetFieldsetFieldValue replaces fieldset[fieldsetIndex].fields[fieldIndex]
// with a copy carrying the one updated attribute.
func (s *State) SetFieldsetFieldValue(fieldsetIndex, fieldIndex int, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apierr.CheckIndex("fieldset", fieldsetIndex, len(s.fieldset)); err != nil {
		return err
	}
	set := s.fieldset[fieldsetIndex]
	if err := apierr.CheckIndex(nestedName(fieldsetIndex), fieldIndex, len(set.Fields)); err != nil {
		return err
	}
	updated, err := set.Fields[fieldIndex].With(name, value)
	if err != nil {
		return err
	}
	set.Fields = replaceAt(set.Fields, fieldIndex, updated)
	s.commitFieldset(replaceAt(s.fieldset, fieldsetIndex, set))
	return nil
}

// ReorderFields moves one top-level field. A nil move leaves the state
// untouched.
func (s *State) ReorderFields(move *reorder.Move) error {
	if move == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := reorder.Items(s.fields, move)
	if err != nil {
		return fmt.Errorf("editor: reorder fields: %w", err)
	}
	s.commitFields(next)
	return nil
}

// ReorderFieldset moves one fieldset within the fieldset list.
func (s *State) ReorderFieldset(move *reorder.Move) error {
	if move == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := reorder.Items(s.fieldset, move)
	if err != nil {
		return fmt.Errorf("editor: reorder fieldset: %w", err)
	}
	s.commitFieldset(next)
	return nil
}

// ReorderFieldsetFields moves one field inside fieldset[fieldsetIndex]. Only
// that fieldset's fields are rewritten.
func (s *State) ReorderFieldsetFields(fieldsetIndex int, move *reorder.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apierr.CheckIndex("fieldset", fieldsetIndex, len(s.fieldset)); err != nil {
		return err
	}
	if move == nil {
		return nil
	}
	set := s.fieldset[fieldsetIndex]
	fields, err := reorder.Items(set.Fields, move)
	if err != nil {
		return fmt.Errorf("editor: reorder %s: %w", nestedName(fieldsetIndex), err)
	}
	set.Fields = fields
	s.commitFieldset(replaceAt(s.fieldset, fieldsetIndex, set))
	return nil
}

// commitFields and commitFieldset expect s.mu to be held.
func (s *State) commitFields(next []model.Field) {
	s.fields = next
	s.versions[SlotFields]++
}

func (s *State) commitFieldset(next []model.Fieldset) {
	s.fieldset = next
	s.versions[SlotFieldset]++
}

func replaceAt[T any](items []T, index int, value T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[index] = value
	return out
}

func appendCopy[T any](items []T, value T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, value)
}

func nestedName(fieldsetIndex int) string {
	return fmt.Sprintf("fieldset[%d].fields", fieldsetIndex)
}
