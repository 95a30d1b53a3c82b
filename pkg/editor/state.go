// Package editor holds the in-progress editing state of one component
// pattern: its main parameters, its ordered fields and its ordered fieldsets.
// State is only changed through the command methods. Every command builds a
// fresh slot value instead of mutating the previous one, and bumps the
// version of exactly the slot it replaced, so consumers can detect which
// slots changed. Index-based commands validate every index before touching
// anything; a failed command leaves the state as it was.
package editor

import (
	"sync"

	"github.com/m-kr/cms-nano/pkg/model"
)

// Slot identifies one independently versioned part of the state.
type Slot int

const (
	SlotMainData Slot = iota
	SlotFields
	SlotFieldset
	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotMainData:
		return "mainData"
	case SlotFields:
		return "fields"
	case SlotFieldset:
		return "fieldset"
	default:
		return "unknown"
	}
}

// State is the editing state of one component pattern. The zero value is not
// usable; construct with New or FromPattern. State is safe for concurrent use.
type State struct {
	mu        sync.RWMutex
	patternID string
	mainData  map[string]any
	fields    []model.Field
	fieldset  []model.Fieldset
	versions  [slotCount]uint64
}

// Snapshot is a deep copy of all slots at one point in time.
type Snapshot struct {
	PatternID string
	MainData  map[string]any
	Fields    []model.Field
	Fieldset  []model.Fieldset
}

// New returns an empty state for the "new component" flow. Fields and
// fieldset stay nil until loaded or appended to.
func New() *State {
	return &State{mainData: map[string]any{}}
}

// FromPattern returns a state populated from an existing pattern.
func FromPattern(pattern model.ComponentPattern) *State {
	s := New()
	s.Load(pattern)
	return s
}

// Load replaces every slot with the contents of pattern.
func (s *State) Load(pattern model.ComponentPattern) {
	main := map[string]any{
		model.AttrName:        pattern.Name,
		model.AttrLabel:       pattern.Label,
		model.AttrDescription: pattern.Description,
	}

	fields := model.CloneFields(pattern.Fields)
	if fields == nil {
		fields = []model.Field{}
	}
	fieldset := model.CloneFieldset(pattern.Fieldset)
	if fieldset == nil {
		fieldset = []model.Fieldset{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patternID = pattern.ID
	s.mainData = main
	s.fields = fields
	s.fieldset = fieldset
	for slot := range s.versions {
		s.versions[slot]++
	}
}

// PatternID returns the identifier of the loaded pattern, empty for a new one.
func (s *State) PatternID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patternID
}

// Version returns the change counter of slot.
func (s *State) Version(slot Slot) uint64 {
	if slot < 0 || slot >= slotCount {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[slot]
}

// MainData returns a copy of the main parameters.
func (s *State) MainData() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMain(s.mainData)
}

// Fields returns a copy of the field list, nil when not loaded.
func (s *State) Fields() []model.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneFields(s.fields)
}

// Fieldset returns a copy of the fieldset list, nil when not loaded.
func (s *State) Fieldset() []model.Fieldset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneFieldset(s.fieldset)
}

// Snapshot returns a consistent copy of every slot.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		PatternID: s.patternID,
		MainData:  cloneMain(s.mainData),
		Fields:    model.CloneFields(s.fields),
		Fieldset:  model.CloneFieldset(s.fieldset),
	}
}

// ComponentData projects the current main data, fields and fieldset into the
// payload submitted on create or save.
func (s *State) ComponentData() model.ComponentData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.NewComponentData(s.mainData, s.fields, s.fieldset)
}

func cloneMain(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
