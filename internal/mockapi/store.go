package mockapi

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m-kr/cms-nano/pkg/apierr"
	"github.com/m-kr/cms-nano/pkg/model"
)

// Store is the in-memory persistence behind the mock API. It is safe for
// concurrent use; every value it returns is a copy.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	patterns   map[string]model.ComponentPattern
	fieldTypes []model.FieldTypeDescriptor
	pages      []model.PageSummary
}

// NewStore returns an empty store stamping records with now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		patterns: map[string]model.ComponentPattern{},
	}
}

// FieldTypes returns the field-type catalog.
func (s *Store) FieldTypes() []model.FieldTypeDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.FieldTypeDescriptor{}, s.fieldTypes...)
}

// SetFieldTypes replaces the field-type catalog.
func (s *Store) SetFieldTypes(types []model.FieldTypeDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fieldTypes = append([]model.FieldTypeDescriptor{}, types...)
}

// Pages returns every page summary.
func (s *Store) Pages() []model.PageSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PageSummary{}, s.pages...)
}

// AddPage appends a page summary, assigning an id when it has none.
func (s *Store) AddPage(page model.PageSummary) model.PageSummary {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, page)
	return page
}

// Patterns returns every stored component pattern in no particular order.
func (s *Store) Patterns() []model.ComponentPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ComponentPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, clonePattern(p))
	}
	return out
}

// Get returns the pattern stored under id.
func (s *Store) Get(id string) (model.ComponentPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[id]
	if !ok {
		return model.ComponentPattern{}, notExist(id)
	}
	return clonePattern(p), nil
}

// Create stores p under a new identifier and returns it. Pattern names are
// unique, compared case-insensitively.
func (s *Store) Create(p model.ComponentPattern) (model.ComponentPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUniqueName("", p.Name); err != nil {
		return model.ComponentPattern{}, err
	}
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = &now
	p.UpdatedAt = &now
	p = normalizePattern(p)
	s.patterns[p.ID] = p
	return clonePattern(p), nil
}

// Update replaces the pattern stored under id, keeping its creation stamp.
func (s *Store) Update(id string, p model.ComponentPattern) (model.ComponentPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.patterns[id]
	if !ok {
		return model.ComponentPattern{}, notExist(id)
	}
	if err := s.checkUniqueName(id, p.Name); err != nil {
		return model.ComponentPattern{}, err
	}
	now := s.now().UTC()
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = &now
	p = normalizePattern(p)
	s.patterns[id] = p
	return clonePattern(p), nil
}

// Delete removes the pattern stored under id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[id]; !ok {
		return notExist(id)
	}
	delete(s.patterns, id)
	return nil
}

func (s *Store) checkUniqueName(selfID, name string) error {
	name = strings.TrimSpace(name)
	for id, p := range s.patterns {
		if id != selfID && strings.EqualFold(p.Name, name) {
			return apierr.Validation(model.AttrName, "is already taken")
		}
	}
	return nil
}

func notExist(id string) error {
	return &apierr.NotFoundError{Resource: "Component pattern", ID: id}
}

func normalizePattern(p model.ComponentPattern) model.ComponentPattern {
	if p.Fields == nil {
		p.Fields = []model.Field{}
	}
	if p.Fieldset == nil {
		p.Fieldset = []model.Fieldset{}
	}
	return p
}

func clonePattern(p model.ComponentPattern) model.ComponentPattern {
	out := p
	out.Fields = model.CloneFields(p.Fields)
	out.Fieldset = model.CloneFieldset(p.Fieldset)
	if p.CreatedAt != nil {
		created := *p.CreatedAt
		out.CreatedAt = &created
	}
	if p.UpdatedAt != nil {
		updated := *p.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}
