// Package remotesync runs the create, update, browse and delete flows of
// component patterns against the remote API and reconciles their results into
// the editor state and listing cursor. A failed call never touches local
// state; every outcome is returned as a Result and handed to a Notifier.
package remotesync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/pkg/apierr"
	"github.com/m-kr/cms-nano/pkg/editor"
	"github.com/m-kr/cms-nano/pkg/form"
	"github.com/m-kr/cms-nano/pkg/listing"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/schema"
)

// Success messages.
const (
	MessageSaved   = "Saved changes"
	MessageRemoved = "Component has been removed"
)

// AddedMessage is the success message of a create.
func AddedMessage(name string) string {
	return fmt.Sprintf("Added %s component", name)
}

// API is the remote surface a Session drives. *client.Client satisfies it.
type API interface {
	listing.API
	GetComponentPattern(ctx context.Context, id string) (model.ComponentPattern, error)
	ListFieldTypes(ctx context.Context) ([]model.FieldTypeDescriptor, error)
	CreateComponentPattern(ctx context.Context, data model.ComponentData) (string, error)
	UpdateComponentPattern(ctx context.Context, id string, data model.ComponentData) (model.ComponentPattern, error)
}

// Option customises a Session.
type Option func(*Session)

// WithNotifier sets the collaborator receiving outcomes.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithConfirmer sets the confirmation capability used before deletes.
func WithConfirmer(c listing.Confirmer) Option {
	return func(s *Session) {
		s.confirm = c
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry sets the schema registry used for form descriptors and for
// validating payloads before they are sent.
func WithRegistry(registry *schema.Registry) Option {
	return func(s *Session) {
		s.registry = registry
	}
}

// WithListingOptions forwards options to the listing cursor.
func WithListingOptions(opts ...listing.Option) Option {
	return func(s *Session) {
		s.listingOpts = append(s.listingOpts, opts...)
	}
}

// Forms groups the descriptor sets a renderer needs for one editor.
type Forms struct {
	Main     form.Form
	Field    form.Form
	Fieldset form.Form
}

// Session owns one editor state, one listing cursor and the field-type
// catalog. It is safe for concurrent use.
type Session struct {
	api         API
	notifier    Notifier
	confirm     listing.Confirmer
	logger      *zap.Logger
	registry    *schema.Registry
	listingOpts []listing.Option
	cursor      *listing.Cursor

	mu             sync.RWMutex
	editor         *editor.State
	fieldTypes     []model.FieldTypeDescriptor
	newComponentID string
}

// New builds a session over api with an empty editor.
func New(api API, opts ...Option) *Session {
	s := &Session{
		api:      api,
		notifier: discardNotifier{},
		logger:   zap.NewNop(),
		editor:   editor.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.cursor = listing.New(api, append([]listing.Option{listing.WithLogger(s.logger)}, s.listingOpts...)...)
	return s
}

// Editor returns the current editor state.
func (s *Session) Editor() *editor.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editor
}

// Cursor returns the listing cursor.
func (s *Session) Cursor() *listing.Cursor { return s.cursor }

// FieldTypes returns a copy of the loaded catalog, nil until fetched.
func (s *Session) FieldTypes() []model.FieldTypeDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fieldTypes == nil {
		return nil
	}
	return append([]model.FieldTypeDescriptor{}, s.fieldTypes...)
}

// NewComponentID returns the identifier recorded by the last successful
// SubmitNew.
func (s *Session) NewComponentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newComponentID
}

// Forms derives the descriptor sets for the current catalog.
func (s *Session) Forms() Forms {
	builder := form.New(s.registry)
	fieldTypes := s.FieldTypes()
	return Forms{
		Main:     builder.MainParameters(),
		Field:    builder.FieldForm(fieldTypes),
		Fieldset: builder.FieldsetForm(),
	}
}

// StartNew fetches the field-type catalog and replaces the editor with an
// empty one.
func (s *Session) StartNew(ctx context.Context) Result[*editor.State] {
	fieldTypes, err := s.api.ListFieldTypes(ctx)
	if err != nil {
		return notify(s.notifier, fail[*editor.State](fmt.Errorf("remotesync: load field types: %w", err)))
	}

	state := editor.New()
	s.mu.Lock()
	s.editor = state
	s.fieldTypes = fieldTypes
	s.newComponentID = ""
	s.mu.Unlock()

	s.logger.Debug("started new component pattern", zap.Int("field_types", len(fieldTypes)))
	return notify(s.notifier, succeed(state, ""))
}

// Open fetches pattern id and the field-type catalog, then loads the editor
// from them. Both requests must succeed before anything is replaced.
func (s *Session) Open(ctx context.Context, id string) Result[model.ComponentPattern] {
	pattern, err := s.api.GetComponentPattern(ctx, id)
	if err != nil {
		return notify(s.notifier, fail[model.ComponentPattern](fmt.Errorf("remotesync: open %s: %w", id, err)))
	}
	fieldTypes, err := s.api.ListFieldTypes(ctx)
	if err != nil {
		return notify(s.notifier, fail[model.ComponentPattern](fmt.Errorf("remotesync: load field types: %w", err)))
	}

	state := editor.FromPattern(pattern)
	s.mu.Lock()
	s.editor = state
	s.fieldTypes = fieldTypes
	s.mu.Unlock()

	s.logger.Debug("opened component pattern", zap.String("id", pattern.ID), zap.String("name", pattern.Name))
	return notify(s.notifier, succeed(pattern, ""))
}

// SubmitNew creates a pattern from the editor's ComponentData and records
// the returned identifier.
func (s *Session) SubmitNew(ctx context.Context) Result[string] {
	data := s.Editor().ComponentData()
	if err := s.validate(data); err != nil {
		return notify(s.notifier, fail[string](err))
	}

	id, err := s.api.CreateComponentPattern(ctx, data)
	if err != nil {
		return notify(s.notifier, fail[string](fmt.Errorf("remotesync: create: %w", err)))
	}

	s.mu.Lock()
	s.newComponentID = id
	s.mu.Unlock()

	s.logger.Info("component pattern created", zap.String("id", id), zap.String("name", data.Name()))
	return notify(s.notifier, succeed(id, AddedMessage(data.Name())))
}

// Save updates the loaded pattern with the editor's ComponentData. It fails
// without a request when no existing pattern is loaded.
func (s *Session) Save(ctx context.Context) Result[model.ComponentPattern] {
	state := s.Editor()
	id := state.PatternID()
	if id == "" {
		return notify(s.notifier, fail[model.ComponentPattern](apierr.Validation("id", "no component pattern is loaded")))
	}
	data := state.ComponentData()
	if err := s.validate(data); err != nil {
		return notify(s.notifier, fail[model.ComponentPattern](err))
	}

	updated, err := s.api.UpdateComponentPattern(ctx, id, data)
	if err != nil {
		return notify(s.notifier, fail[model.ComponentPattern](fmt.Errorf("remotesync: save %s: %w", id, err)))
	}

	s.logger.Info("component pattern saved", zap.String("id", id))
	return notify(s.notifier, succeed(updated, MessageSaved))
}

// Remove deletes pattern id after confirmation. Value reports whether the
// pattern was removed; a declined confirmation is a silent success.
func (s *Session) Remove(ctx context.Context, id string) Result[bool] {
	removed, err := s.cursor.Remove(ctx, id, s.confirm)
	if err != nil {
		return notify(s.notifier, fail[bool](err))
	}
	if !removed {
		return succeed(false, "")
	}
	s.logger.Info("component pattern removed", zap.String("id", id))
	return notify(s.notifier, succeed(true, MessageRemoved))
}

// LoadListing loads page of the listing, zero meaning the current page.
func (s *Session) LoadListing(ctx context.Context, page int) Result[listing.State] {
	return s.browse(s.cursor.Load(ctx, page))
}

// ChangePage moves the listing to target.
func (s *Session) ChangePage(ctx context.Context, target int) Result[listing.State] {
	return s.browse(s.cursor.ChangePage(ctx, target))
}

// Search filters the listing by term from page 1.
func (s *Session) Search(ctx context.Context, term string) Result[listing.State] {
	return s.browse(s.cursor.Search(ctx, term))
}

// SortBy reorders the listing by key.
func (s *Session) SortBy(ctx context.Context, key string) Result[listing.State] {
	return s.browse(s.cursor.SortBy(ctx, key))
}

func (s *Session) browse(err error) Result[listing.State] {
	if err != nil && !errors.Is(err, listing.ErrSuperseded) {
		return notify(s.notifier, fail[listing.State](err))
	}
	return succeed(s.cursor.Snapshot(), "")
}

func (s *Session) validate(data model.ComponentData) error {
	if s.registry == nil {
		return nil
	}
	payload, err := data.Payload()
	if err != nil {
		return fmt.Errorf("remotesync: encode payload: %w", err)
	}
	return s.registry.Validate(schema.ComponentPattern, payload)
}
