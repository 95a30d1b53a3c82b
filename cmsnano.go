// Package cmsnano is the top-level entry point for embedding component
// pattern authoring: it wires the HTTP client, the bundled model registry
// and an editing session together, and exposes the in-memory API for tests
// and local development.
package cmsnano

import (
	"context"
	"net/http"

	"github.com/m-kr/cms-nano/internal/mockapi"
	"github.com/m-kr/cms-nano/pkg/client"
	"github.com/m-kr/cms-nano/pkg/editor"
	"github.com/m-kr/cms-nano/pkg/listing"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/remotesync"
	"github.com/m-kr/cms-nano/pkg/schema"
)

// ComponentPattern aliases the persisted pattern shape for callers that only
// import the root package.
type ComponentPattern = model.ComponentPattern

// Session aliases the remotesync session returned by NewSession.
type Session = remotesync.Session

// EditorState aliases the copy-on-write editor state.
type EditorState = editor.State

// ListingState aliases the listing cursor snapshot.
type ListingState = listing.State

// NewSession connects to the API at baseURL and returns a session validating
// against the bundled model declarations. Later options override earlier
// ones, so WithRegistry can swap the declarations.
func NewSession(baseURL string, clientOptions []client.Option, options ...remotesync.Option) (*Session, error) {
	api, err := client.New(baseURL, clientOptions...)
	if err != nil {
		return nil, err
	}
	opts := append([]remotesync.Option{remotesync.WithRegistry(schema.Default())}, options...)
	return remotesync.New(api, opts...), nil
}

// NewMockHandler returns the in-memory component pattern API, seeded with
// sample data and mounted under /api.
func NewMockHandler(ctx context.Context) (http.Handler, error) {
	return mockapi.NewServer(ctx)
}

// WithRegistry forwards a custom model registry to NewSession.
func WithRegistry(registry *schema.Registry) remotesync.Option {
	return remotesync.WithRegistry(registry)
}

// WithNotifier forwards a notifier to NewSession.
func WithNotifier(notifier remotesync.Notifier) remotesync.Option {
	return remotesync.WithNotifier(notifier)
}

// WithConfirmer forwards the removal confirmer to NewSession.
func WithConfirmer(confirmer listing.Confirmer) remotesync.Option {
	return remotesync.WithConfirmer(confirmer)
}
