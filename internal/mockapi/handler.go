// Package mockapi serves an in-memory rendition of the remote component
// pattern API. It speaks the same wire format as the CMS server, including its
// plain-text error bodies, so the client and the authoring flows can be run
// end to end without a database.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/internal/apispec"
	"github.com/m-kr/cms-nano/pkg/apierr"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/schema"
)

const maxBodyBytes = 1 << 20

// Server is the mock API. It implements http.Handler.
type Server struct {
	opts   Options
	store  *Store
	doc    *openapi3.T
	policy *bluemonday.Policy
	router chi.Router
}

// NewServer builds a server with default options plus any overrides. The API
// document is generated from the configured registry.
func NewServer(ctx context.Context, fns ...OptionFn) (*Server, error) {
	return NewServerWithOptions(ctx, NewOptions(fns...))
}

// NewServerWithOptions builds a server from a pre-constructed Options value.
func NewServerWithOptions(ctx context.Context, opts Options) (*Server, error) {
	opts = NewOptions(func(o *Options) { *o = opts })

	doc, err := apispec.Build(ctx, opts.Registry, apispec.Options{ServerURL: strings.TrimSuffix(mountPath(opts.BasePath, "/"), "/")})
	if err != nil {
		return nil, fmt.Errorf("mockapi: %w", err)
	}

	store := NewStore(opts.Now)
	if opts.Seed {
		if err := Seed(store); err != nil {
			return nil, fmt.Errorf("mockapi: seed: %w", err)
		}
	}

	s := &Server{
		opts:   opts,
		store:  store,
		doc:    doc,
		policy: bluemonday.StrictPolicy(),
	}
	s.router = s.routes()
	return s, nil
}

// Store exposes the backing store.
func (s *Server) Store() *Store { return s.store }

// Document returns the API description served at /openapi.json.
func (s *Server) Document() *openapi3.T { return s.doc }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) listPatterns(w http.ResponseWriter, r *http.Request) {
	query := model.ParseListQuery(r.URL.Query())
	items := SearchPatterns(s.store.Patterns(), query.Search, query.Sort)
	writeJSON(w, http.StatusOK, Paginate(items, query, s.opts))
}

func (s *Server) getPattern(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPattern(w http.ResponseWriter, r *http.Request) {
	p, err := s.decodePattern(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.store.Create(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.opts.Logger.Info("component pattern created", zap.String("id", created.ID), zap.String("name", created.Name))
	writeJSON(w, http.StatusOK, created.ID)
}

func (s *Server) updatePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.decodePattern(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.store.Update(id, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.opts.Logger.Info("component pattern updated", zap.String("id", id))
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deletePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.opts.Logger.Info("component pattern deleted", zap.String("id", id))
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) listFieldTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.FieldTypes())
}

func (s *Server) listPages(w http.ResponseWriter, r *http.Request) {
	query := model.ParseListQuery(r.URL.Query())
	items := SearchPages(s.store.Pages(), query.Search, query.Sort)
	writeJSON(w, http.StatusOK, Paginate(items, query, s.opts))
}

func (s *Server) openAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.doc)
}

// decodePattern reads a ComponentData body, validates it against the model
// registry and the API document, and strips markup from its text.
func (s *Server) decodePattern(w http.ResponseWriter, r *http.Request) (model.ComponentPattern, error) {
	defer r.Body.Close()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return model.ComponentPattern{}, apierr.Validation("", "request body is too large")
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return model.ComponentPattern{}, apierr.Validation("", "malformed JSON body")
	}
	if err := s.opts.Registry.Validate(schema.ComponentPattern, payload); err != nil {
		return model.ComponentPattern{}, err
	}
	if err := apispec.ValidateBody(s.doc, apispec.ComponentName(schema.ComponentPattern), payload); err != nil {
		return model.ComponentPattern{}, err
	}

	var p model.ComponentPattern
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.ComponentPattern{}, apierr.Validation("", "malformed component pattern: %v", err)
	}
	p = s.sanitize(p)
	if p.Name == "" {
		return model.ComponentPattern{}, apierr.Validation(model.AttrName, "is required")
	}
	return p, nil
}

func (s *Server) sanitize(p model.ComponentPattern) model.ComponentPattern {
	p.Name = s.text(p.Name)
	p.Label = s.text(p.Label)
	p.Description = s.text(p.Description)
	for i := range p.Fields {
		p.Fields[i] = s.sanitizeField(p.Fields[i])
	}
	for i := range p.Fieldset {
		set := &p.Fieldset[i]
		set.Name = s.text(set.Name)
		set.Label = s.text(set.Label)
		set.Description = s.text(set.Description)
		for j := range set.Fields {
			set.Fields[j] = s.sanitizeField(set.Fields[j])
		}
	}
	return p
}

func (s *Server) sanitizeField(f model.Field) model.Field {
	f.Name = s.text(f.Name)
	f.Label = s.text(f.Label)
	f.Description = s.text(f.Description)
	for i := range f.Options {
		f.Options[i].Name = s.text(f.Options[i].Name)
	}
	return f
}

// text strips every tag and keeps the plain text unescaped.
func (s *Server) text(value string) string {
	if value == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

// writeError answers with a plain-text message and the status mapped from
// err, the way the CMS server reports failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apierr.StatusCode(err)
	message := errorMessage(err)
	if code >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		message = http.StatusText(code)
	} else {
		s.opts.Logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", code), zap.Error(err))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, message)
}

func errorMessage(err error) string {
	var validation *apierr.ValidationError
	if errors.As(err, &validation) {
		if validation.Field != "" {
			return fmt.Sprintf("%q %s", validation.Field, validation.Message)
		}
		return validation.Message
	}
	var notFound *apierr.NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
