package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the path the API is served under.
func MountPath(fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(opts.BasePath, "/")
}

// RegisterRoutes builds a server and registers it on mux under its base
// path. It returns the registered pattern.
func RegisterRoutes(ctx context.Context, mux Mux, fns ...OptionFn) (string, *Server, error) {
	if mux == nil {
		return "", nil, fmt.Errorf("mockapi: missing mux")
	}
	s, err := NewServer(ctx, fns...)
	if err != nil {
		return "", nil, err
	}
	pattern := mountPath(s.opts.BasePath, "/")
	mux.Handle(pattern, s)
	return pattern, s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.opts.Logger))

	api := func(r chi.Router) {
		r.Get("/component-patterns", s.listPatterns)
		r.Post("/component-patterns", s.createPattern)
		r.Get("/component-patterns/{id}", s.getPattern)
		r.Put("/component-patterns/{id}", s.updatePattern)
		r.Delete("/component-patterns/{id}", s.deletePattern)
		r.Get("/field-types", s.listFieldTypes)
		r.Get("/pages", s.listPages)
		r.Get("/openapi.json", s.openAPI)
	}

	base := strings.TrimSuffix(mountPath(s.opts.BasePath, "/"), "/")
	if base == "" {
		api(r)
	} else {
		r.Route(base, api)
	}
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// mountPath joins basePath and routePath into a rooted path.
func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
