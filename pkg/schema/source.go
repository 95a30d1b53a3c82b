package schema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// maxRemoteDocument bounds the size of a model declaration fetched over HTTP.
const maxRemoteDocument = 4 << 20

// Source identifies where model declarations come from so the same loader
// handles local files, directories and URLs.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindURL  SourceKind = "url"
)

// fileSource identifies an on-disk declaration file or a directory of them.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file or directory path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// urlSource references an HTTP/HTTPS endpoint serving one declaration document.
type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL parses the supplied URL string and returns a Source.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("schema: empty URL source")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("schema: unsupported URL scheme %q", u.Scheme)
	}
	return urlSource{raw: raw}, nil
}

// ParseSource maps a configured location onto a Source: http(s) URLs are
// fetched, everything else is read from disk.
func ParseSource(raw string) (Source, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return nil, fmt.Errorf("schema: empty source")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return SourceFromURL(location)
	}
	return SourceFromFile(location), nil
}

// Load builds a registry from src. A directory source is walked like LoadFS;
// a file or URL source must hold a single declaration document.
func Load(ctx context.Context, src Source) (*Registry, error) {
	if src == nil {
		return nil, fmt.Errorf("schema: source is required")
	}

	switch src.Kind() {
	case SourceKindFile:
		info, err := os.Stat(src.Location())
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		if info.IsDir() {
			return LoadFS(os.DirFS(src.Location()))
		}
		raw, err := os.ReadFile(src.Location())
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", src.Location(), err)
		}
		doc, err := NewDocument(src, raw)
		if err != nil {
			return nil, err
		}
		return LoadDocuments(doc)
	case SourceKindURL:
		doc, err := fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		return LoadDocuments(doc)
	default:
		return nil, fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
}

func fetch(ctx context.Context, src Source) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location(), nil)
	if err != nil {
		return Document{}, fmt.Errorf("schema: build request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("schema: fetch %s: %w", src.Location(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("schema: fetch %s: unexpected status %s", src.Location(), resp.Status)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteDocument))
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", src.Location(), err)
	}
	return NewDocument(src, raw)
}
