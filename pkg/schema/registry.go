// Package schema holds the registry of raw model schemas declared by the CMS
// server and derives the form-facing attribute subset from it. The registry
// is keyed by an enumerated set of known schema names and is built once from
// a declarative YAML or JSON source.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Name identifies a declared model schema.
type Name string

const (
	ComponentPattern Name = "componentPattern"
	Field            Name = "field"
	FieldOption      Name = "fieldOption"
	Fieldset         Name = "fieldset"
)

// KnownNames lists the schema names the editor understands.
var KnownNames = []Name{ComponentPattern, Field, FieldOption, Fieldset}

// Metadata is the raw attribute metadata of one declared field. It may carry
// server-only keys (type, unique, ref, trim, ...) next to the form-facing ones.
type Metadata map[string]any

// Registry maps schema names to their declared fields.
type Registry struct {
	schemas map[Name]map[string]Metadata
}

//go:embed models/*.yaml
var embeddedModels embed.FS

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the bundled model declarations.
func Default() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedModels, "models")
		if err != nil {
			// The embed directive guarantees the subpath exists.
			panic(err)
		}
		reg, err := LoadFS(sub)
		if err != nil {
			panic(fmt.Errorf("schema: bundled models: %w", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// NewRegistry builds a registry from an in-memory declaration. The input is
// copied so later changes by the caller are not observed.
func NewRegistry(schemas map[Name]map[string]Metadata) *Registry {
	reg := &Registry{schemas: make(map[Name]map[string]Metadata, len(schemas))}
	for name, fields := range schemas {
		reg.schemas[name] = cloneFields(fields)
	}
	return reg
}

// LoadFS walks fsys and merges every JSON/YAML declaration file into one
// registry. Declaring the same schema twice is an error.
func LoadFS(fsys fs.FS) (*Registry, error) {
	reg := &Registry{schemas: make(map[Name]map[string]Metadata)}
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDeclarationFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		return reg.merge(data, path)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Lookup returns a copy of the declared fields for name.
func (r *Registry) Lookup(name Name) (map[string]Metadata, bool) {
	if r == nil {
		return nil, false
	}
	fields, ok := r.schemas[name]
	if !ok {
		return nil, false
	}
	return cloneFields(fields), true
}

// Names returns the declared schema names in sorted order.
func (r *Registry) Names() []Name {
	if r == nil {
		return nil
	}
	names := make([]Name, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Fields returns the declared field names of a schema in sorted order.
func (r *Registry) Fields(name Name) []string {
	if r == nil {
		return nil
	}
	fields := r.schemas[name]
	out := make([]string, 0, len(fields))
	for field := range fields {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

type documentFile struct {
	Schemas map[string]map[string]Metadata `json:"schemas" yaml:"schemas"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
}

func isDeclarationFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func cloneFields(fields map[string]Metadata) map[string]Metadata {
	out := make(map[string]Metadata, len(fields))
	for field, meta := range fields {
		clone := make(Metadata, len(meta))
		for key, value := range meta {
			clone[key] = value
		}
		out[field] = clone
	}
	return out
}
