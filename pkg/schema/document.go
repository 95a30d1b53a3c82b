package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Document wraps one raw declaration payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("schema: document %s is empty", src.Location())
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// LoadDocuments merges docs into one registry. Declaring the same schema
// twice is an error.
func LoadDocuments(docs ...Document) (*Registry, error) {
	reg := &Registry{schemas: make(map[Name]map[string]Metadata)}
	for _, doc := range docs {
		if err := reg.merge(doc.raw, doc.Location()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) merge(data []byte, location string) error {
	parsed, err := parseDocument(data, location)
	if err != nil {
		return err
	}
	for rawName, fields := range parsed.Schemas {
		name := Name(strings.TrimSpace(rawName))
		if name == "" {
			return fmt.Errorf("schema: file %s declares an empty schema name", location)
		}
		if _, exists := r.schemas[name]; exists {
			return fmt.Errorf("schema: duplicate schema %q (file %s)", name, location)
		}
		r.schemas[name] = cloneFields(fields)
	}
	return nil
}
