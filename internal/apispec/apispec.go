// Package apispec describes the remote component-pattern API as an OpenAPI
// 3 document. Component schemas are generated from the model registry so the
// document, the form layer and the mock server agree on bounds.
package apispec

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cast"

	"github.com/m-kr/cms-nano/pkg/apierr"
	"github.com/m-kr/cms-nano/pkg/schema"
)

const componentsPrefix = "#/components/schemas/"

// Component schema names beyond the registry-derived ones.
const (
	SchemaFieldType            = "FieldType"
	SchemaPageSummary          = "PageSummary"
	SchemaComponentPatternList = "ComponentPatternList"
	SchemaPageList             = "PageList"
	SchemaIdentifier           = "Identifier"
)

// Options configures Build.
type Options struct {
	Title   string
	Version string
	// ServerURL is advertised under servers when set.
	ServerURL string
}

// ComponentName maps a registry schema name onto its component name,
// e.g. componentPattern -> ComponentPattern.
func ComponentName(name schema.Name) string {
	raw := string(name)
	if raw == "" {
		return ""
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}

// Build returns the API document for registry. The result passes
// openapi3.T.Validate.
func Build(ctx context.Context, registry *schema.Registry, opts Options) (*openapi3.T, error) {
	if registry == nil {
		return nil, errors.New("apispec: registry is required")
	}
	if opts.Title == "" {
		opts.Title = "cms-nano component patterns"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: opts.Title, Version: opts.Version},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}
	if opts.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: opts.ServerURL}}
	}

	for _, name := range registry.Names() {
		doc.Components.Schemas[ComponentName(name)] = openapi3.NewSchemaRef("", modelSchema(registry, name))
	}
	for _, name := range registry.Names() {
		if err := resolveRefs(doc.Components.Schemas, doc.Components.Schemas[ComponentName(name)].Value); err != nil {
			return nil, err
		}
	}
	addSupportSchemas(doc.Components.Schemas)

	doc.Paths = paths(doc.Components.Schemas)

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("apispec: validate: %w", err)
	}
	return doc, nil
}

// ValidateBody checks a decoded JSON body against the named component schema
// of doc. Violations are reported as *apierr.ValidationError.
func ValidateBody(doc *openapi3.T, component string, body any) error {
	if doc == nil || doc.Components == nil {
		return errors.New("apispec: document is required")
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return &apierr.UnknownSchemaError{Name: component}
	}
	if err := ref.Value.VisitJSON(body, openapi3.MultiErrors()); err != nil {
		return &apierr.ValidationError{Message: firstViolation(err)}
	}
	return nil
}

func firstViolation(err error) string {
	var multi openapi3.MultiError
	if errors.As(err, &multi) && len(multi) > 0 {
		err = multi[0]
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		path := strings.Join(schemaErr.JSONPointer(), ".")
		if path == "" {
			return schemaErr.Reason
		}
		return path + ": " + schemaErr.Reason
	}
	return err.Error()
}

// modelSchema converts one registry schema. Array items are recorded as
// unresolved refs and filled in by resolveRefs once every component exists.
func modelSchema(registry *schema.Registry, name schema.Name) *openapi3.Schema {
	raw, _ := registry.Lookup(name)
	attrs := schema.DeriveFormAttributes(name, registry)

	out := openapi3.NewObjectSchema()
	out.WithProperty("id", openapi3.NewStringSchema())
	var required []string
	for _, field := range registry.Fields(name) {
		meta := raw[field]
		prop := propertySchema(meta, attrs[field])
		if items := cast.ToString(meta["items"]); items != "" {
			prop.Items = &openapi3.SchemaRef{Ref: componentsPrefix + ComponentName(schema.Name(items))}
		}
		out.WithProperty(field, prop)
		if attrs[field].IsRequired() {
			required = append(required, field)
		}
	}
	if len(required) > 0 {
		out.Required = required
	}
	return out
}

func propertySchema(meta schema.Metadata, attrs schema.Attributes) *openapi3.Schema {
	var prop *openapi3.Schema
	minBound, hasMin := attrs.MinBound()
	maxBound, hasMax := attrs.MaxBound()
	switch strings.ToLower(cast.ToString(meta["type"])) {
	case "string", "objectid":
		prop = openapi3.NewStringSchema()
		if hasMin {
			prop.WithMinLength(int64(minBound))
		}
		if hasMax {
			prop.WithMaxLength(int64(maxBound))
		}
	case "boolean":
		prop = openapi3.NewBoolSchema()
	case "number":
		prop = openapi3.NewFloat64Schema()
		if hasMin {
			prop.WithMin(minBound)
		}
		if hasMax {
			prop.WithMax(maxBound)
		}
	case "array":
		prop = openapi3.NewArraySchema().WithNullable()
		prop.Items = openapi3.NewSchemaRef("", openapi3.NewSchema())
		if hasMin {
			prop.WithMinItems(int64(minBound))
		}
		if hasMax {
			prop.WithMaxItems(int64(maxBound))
		}
	default:
		prop = openapi3.NewSchema()
	}
	if attrs.Default != nil {
		prop.WithDefault(attrs.Default)
	}
	return prop
}

func resolveRefs(schemas openapi3.Schemas, s *openapi3.Schema) error {
	for name, prop := range s.Properties {
		if prop == nil || prop.Value == nil || prop.Value.Items == nil {
			continue
		}
		ref := prop.Value.Items.Ref
		if ref == "" {
			continue
		}
		target, ok := schemas[strings.TrimPrefix(ref, componentsPrefix)]
		if !ok {
			return fmt.Errorf("apispec: property %s references undeclared schema %s", name, ref)
		}
		prop.Value.Items = openapi3.NewSchemaRef(ref, target.Value)
	}
	return nil
}

func addSupportSchemas(schemas openapi3.Schemas) {
	schemas[SchemaFieldType] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()))
	schemas[SchemaPageSummary] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("url", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()))
	schemas[SchemaIdentifier] = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	schemas[SchemaComponentPatternList] = openapi3.NewSchemaRef("", listSchema(schemas, ComponentName(schema.ComponentPattern)))
	schemas[SchemaPageList] = openapi3.NewSchemaRef("", listSchema(schemas, SchemaPageSummary))
}

func listSchema(schemas openapi3.Schemas, item string) *openapi3.Schema {
	data := openapi3.NewArraySchema()
	data.Items = ref(schemas, item)
	return openapi3.NewObjectSchema().
		WithProperty("data", data).
		WithProperty("currentPage", openapi3.NewIntegerSchema()).
		WithProperty("totalPages", openapi3.NewIntegerSchema()).
		WithProperty("itemsPerPage", openapi3.NewIntegerSchema())
}

func ref(schemas openapi3.Schemas, name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(componentsPrefix+name, schemas[name].Value)
}

func paths(schemas openapi3.Schemas) *openapi3.Paths {
	pattern := ComponentName(schema.ComponentPattern)

	list := operation("listComponentPatterns", "List component patterns", listParameters()...)
	list.Responses = responses(http.StatusOK, ref(schemas, SchemaComponentPatternList))

	create := operation("createComponentPattern", "Create a component pattern")
	create.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref(schemas, pattern))}
	create.Responses = responses(http.StatusOK, ref(schemas, SchemaIdentifier), http.StatusBadRequest)

	get := operation("getComponentPattern", "Fetch one component pattern", openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()))
	get.Responses = responses(http.StatusOK, ref(schemas, pattern), http.StatusNotFound)

	update := operation("updateComponentPattern", "Replace a component pattern", openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()))
	update.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref(schemas, pattern))}
	update.Responses = responses(http.StatusOK, ref(schemas, pattern), http.StatusBadRequest, http.StatusNotFound)

	remove := operation("deleteComponentPattern", "Delete a component pattern", openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()))
	remove.Responses = responses(http.StatusOK, ref(schemas, SchemaIdentifier), http.StatusNotFound)

	fieldTypes := operation("listFieldTypes", "List field types")
	fieldTypes.Responses = responses(http.StatusOK, openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(schemas[SchemaFieldType].Value)))

	pages := operation("listPages", "List pages", listParameters()...)
	pages.Responses = responses(http.StatusOK, ref(schemas, SchemaPageList))

	return openapi3.NewPaths(
		openapi3.WithPath("/component-patterns", &openapi3.PathItem{Get: list, Post: create}),
		openapi3.WithPath("/component-patterns/{id}", &openapi3.PathItem{Get: get, Put: update, Delete: remove}),
		openapi3.WithPath("/field-types", &openapi3.PathItem{Get: fieldTypes}),
		openapi3.WithPath("/pages", &openapi3.PathItem{Get: pages}),
	)
}

func operation(id, summary string, params ...*openapi3.Parameter) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	for _, p := range params {
		op.AddParameter(p)
	}
	return op
}

func listParameters() []*openapi3.Parameter {
	return []*openapi3.Parameter{
		openapi3.NewQueryParameter("page").WithSchema(openapi3.NewIntegerSchema().WithMin(1)),
		openapi3.NewQueryParameter("limit").WithSchema(openapi3.NewIntegerSchema().WithMin(1)),
		openapi3.NewQueryParameter("search").WithSchema(openapi3.NewStringSchema()),
		openapi3.NewQueryParameter("sort").WithSchema(openapi3.NewStringSchema()),
	}
}

// responses builds the success response with body plus plain-text error
// responses for each errorStatus.
func responses(status int, body *openapi3.SchemaRef, errorStatuses ...int) *openapi3.Responses {
	opts := []openapi3.NewResponsesOption{
		openapi3.WithStatus(status, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(http.StatusText(status)).WithJSONSchemaRef(body),
		}),
	}
	for _, code := range errorStatuses {
		resp := openapi3.NewResponse().WithDescription(http.StatusText(code))
		resp.Content = openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/plain"})
		opts = append(opts, openapi3.WithStatus(code, &openapi3.ResponseRef{Value: resp}))
	}
	return openapi3.NewResponses(opts...)
}
