package form

import (
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/schema"
)

// Builder derives descriptor trees from a schema registry.
type Builder struct {
	registry *schema.Registry
}

// New returns a Builder over registry. A nil registry yields descriptors
// without constraint attributes.
func New(registry *schema.Registry) *Builder {
	return &Builder{registry: registry}
}

// MainParameters describes the component pattern main form.
func (b *Builder) MainParameters() Form {
	attrs := b.attributes(schema.ComponentPattern)

	return Form{
		{Key: model.AttrName, Descriptor: Descriptor{
			Type:       TypeText,
			Label:      "Name (Upper CamelCase)",
			Attributes: attrs[model.AttrName],
		}},
		{Key: model.AttrLabel, Descriptor: Descriptor{
			Type:       TypeText,
			Attributes: attrs[model.AttrLabel],
		}},
		{Key: model.AttrDescription, Descriptor: Descriptor{
			Type:       TypeText,
			Attributes: attrs[model.AttrDescription],
		}},
	}
}

// FieldForm describes the form editing one Field. The fieldTypeId input lists
// the catalog entries and is hidden while no catalog is loaded; defaultValue
// takes its type from whichever field type is selected.
func (b *Builder) FieldForm(fieldTypes []model.FieldTypeDescriptor) Form {
	attrs := b.attributes(schema.Field)
	optionAttrs := b.attributes(schema.FieldOption)
	typeOptions := FieldTypeOptions(fieldTypes)

	return Form{
		{Key: model.AttrRequired, Descriptor: Descriptor{
			Type:       TypeBoolean,
			Attributes: attrs[model.AttrRequired],
		}},
		{Key: model.AttrFieldTypeID, Descriptor: Descriptor{
			Type:         TypeText,
			Label:        "Field type",
			DefaultValue: TypeText,
			Hidden:       typeOptions == nil,
			Options:      typeOptions,
			Attributes:   attrs[model.AttrFieldTypeID],
		}},
		{Key: model.AttrName, Descriptor: Descriptor{
			Type:       TypeText,
			Label:      "Name (camelCase)",
			Attributes: attrs[model.AttrName],
		}},
		{Key: model.AttrLabel, Descriptor: Descriptor{
			Type:       TypeText,
			Attributes: attrs[model.AttrLabel],
		}},
		{Key: model.AttrDescription, Descriptor: Descriptor{
			Type:       TypeText,
			Attributes: attrs[model.AttrDescription],
		}},
		{Key: model.AttrDefinedOptionsID, Descriptor: Descriptor{
			Type:       TypeText,
			Label:      "Options from global definition",
			Attributes: attrs[model.AttrDefinedOptionsID],
		}},
		{Key: model.AttrOptions, Descriptor: Descriptor{
			Type:       TypeFieldsGroup,
			Label:      "Custom options",
			Attributes: attrs[model.AttrOptions],
			Fields: Form{
				{Key: model.AttrName, Descriptor: Descriptor{
					Type:       TypeText,
					Attributes: optionAttrs[model.AttrName],
				}},
				{Key: model.AttrValue, Descriptor: Descriptor{
					Type:       TypeText,
					Attributes: optionAttrs[model.AttrValue],
				}},
			},
		}},
		{Key: model.AttrDefaultValue, Descriptor: Descriptor{
			Label:      "Default value",
			TypeFrom:   model.AttrFieldTypeID,
			Attributes: attrs[model.AttrDefaultValue],
		}},
	}
}

// FieldsetForm describes the form editing one Fieldset's own attributes.
func (b *Builder) FieldsetForm() Form {
	attrs := b.attributes(schema.Fieldset)

	return Form{
		{Key: model.AttrRequired, Descriptor: Descriptor{
			Type:       TypeBoolean,
			Attributes: attrs[model.AttrRequired],
		}},
		{Key: model.AttrName, Descriptor: Descriptor{
			Type:       TypeText,
			Label:      "Name (camelCase)",
			Attributes: attrs[model.AttrName],
		}},
		{Key: model.AttrLabel, Descriptor: Descriptor{
			Type:       TypeText,
			Attributes: attrs[model.AttrLabel],
		}},
		{Key: model.AttrDescription, Descriptor: Descriptor{
			Type:       TypeText,
			Attributes: attrs[model.AttrDescription],
		}},
	}
}

// FieldTypeOptions maps the catalog onto select options (type as name, id as
// value). It returns nil when no catalog is loaded.
func FieldTypeOptions(fieldTypes []model.FieldTypeDescriptor) []model.FieldOption {
	if fieldTypes == nil {
		return nil
	}
	out := make([]model.FieldOption, 0, len(fieldTypes))
	for _, fieldType := range fieldTypes {
		out = append(out, model.FieldOption{Name: fieldType.Type, Value: fieldType.ID})
	}
	return out
}

// attributes never returns nil so lookups on unknown schemas degrade to empty
// attribute sets.
func (b *Builder) attributes(name schema.Name) map[string]schema.Attributes {
	attrs := schema.DeriveFormAttributes(name, b.registry)
	if attrs == nil {
		return map[string]schema.Attributes{}
	}
	return attrs
}
