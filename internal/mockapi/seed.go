package mockapi

import (
	"github.com/google/uuid"

	"github.com/m-kr/cms-nano/pkg/model"
)

var fieldTypeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cms-nano.local/field-types"))

// FieldTypeID returns the stable identifier of a seeded field type.
func FieldTypeID(kind string) string {
	return uuid.NewSHA1(fieldTypeNamespace, []byte(kind)).String()
}

// SeedFieldTypes is the catalog a seeded store starts with.
func SeedFieldTypes() []model.FieldTypeDescriptor {
	kinds := []string{"text", "textarea", "boolean", "number", "select", "image"}
	out := make([]model.FieldTypeDescriptor, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, model.FieldTypeDescriptor{ID: FieldTypeID(kind), Type: kind})
	}
	return out
}

// Seed fills store with the fixture catalog, a few pages and sample patterns.
func Seed(store *Store) error {
	store.SetFieldTypes(SeedFieldTypes())
	for _, page := range []model.PageSummary{
		{Name: "Home", URL: "/", Type: "landing"},
		{Name: "About", URL: "/about", Type: "content"},
		{Name: "Contact", URL: "/contact", Type: "content"},
	} {
		store.AddPage(page)
	}

	text, boolean, image := FieldTypeID("text"), FieldTypeID("boolean"), FieldTypeID("image")
	patterns := []model.ComponentPattern{
		{
			Name:  "HeroBanner",
			Label: "Hero banner",
			Fields: []model.Field{
				{FieldTypeID: text, Name: "title", Label: "Title", Required: true},
				{FieldTypeID: image, Name: "background", Label: "Background"},
				{FieldTypeID: boolean, Name: "dark", Label: "Dark mode", DefaultValue: false},
			},
			Fieldset: []model.Fieldset{
				{Name: "cta", Label: "Call to action", Fields: []model.Field{
					{FieldTypeID: text, Name: "link", Label: "Link"},
					{FieldTypeID: text, Name: "caption", Label: "Caption"},
				}},
			},
		},
		{
			Name:  "Teaser",
			Label: "Teaser",
			Fields: []model.Field{
				{FieldTypeID: text, Name: "headline", Label: "Headline", Required: true},
				{FieldTypeID: FieldTypeID("textarea"), Name: "body", Label: "Body"},
			},
		},
		{
			Name:  "Footer",
			Label: "Site footer",
			Fields: []model.Field{
				{FieldTypeID: text, Name: "copyright", Label: "Copyright"},
			},
		},
	}
	for _, p := range patterns {
		if _, err := store.Create(p); err != nil {
			return err
		}
	}
	return nil
}
