// Package collections creates and seeds the PocketBase collections
// backing the portal: the rate source registry and the quote log.
package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the rate_sources and quotes
// collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "rate_sources", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "mode",
			Required:  true,
			Values:    []string{"air", "fcl", "lcl"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.URLField{Name: "url", Required: false})
		c.Fields.Add(&core.BoolField{Name: "enabled"})
		c.Fields.Add(&core.DateField{Name: "last_refreshed_at"})
		c.Fields.Add(&core.NumberField{Name: "last_row_count"})
		c.Fields.Add(&core.TextField{Name: "last_error"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "reference", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "mode",
			Required:  true,
			Values:    []string{"air", "fcl", "lcl"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "origin", Required: true})
		c.Fields.Add(&core.TextField{Name: "destination", Required: true})
		c.Fields.Add(&core.TextField{Name: "carrier"})
		c.Fields.Add(&core.TextField{Name: "currency", Required: true})
		c.Fields.Add(&core.TextField{Name: "incoterm", Required: true})
		c.Fields.Add(&core.TextField{Name: "band_label"})
		c.Fields.Add(&core.NumberField{Name: "chargeable_qty", Required: true})
		c.Fields.Add(&core.NumberField{Name: "total_weight_kg"})
		c.Fields.Add(&core.NumberField{Name: "total_volume_m3"})
		c.Fields.Add(&core.NumberField{Name: "piece_count"})
		c.Fields.Add(&core.TextField{Name: "commodity"})
		c.Fields.Add(&core.JSONField{Name: "lines", Required: true})
		c.Fields.Add(&core.NumberField{Name: "total", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "submitted"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "contact_name"})
		c.Fields.Add(&core.EmailField{Name: "contact_email"})
		c.Fields.Add(&core.TextField{Name: "tms_quote_id"})
		c.Fields.Add(&core.DateField{Name: "submitted_at"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it
// does, the existing collection is returned. Otherwise a new base
// collection is created, the addFields callback populates its fields,
// and the collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
