// Package summary maps a decoded listing payload onto a scraper.Summary.
package summary

import (
	"github.com/JakeFAU/listing-scraper/internal/payload"
	"github.com/JakeFAU/listing-scraper/internal/scraper"
)

// Detail labels recognized in the listing's space section.
const (
	LabelPropertyType = "Property type:"
	LabelBedrooms     = "Bedrooms:"
	LabelBathrooms    = "Bathrooms:"
)

// Amenity categories.
const (
	CategoryFamily  = "family"
	CategoryGeneral = "general"
)

var listingPath = []string{"bootstrapData", "listing"}

// Map builds a Summary from the page payload. The listing object and its name
// are required; every other field falls back to its default.
func Map(doc payload.Value) (scraper.Summary, error) {
	listing, ok := doc.Path(listingPath...)
	if !ok || !listing.IsObject() {
		return scraper.Summary{}, scraper.NewError(scraper.KindMissingListing, nil)
	}
	name, ok := listing.Field("name")
	if !ok {
		return scraper.Summary{}, scraper.NewError(scraper.KindMissingName, nil)
	}

	out := scraper.NewSummary(name)
	applyDetails(&out, listing)
	applyAmenities(&out, listing)
	return out, nil
}

func applyDetails(out *scraper.Summary, listing payload.Value) {
	details, _ := list(listing, "space_interface")
	for _, detail := range details {
		label, _ := detail.Field("label")
		var target *string
		switch label {
		case LabelPropertyType:
			target = &out.PropertyType
		case LabelBedrooms:
			target = &out.Rooms
		case LabelBathrooms:
			target = &out.Bathrooms
		default:
			continue
		}
		value, ok := detail.Get("value")
		if !ok {
			continue
		}
		if text, ok := value.Text(); ok && text != "" {
			*target = text
		}
	}
}

func applyAmenities(out *scraper.Summary, listing payload.Value) {
	amenities, _ := list(listing, "listing_amenities")
	for _, amenity := range amenities {
		if !amenity.Flag("is_present") {
			continue
		}
		name, _ := amenity.Field("name")
		category, _ := amenity.Field("category")
		switch {
		case category == CategoryFamily:
			out.FamilyAmenities = append(out.FamilyAmenities, name)
		case category == CategoryGeneral && amenity.Flag("is_safety_feature"):
			out.SafetyFeatures = append(out.SafetyFeatures, name)
		default:
			out.GeneralAmenities = append(out.GeneralAmenities, name)
		}
	}
}

func list(v payload.Value, key string) ([]payload.Value, bool) {
	member, ok := v.Get(key)
	if !ok {
		return nil, false
	}
	return member.AsList()
}
