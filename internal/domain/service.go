package domain

import "time"

// ServiceRecord is one cloud service entry of the EOL catalog.
//
// Records are read-only once the catalog is published: the query engine,
// the view layer and the exporter only ever read them.
type ServiceRecord struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is the unique identifier of the record in the catalog.
	ID string `json:"id" yaml:"id"`

	// Vendor is the vendor identifier (ex: aws, gcp, azure).
	Vendor string `json:"vendor" yaml:"vendor"`

	// VendorName is the display name resolved from the vendor table
	// when the catalog is classified. Falls back to Vendor.
	VendorName string `json:"vendorName,omitempty" yaml:"vendorName,omitempty"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	ServiceName string `json:"serviceName" yaml:"serviceName"`

	// Category is the category identifier (ex: compute, database).
	Category string `json:"category" yaml:"category"`

	Description string `json:"description" yaml:"description"`

	// ─────────────────────────────
	// Lifecycle (raw source values)
	// ─────────────────────────────

	// EOLDate is the calendar date (YYYY-MM-DD or RFC 3339) after which
	// the vendor stops supporting the service. Empty when unknown.
	EOLDate string `json:"eolDate,omitempty" yaml:"eolDate,omitempty"`

	// SupportEndDate is informational only; it never feeds classification.
	SupportEndDate string `json:"supportEndDate,omitempty" yaml:"supportEndDate,omitempty"`

	OfficialURL  string        `json:"officialUrl" yaml:"officialUrl"`
	Alternatives []Alternative `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Tags         []string      `json:"tags,omitempty" yaml:"tags,omitempty"`

	// ─────────────────────────────
	// Derived
	// ─────────────────────────────

	// Computed is attached by ClassifyCatalog and never set by hand.
	Computed ComputedStatus `json:"computed" yaml:"-"`
}

// Alternative points to a replacement service.
type Alternative struct {
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	URL         string `json:"url" yaml:"url"`
}

// Vendor is an entry of the vendor lookup table.
type Vendor struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Category is an entry of the category lookup table.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// Catalog is the full, classified set of service records for a session.
type Catalog struct {
	LastUpdated string           `json:"lastUpdated"`
	Vendors     []Vendor         `json:"vendors"`
	Categories  []Category       `json:"categories"`
	Services    []*ServiceRecord `json:"services"`

	// ClassifiedOn is the reference date every Computed value was derived from.
	ClassifiedOn time.Time `json:"classifiedOn"`
}

// VendorName returns the display name of a vendor id, or the id itself.
func (c *Catalog) VendorName(id string) string {
	for _, v := range c.Vendors {
		if v.ID == id && v.Name != "" {
			return v.Name
		}
	}
	return id
}

// Category returns the category entry for an id.
func (c *Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// CategoryName returns the display name of a category id, or the id itself.
func (c *Catalog) CategoryName(id string) string {
	if cat, ok := c.Category(id); ok && cat.Name != "" {
		return cat.Name
	}
	return id
}
