package domain

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the selector value meaning "no vendor/category filter".
const All = "all"

// Proximity selectors understood by the EOL-proximity stage. Any
// non-negative integer (days) is also accepted; other values are no-ops.
const (
	ProximityUpcoming = "upcoming"
	ProximityPast     = "past"
)

// Sort keys. Unknown keys leave the order untouched.
const (
	SortEOLDateAsc  = "eol-date-asc"
	SortEOLDateDesc = "eol-date-desc"
	SortNameAsc     = "name-asc"
	SortNameDesc    = "name-desc"
	SortVendorAsc   = "vendor-asc"
)

// Filter is the query-relevant part of the view state.
type Filter struct {
	Search    string `json:"search"`
	Vendor    string `json:"vendor"`
	Category  string `json:"category"`
	Proximity string `json:"proximity"`
	Sort      string `json:"sort"`
}

// Query runs search, vendor, category, proximity and sort, in that order.
// It returns a new slice and never mutates services or its elements.
// collation selects the locale used for name comparisons.
func Query(services []*ServiceRecord, f Filter, collation language.Tag) []*ServiceRecord {
	out := slices.Clone(services)
	if out == nil {
		out = []*ServiceRecord{}
	}

	out = SearchServices(out, f.Search)
	out = FilterByVendor(out, f.Vendor)
	out = FilterByCategory(out, f.Category)
	out = FilterByEOLProximity(out, f.Proximity)
	return SortServices(out, f.Sort, collation)
}

// SearchServices keeps records whose searchable text contains the trimmed,
// lower-cased query.
func SearchServices(services []*ServiceRecord, query string) []*ServiceRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return services
	}

	return keep(services, func(s *ServiceRecord) bool {
		return strings.Contains(searchableText(s), q)
	})
}

func searchableText(s *ServiceRecord) string {
	parts := make([]string, 0, 4+len(s.Tags))
	parts = append(parts, s.ServiceName, s.VendorName, s.Description, s.Category)
	parts = append(parts, s.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// FilterByVendor keeps records of one vendor id. Empty or "all" is a no-op.
func FilterByVendor(services []*ServiceRecord, vendor string) []*ServiceRecord {
	if vendor == "" || vendor == All {
		return services
	}
	return keep(services, func(s *ServiceRecord) bool { return s.Vendor == vendor })
}

// FilterByCategory keeps records of one category id. Empty or "all" is a no-op.
func FilterByCategory(services []*ServiceRecord, category string) []*ServiceRecord {
	if category == "" || category == All {
		return services
	}
	return keep(services, func(s *ServiceRecord) bool { return s.Category == category })
}

// FilterByEOLProximity narrows records by their distance to EOL.
// Unrecognized selectors pass everything through.
func FilterByEOLProximity(services []*ServiceRecord, proximity string) []*ServiceRecord {
	switch proximity {
	case "":
		return services
	case ProximityUpcoming:
		return keep(services, func(s *ServiceRecord) bool {
			d := s.Computed.DaysUntilEOL
			return d != nil && *d >= 0
		})
	case ProximityPast:
		return keep(services, func(s *ServiceRecord) bool {
			d := s.Computed.DaysUntilEOL
			return d != nil && *d < 0
		})
	}

	window, err := strconv.Atoi(proximity)
	if err != nil || window < 0 {
		return services
	}
	return keep(services, func(s *ServiceRecord) bool {
		d := s.Computed.DaysUntilEOL
		return d != nil && *d >= 0 && *d <= window
	})
}

// SortServices sorts services in place, stably, by key. Records without an
// EOL date sort last for both EOL directions.
func SortServices(services []*ServiceRecord, key string, collation language.Tag) []*ServiceRecord {
	var cmp func(a, b *ServiceRecord) int

	switch key {
	case SortEOLDateAsc:
		cmp = func(a, b *ServiceRecord) int { return compareDays(a, b, false) }
	case SortEOLDateDesc:
		cmp = func(a, b *ServiceRecord) int { return compareDays(a, b, true) }
	case SortNameAsc:
		col := collate.New(collation)
		cmp = func(a, b *ServiceRecord) int { return col.CompareString(a.ServiceName, b.ServiceName) }
	case SortNameDesc:
		col := collate.New(collation)
		cmp = func(a, b *ServiceRecord) int { return col.CompareString(b.ServiceName, a.ServiceName) }
	case SortVendorAsc:
		col := collate.New(collation)
		cmp = func(a, b *ServiceRecord) int {
			if c := col.CompareString(a.VendorName, b.VendorName); c != 0 {
				return c
			}
			return col.CompareString(a.ServiceName, b.ServiceName)
		}
	default:
		return services
	}

	slices.SortStableFunc(services, cmp)
	return services
}

// compareDays orders by DaysUntilEOL; absent values always lose.
func compareDays(a, b *ServiceRecord, desc bool) int {
	da, db := a.Computed.DaysUntilEOL, b.Computed.DaysUntilEOL
	switch {
	case da == nil && db == nil:
		return 0
	case da == nil:
		return 1
	case db == nil:
		return -1
	}

	c := *da - *db
	if desc {
		c = -c
	}
	return c
}

func keep(services []*ServiceRecord, pred func(*ServiceRecord) bool) []*ServiceRecord {
	out := make([]*ServiceRecord, 0, len(services))
	for _, s := range services {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}
