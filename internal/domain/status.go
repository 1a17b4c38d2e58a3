package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a service.
type Status string

const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
	StatusEOL        Status = "eol"
)

// Urgency is a coarse severity tier used for visual emphasis only.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

const (
	// DefaultDeprecatedDays is the horizon under which a service is deprecated.
	DefaultDeprecatedDays = 180
	// DefaultHighUrgencyDays is the horizon under which urgency is high.
	DefaultHighUrgencyDays = 30
	// DefaultMediumUrgencyDays is the horizon under which urgency is medium.
	DefaultMediumUrgencyDays = 90
)

// secondsPerDay is used instead of time.Duration, which saturates near 292 years.
const secondsPerDay = 24 * 60 * 60

// Thresholds holds the classification horizons, in days.
type Thresholds struct {
	DeprecatedDays    int
	HighUrgencyDays   int
	MediumUrgencyDays int
}

// DefaultThresholds returns the stock horizons (180 / 30 / 90).
func DefaultThresholds() Thresholds {
	return Thresholds{
		DeprecatedDays:    DefaultDeprecatedDays,
		HighUrgencyDays:   DefaultHighUrgencyDays,
		MediumUrgencyDays: DefaultMediumUrgencyDays,
	}
}

// ComputedStatus is derived from a record's EOL date and a reference day.
// Status and Urgency are never set independently of DaysUntilEOL.
type ComputedStatus struct {
	EOLDate      *time.Time `json:"eolDate,omitempty"`
	DaysUntilEOL *int       `json:"daysUntilEOL,omitempty"`
	Status       Status     `json:"status"`
	Urgency      Urgency    `json:"urgency"`
}

// PastEOL reports whether the EOL date is already behind the reference day.
func (c ComputedStatus) PastEOL() bool {
	return c.DaysUntilEOL != nil && *c.DaysUntilEOL < 0
}

// Today returns the calendar date of now in loc, expressed as UTC midnight.
// Dates parsed by ParseDate use the same representation, so day arithmetic
// between them is exact.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a catalog date. Plain dates (2006-01-02) are read as UTC
// midnight, RFC 3339 timestamps keep their instant.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DaysUntil returns ceil((eol - today) / 1 day).
func DaysUntil(eol, today time.Time) int {
	secs := eol.Unix() - today.Unix()
	if eol.Nanosecond() > today.Nanosecond() {
		secs++
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay > 0 {
		days++
	}
	return int(days)
}

// Classify derives the computed status of one record.
func Classify(eolDate *time.Time, today time.Time, th Thresholds) ComputedStatus {
	if eolDate == nil {
		return ComputedStatus{Status: StatusActive, Urgency: UrgencyLow}
	}

	eol := *eolDate
	days := DaysUntil(eol, today)
	status := StatusFor(&days, th)

	return ComputedStatus{
		EOLDate:      &eol,
		DaysUntilEOL: &days,
		Status:       status,
		Urgency:      UrgencyFor(status, &days, th),
	}
}

// StatusFor maps days until EOL to a lifecycle status.
func StatusFor(days *int, th Thresholds) Status {
	switch {
	case days == nil:
		return StatusActive
	case *days < 0:
		return StatusEOL
	case *days <= th.DeprecatedDays:
		return StatusDeprecated
	default:
		return StatusActive
	}
}

// UrgencyFor maps a status and days until EOL to an urgency tier.
func UrgencyFor(status Status, days *int, th Thresholds) Urgency {
	switch {
	case status == StatusEOL:
		return UrgencyCritical
	case days == nil:
		return UrgencyLow
	case *days <= th.HighUrgencyDays:
		return UrgencyHigh
	case *days <= th.MediumUrgencyDays:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ClassifyCatalog returns a copy of c with every record classified against
// today and vendor display names resolved. c is not modified.
//
// Records whose EOL date cannot be parsed are classified as having no EOL
// date; loaders reject such payloads before reaching this point.
func ClassifyCatalog(c *Catalog, today time.Time, th Thresholds) *Catalog {
	out := &Catalog{
		LastUpdated:  c.LastUpdated,
		Vendors:      c.Vendors,
		Categories:   c.Categories,
		Services:     make([]*ServiceRecord, 0, len(c.Services)),
		ClassifiedOn: today,
	}

	for _, svc := range c.Services {
		rec := *svc

		var eol *time.Time
		if rec.EOLDate != "" {
			if t, err := ParseDate(rec.EOLDate); err == nil {
				eol = &t
			}
		}
		rec.Computed = Classify(eol, today, th)

		if rec.VendorName == "" {
			rec.VendorName = c.VendorName(rec.Vendor)
		}

		out.Services = append(out.Services, &rec)
	}

	return out
}
