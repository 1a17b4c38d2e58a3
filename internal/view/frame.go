package view

import (
	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
)

// Placeholder tells the presenter which of the mutually exclusive result
// areas to show.
type Placeholder string

const (
	PlaceholderLoading Placeholder = "loading"
	PlaceholderError   Placeholder = "error"
	PlaceholderEmpty   Placeholder = "empty"
	PlaceholderResults Placeholder = "results"
)

// Frame is one fully localized rendering of the view.
type Frame struct {
	State     Placeholder `json:"state"`
	Message   string      `json:"message,omitempty"`
	ErrorKind string      `json:"errorKind,omitempty"`

	Count       int    `json:"count"`
	Total       int    `json:"total"`
	CountLabel  string `json:"countLabel,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`

	Language i18n.Lang   `json:"language"`
	Filter   FilterState `json:"filter"`

	Cards []Card `json:"cards,omitempty"`
	Rows  []Row  `json:"rows,omitempty"`

	// Services are the filtered records in display order (CSV export).
	Services []*domain.ServiceRecord `json:"-"`
	Catalog  *domain.Catalog         `json:"-"`
}

// Card is the detailed layout of one record.
type Card struct {
	ID           string               `json:"id"`
	ServiceName  string               `json:"serviceName"`
	Vendor       string               `json:"vendor"`
	CategoryIcon string               `json:"categoryIcon,omitempty"`
	CategoryName string               `json:"categoryName"`
	Status       domain.Status        `json:"status"`
	StatusLabel  string               `json:"statusLabel"`
	Urgency      domain.Urgency       `json:"urgency"`
	Description  string               `json:"description"`
	EOLDate      string               `json:"eolDate"`
	TimeUntilEOL string               `json:"timeUntilEOL"`
	PastEOL      bool                 `json:"pastEOL"`
	OfficialURL  string               `json:"officialUrl"`
	Alternatives []domain.Alternative `json:"alternatives,omitempty"`
}

// Row is the compact table layout of one record.
type Row struct {
	ID           string         `json:"id"`
	Vendor       string         `json:"vendor"`
	ServiceName  string         `json:"serviceName"`
	CategoryIcon string         `json:"categoryIcon,omitempty"`
	CategoryName string         `json:"categoryName"`
	EOLDate      string         `json:"eolDate"`
	Status       domain.Status  `json:"status"`
	StatusLabel  string         `json:"statusLabel"`
	Urgency      domain.Urgency `json:"urgency"`
	PastEOL      bool           `json:"pastEOL"`
	OfficialURL  string         `json:"officialUrl"`
}

// LoadingFrame is shown before any catalog is available.
func LoadingFrame(lang i18n.Lang, state FilterState) Frame {
	return Frame{State: PlaceholderLoading, Message: lang.T("loading"), Language: lang, Filter: state}
}

// ErrorFrame replaces every result with a localized error message.
func ErrorFrame(lang i18n.Lang, state FilterState, err error) Frame {
	kind := catalog.KindOf(err)
	return Frame{
		State:     PlaceholderError,
		Message:   lang.T(kind.MessageKey()),
		ErrorKind: kind.String(),
		Language:  lang,
		Filter:    state,
	}
}

// Render builds the frame for an already filtered result set.
func Render(c *domain.Catalog, results []*domain.ServiceRecord, state FilterState, lang i18n.Lang) Frame {
	f := Frame{
		Count:    len(results),
		Total:    len(c.Services),
		Language: lang,
		Filter:   state,
		Services: results,
		Catalog:  c,
	}
	f.CountLabel = lang.T("servicesCount", map[string]any{"count": f.Count, "total": f.Total})
	f.LastUpdated = lang.T("lastUpdated", map[string]any{"date": lang.FormatDateString(c.LastUpdated)})

	if len(results) == 0 {
		f.State = PlaceholderEmpty
		f.Message = lang.T("emptyMessage")
		return f
	}

	f.State = PlaceholderResults
	if state.View == ModeTable {
		f.Rows = make([]Row, 0, len(results))
		for _, svc := range results {
			f.Rows = append(f.Rows, tableRow(c, svc, lang))
		}
		return f
	}

	f.Cards = make([]Card, 0, len(results))
	for _, svc := range results {
		f.Cards = append(f.Cards, card(c, svc, lang))
	}
	return f
}

// CardFor renders a single record in the detailed layout.
func CardFor(c *domain.Catalog, svc *domain.ServiceRecord, lang i18n.Lang) Card {
	return card(c, svc, lang)
}

func card(c *domain.Catalog, svc *domain.ServiceRecord, lang i18n.Lang) Card {
	cat, _ := c.Category(svc.Category)
	return Card{
		ID:           svc.ID,
		ServiceName:  svc.ServiceName,
		Vendor:       vendorOf(svc),
		CategoryIcon: cat.Icon,
		CategoryName: c.CategoryName(svc.Category),
		Status:       svc.Computed.Status,
		StatusLabel:  lang.StatusLabel(svc.Computed.Status),
		Urgency:      svc.Computed.Urgency,
		Description:  svc.Description,
		EOLDate:      lang.FormatDateString(svc.EOLDate),
		TimeUntilEOL: lang.TimeUntilEOL(svc.Computed.DaysUntilEOL),
		PastEOL:      svc.Computed.PastEOL(),
		OfficialURL:  svc.OfficialURL,
		Alternatives: svc.Alternatives,
	}
}

func tableRow(c *domain.Catalog, svc *domain.ServiceRecord, lang i18n.Lang) Row {
	cat, _ := c.Category(svc.Category)
	return Row{
		ID:           svc.ID,
		Vendor:       vendorOf(svc),
		ServiceName:  svc.ServiceName,
		CategoryIcon: cat.Icon,
		CategoryName: c.CategoryName(svc.Category),
		EOLDate:      lang.FormatDateString(svc.EOLDate),
		Status:       svc.Computed.Status,
		StatusLabel:  lang.StatusLabel(svc.Computed.Status),
		Urgency:      svc.Computed.Urgency,
		PastEOL:      svc.Computed.PastEOL(),
		OfficialURL:  svc.OfficialURL,
	}
}

func vendorOf(svc *domain.ServiceRecord) string {
	if svc.VendorName != "" {
		return svc.VendorName
	}
	return svc.Vendor
}
