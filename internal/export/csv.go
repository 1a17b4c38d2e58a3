// Package export renders query results as a spreadsheet-friendly CSV file.
package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
)

// BOM lets spreadsheet tools detect UTF-8.
const BOM = "\uFEFF"

// ContentType is sent with downloaded exports.
const ContentType = "text/csv; charset=utf-8"

var headerKeys = []string{
	"csvHeaderVendor",
	"csvHeaderServiceName",
	"csvHeaderCategory",
	"csvHeaderEolDate",
	"csvHeaderSupportEndDate",
	"csvHeaderStatus",
	"csvHeaderDaysUntilEol",
	"csvHeaderDescription",
	"csvHeaderOfficialUrl",
	"csvHeaderAlternatives",
}

// Filename returns eol-service-tracker-YYYY-MM-DD.csv for the given day.
func Filename(day time.Time) string {
	return "eol-service-tracker-" + day.Format(time.DateOnly) + ".csv"
}

// Escape quotes a field when it contains a comma, a double quote or a line
// break, doubling inner quotes. Other fields are written verbatim.
func Escape(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// Write emits the BOM, a localized header row and one row per service.
// Rows are separated by "\n" with no trailing newline. c supplies the
// category display names.
func Write(w io.Writer, c *domain.Catalog, services []*domain.ServiceRecord, lang i18n.Lang) error {
	var b strings.Builder
	b.WriteString(BOM)

	header := make([]string, len(headerKeys))
	for i, key := range headerKeys {
		header[i] = Escape(lang.T(key))
	}
	b.WriteString(strings.Join(header, ","))

	for _, svc := range services {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row(c, svc, lang), ","))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func row(c *domain.Catalog, svc *domain.ServiceRecord, lang i18n.Lang) []string {
	vendor := svc.VendorName
	if vendor == "" {
		vendor = svc.Vendor
	}

	category := svc.Category
	if c != nil {
		category = c.CategoryName(svc.Category)
	}

	days := ""
	if d := svc.Computed.DaysUntilEOL; d != nil {
		days = strconv.Itoa(*d)
	}

	fields := []string{
		vendor,
		svc.ServiceName,
		category,
		lang.FormatDateString(svc.EOLDate),
		lang.FormatDateString(svc.SupportEndDate),
		lang.StatusLabel(svc.Computed.Status),
		days,
		svc.Description,
		svc.OfficialURL,
		alternatives(svc.Alternatives),
	}
	for i, f := range fields {
		fields[i] = Escape(f)
	}
	return fields
}

func alternatives(alts []domain.Alternative) string {
	parts := make([]string, 0, len(alts))
	for _, a := range alts {
		parts = append(parts, a.ServiceName+" ("+a.URL+")")
	}
	return strings.Join(parts, "; ")
}
