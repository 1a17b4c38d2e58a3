// Package i18n holds the English and Japanese label tables and the
// language-dependent formatting of dates, durations and statuses.
package i18n

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
)

// Lang is a supported UI language.
type Lang string

const (
	English  Lang = "en"
	Japanese Lang = "ja"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Japanese})

// Parse returns the language for a short code ("en", "ja", "ja-JP"...).
func Parse(s string) (Lang, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch Lang(base.String()) {
	case English:
		return English, true
	case Japanese:
		return Japanese, true
	}
	return "", false
}

// Match picks the best supported language for an Accept-Language header,
// or fallback when nothing matches.
func Match(acceptLanguage string, fallback Lang) Lang {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if idx == 1 {
		return Japanese
	}
	return English
}

// Toggle flips between the two languages.
func (l Lang) Toggle() Lang {
	if l == Japanese {
		return English
	}
	return Japanese
}

// T returns the label for key, falling back to English and then to the key
// itself. Each {name} placeholder is replaced by params[name].
func (l Lang) T(key string, params ...map[string]any) string {
	text, ok := messages[l][key]
	if !ok {
		if text, ok = messages[English][key]; !ok {
			text = key
		}
	}

	for _, p := range params {
		for name, v := range p {
			text = strings.Replace(text, "{"+name+"}", toString(v), 1)
		}
	}
	return text
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// FormatDate renders a calendar date the way each language writes short
// dates: "Jan 2, 2006" or "2006年1月2日".
func (l Lang) FormatDate(t time.Time) string {
	if l == Japanese {
		return strconv.Itoa(t.Year()) + "年" + strconv.Itoa(int(t.Month())) + "月" + strconv.Itoa(t.Day()) + "日"
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateString formats a raw catalog date. Empty values are "N/A";
// unparseable values are returned as is.
func (l Lang) FormatDateString(s string) string {
	if s == "" {
		return l.T("notAvailable")
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return s
	}
	return l.FormatDate(t)
}

// TimeUntilEOL renders days until EOL in words.
func (l Lang) TimeUntilEOL(days *int) string {
	if days == nil {
		return l.T("unknown")
	}

	d := *days
	switch {
	case d < 0:
		return l.T("daysAgo", map[string]any{"days": -d})
	case d == 0:
		return l.T("today")
	case d == 1:
		return l.T("tomorrow")
	case d <= 30:
		return l.T("days", map[string]any{"days": d})
	case d <= 365:
		months := d / 30
		if months == 1 {
			return l.T("month", map[string]any{"months": months})
		}
		return l.T("months", map[string]any{"months": months})
	}

	years := d / 365
	if years == 1 {
		return l.T("year", map[string]any{"years": years})
	}
	return l.T("years", map[string]any{"years": years})
}

// StatusLabel returns the localized label of a lifecycle status.
func (l Lang) StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusEOL:
		return l.T("statusEOL")
	case domain.StatusDeprecated:
		return l.T("statusEndingSoon")
	case domain.StatusActive:
		return l.T("statusActive")
	default:
		return l.T("unknown")
	}
}
