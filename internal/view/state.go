// Package view holds the per-session view state of the dashboard and turns
// it into presentation frames.
package view

import (
	"github.com/MrSnakeDoc/eoltracker/internal/domain"
)

// Mode is how results are laid out.
type Mode string

const (
	ModeCards Mode = "cards"
	ModeTable Mode = "table"
)

// Toggle flips between cards and table.
func (m Mode) Toggle() Mode {
	if m == ModeTable {
		return ModeCards
	}
	return ModeTable
}

// ParseMode accepts "cards" or "table".
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeCards, ModeTable:
		return Mode(s), true
	}
	return "", false
}

// FilterState is everything the user picked. Only the embedded Filter
// influences which records are shown; View is layout only.
type FilterState struct {
	domain.Filter
	View Mode `json:"view"`
}

// DefaultState shows upcoming EOLs, soonest first, as cards.
func DefaultState() FilterState {
	return FilterState{
		Filter: domain.Filter{
			Vendor:    domain.All,
			Category:  domain.All,
			Proximity: domain.ProximityUpcoming,
			Sort:      domain.SortEOLDateAsc,
		},
		View: ModeCards,
	}
}
