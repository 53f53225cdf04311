// Package era converts Japanese imperial era dates into calendar dates.
package era

import (
	"fmt"

	"github.com/ppiankov/hanrei/internal/model"
)

// Era is a Japanese imperial era
type Era int

const (
	Unknown Era = iota
	Meiji
	Taishou
	Shouwa
	Heisei
	Reiwa
)

// Parse maps an era name from the precedent dataset to an Era.
// Both long-vowel and short romanizations are accepted ("Shouwa", "Showa").
// Unrecognized names map to Unknown.
func Parse(name string) Era {
	switch name {
	case "Meiji":
		return Meiji
	case "Taishou", "Taisho":
		return Taishou
	case "Shouwa", "Showa":
		return Shouwa
	case "Heisei":
		return Heisei
	case "Reiwa":
		return Reiwa
	default:
		return Unknown
	}
}

// String returns the romanized era name
func (e Era) String() string {
	switch e {
	case Meiji:
		return "Meiji"
	case Taishou:
		return "Taishou"
	case Shouwa:
		return "Shouwa"
	case Heisei:
		return "Heisei"
	case Reiwa:
		return "Reiwa"
	default:
		return "Unknown"
	}
}

// Offset is the value added to an era-year to obtain the calendar year.
// Unknown has offset 0, leaving the era-year unchanged.
func (e Era) Offset() int {
	switch e {
	case Meiji:
		return 1867
	case Taishou:
		return 1911
	case Shouwa:
		return 1925
	case Heisei:
		return 1988
	case Reiwa:
		return 2018
	default:
		return 0
	}
}

// Kanji returns the display glyphs for the era, or "" for Unknown
func (e Era) Kanji() string {
	switch e {
	case Meiji:
		return "明治"
	case Taishou:
		return "大正"
	case Shouwa:
		return "昭和"
	case Heisei:
		return "平成"
	case Reiwa:
		return "令和"
	default:
		return ""
	}
}

// ToCalendarYear converts an era name and era-year to a calendar year.
// An unrecognized era name returns eraYear unchanged.
func ToCalendarYear(name string, eraYear int) int {
	return eraYear + Parse(name).Offset()
}

// KanjiLabel returns the display glyphs for an era name, or "" if unrecognized
func KanjiLabel(name string) string {
	return Parse(name).Kanji()
}

// Normalize derives a comparable calendar date from case metadata
func Normalize(meta model.CaseMetadata) model.NormalizedDate {
	return model.NormalizedDate{
		Year:  ToCalendarYear(meta.Era, meta.EraYear),
		Month: meta.Month,
		Day:   meta.Day,
	}
}

// DisplayDate renders case metadata as a Japanese date such as "令和2年11月6日".
// Unknown eras render the bare era-year.
func DisplayDate(meta model.CaseMetadata) string {
	return fmt.Sprintf("%s%d年%d月%d日", KanjiLabel(meta.Era), meta.EraYear, meta.Month, meta.Day)
}
