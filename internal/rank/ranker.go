// Package rank orders retrieved case documents for display.
package rank

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ppiankov/hanrei/internal/era"
	"github.com/ppiankov/hanrei/internal/model"
)

// Mode selects the sort key
type Mode string

const (
	// BySimilarity keeps the vector index order. Direction is ignored in this mode.
	BySimilarity Mode = "similarity"
	// ByDate sorts on the normalized (year, month, day) of each decision.
	ByDate Mode = "date"
)

// Direction selects ascending or descending order
type Direction string

const (
	Descending Direction = "desc"
	Ascending  Direction = "asc"
)

// ParseMode parses a sort mode name
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "similarity":
		return BySimilarity, nil
	case "date":
		return ByDate, nil
	default:
		return "", fmt.Errorf("unknown sort mode: %s (supported: similarity, date)", s)
	}
}

// ParseDirection parses a sort direction name
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	default:
		return "", fmt.Errorf("unknown sort direction: %s (supported: desc, asc)", s)
	}
}

// Rank returns a newly ordered copy of docs; the input is never modified.
// Date ordering is stable, so documents with equal dates keep their retrieval order
// in both directions.
func Rank(docs []model.CaseDocument, mode Mode, direction Direction) []model.CaseDocument {
	ranked := slices.Clone(docs)
	if mode != ByDate {
		return ranked
	}

	type keyed struct {
		doc  model.CaseDocument
		date model.NormalizedDate
	}
	items := make([]keyed, len(ranked))
	for i, doc := range ranked {
		items[i] = keyed{doc: doc, date: era.Normalize(doc.Metadata)}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if direction == Ascending {
			return a.date.Compare(b.date)
		}
		return b.date.Compare(a.date)
	})

	for i := range items {
		ranked[i] = items[i].doc
	}
	return ranked
}
