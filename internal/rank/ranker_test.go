package rank

import (
	"reflect"
	"testing"

	"github.com/ppiankov/hanrei/internal/model"
)

func doc(name, eraName string, year, month, day int) model.CaseDocument {
	return model.CaseDocument{
		Content: name,
		Metadata: model.CaseMetadata{
			CaseName: name,
			Era:      eraName,
			EraYear:  year,
			Month:    month,
			Day:      day,
		},
	}
}

func names(docs []model.CaseDocument) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Metadata.CaseName
	}
	return out
}

func TestRank_DateDescending(t *testing.T) {
	docs := []model.CaseDocument{
		doc("heisei", "Heisei", 31, 1, 1),
		doc("reiwa", "Reiwa", 2, 11, 6),
	}

	got := names(Rank(docs, ByDate, Descending))
	want := []string{"reiwa", "heisei"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRank_DateAscending(t *testing.T) {
	docs := []model.CaseDocument{
		doc("reiwa", "Reiwa", 2, 11, 6),
		doc("heisei", "Heisei", 31, 1, 1),
	}

	got := names(Rank(docs, ByDate, Ascending))
	want := []string{"heisei", "reiwa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRank_DateComparesMonthAndDay(t *testing.T) {
	docs := []model.CaseDocument{
		doc("jan", "Reiwa", 2, 1, 30),
		doc("nov-6", "Reiwa", 2, 11, 6),
		doc("nov-2", "Reiwa", 2, 11, 2),
	}

	got := names(Rank(docs, ByDate, Descending))
	want := []string{"nov-6", "nov-2", "jan"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRank_StableForEqualDates(t *testing.T) {
	// Heisei 31-04-30 and Reiwa 1-04-30 normalize to the same calendar date
	docs := []model.CaseDocument{
		doc("first", "Heisei", 31, 4, 30),
		doc("older", "Heisei", 20, 1, 1),
		doc("second", "Reiwa", 1, 4, 30),
	}

	desc := names(Rank(docs, ByDate, Descending))
	if !reflect.DeepEqual(desc, []string{"first", "second", "older"}) {
		t.Errorf("Descending lost retrieval order for ties: %v", desc)
	}

	asc := names(Rank(docs, ByDate, Ascending))
	if !reflect.DeepEqual(asc, []string{"older", "first", "second"}) {
		t.Errorf("Ascending lost retrieval order for ties: %v", asc)
	}
}

func TestRank_SimilarityIgnoresDirection(t *testing.T) {
	docs := []model.CaseDocument{
		doc("a", "Heisei", 1, 1, 1),
		doc("b", "Reiwa", 3, 1, 1),
		doc("c", "Shouwa", 50, 1, 1),
	}

	for _, dir := range []Direction{Descending, Ascending} {
		got := names(Rank(docs, BySimilarity, dir))
		if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Errorf("Similarity mode (%s) should keep retrieval order, got %v", dir, got)
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	docs := []model.CaseDocument{
		doc("heisei", "Heisei", 31, 1, 1),
		doc("reiwa", "Reiwa", 2, 11, 6),
	}
	before := names(docs)

	_ = Rank(docs, ByDate, Descending)

	if !reflect.DeepEqual(names(docs), before) {
		t.Errorf("Input was mutated: %v", names(docs))
	}
}

func TestRank_Idempotent(t *testing.T) {
	docs := []model.CaseDocument{
		doc("a", "Heisei", 10, 5, 5),
		doc("b", "Reiwa", 3, 1, 1),
		doc("c", "Heisei", 10, 5, 5),
		doc("d", "Shouwa", 60, 12, 31),
		doc("e", "Unknown", 2030, 1, 1),
	}

	for _, mode := range []Mode{BySimilarity, ByDate} {
		for _, dir := range []Direction{Descending, Ascending} {
			once := Rank(docs, mode, dir)
			twice := Rank(once, mode, dir)
			if !reflect.DeepEqual(names(once), names(twice)) {
				t.Errorf("Rank(%s, %s) not idempotent: %v then %v", mode, dir, names(once), names(twice))
			}
		}
	}
}

func TestRank_Empty(t *testing.T) {
	got := Rank(nil, ByDate, Descending)
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %d documents", len(got))
	}
}

func TestParseModeAndDirection(t *testing.T) {
	if m, err := ParseMode("date"); err != nil || m != ByDate {
		t.Errorf("ParseMode(date) = %v, %v", m, err)
	}
	if m, err := ParseMode(""); err != nil || m != BySimilarity {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	for _, invalid := range []string{"alphabetical", "relevance"} {
		if _, err := ParseMode(invalid); err == nil {
			t.Errorf("Expected error for unknown mode %q", invalid)
		}
	}

	if d, err := ParseDirection("asc"); err != nil || d != Ascending {
		t.Errorf("ParseDirection(asc) = %v, %v", d, err)
	}
	if d, err := ParseDirection(""); err != nil || d != Descending {
		t.Errorf("ParseDirection(\"\") = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("Expected error for unknown direction")
	}
}
