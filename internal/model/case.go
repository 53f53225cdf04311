package model

// CaseDocument is one retrieved excerpt of a judicial decision
type CaseDocument struct {
	Content  string       `json:"content"`         // Excerpt text used as grounding context
	Metadata CaseMetadata `json:"metadata"`        // Case attributes stored alongside the excerpt
	Score    float64      `json:"score,omitempty"` // Similarity score reported by the vector index
}

// CaseMetadata carries the decision attributes from the precedent dataset.
// Date fields are era-relative (e.g., Era "Reiwa", EraYear 2).
type CaseMetadata struct {
	TrialType      string `json:"trial_type"`
	Era            string `json:"date_era"`
	EraYear        int    `json:"date_year"`
	Month          int    `json:"date_month"`
	Day            int    `json:"date_day"`
	CaseNumber     string `json:"case_number"`
	CaseName       string `json:"case_name"`
	CourtName      string `json:"court_name"`
	Result         string `json:"result"`
	LawsuitID      string `json:"lawsuit_id"`
	DetailPageLink string `json:"detail_page_link"`
	FullPDFLink    string `json:"full_pdf_link"`
}

// NormalizedDate is a calendar date derived from era-relative case metadata
type NormalizedDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Compare orders dates by (year, month, day). It returns -1, 0 or +1.
func (d NormalizedDate) Compare(other NormalizedDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
