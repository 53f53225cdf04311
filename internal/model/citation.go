package model

// Citation is a structured statute reference extracted from an answer.
// Article, Paragraph and Item may be empty, meaning "not specified".
type Citation struct {
	StatuteName string `json:"statute_name"`
	Article     string `json:"article,omitempty"`
	Paragraph   string `json:"paragraph,omitempty"`
	Item        string `json:"item,omitempty"`
}

// Valid reports whether the citation names a statute
func (c Citation) Valid() bool {
	return c.StatuteName != ""
}

// StatuteEntry maps a statute display name to its canonical identifier
type StatuteEntry struct {
	DisplayName string `json:"name"`
	CanonicalID string `json:"num"`
}

// ResolvedStatuteText is one displayable statute text block
type ResolvedStatuteText struct {
	Label       string `json:"label"`
	CanonicalID string `json:"canonical_id"`
	Text        string `json:"text,omitempty"`
	Unavailable bool   `json:"unavailable,omitempty"` // Fetch failed; render as unavailable
	Error       string `json:"error,omitempty"`
}

// MatchKind records how a citation's statute name was resolved
type MatchKind string

const (
	MatchExact   MatchKind = "exact"   // Display name matched exactly
	MatchKeyword MatchKind = "keyword" // Fell back to substring candidates
	MatchNone    MatchKind = "none"    // No directory entry; nothing to show
)

// Resolution is the outcome of resolving a single citation
type Resolution struct {
	Citation Citation              `json:"citation"`
	Label    string                `json:"label"`
	Match    MatchKind             `json:"match"`
	Texts    []ResolvedStatuteText `json:"texts,omitempty"`
}
