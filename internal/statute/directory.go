// Package statute resolves statute names to canonical identifiers and fetches statute text.
package statute

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/hanrei/internal/model"
)

// Directory maps statute display names to canonical identifiers.
// It is read-only after construction and safe for concurrent use.
// A nil *Directory behaves as an empty directory.
type Directory struct {
	entries []model.StatuteEntry
	index   map[string]int
}

// NewDirectory builds a directory from entries in insertion order.
// A repeated display name keeps its first position and takes the last identifier.
func NewDirectory(entries []model.StatuteEntry) *Directory {
	d := &Directory{
		entries: make([]model.StatuteEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, exists := d.index[e.DisplayName]; exists {
			d.entries[i].CanonicalID = e.CanonicalID
			continue
		}
		d.index[e.DisplayName] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// LoadDirectory reads a flat {"display name": "canonical id"} JSON object,
// keeping the object's key order.
func LoadDirectory(r io.Reader) (*Directory, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("read directory: expected JSON object")
	}

	var entries []model.StatuteEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read directory key: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("read directory: unexpected key %v", keyTok)
		}

		var id string
		if err := dec.Decode(&id); err != nil {
			return nil, fmt.Errorf("read directory value for %q: %w", name, err)
		}
		entries = append(entries, model.StatuteEntry{DisplayName: name, CanonicalID: id})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	return NewDirectory(entries), nil
}

// LoadDirectoryFile loads a directory from a JSON file
func LoadDirectoryFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadDirectory(f)
}

// Len returns the number of entries
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns a copy of all entries in insertion order
func (d *Directory) Entries() []model.StatuteEntry {
	if d == nil {
		return nil
	}
	return append([]model.StatuteEntry(nil), d.entries...)
}

// LookupExact returns the canonical identifier for name, or "" if absent
func (d *Directory) LookupExact(name string) string {
	if d == nil {
		return ""
	}
	if i, ok := d.index[name]; ok {
		return d.entries[i].CanonicalID
	}
	return ""
}

// LookupByKeywords returns every entry whose display name contains at least one
// keyword, in insertion order. Empty keywords are ignored, so an empty or blank
// keyword set matches nothing.
func (d *Directory) LookupByKeywords(keywords []string) []model.StatuteEntry {
	if d == nil {
		return nil
	}

	var needles []string
	for _, k := range keywords {
		if k != "" {
			needles = append(needles, k)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	var matches []model.StatuteEntry
	for _, e := range d.entries {
		for _, k := range needles {
			if strings.Contains(e.DisplayName, k) {
				matches = append(matches, e)
				break
			}
		}
	}
	return matches
}

// listRecord is one element of the upstream statute list
type listRecord struct {
	Name string `json:"name"`
	Num  string `json:"num"`
}

// ReadList parses the upstream [{"name": ..., "num": ...}] statute list
func ReadList(r io.Reader) ([]model.StatuteEntry, error) {
	var records []listRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode statute list: %w", err)
	}

	entries := make([]model.StatuteEntry, 0, len(records))
	for _, rec := range records {
		if rec.Name == "" || rec.Num == "" {
			continue
		}
		entries = append(entries, model.StatuteEntry{DisplayName: rec.Name, CanonicalID: rec.Num})
	}
	return entries, nil
}

// WriteDirectory writes the directory as a flat, ordered JSON object
func WriteDirectory(w io.Writer, d *Directory) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range d.Entries() {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		if err := writeJSONString(&buf, e.DisplayName); err != nil {
			return err
		}
		buf.WriteString(": ")
		if err := writeJSONString(&buf, e.CanonicalID); err != nil {
			return err
		}
	}
	if d.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode %q: %w", s, err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
