// Package aliases maps child names as they are written on the meal portal to the names
// that should be displayed.
package aliases

import (
	"maps"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// SuggestThreshold is the minimum Jaro-Winkler similarity for Suggest to consider a key
// a near miss.
const SuggestThreshold = 0.9

// Table is an immutable, case-insensitive lookup of raw name -> display name.
//
// The zero value is an empty table that resolves every name to itself.
type Table struct {
	entries map[string]string
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// New builds a table from configured aliases, keys are trimmed and lowercased and
// values are trimmed. The given map is not retained.
func New(configured map[string]string) Table {
	entries := make(map[string]string, len(configured))
	for raw, display := range configured {
		entries[normalizeKey(raw)] = strings.TrimSpace(display)
	}
	return Table{entries: entries}
}

// Resolve returns the display name of raw, or raw itself if there is no alias for it.
func (t Table) Resolve(raw string) string {
	display, ok := t.entries[strings.ToLower(raw)]
	if !ok {
		return raw
	}
	return display
}

// Has reports whether raw has a configured alias.
func (t Table) Has(raw string) bool {
	_, ok := t.entries[strings.ToLower(raw)]
	return ok
}

func (t Table) Len() int {
	return len(t.entries)
}

// Entry is a single alias of a table.
type Entry struct {
	Raw     string
	Display string
}

// Entries returns all aliases sorted by their raw key.
func (t Table) Entries() []Entry {
	keys := slices.Sorted(maps.Keys(t.entries))
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Raw: k, Display: t.entries[k]}
	}
	return out
}

// Suggest finds the configured key most similar to raw, it is meant to point out aliases
// that no longer match because the portal changed how a name is spelled.
//
// ok is false if raw already has an alias or no key reaches SuggestThreshold.
func (t Table) Suggest(raw string) (key string, score float64, ok bool) {
	normalized := strings.ToLower(raw)
	if normalized == "" || t.Has(raw) {
		return "", 0, false
	}

	for _, candidate := range slices.Sorted(maps.Keys(t.entries)) {
		similarity := matchr.JaroWinkler(normalized, candidate, false)
		if similarity > score {
			key = candidate
			score = similarity
		}
	}
	if score < SuggestThreshold {
		return "", 0, false
	}
	return key, score, true
}
