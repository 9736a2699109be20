package catalog

import "strings"

// accent folding for the French labels in the catalog; enough for
// matching, not a general Unicode normalizer.
var foldTable = map[rune]rune{
	'à': 'a', 'â': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'î': 'i', 'ï': 'i',
	'ô': 'o', 'ö': 'o',
	'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c',
}

// normalize lowercases, strips accents and collapses every non
// alphanumeric run to a single space, so "Bouteille d’alcool" and
// "bouteille alcool" compare equal.
func normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if f, ok := foldTable[r]; ok {
			r = f
		}
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// ResolveID maps free-form input (an id, a label, or an approximation
// of either) to a catalog id. Match order: exact id, normalized id,
// normalized label, label substring, id substring. Candidates are
// scanned in id order so partial matches are deterministic.
func ResolveID(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	if _, ok := items[input]; ok {
		return input, true
	}

	norm := normalize(input)
	if norm == "" {
		return "", false
	}
	all := All()

	for _, it := range all {
		if normalize(it.ID) == norm {
			return it.ID, true
		}
	}
	for _, it := range all {
		if normalize(it.Label) == norm {
			return it.ID, true
		}
	}
	for _, it := range all {
		if strings.Contains(normalize(it.Label), norm) {
			return it.ID, true
		}
	}
	for _, it := range all {
		if strings.Contains(normalize(it.ID), norm) {
			return it.ID, true
		}
	}
	return "", false
}

// Resolve is ResolveID returning the full definition.
func Resolve(input string) (Item, bool) {
	id, ok := ResolveID(input)
	if !ok {
		return Item{}, false
	}
	return items[id], true
}
