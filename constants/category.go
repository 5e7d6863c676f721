package constants

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// RoomCategory is the canonical room taxonomy used for per-category totals.
type RoomCategory string

const (
	Office      RoomCategory = "office"
	Residential RoomCategory = "residential"
	Circulation RoomCategory = "circulation"
	Stairs      RoomCategory = "stairs"
	Elevators   RoomCategory = "elevators"
	Shafts      RoomCategory = "shafts"
	Technical   RoomCategory = "technical"
	Sanitary    RoomCategory = "sanitary"
	Storage     RoomCategory = "storage"
	Outdoor     RoomCategory = "outdoor"
	Other       RoomCategory = "other"
)

var allCategories = []RoomCategory{
	Office,
	Residential,
	Circulation,
	Stairs,
	Elevators,
	Shafts,
	Technical,
	Sanitary,
	Storage,
	Outdoor,
	Other,
}

// categoryKeywords is ordered; the first category with a matching keyword wins.
var categoryKeywords = []struct {
	category RoomCategory
	keywords []string
}{
	{Office, []string{"büro", "office", "nutzungseinheit", "back office"}},
	{Residential, []string{"schlafen", "wohnen", "essen", "kochen", "zimmer", "küche"}},
	{Circulation, []string{"flur", "diele", "schleuse", "vorraum", "eingang", "lobby"}},
	{Stairs, []string{"treppe", "treppenhaus", "trh"}},
	{Elevators, []string{"aufzug", "lift", "aufzugsschacht", "aufzugsvorr"}},
	{Shafts, []string{"schacht", "lüftung", "medien", "druckbelüftung"}},
	{Technical, []string{"elektro", "technik", "hwr", "it verteiler", "elt", "glt", "fiz"}},
	{Sanitary, []string{"wc", "bad", "dusche", "gästebad", "umkleide", "sanitär"}},
	{Storage, []string{"lager", "abstellraum", "müll", "fahrrad"}},
	{Outdoor, []string{"balkon", "terrasse", "loggia", "dachterrasse", "freisitz"}},
}

// AllCategories returns the taxonomy in table order, Other last.
func AllCategories() []RoomCategory {
	out := make([]RoomCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

// FoldName lowercases a room name with German casing rules on NFC text.
func FoldName(name string) string {
	return cases.Lower(language.German).String(norm.NFC.String(strings.TrimSpace(name)))
}

// CategorizeName maps a room name to a category by keyword substring.
// Returns Other, false when no keyword matches.
func CategorizeName(name string) (RoomCategory, bool) {
	folded := FoldName(name)
	if folded == "" {
		return Other, false
	}
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(folded, kw) {
				return entry.category, true
			}
		}
	}
	return Other, false
}

// Canonicalize accepts a category name in any casing.
func Canonicalize(input string) (RoomCategory, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}
	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	return Other, false
}
