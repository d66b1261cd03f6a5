package importbundle

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameRank orders candidate name columns; lower wins.
type nameRank int

const (
	rankFullName nameRank = iota
	rankFirstName
	rankGenericName
	rankLastName
	rankNone
)

var nameAliases = map[string]nameRank{
	"fullname":    rankFullName,
	"clientname":  rankFullName,
	"membername":  rankFullName,
	"athletename": rankFullName,
	"displayname": rankFullName,
	"firstname":   rankFirstName,
	"givenname":   rankFirstName,
	"forename":    rankFirstName,
	"first":       rankFirstName,
	"name":        rankGenericName,
	"client":      rankGenericName,
	"athlete":     rankGenericName,
	"member":      rankGenericName,
	"lastname":    rankLastName,
	"surname":     rankLastName,
	"familyname":  rankLastName,
	"last":        rankLastName,
}

var fieldAliases = map[Field][]string{
	FieldEmail:      {"email", "emailaddress", "mail", "eaddress"},
	FieldGoalWeight: {"goalweight", "targetweight", "goal", "target", "weightgoal", "goalwt", "targetwt", "goallbs"},
	FieldNotes:      {"notes", "note", "comments", "comment", "remarks", "memo", "details"},
	FieldWeight:     {"weight", "currentweight", "startweight", "startingweight", "lastweight", "bodyweight", "wt", "lbs", "weightlbs"},
}

// fieldSubstrings are tried after the exact aliases. Order matters.
var fieldSubstrings = []struct {
	Substring string
	Field     Field
}{
	{"email", FieldEmail},
	{"mail", FieldEmail},
	{"goal", FieldGoalWeight},
	{"target", FieldGoalWeight},
	{"note", FieldNotes},
	{"comment", FieldNotes},
	{"weight", FieldWeight},
}

// RuleMapper maps columns from their headers alone. For the name field it
// prefers a full name column, then first name, then a generic "name"
// column, and only takes a last-name-only column as a last resort.
type RuleMapper struct{}

func NewRuleMapper() *RuleMapper {
	return &RuleMapper{}
}

func (RuleMapper) MapColumns(_ context.Context, t *Table) (FieldMapping, error) {
	return InferMapping(t.Columns), nil
}

// InferMapping is the deterministic header-based mapping.
func InferMapping(columns []string) FieldMapping {
	var mapping FieldMapping
	used := make(map[string]bool)
	fuzzy := false

	bestRank := rankNone
	for _, col := range columns {
		key := normalizeHeader(col)
		rank, ok := nameAliases[key]
		guessed := false
		if !ok && strings.Contains(key, "name") && !strings.Contains(key, "last") && !strings.Contains(key, "sur") {
			rank, ok, guessed = rankGenericName, true, true
		}
		if ok && rank < bestRank {
			bestRank = rank
			fuzzy = guessed
			mapping.Set(FieldName, col)
		}
	}
	if name := mapping.Column(FieldName); name != "" {
		used[name] = true
	}

	for _, def := range FieldCatalog[1:] {
		if col := exactAlias(columns, def.Field, used); col != "" {
			mapping.Set(def.Field, col)
			used[col] = true
		}
	}
	for _, def := range FieldCatalog[1:] {
		if mapping.Column(def.Field) != "" {
			continue
		}
		if col := substringAlias(columns, def.Field, used); col != "" {
			mapping.Set(def.Field, col)
			used[col] = true
			fuzzy = true
		}
	}

	mapping.UnmappedColumns = []string{}
	for _, col := range columns {
		if !used[col] {
			mapping.UnmappedColumns = append(mapping.UnmappedColumns, col)
		}
	}

	switch {
	case bestRank == rankNone || bestRank == rankLastName:
		mapping.Confidence = ConfidenceLow
	case fuzzy:
		mapping.Confidence = ConfidenceMedium
	default:
		mapping.Confidence = ConfidenceHigh
	}
	return mapping
}

func exactAlias(columns []string, f Field, used map[string]bool) string {
	for _, alias := range fieldAliases[f] {
		for _, col := range columns {
			if !used[col] && normalizeHeader(col) == alias {
				return col
			}
		}
	}
	return ""
}

func substringAlias(columns []string, f Field, used map[string]bool) string {
	for _, sub := range fieldSubstrings {
		if sub.Field != f {
			continue
		}
		for _, col := range columns {
			if !used[col] && strings.Contains(normalizeHeader(col), sub.Substring) {
				return col
			}
		}
	}
	return ""
}

// normalizeHeader lowercases, drops accents and keeps letters and digits only.
func normalizeHeader(h string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, h)
	if err != nil {
		folded = h
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
