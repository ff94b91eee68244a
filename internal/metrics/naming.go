package metrics

import (
	"strings"
	"unicode"

	"github.com/ludo-technologies/vibescan/domain"
)

// NamingStyle is the convention an identifier follows
type NamingStyle int

const (
	// StyleNeutral names carry no convention, such as "value" or "MAX_SIZE"
	StyleNeutral NamingStyle = iota
	StyleCamel
	StyleSnake
	StyleOther
)

// ClassifyName returns the naming convention of an identifier.
// Leading and trailing underscores are ignored.
func ClassifyName(name string) NamingStyle {
	trimmed := strings.Trim(name, "_$")
	if trimmed == "" {
		return StyleNeutral
	}

	var hasUpper, hasLower bool
	for _, r := range trimmed {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	hasUnderscore := strings.Contains(trimmed, "_")

	switch {
	case !hasLower:
		return StyleNeutral
	case !hasUpper && hasUnderscore:
		return StyleSnake
	case !hasUpper:
		return StyleNeutral
	case hasUnderscore:
		return StyleOther
	default:
		return StyleCamel
	}
}

// TallyNaming counts function and variable names by convention. Class names are
// excluded since most languages capitalize them regardless of the local style.
func TallyNaming(ids []domain.Identifier, minIdentifiers int, dominanceThreshold float64) domain.NamingTally {
	var tally domain.NamingTally
	for _, id := range ids {
		if id.Kind == domain.IdentifierClass {
			continue
		}
		switch ClassifyName(id.Name) {
		case StyleCamel:
			tally.Camel++
		case StyleSnake:
			tally.Snake++
		case StyleOther:
			tally.Other++
		}
	}

	total := tally.Total()
	if total == 0 {
		tally.Dominance = 1
		return tally
	}
	dominant := max(tally.Camel, tally.Snake, tally.Other)
	tally.Dominance = float64(dominant) / float64(total)
	tally.Inconsistent = total >= minIdentifiers && tally.Dominance < dominanceThreshold
	return tally
}
