package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Keyword tables for ShortMeasureName, checked in order.
var (
	shortNameConditions = []string{
		"asthma", "diabetes", "cancer", "heart disease", "high blood pressure",
		"high cholesterol", "obesity", "smoking", "drinking", "arthritis", "copd",
	}
	shortNameActions = []string{
		"screening", "checkup", "visit", "control", "medication", "vaccination",
	}

	nonWordRe   = regexp.MustCompile(`[^\w\s-]`)
	separatorRe = regexp.MustCompile(`[-\s]+`)
)

const (
	maxShortNameTerms = 3
	maxShortNameLen   = 50
	maxFilenameStem   = 50
)

// ShortMeasureName derives a display name from a long CDC measure description,
// e.g. "Current asthma among adults aged >=18 years" -> "Asthma".
// Matching condition and action keywords are title-cased and joined with
// " - " (at most three). Without a keyword the first four words longer than
// two characters are used, and failing that the first 50 characters.
func ShortMeasureName(measure string) string {
	title := cases.Title(language.English)
	lower := strings.ToLower(measure)

	var terms []string
	for _, kw := range shortNameConditions {
		if strings.Contains(lower, kw) {
			terms = append(terms, title.String(kw))
		}
	}
	for _, kw := range shortNameActions {
		if strings.Contains(lower, kw) {
			terms = append(terms, title.String(kw))
		}
	}

	if len(terms) == 0 {
		words := strings.Fields(measure)
		if len(words) > 4 {
			words = words[:4]
		}
		for _, w := range words {
			if len(w) > 2 {
				terms = append(terms, title.String(w))
			}
		}
	}

	if len(terms) == 0 {
		if len(measure) > maxShortNameLen {
			return measure[:maxShortNameLen]
		}
		return measure
	}
	if len(terms) > maxShortNameTerms {
		terms = terms[:maxShortNameTerms]
	}
	return strings.Join(terms, " - ")
}

// SafeFilename turns a measure name into the CSV file name it is stored under:
// punctuation is dropped, runs of spaces and dashes become "_", and the stem
// is cut to 50 bytes.
func SafeFilename(measure string) string {
	s := nonWordRe.ReplaceAllString(measure, "")
	s = separatorRe.ReplaceAllString(s, "_")
	if len(s) > maxFilenameStem {
		s = s[:maxFilenameStem]
	}
	return s + ".csv"
}
