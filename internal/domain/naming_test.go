package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortMeasureName(t *testing.T) {
	tests := []struct {
		measure  string
		expected string
	}{
		{"Current asthma among adults aged >=18 years", "Asthma"},
		{"High cholesterol among adults aged >=18 years who have been screened in the past 5 years", "High Cholesterol"},
		{"Taking medicine for high blood pressure control among adults aged >=18 years with high blood pressure", "High Blood Pressure - Control"},
		{"Visits to doctor for routine checkup within the past year among adults aged >=18 years", "Checkup - Visit"},
		{"Fecal occult blood test, sigmoidoscopy, or colonoscopy among adults aged 50-75 years", "Fecal - Occult - Blood"},
		{"a b", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShortMeasureName(tt.measure))
		})
	}
}

func TestShortMeasureName_TruncatesWithoutTerms(t *testing.T) {
	measure := strings.Repeat("ab ", 30)
	assert.Len(t, ShortMeasureName(measure), 50)
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		measure  string
		expected string
	}{
		{"Current asthma among adults aged >=18 years", "Current_asthma_among_adults_aged_18_years.csv"},
		{"ACS_PCT_POV_BELOW_100", "ACS_PCT_POV_BELOW_100.csv"},
		{"Fecal occult blood test - colonoscopy", "Fecal_occult_blood_test_colonoscopy.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.measure, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeFilename(tt.measure))
		})
	}
}

func TestSafeFilename_TruncatesStem(t *testing.T) {
	got := SafeFilename(strings.Repeat("x", 80))
	assert.Equal(t, strings.Repeat("x", 50)+".csv", got)
}
