package match

import (
	"slices"
	"testing"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Basic cases
		{"Patient ID", "patientid"},
		{"patient_id", "patientid"},
		{"patient-id", "patientid"},
		{"patientId", "patientid"},
		{"PATIENTID", "patientid"},

		// Word boundaries
		{"DateOfSurgery", "dateofsurgery"},
		{"date-of-surgery", "dateofsurgery"},
		{"ASAScore", "asascore"},
		{"Sample number culture collection", "samplenumberculturecollection"},
		{"Date of Surgery (dd/mm)", "dateofsurgeryddmm"},
		{"visit2Date", "visit2date"},

		// Edge cases
		{"", ""},
		{"a", "a"},
		{"ID", "id"},
		{"Größe", "größe"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeIdent(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeIdent(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeIdentWithSuffixStrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"patient_nr", "patient"},
		{"Patient ID", "patient"},
		{"PatientNo", "patient"},
		{"antibiotic_code", "antibiotic"},
		{"sample_number", "sample"},

		// Should not strip if result would be empty
		{"ID", "id"},
		{"nr", "nr"},

		// No suffix to strip
		{"Result", "result"},
		{"discharge_date", "dischargedate"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeIdentWithSuffixStrip(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeIdentWithSuffixStrip(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTokenizeCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"PatientID", []string{"Patient", "ID"}},
		{"dateOfSurgery", []string{"date", "Of", "Surgery"}},
		{"ASAScore", []string{"ASA", "Score"}},
		{"Date of Surgery (dd/mm)", []string{"Date", "of", "Surgery", "dd", "mm"}},
		{"order_id", []string{"order", "id"}},
		{"visit2", []string{"visit", "2"}},
		{"", nil},
		{"AB", []string{"AB"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := tokenizeCamelCase(tt.input)
			if !slices.Equal(result, tt.expected) {
				t.Errorf("tokenizeCamelCase(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"surgery_date", "Date of Surgery", 1.0},
		{"discharge_dt", "Discharge Date", 1.0 / 3.0},
		{"Result", "Operation Side", 0},
		{"", "Result", 0},
		{"of", "Result", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := TokenOverlap(tt.a, tt.b)
			if diff := result - tt.expected; diff < -0.001 || diff > 0.001 {
				t.Errorf("TokenOverlap(%q, %q) = %f, want %f", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}
