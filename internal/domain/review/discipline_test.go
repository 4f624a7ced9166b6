package review

import "testing"

func TestInferDiscipline(t *testing.T) {
	cases := []struct {
		sheet string
		want  string
	}{
		{"E101 - LIGHTING PLAN", "E"},
		{"e101", "E"},
		{"S-203", "S"},
		{"CIV-001", "CIV"},
		{"A2.01", "A"},
		{"MEP101", "MEP"},
		{"101", "1"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		if got := InferDiscipline(tc.sheet); got != tc.want {
			t.Fatalf("InferDiscipline(%q) = %q, want %q", tc.sheet, got, tc.want)
		}
	}
}
