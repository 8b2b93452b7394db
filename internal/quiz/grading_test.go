package quiz

import "testing"

func TestGradeMultipleChoice(t *testing.T) {
	cases := []struct {
		name      string
		submitted string
		correct   string
		want      bool
	}{
		{"exact match", "b", "b", true},
		{"wrong option", "a", "b", false},
		{"case sensitive", "B", "b", false},
		{"empty never correct", "", "b", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Grade(TypeMultipleChoice, tc.submitted, tc.correct); got != tc.want {
				t.Errorf("Grade(%q, %q) = %v, want %v", tc.submitted, tc.correct, got, tc.want)
			}
		})
	}
}

func TestGradeTrueFalse(t *testing.T) {
	if !Grade(TypeTrueFalse, "true", "true") {
		t.Error("matching true_false answer should be correct")
	}
	if Grade(TypeTrueFalse, "True", "true") {
		t.Error("true_false grading is case sensitive")
	}
	if Grade(TypeTrueFalse, "false", "true") {
		t.Error("wrong true_false answer should be incorrect")
	}
}

func TestGradeShortAnswer(t *testing.T) {
	cases := []struct {
		name      string
		submitted string
		correct   string
		want      bool
	}{
		{"exact", "Paris", "Paris", true},
		{"contained in longer answer", "i think paris is right", "Paris", true},
		{"case folded", "PARIS", "paris", true},
		{"superstring of the key", "concatenate", "cat", true},
		{"missing key", "London", "Paris", false},
		{"empty never correct", "", "Paris", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Grade(TypeShortAnswer, tc.submitted, tc.correct); got != tc.want {
				t.Errorf("Grade(%q, %q) = %v, want %v", tc.submitted, tc.correct, got, tc.want)
			}
		})
	}
}

func TestGradeUnknownType(t *testing.T) {
	if Grade("essay", "anything", "anything") {
		t.Error("unknown question type should never grade correct")
	}
}
