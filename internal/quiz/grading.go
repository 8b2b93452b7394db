package quiz

import "strings"

// gradeFunc decides a single answer. Grading routes by question type, one
// rule per type.
type gradeFunc func(submitted, correct string) bool

var graders = map[string]gradeFunc{
	TypeMultipleChoice: gradeExact,
	TypeTrueFalse:      gradeExact,
	TypeShortAnswer:    gradeShortAnswer,
}

// Grade reports whether a submitted answer is correct for the question type.
// Unknown types are never correct.
func Grade(questionType, submitted, correct string) bool {
	g, ok := graders[questionType]
	if !ok {
		return false
	}
	return g(submitted, correct)
}

// Option keys and true/false answers must match exactly, case included.
func gradeExact(submitted, correct string) bool {
	return submitted != "" && submitted == correct
}

// gradeShortAnswer accepts any non-empty submission whose case-folded text
// contains the case-folded correct answer. Deliberately lenient: a
// superstring like "concatenate" passes for correct answer "cat". Kept as-is
// rather than tightened so recorded scores stay comparable.
func gradeShortAnswer(submitted, correct string) bool {
	if submitted == "" {
		return false
	}
	return strings.Contains(strings.ToLower(submitted), strings.ToLower(correct))
}
