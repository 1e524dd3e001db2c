package models

import (
	"bytes"
	"encoding/json"
)

type AnswerType string

const (
	SingleChoice    AnswerType = "single_choice"
	MultipleAnswers AnswerType = "multiple_answers"
	FillInTheBlank  AnswerType = "fill_in_the_blank"
)

type TestType string

const (
	TestSHSAT     TestType = "shsat"
	TestSAT       TestType = "sat"
	TestPSAT      TestType = "psat"
	TestStateTest TestType = "statetest"
)

// Question is an immutable record supplied by the question store. The scoring
// core only ever reads it.
type Question struct {
	ID      string  `json:"id"`
	Prompt  string  `json:"prompt"`
	Passage *string `json:"passage,omitempty"`

	// Options is empty for fill-in-the-blank questions.
	Options    []string   `json:"options,omitempty"`
	AnswerType AnswerType `json:"answer_type"`

	// Exactly one of these carries the answer key, depending on AnswerType.
	CorrectIndex   int    `json:"correct_index,omitempty"`
	CorrectIndices []int  `json:"correct_indices,omitempty"`
	CorrectText    string `json:"correct_text,omitempty"`

	Category string `json:"category"`
	// Position is the 1-based ordinal of the question within its test.
	Position      int    `json:"position"`
	Difficulty    string `json:"difficulty,omitempty"`
	EstimatedTime int    `json:"estimated_time,omitempty"` // seconds
}

// QuestionSet is one loadable practice test. Read-only once loaded, safe to
// share across concurrent submissions.
type QuestionSet struct {
	TestType    TestType   `json:"test_type"`
	PracticeSet string     `json:"practice_set"`
	SectionType string     `json:"section_type,omitempty"`
	TestName    string     `json:"test_name"`
	Questions   []Question `json:"questions"`
}

// AnswerSubmission is one client-submitted answer. SelectedAnswer is kept as
// raw JSON because its shape depends on the question's answer type: a number
// index, an array of indices, or a string.
type AnswerSubmission struct {
	QuestionID     string          `json:"question_id"`
	SelectedAnswer json.RawMessage `json:"selected_answer"`
}

var jsonNull = []byte("null")

// HasAnswer reports whether the submission carries a real answer. Missing,
// null and empty-string payloads all count as skipped, so an unanswered
// question is distinguishable from a wrong one.
func (a AnswerSubmission) HasAnswer() bool {
	raw := bytes.TrimSpace(a.SelectedAnswer)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return false
	}
	if bytes.Equal(raw, []byte(`""`)) {
		return false
	}
	return true
}
