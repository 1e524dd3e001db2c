package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerSubmission_HasAnswer(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{"missing", "", false},
		{"json null", "null", false},
		{"empty string", `""`, false},
		{"whitespace padded null", "  null  ", false},
		{"zero index", "0", true},
		{"index", "3", true},
		{"index array", "[0,2]", true},
		{"empty array", "[]", true},
		{"text", `"answer"`, true},
		{"whitespace only text", `" "`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := AnswerSubmission{QuestionID: "q1", SelectedAnswer: json.RawMessage(tt.payload)}
			assert.Equal(t, tt.want, sub.HasAnswer())
		})
	}
}
