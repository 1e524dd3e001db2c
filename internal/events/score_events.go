package events

import (
	"strconv"
	"time"
)

// EventType represents the event kinds this service publishes.
type EventType string

const (
	EventAttemptGraded     EventType = "attempt.graded"
	EventAttemptSaveFailed EventType = "attempt.save_failed"
)

const eventSource = "scoring-service"

// ScoreEvent is the base envelope for all published events.
type ScoreEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// AttemptGradedEvent is published after a submission has been scored and
// persisted.
type AttemptGradedEvent struct {
	UserID         string    `json:"user_id"`
	EntryID        string    `json:"entry_id"`
	TestType       string    `json:"test_type"`
	PracticeSet    string    `json:"practice_set"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	ScaledTotal    *int      `json:"scaled_total,omitempty"`
	TimeSpent      int       `json:"time_spent"`
	CompletedAt    time.Time `json:"completed_at"`
}

// AttemptSaveFailedEvent is published when persistence retries are exhausted;
// the backup id lets support recover the attempt manually.
type AttemptSaveFailedEvent struct {
	UserID      string    `json:"user_id"`
	TestType    string    `json:"test_type"`
	PracticeSet string    `json:"practice_set"`
	BackupID    string    `json:"backup_id"`
	Attempts    int       `json:"attempts"`
	FailedAt    time.Time `json:"failed_at"`
}

// Event factory functions

func NewAttemptGradedEvent(data AttemptGradedEvent) *ScoreEvent {
	return &ScoreEvent{
		ID:        generateEventID(),
		Type:      EventAttemptGraded,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}

func NewAttemptSaveFailedEvent(data AttemptSaveFailedEvent) *ScoreEvent {
	return &ScoreEvent{
		ID:        generateEventID(),
		Type:      EventAttemptSaveFailed,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}

func generateEventID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
