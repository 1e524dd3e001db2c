package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the aggregate record owned by the user store. Test history, rolling
// stats and category performance live in JSONB columns so that one row save
// commits an appended history entry atomically, the way the original document
// store did.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	FullName string `json:"full_name" gorm:"not null;size:100"`
	Email    string `json:"email" gorm:"uniqueIndex;not null;size:255"`

	TestHistory         datatypes.JSON `json:"test_history" gorm:"type:jsonb"`         // []TestHistoryEntry
	Stats               datatypes.JSON `json:"stats" gorm:"type:jsonb"`                // map[string]FamilyStats
	CategoryPerformance datatypes.JSON `json:"category_performance" gorm:"type:jsonb"` // map[string]CategoryPerformance

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// TestHistoryEntry is created exactly once per submission and appended to the
// user's history. It is never mutated afterwards; the only later operation is
// an administrative delete by id.
type TestHistoryEntry struct {
	ID          string `json:"id"`
	TestType    string `json:"test_type"`
	PracticeSet string `json:"practice_set"`
	TestName    string `json:"test_name"`

	CompletedAt time.Time      `json:"completed_at"`
	Results     AttemptResults `json:"results"`

	// ScaledScores holds the family-specific scaled result, absent for
	// families without a conversion table (state tests).
	ScaledScores    json.RawMessage  `json:"scaled_scores,omitempty"`
	DetailedResults []DetailedResult `json:"detailed_results"`
}

type AttemptResults struct {
	CorrectCount   int                      `json:"correct_count"`
	TotalQuestions int                      `json:"total_questions"`
	Percentage     float64                  `json:"percentage"`
	TimeSpent      int                      `json:"time_spent"` // seconds
	CategoryScores map[string]CategoryScore `json:"category_scores"`
}

type CategoryScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type DetailedResult struct {
	QuestionID     string          `json:"question_id"`
	QuestionNumber int             `json:"question_number"`
	IsCorrect      bool            `json:"is_correct"`
	UserAnswer     json.RawMessage `json:"user_answer"`
	Category       string          `json:"category"`
	HasAnswer      bool            `json:"has_answer"`
}

// FamilyStats are the rolling per-test-family aggregates updated on every
// persisted attempt.
type FamilyStats struct {
	TestsCompleted int        `json:"tests_completed"`
	AverageScore   float64    `json:"average_score"` // mean percentage
	BestScore      float64    `json:"best_score"`    // best percentage
	TimeSpent      int        `json:"time_spent"`    // cumulative seconds
	LastAttempt    *time.Time `json:"last_attempt,omitempty"`

	// Scaled-score tracking, only maintained for families with conversion
	// tables (shsat, sat).
	LatestScaledScore *int `json:"latest_scaled_score,omitempty"`
	BestScaledScore   *int `json:"best_scaled_score,omitempty"`
}

// CategoryPerformance accumulates across submissions; updates add to the
// counters, they never overwrite them.
type CategoryPerformance struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	AverageScore   float64 `json:"average_score"`
	MasteryLevel   string  `json:"mastery_level"`
}

// ===== JSONB ACCESSORS =====

func (u *User) History() ([]TestHistoryEntry, error) {
	if len(u.TestHistory) == 0 {
		return nil, nil
	}
	var entries []TestHistoryEntry
	if err := json.Unmarshal(u.TestHistory, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode test history: %w", err)
	}
	return entries, nil
}

func (u *User) SetHistory(entries []TestHistoryEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode test history: %w", err)
	}
	u.TestHistory = datatypes.JSON(raw)
	return nil
}

func (u *User) FamilyStats() (map[string]FamilyStats, error) {
	stats := make(map[string]FamilyStats)
	if len(u.Stats) == 0 {
		return stats, nil
	}
	if err := json.Unmarshal(u.Stats, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

func (u *User) SetFamilyStats(stats map[string]FamilyStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	u.Stats = datatypes.JSON(raw)
	return nil
}

func (u *User) CategoryPerformanceMap() (map[string]CategoryPerformance, error) {
	perf := make(map[string]CategoryPerformance)
	if len(u.CategoryPerformance) == 0 {
		return perf, nil
	}
	if err := json.Unmarshal(u.CategoryPerformance, &perf); err != nil {
		return nil, fmt.Errorf("failed to decode category performance: %w", err)
	}
	return perf, nil
}

func (u *User) SetCategoryPerformanceMap(perf map[string]CategoryPerformance) error {
	raw, err := json.Marshal(perf)
	if err != nil {
		return fmt.Errorf("failed to encode category performance: %w", err)
	}
	u.CategoryPerformance = datatypes.JSON(raw)
	return nil
}
