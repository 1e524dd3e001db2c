package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	apperrors "github.com/prepworks/scoring-service/internal/errors"
	"github.com/prepworks/scoring-service/internal/events"
	"github.com/prepworks/scoring-service/internal/grading"
	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/repositories"
	"github.com/prepworks/scoring-service/internal/scoring"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/prepworks/scoring-service/internal/validator"
)

// RetryPolicy bounds the persistence loop. Fixed delay, no backoff, no
// jitter; tests inject a zero-delay policy.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	SaveTimeout time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Delay:       2 * time.Second,
	SaveTimeout: 15 * time.Second,
}

type SubmitTestRequest struct {
	TestType    string                    `json:"test_type" validate:"required,test_type"`
	PracticeSet string                    `json:"practice_set" validate:"required"`
	SectionType string                    `json:"section_type" validate:"omitempty,section_type"`
	Answers     []models.AnswerSubmission `json:"answers" validate:"required,min=1"`
	TimeSpent   int                       `json:"time_spent" validate:"min=0"` // seconds
}

type SubmitTestResponse struct {
	Results         models.AttemptResults   `json:"results"`
	DetailedResults []models.DetailedResult `json:"detailed_results"`
	SHSATScores     *scoring.SHSATScores    `json:"shsat_scores,omitempty"`
	SATScores       *scoring.SATScores      `json:"sat_scores,omitempty"`
	PSATScores      *scoring.PSATScores     `json:"psat_scores,omitempty"`
}

type SubmissionService interface {
	Submit(ctx context.Context, req *SubmitTestRequest, userID string) (*SubmitTestResponse, error)
}

type submissionService struct {
	questions repositories.QuestionRepository
	users     repositories.UserRepository
	grader    *grading.Grader
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
	retry     RetryPolicy
}

func NewSubmissionService(
	questions repositories.QuestionRepository,
	users repositories.UserRepository,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *validator.Validator,
) SubmissionService {
	return NewSubmissionServiceWithPolicy(questions, users, publisher, logger, validator, DefaultRetryPolicy, grading.NewGrader())
}

// NewSubmissionServiceWithPolicy exists so tests can inject zero-delay
// retries and a tiny grading budget.
func NewSubmissionServiceWithPolicy(
	questions repositories.QuestionRepository,
	users repositories.UserRepository,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *validator.Validator,
	retry RetryPolicy,
	grader *grading.Grader,
) SubmissionService {
	return &submissionService{
		questions: questions,
		users:     users,
		grader:    grader,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		retry:     retry,
	}
}

// Submit runs the full pipeline: load the question set, grade, convert to
// scaled scores, persist the history entry with bounded retries, publish an
// event. A persistence failure after grading is surfaced as SaveFailedError,
// never masked as success and never reported as a generic internal error.
func (s *submissionService) Submit(ctx context.Context, req *SubmitTestRequest, userID string) (*SubmitTestResponse, error) {
	s.logger.Info("Submitting test attempt",
		"user_id", userID,
		"test_type", req.TestType,
		"practice_set", req.PracticeSet,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return nil, ve
		}
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	testType := models.TestType(req.TestType)
	section := scoring.SectionType(req.SectionType)

	set, err := s.questions.GetQuestionSet(ctx, testType, req.PracticeSet, req.SectionType)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionSetNotFound
		}
		return nil, fmt.Errorf("failed to load question set: %w", err)
	}

	graded, err := s.grader.Grade(set, req.Answers, section)
	if err != nil {
		return nil, err
	}

	response := &SubmitTestResponse{
		Results: models.AttemptResults{
			CorrectCount:   graded.CorrectCount,
			TotalQuestions: graded.TotalQuestions,
			Percentage:     percentage(graded.CorrectCount, graded.TotalQuestions),
			TimeSpent:      req.TimeSpent,
			CategoryScores: graded.CategoryScores,
		},
		DetailedResults: graded.Detailed,
	}

	scaledTotal, err := s.applyScaledScores(response, testType, section, graded)
	if err != nil {
		return nil, err
	}

	entry, err := buildHistoryEntry(userID, req, set, response)
	if err != nil {
		return nil, err
	}

	if err := s.persistAttempt(ctx, userID, entry, testType, scaledTotal); err != nil {
		s.publishSaveFailed(ctx, userID, req, err)
		return nil, err
	}

	s.publishGraded(ctx, userID, entry, scaledTotal)

	s.logger.Info("Test attempt scored and saved",
		"user_id", userID,
		"entry_id", entry.ID,
		"correct", graded.CorrectCount,
		"total", graded.TotalQuestions)

	return response, nil
}

// applyScaledScores runs the family-specific converter over the raw section
// tallies. State tests have no conversion table and keep percentage-only
// results. Returns the composite scaled score for families that track it in
// rolling stats (SHSAT, SAT).
func (s *submissionService) applyScaledScores(resp *SubmitTestResponse, testType models.TestType, section scoring.SectionType, graded *grading.Result) (*int, error) {
	verbalRaw := graded.SectionCorrect(grading.SectionVerbal)
	mathRaw := graded.SectionCorrect(grading.SectionMath)

	switch testType {
	case models.TestSHSAT:
		scores, err := scoring.ScoreSHSAT(verbalRaw, mathRaw, section)
		if err != nil {
			return nil, err
		}
		resp.SHSATScores = scores
		return &scores.Total, nil

	case models.TestSAT:
		scores, err := scoring.ScoreSAT(verbalRaw, mathRaw, section)
		if err != nil {
			return nil, err
		}
		resp.SATScores = scores
		if scores.Total != nil {
			return &scores.Total.Score, nil
		}
		return nil, nil

	case models.TestPSAT:
		scores, err := scoring.ScorePSAT(verbalRaw, mathRaw, section)
		if err != nil {
			return nil, err
		}
		resp.PSATScores = scores
		return nil, nil

	default:
		return nil, nil
	}
}

// buildHistoryEntry assembles the immutable history record. "statetest" is
// stored under the historical "state" name.
func buildHistoryEntry(userID string, req *SubmitTestRequest, set *models.QuestionSet, resp *SubmitTestResponse) (*models.TestHistoryEntry, error) {
	entry := &models.TestHistoryEntry{
		ID:              strconv.FormatInt(time.Now().UnixNano(), 10),
		TestType:        normalizeTestType(req.TestType),
		PracticeSet:     req.PracticeSet,
		TestName:        set.TestName,
		CompletedAt:     time.Now(),
		Results:         resp.Results,
		DetailedResults: resp.DetailedResults,
	}

	var scaled interface{}
	switch {
	case resp.SHSATScores != nil:
		scaled = resp.SHSATScores
	case resp.SATScores != nil:
		scaled = resp.SATScores
	case resp.PSATScores != nil:
		scaled = resp.PSATScores
	}
	if scaled != nil {
		raw, err := json.Marshal(scaled)
		if err != nil {
			return nil, fmt.Errorf("failed to encode scaled scores: %w", err)
		}
		entry.ScaledScores = raw
	}

	return entry, nil
}

func normalizeTestType(testType string) string {
	if testType == string(models.TestStateTest) {
		return "state"
	}
	return testType
}

// persistAttempt retries the save with a fixed delay. Every attempt re-reads
// the user record so a failed attempt never leaves a partial append behind.
func (s *submissionService) persistAttempt(ctx context.Context, userID string, entry *models.TestHistoryEntry, testType models.TestType, scaledTotal *int) error {
	var lastErr error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		err := s.attemptSave(ctx, userID, entry, testType, scaledTotal)
		if err == nil {
			return nil
		}
		lastErr = err

		s.logger.LogError(err, "Test history save failed",
			"user_id", userID,
			"attempt", attempt,
			"max_attempts", s.retry.MaxAttempts)

		if attempt < s.retry.MaxAttempts {
			select {
			case <-time.After(s.retry.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return &SaveFailedError{
		UserID:   userID,
		BackupID: fmt.Sprintf("%s_%d", userID, time.Now().UnixMilli()),
		Attempts: s.retry.MaxAttempts,
		Err:      lastErr,
	}
}

// attemptSave is one bounded save attempt: fresh read, append, stats update,
// single-record write. The deadline makes a hung store indistinguishable from
// a thrown one for retry purposes.
func (s *submissionService) attemptSave(ctx context.Context, userID string, entry *models.TestHistoryEntry, testType models.TestType, scaledTotal *int) error {
	saveCtx, cancel := context.WithTimeout(ctx, s.retry.SaveTimeout)
	defer cancel()

	user, err := s.users.GetByID(saveCtx, userID)
	if err != nil {
		return err
	}

	history, err := user.History()
	if err != nil {
		return err
	}
	if err := user.SetHistory(append(history, *entry)); err != nil {
		return err
	}

	if err := updateFamilyStats(user, testType, entry, scaledTotal); err != nil {
		return err
	}
	if err := updateCategoryPerformance(user, entry.Results.CategoryScores); err != nil {
		return err
	}

	return s.users.Save(saveCtx, user)
}

func updateFamilyStats(user *models.User, testType models.TestType, entry *models.TestHistoryEntry, scaledTotal *int) error {
	stats, err := user.FamilyStats()
	if err != nil {
		return err
	}

	family := entry.TestType
	fs := stats[family]

	completed := float64(fs.TestsCompleted)
	fs.AverageScore = math.Round((fs.AverageScore*completed+entry.Results.Percentage)/(completed+1)*10) / 10
	fs.TestsCompleted++
	if entry.Results.Percentage > fs.BestScore {
		fs.BestScore = entry.Results.Percentage
	}
	fs.TimeSpent += entry.Results.TimeSpent
	now := entry.CompletedAt
	fs.LastAttempt = &now

	if scaledTotal != nil && (testType == models.TestSHSAT || testType == models.TestSAT) {
		total := *scaledTotal
		fs.LatestScaledScore = &total
		if fs.BestScaledScore == nil || total > *fs.BestScaledScore {
			fs.BestScaledScore = &total
		}
	}

	stats[family] = fs
	return user.SetFamilyStats(stats)
}

// updateCategoryPerformance accumulates into the existing counters; it never
// replaces them.
func updateCategoryPerformance(user *models.User, scores map[string]models.CategoryScore) error {
	perf, err := user.CategoryPerformanceMap()
	if err != nil {
		return err
	}

	for category, score := range scores {
		cp := perf[category]
		cp.TotalQuestions += score.Total
		cp.CorrectAnswers += score.Correct
		if cp.TotalQuestions > 0 {
			cp.AverageScore = math.Round(float64(cp.CorrectAnswers)/float64(cp.TotalQuestions)*1000) / 10
		}
		cp.MasteryLevel = masteryLevel(cp.AverageScore)
		perf[category] = cp
	}

	return user.SetCategoryPerformanceMap(perf)
}

func masteryLevel(averageScore float64) string {
	switch {
	case averageScore >= 90:
		return "advanced"
	case averageScore >= 75:
		return "proficient"
	case averageScore >= 50:
		return "developing"
	default:
		return "beginner"
	}
}

func (s *submissionService) publishGraded(ctx context.Context, userID string, entry *models.TestHistoryEntry, scaledTotal *int) {
	if s.publisher == nil {
		return
	}
	event := events.NewAttemptGradedEvent(events.AttemptGradedEvent{
		UserID:         userID,
		EntryID:        entry.ID,
		TestType:       entry.TestType,
		PracticeSet:    entry.PracticeSet,
		CorrectCount:   entry.Results.CorrectCount,
		TotalQuestions: entry.Results.TotalQuestions,
		Percentage:     entry.Results.Percentage,
		ScaledTotal:    scaledTotal,
		TimeSpent:      entry.Results.TimeSpent,
		CompletedAt:    entry.CompletedAt,
	})
	if err := s.publisher.PublishScoreEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish graded event", "user_id", userID)
	}
}

func (s *submissionService) publishSaveFailed(ctx context.Context, userID string, req *SubmitTestRequest, saveErr error) {
	if s.publisher == nil {
		return
	}
	var sfe *SaveFailedError
	if !errors.As(saveErr, &sfe) {
		return
	}
	event := events.NewAttemptSaveFailedEvent(events.AttemptSaveFailedEvent{
		UserID:      userID,
		TestType:    normalizeTestType(req.TestType),
		PracticeSet: req.PracticeSet,
		BackupID:    sfe.BackupID,
		Attempts:    sfe.Attempts,
		FailedAt:    time.Now(),
	})
	if err := s.publisher.PublishScoreEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish save-failed event", "user_id", userID)
	}
}

func percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
