package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prepworks/scoring-service/internal/events"
	"github.com/prepworks/scoring-service/internal/grading"
	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/repositories"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/prepworks/scoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetQuestionSet(ctx context.Context, testType models.TestType, practiceSet, sectionType string) (*models.QuestionSet, error) {
	args := m.Called(ctx, testType, practiceSet, sectionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionSet), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func discardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// zeroDelayPolicy keeps retry semantics but removes the waits.
var zeroDelayPolicy = RetryPolicy{
	MaxAttempts: 3,
	Delay:       0,
	SaveTimeout: time.Second,
}

func newTestService(questions *MockQuestionRepository, users *MockUserRepository, publisher events.EventPublisher) SubmissionService {
	return NewSubmissionServiceWithPolicy(
		questions, users, publisher,
		testLogger(), validator.New(),
		zeroDelayPolicy, grading.NewGrader(),
	)
}

func shsatQuestionSet() *models.QuestionSet {
	return &models.QuestionSet{
		TestType:    models.TestSHSAT,
		PracticeSet: "diagnostic-1",
		TestName:    "SHSAT Diagnostic 1",
		Questions: []models.Question{
			{
				ID:           "e1",
				AnswerType:   models.SingleChoice,
				CorrectIndex: 1,
				Category:     "reading",
				Position:     1,
			},
			{
				ID:           "m1",
				AnswerType:   models.SingleChoice,
				CorrectIndex: 2,
				Category:     "math",
				Position:     58,
			},
		},
	}
}

func shsatRequest() *SubmitTestRequest {
	return &SubmitTestRequest{
		TestType:    "shsat",
		PracticeSet: "diagnostic-1",
		TimeSpent:   1800,
		Answers: []models.AnswerSubmission{
			{QuestionID: "e1", SelectedAnswer: json.RawMessage("1")},
			{QuestionID: "m1", SelectedAnswer: json.RawMessage("0")},
		},
	}
}

func TestSubmit_SuccessfulSHSATAttempt(t *testing.T) {
	questions := &MockQuestionRepository{}
	users := &MockUserRepository{}
	publisher := events.NewMockEventPublisher(discardSlog())

	questions.On("GetQuestionSet", mock.Anything, models.TestSHSAT, "diagnostic-1", "").
		Return(shsatQuestionSet(), nil)

	user := &models.User{ID: "user-1", FullName: "Test Student", Email: "student@example.com"}
	users.On("GetByID", mock.Anything, "user-1").Return(user, nil)

	var saved *models.User
	users.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.User)
	}).Return(nil)

	service := newTestService(questions, users, publisher)
	resp, err := service.Submit(context.Background(), shsatRequest(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Results.CorrectCount)
	assert.Equal(t, 2, resp.Results.TotalQuestions)
	assert.Equal(t, 50.0, resp.Results.Percentage)
	require.NotNil(t, resp.SHSATScores)
	require.NotNil(t, resp.SHSATScores.ELA)
	require.NotNil(t, resp.SHSATScores.Math)
	assert.Equal(t, 8, resp.SHSATScores.ELA.ScaledScore)  // raw 1
	assert.Equal(t, 0, resp.SHSATScores.Math.ScaledScore) // raw 0
	assert.Equal(t, 8, resp.SHSATScores.Total)

	// History entry was appended to the saved user.
	require.NotNil(t, saved)
	history, err := saved.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "shsat", history[0].TestType)
	assert.Equal(t, "SHSAT Diagnostic 1", history[0].TestName)
	assert.NotEmpty(t, history[0].ScaledScores)

	// Rolling stats reflect the attempt.
	stats, err := saved.FamilyStats()
	require.NoError(t, err)
	fs := stats["shsat"]
	assert.Equal(t, 1, fs.TestsCompleted)
	assert.Equal(t, 50.0, fs.AverageScore)
	assert.Equal(t, 50.0, fs.BestScore)
	assert.Equal(t, 1800, fs.TimeSpent)
	require.NotNil(t, fs.LatestScaledScore)
	assert.Equal(t, 8, *fs.LatestScaledScore)

	// Category performance accumulated.
	perf, err := saved.CategoryPerformanceMap()
	require.NoError(t, err)
	assert.Equal(t, 1, perf["reading"].CorrectAnswers)
	assert.Equal(t, "advanced", perf["reading"].MasteryLevel)
	assert.Equal(t, 0, perf["math"].CorrectAnswers)
	assert.Equal(t, "beginner", perf["math"].MasteryLevel)

	// A graded event went out.
	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptGraded, published[0].Type)
}

func TestSubmit_RollingStatsAccumulate(t *testing.T) {
	questions := &MockQuestionRepository{}
	users := &MockUserRepository{}

	questions.On("GetQuestionSet", mock.Anything, models.TestSHSAT, "diagnostic-1", "").
		Return(shsatQuestionSet(), nil)

	user := &models.User{ID: "user-1"}
	prior := map[string]models.FamilyStats{
		"shsat": {TestsCompleted: 1, AverageScore: 80, BestScore: 80, TimeSpent: 1000},
	}
	require.NoError(t, user.SetFamilyStats(prior))

	users.On("GetByID", mock.Anything, "user-1").Return(user, nil)
	var saved *models.User
	users.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.User)
	}).Return(nil)

	service := newTestService(questions, users, events.NewMockEventPublisher(discardSlog()))
	_, err := service.Submit(context.Background(), shsatRequest(), "user-1")
	require.NoError(t, err)

	stats, err := saved.FamilyStats()
	require.NoError(t, err)
	fs := stats["shsat"]
	assert.Equal(t, 2, fs.TestsCompleted)
	assert.Equal(t, 65.0, fs.AverageScore) // (80 + 50) / 2
	assert.Equal(t, 80.0, fs.BestScore)    // prior best stands
	assert.Equal(t, 2800, fs.TimeSpent)
}

func TestSubmit_SaveRetriesExhausted(t *testing.T) {
	questions := &MockQuestionRepository{}
	users := &MockUserRepository{}
	publisher := events.NewMockEventPublisher(discardSlog())

	questions.On("GetQuestionSet", mock.Anything, models.TestSHSAT, "diagnostic-1", "").
		Return(shsatQuestionSet(), nil)

	storeErr := errors.New("connection reset")
	// Each attempt re-reads the record fresh, so hand out a clean user per call.
	users.On("GetByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil).Once()
	users.On("GetByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil).Once()
	users.On("GetByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil).Once()

	var attemptedHistoryLens []int
	users.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		history, herr := args.Get(1).(*models.User).History()
		require.NoError(t, herr)
		attemptedHistoryLens = append(attemptedHistoryLens, len(history))
	}).Return(storeErr)

	service := newTestService(questions, users, publisher)
	resp, err := service.Submit(context.Background(), shsatRequest(), "user-1")

	require.Error(t, err)
	assert.Nil(t, resp)

	var saveFailed *SaveFailedError
	require.ErrorAs(t, err, &saveFailed)
	assert.Equal(t, "user-1", saveFailed.UserID)
	assert.Equal(t, 3, saveFailed.Attempts)
	assert.True(t, strings.HasPrefix(saveFailed.BackupID, "user-1_"))
	assert.ErrorIs(t, err, storeErr)

	// Each retry re-read the user and attempted exactly one append; no retry
	// ever built on a previous failed attempt's state.
	users.AssertNumberOfCalls(t, "GetByID", 3)
	users.AssertNumberOfCalls(t, "Save", 3)
	assert.Equal(t, []int{1, 1, 1}, attemptedHistoryLens)

	// A save-failed event went out instead of a graded one.
	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptSaveFailed, published[0].Type)
}

func TestSubmit_SaveSucceedsOnSecondAttempt(t *testing.T) {
	questions := &MockQuestionRepository{}
	users := &MockUserRepository{}

	questions.On("GetQuestionSet", mock.Anything, models.TestSHSAT, "diagnostic-1", "").
		Return(shsatQuestionSet(), nil)

	users.On("GetByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil).Once()
	users.On("GetByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil).Once()
	users.On("Save", mock.Anything, mock.Anything).Return(errors.New("transient")).Once()
	users.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	service := newTestService(questions, users, events.NewMockEventPublisher(discardSlog()))
	resp, err := service.Submit(context.Background(), shsatRequest(), "user-1")

	require.NoError(t, err)
	require.NotNil(t, resp)
	users.AssertNumberOfCalls(t, "Save", 2)
}

func TestSubmit_StateTestNormalizedAndUnscaled(t *testing.T) {
	questions := &MockQuestionRepository{}
	users := &MockUserRepository{}

	set := &models.QuestionSet{
		TestType:    models.TestStateTest,
		PracticeSet: "ela-2026",
		TestName:    "State ELA Practice",
		Questions: []models.Question{
			{ID: "q1", AnswerType: models.SingleChoice, CorrectIndex: 0, Category: "reading", Position: 1},
		},
	}
	questions.On("GetQuestionSet", mock.Anything, models.TestStateTest, "ela-2026", "").
		Return(set, nil)

	users.On("GetByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil)
	var saved *models.User
	users.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.User)
	}).Return(nil)

	req := &SubmitTestRequest{
		TestType:    "statetest",
		PracticeSet: "ela-2026",
		Answers: []models.AnswerSubmission{
			{QuestionID: "q1", SelectedAnswer: json.RawMessage("0")},
		},
	}

	service := newTestService(questions, users, events.NewMockEventPublisher(discardSlog()))
	resp, err := service.Submit(context.Background(), req, "user-1")
	require.NoError(t, err)

	assert.Nil(t, resp.SHSATScores)
	assert.Nil(t, resp.SATScores)
	assert.Nil(t, resp.PSATScores)

	history, err := saved.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	// Stored under the historical family name.
	assert.Equal(t, "state", history[0].TestType)
	assert.Empty(t, history[0].ScaledScores)

	stats, err := saved.FamilyStats()
	require.NoError(t, err)
	fs, ok := stats["state"]
	require.True(t, ok)
	assert.Nil(t, fs.LatestScaledScore)
	assert.Nil(t, fs.BestScaledScore)
}

func TestSubmit_QuestionSetNotFound(t *testing.T) {
	questions := &MockQuestionRepository{}
	users := &MockUserRepository{}

	questions.On("GetQuestionSet", mock.Anything, models.TestSHSAT, "diagnostic-1", "").
		Return(nil, repositories.ErrQuestionSetNotFound)

	service := newTestService(questions, users, events.NewMockEventPublisher(discardSlog()))
	_, err := service.Submit(context.Background(), shsatRequest(), "user-1")

	assert.ErrorIs(t, err, ErrQuestionSetNotFound)
	users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmit_ValidationFailure(t *testing.T) {
	service := newTestService(&MockQuestionRepository{}, &MockUserRepository{}, events.NewMockEventPublisher(discardSlog()))

	tests := []struct {
		name string
		req  *SubmitTestRequest
	}{
		{
			name: "unknown test type",
			req: &SubmitTestRequest{
				TestType:    "gre",
				PracticeSet: "p1",
				Answers:     []models.AnswerSubmission{{QuestionID: "q1"}},
			},
		},
		{
			name: "missing answers",
			req: &SubmitTestRequest{
				TestType:    "shsat",
				PracticeSet: "p1",
			},
		},
		{
			name: "invalid section type",
			req: &SubmitTestRequest{
				TestType:    "sat",
				PracticeSet: "p1",
				SectionType: "verbal",
				Answers:     []models.AnswerSubmission{{QuestionID: "q1"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Submit(context.Background(), tt.req, "user-1")
			require.Error(t, err)

			// Rejections carry the typed field errors so the HTTP layer can
			// map them to a 400 instead of a generic 500.
			var ve ValidationErrors
			assert.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestSubmit_SATFullIncludesComposite(t *testing.T) {
	questions := &MockQuestionRepository{}
	users := &MockUserRepository{}

	set := &models.QuestionSet{
		TestType:    models.TestSAT,
		PracticeSet: "practice-3",
		TestName:    "SAT Practice 3",
		Questions: []models.Question{
			{ID: "rw1", AnswerType: models.SingleChoice, CorrectIndex: 0, Category: "reading", Position: 1},
			{ID: "m1", AnswerType: models.SingleChoice, CorrectIndex: 0, Category: "algebra", Position: 55},
		},
	}
	questions.On("GetQuestionSet", mock.Anything, models.TestSAT, "practice-3", "").
		Return(set, nil)

	users.On("GetByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil)
	users.On("Save", mock.Anything, mock.Anything).Return(nil)

	req := &SubmitTestRequest{
		TestType:    "sat",
		PracticeSet: "practice-3",
		Answers: []models.AnswerSubmission{
			{QuestionID: "rw1", SelectedAnswer: json.RawMessage("0")},
			{QuestionID: "m1", SelectedAnswer: json.RawMessage("0")},
		},
	}

	service := newTestService(questions, users, events.NewMockEventPublisher(discardSlog()))
	resp, err := service.Submit(context.Background(), req, "user-1")
	require.NoError(t, err)

	require.NotNil(t, resp.SATScores)
	require.NotNil(t, resp.SATScores.Total)
	// Raw 1 in each section.
	assert.Equal(t, 210, resp.SATScores.ReadingWriting.ScaledScore)
	assert.Equal(t, 210, resp.SATScores.Math.ScaledScore)
	assert.Equal(t, 420, resp.SATScores.Total.Score)
	assert.NotEmpty(t, resp.SATScores.Total.PerformanceLevel)
}
