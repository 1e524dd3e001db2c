package services

import (
	"context"
	"fmt"

	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/repositories"
	"github.com/prepworks/scoring-service/internal/utils"
)

// QuestionService serves question sets to test-taking clients. Answer keys
// never leave the service; grading happens server side only.
type QuestionService interface {
	GetQuestionSet(ctx context.Context, testType models.TestType, practiceSet, sectionType string) (*models.QuestionSet, error)
}

type questionService struct {
	questions repositories.QuestionRepository
	logger    utils.Logger
}

func NewQuestionService(questions repositories.QuestionRepository, logger utils.Logger) QuestionService {
	return &questionService{
		questions: questions,
		logger:    logger,
	}
}

func (s *questionService) GetQuestionSet(ctx context.Context, testType models.TestType, practiceSet, sectionType string) (*models.QuestionSet, error) {
	set, err := s.questions.GetQuestionSet(ctx, testType, practiceSet, sectionType)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionSetNotFound
		}
		return nil, fmt.Errorf("failed to load question set: %w", err)
	}
	return stripAnswerKeys(set), nil
}

// stripAnswerKeys copies the set with every answer key zeroed. The cached
// original must stay intact, so the question slice is duplicated.
func stripAnswerKeys(set *models.QuestionSet) *models.QuestionSet {
	sanitized := *set
	sanitized.Questions = make([]models.Question, len(set.Questions))
	for i, q := range set.Questions {
		q.CorrectIndex = 0
		q.CorrectIndices = nil
		q.CorrectText = ""
		sanitized.Questions[i] = q
	}
	return &sanitized
}
