package repositories

import (
	"context"
	"errors"

	"github.com/prepworks/scoring-service/internal/models"
)

var (
	ErrQuestionSetNotFound = errors.New("question set not found")
	ErrUserNotFound        = errors.New("user not found")
)

// IsNotFoundError reports whether err is a repository "not found" condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrQuestionSetNotFound) || errors.Is(err, ErrUserNotFound)
}

// QuestionRepository is the read-only question store. Sets are immutable once
// loaded.
type QuestionRepository interface {
	GetQuestionSet(ctx context.Context, testType models.TestType, practiceSet, sectionType string) (*models.QuestionSet, error)
}

// UserRepository is the user store. Save persists the whole aggregate record
// in one write; there is no partial-update path for test history.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}
