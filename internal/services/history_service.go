package services

import (
	"context"
	"fmt"

	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/repositories"
	"github.com/prepworks/scoring-service/internal/utils"
)

// HistoryService reads and administers persisted test history. Entries are
// immutable after creation; delete-by-id is the only mutation.
type HistoryService interface {
	GetHistory(ctx context.Context, userID string) ([]models.TestHistoryEntry, error)
	GetStats(ctx context.Context, userID string) (map[string]models.FamilyStats, error)
	GetCategoryPerformance(ctx context.Context, userID string) (map[string]models.CategoryPerformance, error)
	DeleteEntry(ctx context.Context, userID, entryID string) error
}

type historyService struct {
	users  repositories.UserRepository
	logger utils.Logger
}

func NewHistoryService(users repositories.UserRepository, logger utils.Logger) HistoryService {
	return &historyService{
		users:  users,
		logger: logger,
	}
}

func (s *historyService) GetHistory(ctx context.Context, userID string) ([]models.TestHistoryEntry, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := user.History()
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *historyService) GetStats(ctx context.Context, userID string) (map[string]models.FamilyStats, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.FamilyStats()
}

func (s *historyService) GetCategoryPerformance(ctx context.Context, userID string) (map[string]models.CategoryPerformance, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.CategoryPerformanceMap()
}

// DeleteEntry removes one history entry by id. Rolling stats are deliberately
// left untouched; they describe every attempt ever completed, not the
// currently visible history.
func (s *historyService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	s.logger.Info("Deleting test history entry", "user_id", userID, "entry_id", entryID)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	history, err := user.History()
	if err != nil {
		return err
	}

	kept := make([]models.TestHistoryEntry, 0, len(history))
	found := false
	for _, entry := range history {
		if entry.ID == entryID {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return ErrHistoryEntryNotFound
	}

	if err := user.SetHistory(kept); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	s.logger.Info("Test history entry deleted", "user_id", userID, "entry_id", entryID)
	return nil
}

func (s *historyService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
