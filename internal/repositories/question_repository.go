package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prepworks/scoring-service/internal/cache"
	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/utils"
)

const questionSetTTL = time.Hour

// fileQuestionRepository serves question sets from fixed JSON banks on disk,
// with a cache in front. Layout: <dir>/<test_type>/<practice_set>.json, with
// a "_<section_type>" suffix for section-only variants.
type fileQuestionRepository struct {
	dir    string
	cache  cache.CacheService
	logger utils.Logger
}

func NewFileQuestionRepository(dir string, cache cache.CacheService, logger utils.Logger) QuestionRepository {
	return &fileQuestionRepository{
		dir:    dir,
		cache:  cache,
		logger: logger,
	}
}

func (r *fileQuestionRepository) GetQuestionSet(ctx context.Context, testType models.TestType, practiceSet, sectionType string) (*models.QuestionSet, error) {
	key := questionSetKey(testType, practiceSet, sectionType)

	if r.cache != nil {
		var cached models.QuestionSet
		err := r.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if err != cache.ErrCacheMiss {
			r.logger.Warn("question set cache read failed", "key", key, "error", err)
		}
	}

	set, err := r.loadFromDisk(testType, practiceSet, sectionType)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, set, questionSetTTL); err != nil {
			r.logger.Warn("question set cache write failed", "key", key, "error", err)
		}
	}

	return set, nil
}

func (r *fileQuestionRepository) loadFromDisk(testType models.TestType, practiceSet, sectionType string) (*models.QuestionSet, error) {
	name := practiceSet
	if sectionType != "" && sectionType != "full" {
		name = practiceSet + "_" + sectionType
	}
	path := filepath.Join(r.dir, string(testType), name+".json")

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrQuestionSetNotFound
		}
		return nil, fmt.Errorf("failed to read question set %s: %w", path, err)
	}

	var set models.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to decode question set %s: %w", path, err)
	}

	set.TestType = testType
	set.PracticeSet = practiceSet
	if set.SectionType == "" {
		set.SectionType = sectionType
	}

	return &set, nil
}

func questionSetKey(testType models.TestType, practiceSet, sectionType string) string {
	if sectionType == "" {
		sectionType = "full"
	}
	return fmt.Sprintf("questionset:%s:%s:%s", testType, practiceSet, sectionType)
}
