package repositories

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeQuestionSet(t *testing.T, dir, testType, name, content string) {
	t.Helper()
	path := filepath.Join(dir, testType)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, name+".json"), []byte(content), 0o644))
}

func repoLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetQuestionSet_LoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeQuestionSet(t, dir, "shsat", "diagnostic-1", `{
		"test_name": "SHSAT Diagnostic 1",
		"questions": [
			{"id": "q1", "prompt": "p", "answer_type": "single_choice", "correct_index": 1, "category": "reading", "position": 1}
		]
	}`)

	repo := NewFileQuestionRepository(dir, nil, repoLogger())
	set, err := repo.GetQuestionSet(context.Background(), models.TestSHSAT, "diagnostic-1", "")
	require.NoError(t, err)

	assert.Equal(t, models.TestSHSAT, set.TestType)
	assert.Equal(t, "diagnostic-1", set.PracticeSet)
	assert.Equal(t, "SHSAT Diagnostic 1", set.TestName)
	require.Len(t, set.Questions, 1)
	assert.Equal(t, models.SingleChoice, set.Questions[0].AnswerType)
}

func TestGetQuestionSet_SectionVariantPath(t *testing.T) {
	dir := t.TempDir()
	writeQuestionSet(t, dir, "shsat", "diagnostic-1_math", `{"test_name": "Math Only", "questions": []}`)

	repo := NewFileQuestionRepository(dir, nil, repoLogger())
	set, err := repo.GetQuestionSet(context.Background(), models.TestSHSAT, "diagnostic-1", "math")
	require.NoError(t, err)

	assert.Equal(t, "Math Only", set.TestName)
	assert.Equal(t, "math", set.SectionType)
}

func TestGetQuestionSet_FullSectionUsesBasePath(t *testing.T) {
	dir := t.TempDir()
	writeQuestionSet(t, dir, "sat", "practice-2", `{"test_name": "SAT Practice 2", "questions": []}`)

	repo := NewFileQuestionRepository(dir, nil, repoLogger())
	set, err := repo.GetQuestionSet(context.Background(), models.TestSAT, "practice-2", "full")
	require.NoError(t, err)

	assert.Equal(t, "SAT Practice 2", set.TestName)
}

func TestGetQuestionSet_NotFound(t *testing.T) {
	repo := NewFileQuestionRepository(t.TempDir(), nil, repoLogger())
	_, err := repo.GetQuestionSet(context.Background(), models.TestSHSAT, "missing", "")

	assert.ErrorIs(t, err, ErrQuestionSetNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestGetQuestionSet_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeQuestionSet(t, dir, "shsat", "broken", `{not json`)

	repo := NewFileQuestionRepository(dir, nil, repoLogger())
	_, err := repo.GetQuestionSet(context.Background(), models.TestSHSAT, "broken", "")

	require.Error(t, err)
	assert.False(t, IsNotFoundError(err))
}
