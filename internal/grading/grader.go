package grading

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/scoring"
)

// ErrGradingTimeout is raised when a grading pass exceeds its wall-clock
// budget. Safety valve against pathologically large submissions, not a
// correctness mechanism.
var ErrGradingTimeout = errors.New("grading exceeded processing budget")

const (
	defaultBudget     = 95 * time.Second
	budgetCheckStride = 20
)

// Grader grades submitted answers against an immutable question set. It holds
// no per-call state; one Grader is safe for concurrent submissions.
type Grader struct {
	budget time.Duration
}

func NewGrader() *Grader {
	return &Grader{budget: defaultBudget}
}

// NewGraderWithBudget exists so tests can force a timeout without waiting.
func NewGraderWithBudget(budget time.Duration) *Grader {
	return &Grader{budget: budget}
}

// SectionTally is the raw correct/total count for one section.
type SectionTally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Result aggregates one grading pass. TotalQuestions counts submitted
// answers, not matched questions, so a submission carrying unknown question
// ids under-reports CorrectCount relative to TotalQuestions. That asymmetry
// is load-bearing for history compatibility; keep it.
type Result struct {
	CorrectCount   int
	TotalQuestions int
	CategoryScores map[string]models.CategoryScore
	Sections       map[Section]*SectionTally
	Detailed       []models.DetailedResult
}

// SectionCorrect returns the raw correct count for a section, zero when the
// section never accumulated.
func (r *Result) SectionCorrect(section Section) int {
	if tally, ok := r.Sections[section]; ok {
		return tally.Correct
	}
	return 0
}

// Grade grades every submitted answer in submission order. Answers whose
// question id is not in the set are skipped silently and contribute to no
// tally. Aggregation is commutative, so reordering the input changes only
// the order of Detailed, never the counts.
func (g *Grader) Grade(set *models.QuestionSet, answers []models.AnswerSubmission, explicit scoring.SectionType) (*Result, error) {
	byID := make(map[string]*models.Question, len(set.Questions))
	for i := range set.Questions {
		byID[set.Questions[i].ID] = &set.Questions[i]
	}

	chain := classifiersFor(set.TestType, explicit)

	result := &Result{
		TotalQuestions: len(answers),
		CategoryScores: make(map[string]models.CategoryScore),
		Sections:       make(map[Section]*SectionTally),
		Detailed:       make([]models.DetailedResult, 0, len(answers)),
	}

	start := time.Now()
	graded := 0

	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			continue
		}

		isCorrect := gradeAnswer(question, answer)
		hasAnswer := answer.HasAnswer()

		if isCorrect {
			result.CorrectCount++
		}

		category := result.CategoryScores[question.Category]
		category.Total++
		if isCorrect {
			category.Correct++
		}
		result.CategoryScores[question.Category] = category

		if section, matched := classify(chain, *question); matched {
			tally := result.Sections[section]
			if tally == nil {
				tally = &SectionTally{}
				result.Sections[section] = tally
			}
			tally.Total++
			if isCorrect {
				tally.Correct++
			}
		}

		result.Detailed = append(result.Detailed, models.DetailedResult{
			QuestionID:     question.ID,
			QuestionNumber: question.Position,
			IsCorrect:      isCorrect,
			UserAnswer:     answer.SelectedAnswer,
			Category:       question.Category,
			HasAnswer:      hasAnswer,
		})

		graded++
		if graded%budgetCheckStride == 0 && time.Since(start) > g.budget {
			return nil, ErrGradingTimeout
		}
	}

	return result, nil
}

// gradeAnswer applies the per-type correctness rule. Malformed payloads grade
// as incorrect rather than erroring; a bad answer is still an answer.
func gradeAnswer(q *models.Question, answer models.AnswerSubmission) bool {
	if !answer.HasAnswer() {
		return false
	}

	switch q.AnswerType {
	case models.SingleChoice:
		var selected int
		if err := json.Unmarshal(answer.SelectedAnswer, &selected); err != nil {
			return false
		}
		return selected == q.CorrectIndex

	case models.MultipleAnswers:
		var selected []int
		if err := json.Unmarshal(answer.SelectedAnswer, &selected); err != nil {
			return false
		}
		return equalIndexSets(selected, q.CorrectIndices)

	case models.FillInTheBlank:
		var selected string
		if err := json.Unmarshal(answer.SelectedAnswer, &selected); err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(q.CorrectText))
	}

	return false
}

// equalIndexSets compares after sorting copies ascending: correct iff same
// length and element-wise equal, so a strict subset or superset is wrong.
func equalIndexSets(selected, correct []int) bool {
	if len(selected) != len(correct) {
		return false
	}
	a := append([]int(nil), selected...)
	b := append([]int(nil), correct...)
	sort.Ints(a)
	sort.Ints(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
