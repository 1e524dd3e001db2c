package services

import (
	"github.com/prepworks/scoring-service/internal/events"
	"github.com/prepworks/scoring-service/internal/repositories"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/prepworks/scoring-service/internal/validator"
)

// ServiceManager bundles the service layer for handler wiring.
type ServiceManager interface {
	Submission() SubmissionService
	Question() QuestionService
	History() HistoryService
	Export() ExportService
}

type serviceManager struct {
	submission SubmissionService
	question   QuestionService
	history    HistoryService
	export     ExportService
}

func NewServiceManager(
	questions repositories.QuestionRepository,
	users repositories.UserRepository,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *validator.Validator,
) ServiceManager {
	history := NewHistoryService(users, logger)
	return &serviceManager{
		submission: NewSubmissionService(questions, users, publisher, logger, validator),
		question:   NewQuestionService(questions, logger),
		history:    history,
		export:     NewExportService(history, logger),
	}
}

func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Question() QuestionService     { return m.question }
func (m *serviceManager) History() HistoryService       { return m.history }
func (m *serviceManager) Export() ExportService         { return m.export }
