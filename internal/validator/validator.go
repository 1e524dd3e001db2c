package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/scoring"
)

// Validator wraps the struct validator with the domain's custom tags.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate validates struct tags.
func (v *Validator) Validate(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("test_type", validateTestType)
	validate.RegisterValidation("section_type", validateSectionType)
	validate.RegisterValidation("answer_type", validateAnswerType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateTestType(fl validator.FieldLevel) bool {
	validTypes := []models.TestType{
		models.TestSHSAT,
		models.TestSAT,
		models.TestPSAT,
		models.TestStateTest,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateSectionType(fl validator.FieldLevel) bool {
	validSections := []scoring.SectionType{
		scoring.SectionFull,
		scoring.SectionELA,
		scoring.SectionMath,
		scoring.SectionReadingWriting,
	}

	value := fl.Field().String()
	for _, validSection := range validSections {
		if string(validSection) == value {
			return true
		}
	}
	return false
}

func validateAnswerType(fl validator.FieldLevel) bool {
	validTypes := []models.AnswerType{
		models.SingleChoice,
		models.MultipleAnswers,
		models.FillInTheBlank,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}
