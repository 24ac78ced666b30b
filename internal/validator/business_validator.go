package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gizaedu/exam-service/internal/models"
)

// BusinessValidator checks domain rules that struct tags cannot express
type BusinessValidator struct {
	validate *validator.Validate
}

func newBusinessValidator(validate *validator.Validate) *BusinessValidator {
	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()
	return bv
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidateExam checks a complete exam definition before it is stored
func (bv *BusinessValidator) ValidateExam(exam *models.Exam) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(exam.Title) == "" {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "is required",
			Rule:    "required",
		})
	}

	if exam.DurationMinutes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "durationMinutes",
			Message: "must be greater than zero",
			Value:   exam.DurationMinutes,
			Rule:    "min",
		})
	}

	if len(exam.Questions) == 0 {
		errors = append(errors, ValidationError{
			Field:   "questions",
			Message: "must contain at least one question",
			Rule:    "min",
		})
	}

	seen := make(map[string]bool, len(exam.Questions))
	for i := range exam.Questions {
		q := &exam.Questions[i]
		prefix := fmt.Sprintf("questions[%d]", i)

		if q.ID == "" || seen[q.ID] {
			errors = append(errors, ValidationError{
				Field:   prefix + ".id",
				Message: "must be unique within the exam",
				Value:   q.ID,
				Rule:    "unique",
			})
		}
		seen[q.ID] = true

		errors = append(errors, bv.validateQuestion(q, prefix)...)
	}

	return errors
}

// ValidateQuestion checks the type dependent fields of one question
func (bv *BusinessValidator) ValidateQuestion(q *models.Question) ValidationErrors {
	return bv.validateQuestion(q, "question")
}

func (bv *BusinessValidator) validateQuestion(q *models.Question, prefix string) ValidationErrors {
	var errors ValidationErrors

	if !q.Type.IsValid() {
		return ValidationErrors{{
			Field:   prefix + ".type",
			Message: "must be one of MULTIPLE_CHOICE, TRUE_FALSE, ESSAY, EXTERNAL_LINK",
			Value:   q.Type,
			Rule:    "question_type",
		}}
	}

	if q.Points < 1 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".points",
			Message: "must be at least 1",
			Value:   q.Points,
			Rule:    "min",
		})
	}

	switch q.Type {
	case models.MultipleChoice:
		if len(q.Options) < 2 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".options",
				Message: "multiple choice questions need at least two options",
				Value:   len(q.Options),
				Rule:    "min",
			})
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("%s.options[%d]", prefix, j),
					Message: "must not be blank",
					Rule:    "not_blank",
				})
			}
		}
		if !q.HasOption(q.CorrectAnswer) {
			errors = append(errors, ValidationError{
				Field:   prefix + ".correctAnswer",
				Message: "must be one of the options",
				Value:   q.CorrectAnswer,
				Rule:    "oneof",
			})
		}

	case models.TrueFalse:
		if q.CorrectAnswer != models.AnswerTrue && q.CorrectAnswer != models.AnswerFalse {
			errors = append(errors, ValidationError{
				Field:   prefix + ".correctAnswer",
				Message: "must be True or False",
				Value:   q.CorrectAnswer,
				Rule:    "oneof",
			})
		}

	case models.ExternalLink:
		if err := bv.validate.Var(q.ExternalURL, "required,url"); err != nil {
			errors = append(errors, ValidationError{
				Field:   prefix + ".externalUrl",
				Message: "must be a valid URL",
				Value:   q.ExternalURL,
				Rule:    "url",
			})
		}
	}

	return errors
}

// ValidateFolderName trims name and rejects blank names
func (bv *BusinessValidator) ValidateFolderName(name string) (string, ValidationErrors) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ValidationErrors{{
			Field:   "name",
			Message: "is required",
			Rule:    "required",
		}}
	}
	return trimmed, nil
}

// ValidateBackup checks that an import document carries the required collections
func (bv *BusinessValidator) ValidateBackup(doc *models.BackupDocument) ValidationErrors {
	var errors ValidationErrors
	if doc.Users == nil {
		errors = append(errors, ValidationError{Field: "users", Message: "is required", Rule: "required"})
	}
	if doc.Exams == nil {
		errors = append(errors, ValidationError{Field: "exams", Message: "is required", Rule: "required"})
	}
	if doc.Folders == nil {
		errors = append(errors, ValidationError{Field: "folders", Message: "is required", Rule: "required"})
	}
	return errors
}
