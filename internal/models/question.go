package models

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	Essay          QuestionType = "ESSAY"
	ExternalLink   QuestionType = "EXTERNAL_LINK"
)

const (
	AnswerTrue  = "True"
	AnswerFalse = "False"
)

var DefaultMultipleChoiceOptions = []string{"Option A", "Option B"}

const DefaultQuestionPrompt = "New Question"

func (t QuestionType) IsValid() bool {
	switch t {
	case MultipleChoice, TrueFalse, Essay, ExternalLink:
		return true
	}
	return false
}

// Question is a single exam item. Options and CorrectAnswer are only meaningful
// for auto-gradable types; ExternalURL only for EXTERNAL_LINK.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	Points        int          `json:"points"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	ExternalURL   string       `json:"externalUrl,omitempty"`
}

// IsAutoGradable reports whether the question is scored by exact answer match.
func (q *Question) IsAutoGradable() bool {
	return q.Type == MultipleChoice || q.Type == TrueFalse
}

// HasOption reports whether value is one of the question's options.
func (q *Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// WithoutAnswerKey returns a copy safe to show to a student.
func (q Question) WithoutAnswerKey() Question {
	q.CorrectAnswer = ""
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

// Normalize drops the fields the question type does not carry.
func (q *Question) Normalize() {
	if !q.IsAutoGradable() {
		q.Options = nil
		q.CorrectAnswer = ""
	}
	if q.Type != ExternalLink {
		q.ExternalURL = ""
	}
}

// NewQuestion builds a question of the given type with its editor defaults:
// two placeholder options (first one correct) for multiple choice, no correct
// answer for true/false, and no options for essay and external-link items.
func NewQuestion(id string, qType QuestionType) Question {
	q := Question{
		ID:     id,
		Type:   qType,
		Prompt: DefaultQuestionPrompt,
		Points: 1,
	}
	if qType == MultipleChoice {
		q.Options = append([]string(nil), DefaultMultipleChoiceOptions...)
		q.CorrectAnswer = DefaultMultipleChoiceOptions[0]
	}
	return q
}
