package dto

import (
	"time"

	"exam-bank/internal/domain"
)

// ChoiceOptionDTO represents a single selectable option.
type ChoiceOptionDTO struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// AnswerKeyRequest carries the kind-specific answer key fields. Only
// the fields for the question's kind are expected to be set.
type AnswerKeyRequest struct {
	CorrectOption string   `json:"correct_option,omitempty"`
	IsTrue        string   `json:"is_true,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	SampleAnswer  string   `json:"sample_answer,omitempty"`
	Result        *float64 `json:"result,omitempty"`
	ExpectedCode  string   `json:"expected_code,omitempty"`
}

// ToDomain builds the answer key for the given kind.
func (r AnswerKeyRequest) ToDomain(kind domain.Kind) (domain.AnswerKey, error) {
	switch kind {
	case domain.KindChoice:
		return domain.ChoiceKey{Correct: r.CorrectOption}, nil
	case domain.KindTrueFalse:
		return domain.TrueFalseKey{Value: r.IsTrue}, nil
	case domain.KindShortAnswer:
		return domain.ShortAnswerKey{Keywords: r.Keywords, SampleAnswer: r.SampleAnswer}, nil
	case domain.KindNumeric:
		if r.Result == nil {
			return nil, domain.ValidationErrors{domain.NewMissingFieldError("answer_key.result")}
		}
		return domain.NumericKey{Expected: *r.Result}, nil
	case domain.KindProgramming:
		return domain.ProgrammingKey{ExpectedCode: r.ExpectedCode}, nil
	default:
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("kind", string(kind))}
	}
}

// QuestionRequest is the create/update payload for a question.
type QuestionRequest struct {
	Kind        string           `json:"kind"`
	Prompt      string           `json:"prompt"`
	Options     []ChoiceOptionDTO `json:"options,omitempty"`
	AnswerKey   AnswerKeyRequest `json:"answer_key"`
	Explanation string           `json:"explanation,omitempty"`
	Difficulty  string           `json:"difficulty,omitempty"`
	Points      int              `json:"points,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	OrderIndex  int              `json:"order_index,omitempty"`
}

// ToDomain builds an unvalidated domain question for the given bank.
func (r QuestionRequest) ToDomain(bankID string) (*domain.Question, error) {
	kind, err := domain.ParseKind(r.Kind)
	if err != nil {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("kind", r.Kind)}
	}
	key, err := r.AnswerKey.ToDomain(kind)
	if err != nil {
		return nil, err
	}

	question := domain.NewQuestion(bankID, kind, r.Prompt, key)
	question.Explanation = r.Explanation
	question.Tags = r.Tags
	question.OrderIndex = r.OrderIndex
	if r.Difficulty != "" {
		difficulty, err := domain.ParseDifficulty(r.Difficulty)
		if err != nil {
			return nil, domain.ValidationErrors{domain.NewInvalidFormatError("difficulty", r.Difficulty)}
		}
		question.Difficulty = difficulty
	}
	if r.Points != 0 {
		question.Points = r.Points
	}
	if len(r.Options) > 0 {
		options := make([]domain.ChoiceOption, len(r.Options))
		for i, o := range r.Options {
			options[i] = domain.ChoiceOption{Key: o.Key, Text: o.Text}
		}
		question.Options = options
	}
	return question, nil
}

// AnswerKeyResponse mirrors AnswerKeyRequest for admin reads.
type AnswerKeyResponse = AnswerKeyRequest

// QuestionResponse represents a question in the API response. The
// answer key and explanation are only present when the caller may see
// them.
type QuestionResponse struct {
	ID          string            `json:"id"`
	BankID      string            `json:"bank_id,omitempty"`
	Kind        string            `json:"kind"`
	Prompt      string            `json:"prompt"`
	Options     []ChoiceOptionDTO `json:"options,omitempty"`
	AnswerKey   *AnswerKeyResponse `json:"answer_key,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
	Difficulty  string            `json:"difficulty"`
	Points      int               `json:"points"`
	Tags        []string          `json:"tags,omitempty"`
	OrderIndex  int               `json:"order_index"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at,omitempty"`
}

// NewQuestionResponse maps a domain question to its API shape. When
// the question carries no answer key (it was stripped for a subject
// view), the response omits it too.
func NewQuestionResponse(q *domain.Question) QuestionResponse {
	resp := QuestionResponse{
		ID:          q.ID,
		BankID:      q.BankID,
		Kind:        string(q.Kind),
		Prompt:      q.Prompt,
		Explanation: q.Explanation,
		Difficulty:  string(q.Difficulty),
		Points:      q.Points,
		Tags:        q.Tags,
		OrderIndex:  q.OrderIndex,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	if len(q.Options) > 0 {
		resp.Options = make([]ChoiceOptionDTO, len(q.Options))
		for i, o := range q.Options {
			resp.Options[i] = ChoiceOptionDTO{Key: o.Key, Text: o.Text}
		}
	}
	if q.Key != nil {
		key := &AnswerKeyResponse{}
		switch k := q.Key.(type) {
		case domain.ChoiceKey:
			key.CorrectOption = k.Correct
		case domain.TrueFalseKey:
			key.IsTrue = k.Value
		case domain.ShortAnswerKey:
			key.Keywords = k.Keywords
			key.SampleAnswer = k.SampleAnswer
		case domain.NumericKey:
			expected := k.Expected
			key.Result = &expected
		case domain.ProgrammingKey:
			key.ExpectedCode = k.ExpectedCode
		}
		resp.AnswerKey = key
	}
	return resp
}

// AnswerInput is a submitted answer. Choice answers use selected;
// every other kind uses value.
type AnswerInput struct {
	Kind     string   `json:"kind"`
	Selected []string `json:"selected,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// ToDomain converts the submitted answer to its domain value.
func (a AnswerInput) ToDomain() (domain.AnswerValue, error) {
	kind, err := domain.ParseKind(a.Kind)
	if err != nil {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("answer.kind", a.Kind)}
	}
	switch kind {
	case domain.KindChoice:
		return domain.SelectedOptions(a.Selected), nil
	case domain.KindTrueFalse:
		return domain.TrueFalseAnswer{Raw: a.Value}, nil
	case domain.KindShortAnswer:
		return domain.FreeText(a.Value), nil
	case domain.KindNumeric:
		return domain.Number{Raw: a.Value}, nil
	case domain.KindProgramming:
		return domain.Code(a.Value), nil
	default:
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("answer.kind", a.Kind)}
	}
}

// CheckAnswerRequest grades one answer against a stored question.
type CheckAnswerRequest struct {
	Answer AnswerInput `json:"answer"`
}

// CheckAnswerResponse is the grading outcome for a single question.
type CheckAnswerResponse struct {
	QuestionID   string `json:"question_id"`
	IsCorrect    bool   `json:"is_correct"`
	ScoreAwarded int    `json:"score_awarded"`
	MatchedRule  string `json:"matched_rule"`
	Explanation  string `json:"explanation,omitempty"`
}
