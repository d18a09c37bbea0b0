package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind discriminates a question's grading semantics.
type Kind string

const (
	KindChoice      Kind = "choice"
	KindTrueFalse   Kind = "true_false"
	KindShortAnswer Kind = "short_answer"
	KindNumeric     Kind = "numeric"
	KindProgramming Kind = "programming"
)

// Kinds lists every question kind, in display order.
var Kinds = []Kind{KindChoice, KindTrueFalse, KindShortAnswer, KindNumeric, KindProgramming}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", NewInvalidInputError(fmt.Sprintf("unknown question kind: %q", s))
}

// Difficulty grades how hard a question is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty level.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts a string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", NewInvalidInputError(fmt.Sprintf("unknown difficulty: %q", s))
}

// Question validation bounds.
const (
	MinPoints        = 1
	MaxPoints        = 100
	MaxTags          = 10
	MaxTagLength     = 20
	MinChoiceOptions = 2
	MaxChoiceOptions = 10
	MaxPromptLength  = 500
)

// ChoiceOption is one selectable option of a choice question.
type ChoiceOption struct {
	Key  string
	Text string
}

// AnswerKey is the kind-specific grading key of a question. Exactly one
// concrete key type exists per Kind, so grading can match exhaustively.
type AnswerKey interface {
	Kind() Kind
}

// ChoiceKey holds the correct option keys as a single string ("A", "BD").
// A key longer than one character marks the question as multi-select; this
// length encoding is a documented invariant of the grading semantics, not
// an accident.
type ChoiceKey struct {
	Correct string
}

func (ChoiceKey) Kind() Kind { return KindChoice }

// TrueFalseKey stores the expected value as the raw token it was authored
// with ("true", "1", "是", ...). Both sides are coerced through the truthy
// vocabulary at grading time, because input sources disagree on
// representation.
type TrueFalseKey struct {
	Value string
}

func (TrueFalseKey) Kind() Kind { return KindTrueFalse }

// ShortAnswerKey grades by keyword inclusion. Keywords are optional; when
// absent they are derived from the sample answer at grading time.
type ShortAnswerKey struct {
	Keywords     []string
	SampleAnswer string
}

func (ShortAnswerKey) Kind() Kind { return KindShortAnswer }

// NumericKey holds the expected numeric result.
type NumericKey struct {
	Expected float64
}

func (NumericKey) Kind() Kind { return KindNumeric }

// ProgrammingKey holds the expected code snippet. Grading is an exact
// string comparison; there is no execution subsystem.
type ProgrammingKey struct {
	ExpectedCode string
}

func (ProgrammingKey) Kind() Kind { return KindProgramming }

// Question is an immutable-once-published graded item. Options is the
// choice-kind content payload and must be empty for every other kind; Key
// must never be exposed to a test subject.
type Question struct {
	ID          string
	BankID      string
	Kind        Kind
	Prompt      string
	Options     []ChoiceOption
	Key         AnswerKey
	Explanation string
	Difficulty  Difficulty
	Points      int
	Tags        []string
	OrderIndex  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewQuestion creates a question with defaulted difficulty and points.
func NewQuestion(bankID string, kind Kind, prompt string, key AnswerKey) *Question {
	now := time.Now()
	return &Question{
		BankID:     bankID,
		Kind:       kind,
		Prompt:     prompt,
		Key:        key,
		Difficulty: DifficultyMedium,
		Points:     1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks that the question is internally coherent: prompt and key
// present, points/tags within bounds, and content/key shapes matching the
// kind. Edits must re-run this before persisting.
func (q *Question) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(q.Prompt) == "" {
		errs = append(errs, NewMissingFieldError("prompt"))
	} else if utf8.RuneCountInString(q.Prompt) > MaxPromptLength {
		errs = append(errs, NewOutOfRangeError("prompt", utf8.RuneCountInString(q.Prompt), 1, MaxPromptLength))
	}

	validKind := false
	for _, k := range Kinds {
		if q.Kind == k {
			validKind = true
		}
	}
	if !validKind {
		errs = append(errs, NewInvalidFormatError("kind", string(q.Kind)))
		return errs
	}

	validDifficulty := false
	for _, d := range Difficulties {
		if q.Difficulty == d {
			validDifficulty = true
		}
	}
	if !validDifficulty {
		errs = append(errs, NewInvalidFormatError("difficulty", string(q.Difficulty)))
	}

	if q.Points < MinPoints || q.Points > MaxPoints {
		errs = append(errs, NewOutOfRangeError("points", q.Points, MinPoints, MaxPoints))
	}

	if len(q.Tags) > MaxTags {
		errs = append(errs, NewOutOfRangeError("tags", len(q.Tags), 0, MaxTags))
	}
	for _, tag := range q.Tags {
		if tag == "" || utf8.RuneCountInString(tag) > MaxTagLength {
			errs = append(errs, NewInvalidFormatError("tags", tag))
		}
	}

	errs = append(errs, q.validatePayload()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validatePayload enforces kind/content/answer-key coherence.
func (q *Question) validatePayload() ValidationErrors {
	var errs ValidationErrors

	if q.Key == nil {
		errs = append(errs, NewMissingFieldError("answer_key"))
		return errs
	}
	if q.Key.Kind() != q.Kind {
		errs = append(errs, NewValidationError("answer_key",
			fmt.Sprintf("key shape %s does not match question kind %s", q.Key.Kind(), q.Kind)))
		return errs
	}

	if q.Kind != KindChoice && len(q.Options) > 0 {
		errs = append(errs, NewValidationError("options", "only choice questions carry options"))
	}

	switch key := q.Key.(type) {
	case ChoiceKey:
		if len(q.Options) < MinChoiceOptions || len(q.Options) > MaxChoiceOptions {
			errs = append(errs, NewOutOfRangeError("options", len(q.Options), MinChoiceOptions, MaxChoiceOptions))
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.Key == "" || utf8.RuneCountInString(opt.Key) != 1 {
				errs = append(errs, NewInvalidFormatError("options", opt.Key))
				continue
			}
			if seen[opt.Key] {
				errs = append(errs, NewValidationError("options", fmt.Sprintf("duplicate option key %q", opt.Key)))
			}
			seen[opt.Key] = true
		}
		if key.Correct == "" {
			errs = append(errs, NewMissingFieldError("answer_key.correct_option"))
		}
		for _, r := range key.Correct {
			if !seen[string(r)] {
				errs = append(errs, NewValidationError("answer_key.correct_option",
					fmt.Sprintf("references unknown option key %q", string(r))))
			}
		}
	case TrueFalseKey:
		if strings.TrimSpace(key.Value) == "" {
			errs = append(errs, NewMissingFieldError("answer_key.is_true"))
		}
	case ShortAnswerKey:
		if len(key.Keywords) == 0 && strings.TrimSpace(key.SampleAnswer) == "" {
			errs = append(errs, NewValidationError("answer_key",
				"short answer questions need keywords or a sample answer"))
		}
		for _, kw := range key.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, NewInvalidFormatError("answer_key.keywords", kw))
			}
		}
	case NumericKey:
		// Any float is a valid expected result.
	case ProgrammingKey:
		if key.ExpectedCode == "" {
			errs = append(errs, NewMissingFieldError("answer_key.expected_code"))
		}
	}

	return errs
}

// Clone returns a deep copy of the question, answer key included. Attempts
// freeze clones so later edits or deletions of the source never reach a
// running session.
func (q *Question) Clone() *Question {
	cp := *q
	if q.Options != nil {
		cp.Options = make([]ChoiceOption, len(q.Options))
		copy(cp.Options, q.Options)
	}
	if q.Tags != nil {
		cp.Tags = make([]string, len(q.Tags))
		copy(cp.Tags, q.Tags)
	}
	if key, ok := q.Key.(ShortAnswerKey); ok {
		kws := make([]string, len(key.Keywords))
		copy(kws, key.Keywords)
		cp.Key = ShortAnswerKey{Keywords: kws, SampleAnswer: key.SampleAnswer}
	}
	return &cp
}

// WithoutKey returns a copy safe to expose to a test subject: the answer
// key and the explanation are stripped.
func (q *Question) WithoutKey() *Question {
	cp := q.Clone()
	cp.Key = nil
	cp.Explanation = ""
	return cp
}
