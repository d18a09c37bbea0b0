package domain

// AnswerValue is a normalized representation of a submitted response,
// independent of the wire format it arrived in. Callers build it from
// whatever payload they accept; the grading engine never parses raw wire
// data. Raw tokens are preserved as submitted so audit trails survive.
type AnswerValue interface {
	Kind() Kind
}

// SelectedOptions is a choice-question selection. Order and duplicates are
// irrelevant; grading normalizes it to a set.
type SelectedOptions []string

func (SelectedOptions) Kind() Kind { return KindChoice }

// TrueFalseAnswer carries the submitted boolean token verbatim
// ("true", "0", "对", ...). Coercion happens only at grading time.
type TrueFalseAnswer struct {
	Raw string
}

func (TrueFalseAnswer) Kind() Kind { return KindTrueFalse }

// FreeText is a short-answer submission.
type FreeText string

func (FreeText) Kind() Kind { return KindShortAnswer }

// Number carries a numeric submission as submitted, which may be free text
// like "about 119.95". The grader extracts the first signed decimal.
type Number struct {
	Raw string
}

func (Number) Kind() Kind { return KindNumeric }

// Code is a programming-question submission.
type Code string

func (Code) Kind() Kind { return KindProgramming }
