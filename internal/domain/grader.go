package domain

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Matched rule names, reported in Outcome for diagnostics and tests.
const (
	RuleUnanswered         = "unanswered"
	RuleAnswerKindMismatch = "answer_kind_mismatch"
	RuleChoiceSingle       = "choice_single"
	RuleChoiceMulti        = "choice_multi"
	RuleTrueFalse          = "true_false"
	RuleKeywordMatch       = "keyword_match"
	RuleBagOfWords         = "bag_of_words"
	RuleShortAnswerMiss    = "short_answer_no_match"
	RuleNumericTolerance   = "numeric_tolerance"
	RuleNumericUnparsable  = "numeric_unparsable"
	RuleProgrammingExact   = "programming_exact"
)

// Outcome is the result of grading one question. ScoreAwarded is either 0
// or the question's full point value; there is no partial credit.
type Outcome struct {
	IsCorrect    bool
	ScoreAwarded int
	MatchedRule  string
}

// truthyTokens is the fixed vocabulary coerced to boolean true. Manual
// entry, imported documents and the UI disagree on how they spell "true",
// so both the stored key and the submission go through this table.
var truthyTokens = map[string]bool{
	"true": true, "1": true, "yes": true,
	"是": true, "对": true, "正确": true,
}

// wordPattern splits text into runs of CJK ideographs or Latin letters,
// mirroring how imported answer text is tokenized upstream.
var wordPattern = regexp.MustCompile(`[\x{4e00}-\x{9fff}]+|[a-zA-Z]+`)

// numberPattern extracts the first signed decimal from free text.
var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// Grade evaluates a submitted answer against a question's answer key. It is
// total and side-effect-free: any well-formed question grades without
// error, a nil answer grades as unanswered, and a submission of the wrong
// shape grades as incorrect. A question whose key shape escapes validation
// entirely is a programmer error and panics rather than silently grading
// incorrect.
func Grade(q *Question, answer AnswerValue) Outcome {
	if answer == nil {
		return Outcome{MatchedRule: RuleUnanswered}
	}

	var outcome Outcome
	switch key := q.Key.(type) {
	case ChoiceKey:
		selected, ok := answer.(SelectedOptions)
		if !ok {
			return Outcome{MatchedRule: RuleAnswerKindMismatch}
		}
		outcome = gradeChoice(key, selected)
	case TrueFalseKey:
		submitted, ok := answer.(TrueFalseAnswer)
		if !ok {
			return Outcome{MatchedRule: RuleAnswerKindMismatch}
		}
		outcome = Outcome{
			IsCorrect:   isTruthy(key.Value) == isTruthy(submitted.Raw),
			MatchedRule: RuleTrueFalse,
		}
	case ShortAnswerKey:
		text, ok := answer.(FreeText)
		if !ok {
			return Outcome{MatchedRule: RuleAnswerKindMismatch}
		}
		outcome = gradeShortAnswer(key, string(text))
	case NumericKey:
		num, ok := answer.(Number)
		if !ok {
			return Outcome{MatchedRule: RuleAnswerKindMismatch}
		}
		outcome = gradeNumeric(key, num.Raw)
	case ProgrammingKey:
		code, ok := answer.(Code)
		if !ok {
			return Outcome{MatchedRule: RuleAnswerKindMismatch}
		}
		// Placeholder policy: exact snippet comparison, no execution.
		outcome = Outcome{
			IsCorrect:   string(code) == key.ExpectedCode,
			MatchedRule: RuleProgrammingExact,
		}
	default:
		panic(fmt.Sprintf("grader: unhandled answer key type %T for question %s", q.Key, q.ID))
	}

	if outcome.IsCorrect {
		outcome.ScoreAwarded = q.Points
	}
	return outcome
}

// gradeChoice compares selections as sets. The key string's length encodes
// single- vs multi-select; either way normalization reduces the comparison
// to equality of sorted, deduplicated key strings, so grading is invariant
// under reordering of the submitted keys.
func gradeChoice(key ChoiceKey, selected SelectedOptions) Outcome {
	rule := RuleChoiceSingle
	if utf8.RuneCountInString(key.Correct) > 1 {
		rule = RuleChoiceMulti
	}
	return Outcome{
		IsCorrect:   normalizeOptionKeys(strings.Join(selected, "")) == normalizeOptionKeys(key.Correct),
		MatchedRule: rule,
	}
}

// normalizeOptionKeys sorts and deduplicates the characters of an option
// key string.
func normalizeOptionKeys(s string) string {
	seen := make(map[rune]bool)
	var keys []rune
	for _, r := range s {
		if !seen[r] {
			seen[r] = true
			keys = append(keys, r)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return string(keys)
}

func isTruthy(s string) bool {
	return truthyTokens[strings.ToLower(strings.TrimSpace(s))]
}

// gradeShortAnswer is two-tier: explicit (or sample-derived) keywords
// first, then a bag-of-words overlap heuristic. Authored keyword lists are
// optional, so free text must still be gradable without one.
func gradeShortAnswer(key ShortAnswerKey, submitted string) Outcome {
	text := strings.ToLower(submitted)

	keywords := key.Keywords
	if len(keywords) == 0 && key.SampleAnswer != "" {
		// Derive keywords from the sample answer, discarding
		// single-character tokens.
		for _, token := range wordPattern.FindAllString(key.SampleAnswer, -1) {
			if utf8.RuneCountInString(token) > 1 {
				keywords = append(keywords, token)
			}
		}
	}

	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return Outcome{IsCorrect: true, MatchedRule: RuleKeywordMatch}
		}
	}

	if key.SampleAnswer != "" {
		sampleTokens := tokenSet(strings.ToLower(key.SampleAnswer))
		submittedTokens := tokenSet(text)
		if len(sampleTokens) > 0 && len(submittedTokens) > 0 {
			overlap := 0
			for token := range submittedTokens {
				if sampleTokens[token] {
					overlap++
				}
			}
			// Threshold fixed at min(3, half the sample's tokens).
			threshold := len(sampleTokens) / 2
			if threshold > 3 {
				threshold = 3
			}
			if overlap >= threshold {
				return Outcome{IsCorrect: true, MatchedRule: RuleBagOfWords}
			}
		}
	}

	return Outcome{MatchedRule: RuleShortAnswerMiss}
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range wordPattern.FindAllString(s, -1) {
		set[token] = true
	}
	return set
}

// gradeNumeric compares against the expected value with an absolute
// tolerance that scales with magnitude: strict for small values, loose
// enough for large ones to absorb floating rounding noise. Unparseable
// submissions are incorrect, never an error.
func gradeNumeric(key NumericKey, raw string) Outcome {
	submitted, ok := parseSubmittedNumber(raw)
	if !ok {
		return Outcome{MatchedRule: RuleNumericUnparsable}
	}

	expected := key.Expected
	var tolerance float64
	switch {
	case math.Abs(expected) < 1:
		tolerance = 0.001
	case math.Abs(expected) < 100:
		tolerance = 0.01
	default:
		tolerance = math.Abs(expected) * 0.001
	}

	return Outcome{
		IsCorrect:   math.Abs(submitted-expected) <= tolerance,
		MatchedRule: RuleNumericTolerance,
	}
}

// parseSubmittedNumber accepts either a plain decimal or free text
// containing one ("about 119.95" parses as 119.95).
func parseSubmittedNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v, true
	}
	match := numberPattern.FindString(trimmed)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(match, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
