package domain

import (
	"testing"
	"time"
)

var testStart = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func testExam() *Exam {
	return &Exam{
		ID:               "exam-1",
		BankID:           "bank-1",
		Title:            "midterm",
		QuestionCount:    3,
		TimeLimitMinutes: 30,
		PassScore:        60,
		MaxAttempts:      2,
		RandomizeOrder:   false,
		IsActive:         true,
	}
}

func testSnapshot() []*Question {
	return []*Question{
		{
			ID: "q1", Kind: KindChoice, Prompt: "pick one",
			Options: []ChoiceOption{{Key: "A"}, {Key: "B"}},
			Key:     ChoiceKey{Correct: "A"}, Points: 1,
		},
		{
			ID: "q2", Kind: KindChoice, Prompt: "pick another",
			Options: []ChoiceOption{{Key: "A"}, {Key: "B"}},
			Key:     ChoiceKey{Correct: "B"}, Points: 1,
		},
		{
			ID: "q3", Kind: KindTrueFalse, Prompt: "is it",
			Key: TrueFalseKey{Value: "true"}, Points: 1,
		},
	}
}

func mustStart(t *testing.T) *Attempt {
	t.Helper()
	a, err := StartAttempt(testExam(), testSnapshot(), "subject-1", testStart)
	if err != nil {
		t.Fatalf("StartAttempt error: %v", err)
	}
	a.ID = "attempt-1"
	return a
}

func TestStartAttemptFreezesSnapshot(t *testing.T) {
	source := testSnapshot()
	a, err := StartAttempt(testExam(), source, "subject-1", testStart)
	if err != nil {
		t.Fatalf("StartAttempt error: %v", err)
	}

	if a.Status != AttemptInProgress {
		t.Errorf("Status = %s, want in_progress", a.Status)
	}
	if a.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", a.TotalQuestions)
	}

	// Mutating the source question must not reach the frozen copy.
	source[0].Prompt = "edited later"
	source[0].Key = ChoiceKey{Correct: "B"}
	if a.Snapshot[0].Prompt != "pick one" {
		t.Error("snapshot prompt changed after source edit")
	}
	if a.Snapshot[0].Key.(ChoiceKey).Correct != "A" {
		t.Error("snapshot answer key changed after source edit")
	}
}

func TestStartAttemptOutsideWindow(t *testing.T) {
	exam := testExam()
	late := testStart.Add(time.Hour)
	exam.EndTime = &testStart

	_, err := StartAttempt(exam, testSnapshot(), "subject-1", late)
	domainErr, ok := err.(*DomainError)
	if !ok || domainErr.Code != CodeOutsideActiveWindow {
		t.Fatalf("expected OutsideActiveWindow, got %v", err)
	}
}

func TestRecordAnswerLastWriteWins(t *testing.T) {
	a := mustStart(t)
	now := testStart.Add(time.Minute)

	if err := a.RecordAnswer("q1", SelectedOptions{"B"}, now); err != nil {
		t.Fatalf("RecordAnswer error: %v", err)
	}
	if err := a.RecordAnswer("q1", SelectedOptions{"A"}, now.Add(time.Second)); err != nil {
		t.Fatalf("RecordAnswer overwrite error: %v", err)
	}
	if got := a.Answers["q1"].(SelectedOptions); len(got) != 1 || got[0] != "A" {
		t.Errorf("Answers[q1] = %v, want last write [A]", got)
	}
}

func TestRecordAnswerUnknownQuestion(t *testing.T) {
	a := mustStart(t)
	err := a.RecordAnswer("nope", SelectedOptions{"A"}, testStart.Add(time.Minute))
	domainErr, ok := err.(*DomainError)
	if !ok || domainErr.Code != CodeUnknownQuestion {
		t.Fatalf("expected UnknownQuestion, got %v", err)
	}
	if len(a.Answers) != 0 {
		t.Error("rejected write mutated the answer map")
	}
}

func TestRecordAnswerAfterDeadlineForcesTimeout(t *testing.T) {
	a := mustStart(t)
	if err := a.RecordAnswer("q1", SelectedOptions{"A"}, testStart.Add(time.Minute)); err != nil {
		t.Fatalf("RecordAnswer error: %v", err)
	}

	late := testStart.Add(31 * time.Minute)
	err := a.RecordAnswer("q2", SelectedOptions{"B"}, late)
	domainErr, ok := err.(*DomainError)
	if !ok || domainErr.Code != CodeAttemptNotInProgress {
		t.Fatalf("expected NotInProgress, got %v", err)
	}
	if a.Status != AttemptTimeout {
		t.Errorf("Status = %s, want timeout", a.Status)
	}
	if _, recorded := a.Answers["q2"]; recorded {
		t.Error("late answer was recorded")
	}
	// Scored from what was submitted before the deadline: 1 of 3.
	if a.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", a.CorrectCount)
	}
}

func TestFinishAggregation(t *testing.T) {
	a := mustStart(t)
	now := testStart.Add(10 * time.Minute)

	// q1 correct, q3 incorrect, q2 unanswered.
	if err := a.RecordAnswer("q1", SelectedOptions{"A"}, now); err != nil {
		t.Fatal(err)
	}
	if err := a.RecordAnswer("q3", TrueFalseAnswer{Raw: "false"}, now); err != nil {
		t.Fatal(err)
	}

	result, err := a.Finish(now)
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}

	if result.Status != AttemptCompleted {
		t.Errorf("Status = %s, want completed", result.Status)
	}
	if result.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", result.CorrectCount)
	}
	wantScore := float64(1) / float64(3) * 100
	if result.Score != wantScore {
		t.Errorf("Score = %v, want %v", result.Score, wantScore)
	}
	if result.Passed {
		t.Error("Passed = true, want false (pass score 60)")
	}
	if result.TimeSpentSeconds != 600 {
		t.Errorf("TimeSpentSeconds = %d, want 600", result.TimeSpentSeconds)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("per-question results = %d, want 3", len(result.Questions))
	}
	for _, qr := range result.Questions {
		if qr.QuestionID == "q2" && qr.MatchedRule != RuleUnanswered {
			t.Errorf("q2 rule = %q, want unanswered", qr.MatchedRule)
		}
	}
}

func TestFinishHalfCorrectScoresFifty(t *testing.T) {
	exam := testExam()
	exam.PassScore = 50
	snapshot := []*Question{
		{
			ID: "c1", Kind: KindChoice, Prompt: "p",
			Options: []ChoiceOption{{Key: "A"}, {Key: "B"}},
			Key:     ChoiceKey{Correct: "A"}, Points: 1,
		},
		{
			ID: "t1", Kind: KindTrueFalse, Prompt: "p",
			Key: TrueFalseKey{Value: "true"}, Points: 1,
		},
	}
	a, err := StartAttempt(exam, snapshot, "subject-1", testStart)
	if err != nil {
		t.Fatal(err)
	}
	now := testStart.Add(time.Minute)
	a.RecordAnswer("c1", SelectedOptions{"A"}, now)
	a.RecordAnswer("t1", TrueFalseAnswer{Raw: "false"}, now)

	result, err := a.Finish(now)
	if err != nil {
		t.Fatal(err)
	}
	if result.CorrectCount != 1 || result.Score != 50.0 {
		t.Errorf("got correct=%d score=%v, want 1 and 50.0", result.CorrectCount, result.Score)
	}
	if !result.Passed {
		t.Error("Passed = false, want true (50 >= 50)")
	}
}

func TestFinishEmptyAnswerMapScoresZero(t *testing.T) {
	a := mustStart(t)
	result, err := a.Finish(testStart.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if result.Score != 0 || result.CorrectCount != 0 {
		t.Errorf("empty answers: score=%v correct=%d, want 0/0", result.Score, result.CorrectCount)
	}
}

func TestFinishAtMostOnce(t *testing.T) {
	a := mustStart(t)
	now := testStart.Add(time.Minute)
	a.RecordAnswer("q1", SelectedOptions{"A"}, now)

	first, err := a.Finish(now)
	if err != nil {
		t.Fatal(err)
	}
	scoreAfterFirst := a.Score

	_, err = a.Finish(now.Add(time.Minute))
	domainErr, ok := err.(*DomainError)
	if !ok || domainErr.Code != CodeAlreadyFinished {
		t.Fatalf("second Finish: expected AlreadyFinished, got %v", err)
	}
	if a.Score != scoreAfterFirst {
		t.Errorf("second Finish mutated score: %v -> %v", scoreAfterFirst, a.Score)
	}
	_ = first
}

func TestRecordAnswerAfterFinish(t *testing.T) {
	a := mustStart(t)
	now := testStart.Add(time.Minute)
	if _, err := a.Finish(now); err != nil {
		t.Fatal(err)
	}

	err := a.RecordAnswer("q1", SelectedOptions{"A"}, now.Add(time.Second))
	domainErr, ok := err.(*DomainError)
	if !ok || domainErr.Code != CodeAttemptNotInProgress {
		t.Fatalf("expected NotInProgress, got %v", err)
	}
	if len(a.Answers) != 0 {
		t.Error("submitted_answers changed after finish")
	}
}

func TestFinishAfterDeadlineIsTimeout(t *testing.T) {
	a := mustStart(t)
	result, err := a.Finish(testStart.Add(45 * time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != AttemptTimeout {
		t.Errorf("Status = %s, want timeout", result.Status)
	}
}

func TestExpireIfOverdue(t *testing.T) {
	a := mustStart(t)
	if a.ExpireIfOverdue(testStart.Add(time.Minute)) {
		t.Error("expired before the deadline")
	}
	if !a.ExpireIfOverdue(testStart.Add(time.Hour)) {
		t.Error("did not expire after the deadline")
	}
	if a.Status != AttemptTimeout {
		t.Errorf("Status = %s, want timeout", a.Status)
	}
	// Idempotent on terminal attempts.
	if a.ExpireIfOverdue(testStart.Add(2 * time.Hour)) {
		t.Error("expired a terminal attempt")
	}
}

func TestAttemptWithoutTimeLimitNeverTimesOut(t *testing.T) {
	exam := testExam()
	exam.TimeLimitMinutes = 0
	a, err := StartAttempt(exam, testSnapshot(), "subject-1", testStart)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.RecordAnswer("q1", SelectedOptions{"A"}, testStart.Add(100*time.Hour)); err != nil {
		t.Fatalf("RecordAnswer error without limit: %v", err)
	}
	result, err := a.Finish(testStart.Add(200 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != AttemptCompleted {
		t.Errorf("Status = %s, want completed", result.Status)
	}
}
