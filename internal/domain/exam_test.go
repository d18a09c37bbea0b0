package domain

import (
	"testing"
	"time"
)

func TestExamValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Exam)
		wantErr bool
	}{
		{"defaults are valid", func(e *Exam) {}, false},
		{"empty title", func(e *Exam) { e.Title = "" }, true},
		{"question count too high", func(e *Exam) { e.QuestionCount = 101 }, true},
		{"question count zero", func(e *Exam) { e.QuestionCount = 0 }, true},
		{"time limit in range", func(e *Exam) { e.TimeLimitMinutes = 480 }, false},
		{"time limit too high", func(e *Exam) { e.TimeLimitMinutes = 481 }, true},
		{"no time limit is fine", func(e *Exam) { e.TimeLimitMinutes = 0 }, false},
		{"pass score above 100", func(e *Exam) { e.PassScore = 100.5 }, true},
		{"max attempts too high", func(e *Exam) { e.MaxAttempts = 11 }, true},
		{"window inverted", func(e *Exam) {
			start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			end := start.Add(-time.Hour)
			e.StartTime, e.EndTime = &start, &end
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExam("bank-1", "final")
			tt.mutate(e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExamCanStart(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	e := NewExam("bank-1", "final")
	e.MaxAttempts = 2

	if err := e.CanStart(0, now); err != nil {
		t.Errorf("CanStart(0) = %v", err)
	}
	if err := e.CanStart(1, now); err != nil {
		t.Errorf("CanStart(1) = %v", err)
	}

	err := e.CanStart(2, now)
	if derr, ok := err.(*DomainError); !ok || derr.Code != CodeAttemptsExhausted {
		t.Errorf("CanStart(2) = %v, want AttemptsExhausted", err)
	}

	e.IsActive = false
	if derr, ok := e.CanStart(0, now).(*DomainError); !ok || derr.Code != CodeOutsideActiveWindow {
		t.Error("inactive exam did not return OutsideActiveWindow")
	}
	e.IsActive = true

	future := now.Add(time.Hour)
	e.StartTime = &future
	if derr, ok := e.CanStart(0, now).(*DomainError); !ok || derr.Code != CodeOutsideActiveWindow {
		t.Error("not-yet-open exam did not return OutsideActiveWindow")
	}
	e.StartTime = nil

	past := now.Add(-time.Hour)
	e.EndTime = &past
	if derr, ok := e.CanStart(0, now).(*DomainError); !ok || derr.Code != CodeOutsideActiveWindow {
		t.Error("ended exam did not return OutsideActiveWindow")
	}
}

func TestExamTimeLimit(t *testing.T) {
	e := NewExam("bank-1", "quiz")
	if _, ok := e.TimeLimit(); ok {
		t.Error("default exam reported a time limit")
	}
	e.TimeLimitMinutes = 45
	limit, ok := e.TimeLimit()
	if !ok || limit != 45*time.Minute {
		t.Errorf("TimeLimit() = %v, %v", limit, ok)
	}
}
