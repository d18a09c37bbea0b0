package domain

import "time"

// AttemptStatus is the state of an exam attempt. InProgress is the only
// non-terminal state; Completed and Timeout are final.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptTimeout    AttemptStatus = "timeout"
)

// Attempt is a single timed assessment session. It freezes its own copy of
// the selected questions (answer keys included) so later edits of the bank
// never change a running or finished session.
//
// An attempt is mutated by one subject but may be touched by concurrent
// requests; callers must serialize mutating operations per attempt. The
// attempt itself holds no lock: status transitions and answer-map mutation
// are specified to be linearizable per attempt, and the orchestration
// layer enforces that.
type Attempt struct {
	ID        string
	ExamID    string
	SubjectID string
	Status    AttemptStatus

	// Snapshot keeps answer keys; strip them before exposing questions
	// to the subject.
	Snapshot []*Question
	Answers  map[string]AnswerValue

	PassScore float64
	TimeLimit time.Duration // 0 means no limit

	StartedAt        time.Time
	FinishedAt       *time.Time
	TotalQuestions   int
	CorrectCount     int
	Score            float64
	Passed           bool
	TimeSpentSeconds int
}

// QuestionResult is the graded outcome of one snapshot question.
type QuestionResult struct {
	QuestionID   string
	IsCorrect    bool
	ScoreAwarded int
	MatchedRule  string
}

// AttemptResult is the finalized, aggregated result of an attempt.
type AttemptResult struct {
	AttemptID        string
	ExamID           string
	SubjectID        string
	Status           AttemptStatus
	TotalQuestions   int
	CorrectCount     int
	Score            float64
	Passed           bool
	StartedAt        time.Time
	FinishedAt       time.Time
	TimeSpentSeconds int
	Questions        []QuestionResult
}

// StartAttempt constructs an in-progress attempt from an exam and a
// selection result. The snapshot questions are cloned with their answer
// keys. The exam's active window is re-checked against now; the
// max-attempts precondition belongs to the caller, which knows how many
// attempts the subject has used.
func StartAttempt(exam *Exam, snapshot []*Question, subjectID string, now time.Time) (*Attempt, error) {
	if err := exam.windowContains(now); err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, NewInvalidInputError("attempt needs at least one question")
	}

	frozen := make([]*Question, len(snapshot))
	for i, q := range snapshot {
		frozen[i] = q.Clone()
	}

	limit, _ := exam.TimeLimit()
	return &Attempt{
		ExamID:         exam.ID,
		SubjectID:      subjectID,
		Status:         AttemptInProgress,
		Snapshot:       frozen,
		Answers:        make(map[string]AnswerValue),
		PassScore:      exam.PassScore,
		TimeLimit:      limit,
		StartedAt:      now,
		TotalQuestions: len(frozen),
	}, nil
}

// Deadline returns the instant the attempt times out, or false when the
// exam has no time limit.
func (a *Attempt) Deadline() (time.Time, bool) {
	if a.TimeLimit <= 0 {
		return time.Time{}, false
	}
	return a.StartedAt.Add(a.TimeLimit), true
}

// overdue reports whether the time limit was exceeded at now.
func (a *Attempt) overdue(now time.Time) bool {
	deadline, ok := a.Deadline()
	return ok && now.After(deadline)
}

// RecordAnswer stores the subject's answer for one snapshot question.
// Re-submitting for the same question overwrites the previous value. If
// the time limit has been exceeded, the attempt is finalized as Timeout
// (scored from whatever was submitted so far) and the new answer is
// rejected. A rejected write never changes prior state.
func (a *Attempt) RecordAnswer(questionID string, answer AnswerValue, now time.Time) error {
	if a.Status != AttemptInProgress {
		return NewNotInProgressError(a.ID, a.Status)
	}
	if a.overdue(now) {
		a.finalize(AttemptTimeout, now)
		return NewNotInProgressError(a.ID, a.Status).WithContext("reason", "time_limit_exceeded")
	}
	if !a.hasQuestion(questionID) {
		return NewUnknownQuestionError(questionID)
	}
	a.Answers[questionID] = answer
	return nil
}

// Finish finalizes the attempt, grading every snapshot question against
// the submitted answers. Unanswered questions grade as incorrect. A finish
// after the deadline lands in Timeout instead of Completed; both share the
// same scoring routine. Calling Finish on a finished attempt returns
// AlreadyFinished and never re-scores.
func (a *Attempt) Finish(now time.Time) (*AttemptResult, error) {
	if a.Status != AttemptInProgress {
		return nil, NewAlreadyFinishedError(a.ID)
	}

	status := AttemptCompleted
	if a.overdue(now) {
		status = AttemptTimeout
	}
	a.finalize(status, now)
	return a.Result(), nil
}

// ExpireIfOverdue forces the timeout transition when the deadline has
// passed, e.g. from a read path that notices a stale in-progress attempt.
// It reports whether the attempt was finalized.
func (a *Attempt) ExpireIfOverdue(now time.Time) bool {
	if a.Status != AttemptInProgress || !a.overdue(now) {
		return false
	}
	a.finalize(AttemptTimeout, now)
	return true
}

// Rescore recomputes the aggregates of a finished attempt against the
// current grading rules and reports whether anything changed. The
// frozen snapshot stays as it was scored; only the totals move.
func (a *Attempt) Rescore() bool {
	if a.Status == AttemptInProgress {
		return false
	}

	correct := 0
	awarded := 0
	possible := 0
	for _, q := range a.Snapshot {
		possible += q.Points
		outcome := Grade(q, a.Answers[q.ID])
		if outcome.IsCorrect {
			correct++
			awarded += outcome.ScoreAwarded
		}
	}

	score := 0.0
	if possible > 0 {
		score = float64(awarded) / float64(possible) * 100
	}
	changed := correct != a.CorrectCount || score != a.Score

	a.CorrectCount = correct
	a.Score = score
	a.Passed = score >= a.PassScore
	return changed
}

// finalize is the single scoring routine behind both terminal transitions.
func (a *Attempt) finalize(status AttemptStatus, now time.Time) {
	correct := 0
	awarded := 0
	possible := 0
	for _, q := range a.Snapshot {
		possible += q.Points
		outcome := Grade(q, a.Answers[q.ID])
		if outcome.IsCorrect {
			correct++
			awarded += outcome.ScoreAwarded
		}
	}

	a.Status = status
	a.CorrectCount = correct
	a.TotalQuestions = len(a.Snapshot)
	a.Score = 0
	if possible > 0 {
		a.Score = float64(awarded) / float64(possible) * 100
	}
	a.Passed = a.Score >= a.PassScore
	finished := now
	a.FinishedAt = &finished
	a.TimeSpentSeconds = int(now.Sub(a.StartedAt).Seconds())
}

// Result rebuilds the aggregated result of a finished attempt, including
// per-question outcomes. Grading is pure, so re-deriving the outcomes from
// the frozen snapshot always reproduces the finalized score.
func (a *Attempt) Result() *AttemptResult {
	result := &AttemptResult{
		AttemptID:        a.ID,
		ExamID:           a.ExamID,
		SubjectID:        a.SubjectID,
		Status:           a.Status,
		TotalQuestions:   a.TotalQuestions,
		CorrectCount:     a.CorrectCount,
		Score:            a.Score,
		Passed:           a.Passed,
		StartedAt:        a.StartedAt,
		TimeSpentSeconds: a.TimeSpentSeconds,
		Questions:        make([]QuestionResult, 0, len(a.Snapshot)),
	}
	if a.FinishedAt != nil {
		result.FinishedAt = *a.FinishedAt
	}
	for _, q := range a.Snapshot {
		outcome := Grade(q, a.Answers[q.ID])
		result.Questions = append(result.Questions, QuestionResult{
			QuestionID:   q.ID,
			IsCorrect:    outcome.IsCorrect,
			ScoreAwarded: outcome.ScoreAwarded,
			MatchedRule:  outcome.MatchedRule,
		})
	}
	return result
}

func (a *Attempt) hasQuestion(questionID string) bool {
	for _, q := range a.Snapshot {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
