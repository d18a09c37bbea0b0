package service

import (
	"context"
	"sync"

	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
	"exam-bank/internal/logger"
	"exam-bank/internal/util"

	"go.uber.org/zap"
)

// ExamService defines the interface for exam and attempt operations
type ExamService interface {
	CreateExam(ctx context.Context, bankID string, req *dto.ExamRequest) (*dto.ExamResponse, error)
	GetExam(ctx context.Context, id string) (*dto.ExamResponse, error)
	ListExams(ctx context.Context, bankID string) ([]dto.ExamResponse, error)
	UpdateExam(ctx context.Context, id string, req *dto.ExamRequest) (*dto.ExamResponse, error)

	StartExam(ctx context.Context, examID, subjectID string) (*dto.StartAttemptResponse, error)
	RecordAnswer(ctx context.Context, attemptID, subjectID string, req *dto.RecordAnswerRequest) error
	SubmitAttempt(ctx context.Context, attemptID, subjectID string) (*dto.AttemptResultResponse, error)
	GetAttemptResult(ctx context.Context, attemptID, subjectID string) (*dto.AttemptResultResponse, error)
	ListAttempts(ctx context.Context, examID, subjectID string) ([]dto.AttemptSummaryResponse, error)
}

// keyedMutex serializes writers per attempt. Entries are dropped once
// the last holder releases, so the map stays bounded by concurrency.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*mutexEntry
}

type mutexEntry struct {
	refs int
	mu   sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*mutexEntry)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &mutexEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// examService implements ExamService
type examService struct {
	examRepo     domain.ExamRepository
	questionRepo domain.QuestionRepository
	attemptRepo  domain.AttemptRepository
	selector     *domain.Selector
	resultCache  ResultCacheService
	clock        domain.Clock
	locks        *keyedMutex
}

// NewExamService creates a new instance of examService
func NewExamService(
	examRepo domain.ExamRepository,
	questionRepo domain.QuestionRepository,
	attemptRepo domain.AttemptRepository,
	selector *domain.Selector,
	resultCache ResultCacheService,
	clock domain.Clock,
) ExamService {
	return &examService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		selector:     selector,
		resultCache:  resultCache,
		clock:        clock,
		locks:        newKeyedMutex(),
	}
}

// verifyPool checks that the exam's bank can satisfy its question count
// under the configured filters. A trial draw reuses the selection rules
// exactly as StartExam will apply them.
func (s *examService) verifyPool(ctx context.Context, exam *domain.Exam) error {
	pool, err := s.questionRepo.GetQuestionsByBank(ctx, exam.BankID)
	if err != nil {
		return domain.NewInternalError("Failed to load question pool", err)
	}
	_, err = s.selector.Select(pool, exam.QuestionCount, exam.KindFilter, exam.DifficultyFilter, false)
	return err
}

func (s *examService) CreateExam(ctx context.Context, bankID string, req *dto.ExamRequest) (*dto.ExamResponse, error) {
	exam, err := req.ToDomain(bankID)
	if err != nil {
		return nil, err
	}
	if err := exam.Validate(); err != nil {
		return nil, err
	}
	if err := s.verifyPool(ctx, exam); err != nil {
		return nil, err
	}

	exam.ID = util.NewULID()
	now := s.clock.Now()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	if err := s.examRepo.SaveExam(ctx, exam); err != nil {
		return nil, domain.NewInternalError("Failed to save exam", err)
	}

	logger.Get().Info("Exam created",
		zap.String("examID", exam.ID),
		zap.String("bankID", bankID),
		zap.Int("questionCount", exam.QuestionCount))

	resp := dto.NewExamResponse(exam)
	return &resp, nil
}

func (s *examService) GetExam(ctx context.Context, id string) (*dto.ExamResponse, error) {
	exam, err := s.examRepo.GetExamByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get exam", err)
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(id)
	}

	resp := dto.NewExamResponse(exam)
	return &resp, nil
}

func (s *examService) ListExams(ctx context.Context, bankID string) ([]dto.ExamResponse, error) {
	exams, err := s.examRepo.ListExamsByBank(ctx, bankID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list exams", err)
	}

	responses := make([]dto.ExamResponse, len(exams))
	for i, e := range exams {
		responses[i] = dto.NewExamResponse(e)
	}
	return responses, nil
}

func (s *examService) UpdateExam(ctx context.Context, id string, req *dto.ExamRequest) (*dto.ExamResponse, error) {
	existing, err := s.examRepo.GetExamByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get exam", err)
	}
	if existing == nil {
		return nil, domain.NewExamNotFoundError(id)
	}

	updated, err := req.ToDomain(existing.BankID)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.clock.Now()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.verifyPool(ctx, updated); err != nil {
		return nil, err
	}

	if err := s.examRepo.UpdateExam(ctx, updated); err != nil {
		return nil, err
	}

	logger.Get().Info("Exam updated", zap.String("examID", id))

	resp := dto.NewExamResponse(updated)
	return &resp, nil
}

// StartExam opens a new attempt: it enforces the single open attempt
// rule and the attempt allowance, draws the question set and freezes it.
func (s *examService) StartExam(ctx context.Context, examID, subjectID string) (*dto.StartAttemptResponse, error) {
	exam, err := s.examRepo.GetExamByID(ctx, examID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get exam", err)
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(examID)
	}

	release := s.locks.lock("start:" + examID + ":" + subjectID)
	defer release()

	now := s.clock.Now()

	open, err := s.attemptRepo.GetInProgressAttempt(ctx, examID, subjectID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check open attempts", err)
	}
	if open != nil {
		if !open.ExpireIfOverdue(now) {
			return nil, domain.NewAttemptInProgressError(open.ID)
		}
		// The stale attempt timed out; record that before opening a new one.
		if err := s.attemptRepo.UpdateAttempt(ctx, open); err != nil {
			return nil, domain.NewInternalError("Failed to expire stale attempt", err)
		}
	}

	used, err := s.attemptRepo.CountAttempts(ctx, examID, subjectID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to count attempts", err)
	}
	if err := exam.CanStart(used, now); err != nil {
		return nil, err
	}

	pool, err := s.questionRepo.GetQuestionsByBank(ctx, exam.BankID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load question pool", err)
	}
	selected, err := s.selector.Select(pool, exam.QuestionCount, exam.KindFilter, exam.DifficultyFilter, exam.RandomizeOrder)
	if err != nil {
		return nil, err
	}

	attempt, err := domain.StartAttempt(exam, selected, subjectID, now)
	if err != nil {
		return nil, err
	}
	attempt.ID = util.NewULID()

	if err := s.attemptRepo.SaveAttempt(ctx, attempt); err != nil {
		return nil, domain.NewInternalError("Failed to save attempt", err)
	}

	logger.Get().Info("Attempt started",
		zap.String("attemptID", attempt.ID),
		zap.String("examID", examID),
		zap.String("subjectID", subjectID),
		zap.Int("questions", attempt.TotalQuestions))

	return s.buildStartResponse(attempt), nil
}

func (s *examService) buildStartResponse(attempt *domain.Attempt) *dto.StartAttemptResponse {
	resp := &dto.StartAttemptResponse{
		AttemptID: attempt.ID,
		ExamID:    attempt.ExamID,
		Status:    string(attempt.Status),
		StartedAt: attempt.StartedAt,
		Questions: make([]dto.QuestionResponse, len(attempt.Snapshot)),
	}
	if deadline, ok := attempt.Deadline(); ok {
		resp.Deadline = &deadline
	}
	for i, q := range attempt.Snapshot {
		resp.Questions[i] = dto.NewQuestionResponse(q.WithoutKey())
	}
	return resp
}

// loadOwnedAttempt fetches an attempt and hides its existence from
// anyone but its owner.
func (s *examService) loadOwnedAttempt(ctx context.Context, attemptID, subjectID string) (*domain.Attempt, error) {
	attempt, err := s.attemptRepo.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get attempt", err)
	}
	if attempt == nil || attempt.SubjectID != subjectID {
		return nil, domain.NewAttemptNotFoundError(attemptID)
	}
	return attempt, nil
}

func (s *examService) RecordAnswer(ctx context.Context, attemptID, subjectID string, req *dto.RecordAnswerRequest) error {
	release := s.locks.lock(attemptID)
	defer release()

	attempt, err := s.loadOwnedAttempt(ctx, attemptID, subjectID)
	if err != nil {
		return err
	}

	answer, err := req.Answer.ToDomain()
	if err != nil {
		return err
	}

	if err := attempt.RecordAnswer(req.QuestionID, answer, s.clock.Now()); err != nil {
		// A rejected write can still flip the attempt to timeout; that
		// transition has to be persisted.
		if attempt.Status == domain.AttemptTimeout {
			if updateErr := s.attemptRepo.UpdateAttempt(ctx, attempt); updateErr != nil {
				logger.Get().Error("Failed to persist timeout transition",
					zap.Error(updateErr), zap.String("attemptID", attemptID))
			}
		}
		return err
	}

	return s.attemptRepo.UpdateAttempt(ctx, attempt)
}

func (s *examService) SubmitAttempt(ctx context.Context, attemptID, subjectID string) (*dto.AttemptResultResponse, error) {
	release := s.locks.lock(attemptID)
	defer release()

	attempt, err := s.loadOwnedAttempt(ctx, attemptID, subjectID)
	if err != nil {
		return nil, err
	}

	result, err := attempt.Finish(s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.attemptRepo.UpdateAttempt(ctx, attempt); err != nil {
		return nil, domain.NewInternalError("Failed to save attempt result", err)
	}

	logger.Get().Info("Attempt finished",
		zap.String("attemptID", attempt.ID),
		zap.String("status", string(attempt.Status)),
		zap.Float64("score", attempt.Score),
		zap.Bool("passed", attempt.Passed))

	resp := buildResultResponse(attempt, result)
	if err := s.resultCache.PutResult(ctx, attempt.ID, resp); err != nil {
		logger.Get().Warn("Failed to cache attempt result",
			zap.Error(err), zap.String("attemptID", attempt.ID))
	}
	return resp, nil
}

// GetAttemptResult returns the finalized result. Reading an overdue
// in-progress attempt finalizes it as a timeout first.
func (s *examService) GetAttemptResult(ctx context.Context, attemptID, subjectID string) (*dto.AttemptResultResponse, error) {
	release := s.locks.lock(attemptID)
	defer release()

	attempt, err := s.loadOwnedAttempt(ctx, attemptID, subjectID)
	if err != nil {
		return nil, err
	}

	if attempt.Status == domain.AttemptInProgress {
		if !attempt.ExpireIfOverdue(s.clock.Now()) {
			return nil, domain.NewAttemptInProgressError(attemptID)
		}
		if err := s.attemptRepo.UpdateAttempt(ctx, attempt); err != nil {
			return nil, domain.NewInternalError("Failed to persist timeout transition", err)
		}
	} else if cached, err := s.resultCache.GetResult(ctx, attemptID); err == nil && cached != nil {
		return cached, nil
	}

	resp := buildResultResponse(attempt, attempt.Result())
	if err := s.resultCache.PutResult(ctx, attemptID, resp); err != nil {
		logger.Get().Warn("Failed to cache attempt result",
			zap.Error(err), zap.String("attemptID", attemptID))
	}
	return resp, nil
}

func (s *examService) ListAttempts(ctx context.Context, examID, subjectID string) ([]dto.AttemptSummaryResponse, error) {
	attempts, err := s.attemptRepo.ListAttemptsBySubject(ctx, examID, subjectID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list attempts", err)
	}

	now := s.clock.Now()
	responses := make([]dto.AttemptSummaryResponse, len(attempts))
	for i, attempt := range attempts {
		if attempt.ExpireIfOverdue(now) {
			if err := s.attemptRepo.UpdateAttempt(ctx, attempt); err != nil {
				logger.Get().Error("Failed to persist timeout transition",
					zap.Error(err), zap.String("attemptID", attempt.ID))
			}
		}
		responses[i] = dto.NewAttemptSummaryResponse(attempt)
	}
	return responses, nil
}

// buildResultResponse maps a finalized result to its API shape, pulling
// explanations out of the frozen snapshot. Explanations are only shown
// here, after finalization.
func buildResultResponse(attempt *domain.Attempt, result *domain.AttemptResult) *dto.AttemptResultResponse {
	explanations := make(map[string]string, len(attempt.Snapshot))
	for _, q := range attempt.Snapshot {
		explanations[q.ID] = q.Explanation
	}

	resp := &dto.AttemptResultResponse{
		AttemptID:        result.AttemptID,
		ExamID:           result.ExamID,
		Status:           string(result.Status),
		Score:            result.Score,
		Passed:           result.Passed,
		CorrectCount:     result.CorrectCount,
		TotalQuestions:   result.TotalQuestions,
		TimeSpentSeconds: result.TimeSpentSeconds,
		Questions:        make([]dto.QuestionResultResponse, len(result.Questions)),
	}
	if attempt.FinishedAt != nil {
		resp.FinishedAt = attempt.FinishedAt
	}
	for i, qr := range result.Questions {
		resp.Questions[i] = dto.QuestionResultResponse{
			QuestionID:   qr.QuestionID,
			IsCorrect:    qr.IsCorrect,
			ScoreAwarded: qr.ScoreAwarded,
			MatchedRule:  qr.MatchedRule,
			Explanation:  explanations[qr.QuestionID],
		}
	}
	return resp
}
