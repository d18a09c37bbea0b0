package service

import (
	"context"
	"sync"

	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
	"exam-bank/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// regradeConcurrency bounds the parallel re-scoring workers.
const regradeConcurrency = 8

// RegradeService re-scores finished attempts of an exam against the
// current grading rules. Snapshots stay frozen; only aggregates move.
type RegradeService interface {
	RegradeExam(ctx context.Context, examID string) (*dto.RegradeReport, error)
}

// regradeService implements RegradeService
type regradeService struct {
	examRepo    domain.ExamRepository
	attemptRepo domain.AttemptRepository
	txManager   domain.TransactionManager
	resultCache ResultCacheService
}

// NewRegradeService creates a new instance of regradeService
func NewRegradeService(
	examRepo domain.ExamRepository,
	attemptRepo domain.AttemptRepository,
	txManager domain.TransactionManager,
	resultCache ResultCacheService,
) RegradeService {
	return &regradeService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		txManager:   txManager,
		resultCache: resultCache,
	}
}

// RegradeExam fans the re-scoring out across workers, then applies all
// changed attempts in one transaction so a half-applied regrade can
// never be observed.
func (s *regradeService) RegradeExam(ctx context.Context, examID string) (*dto.RegradeReport, error) {
	exam, err := s.examRepo.GetExamByID(ctx, examID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get exam", err)
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(examID)
	}

	attempts, err := s.attemptRepo.ListFinishedAttemptsByExam(ctx, examID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list finished attempts", err)
	}

	var mu sync.Mutex
	var changed []*domain.Attempt

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(regradeConcurrency)
	for _, attempt := range attempts {
		attempt := attempt
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if attempt.Rescore() {
				mu.Lock()
				changed = append(changed, attempt)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Regrade was interrupted", err)
	}

	if len(changed) > 0 {
		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			for _, attempt := range changed {
				if err := s.attemptRepo.UpdateAttempt(txCtx, attempt); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, domain.NewInternalError("Failed to apply regrade", err)
		}
		for _, attempt := range changed {
			if err := s.resultCache.InvalidateResult(ctx, attempt.ID); err != nil {
				logger.Get().Warn("Failed to invalidate cached result",
					zap.Error(err), zap.String("attemptID", attempt.ID))
			}
		}
	}

	logger.Get().Info("Exam regraded",
		zap.String("examID", examID),
		zap.Int("attempts", len(attempts)),
		zap.Int("changed", len(changed)))

	return &dto.RegradeReport{
		ExamID:           examID,
		AttemptsExamined: len(attempts),
		AttemptsChanged:  len(changed),
	}, nil
}
