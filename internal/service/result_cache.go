package service

import (
	"context"
	"encoding/json"
	"time"

	"exam-bank/internal/cache"
	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
	"exam-bank/internal/logger"

	"go.uber.org/zap"
)

// DefaultResultCacheExpiration applies when no TTL is configured.
const DefaultResultCacheExpiration = 10 * time.Minute

// ResultCacheService caches finalized attempt results. Finished
// attempts are immutable outside regrades, so the cache only has to be
// invalidated when a regrade rewrites scores.
type ResultCacheService interface {
	GetResult(ctx context.Context, attemptID string) (*dto.AttemptResultResponse, error)
	PutResult(ctx context.Context, attemptID string, result *dto.AttemptResultResponse) error
	InvalidateResult(ctx context.Context, attemptID string) error
}

// resultCacheServiceImpl implements ResultCacheService
type resultCacheServiceImpl struct {
	cache      domain.Cache
	expiration time.Duration
}

// NewResultCacheService creates a new instance of resultCacheServiceImpl.
// A nil cache disables caching; every lookup is then a miss.
func NewResultCacheService(cacheClient domain.Cache, expiration time.Duration) ResultCacheService {
	if expiration <= 0 {
		expiration = DefaultResultCacheExpiration
	}
	return &resultCacheServiceImpl{
		cache:      cacheClient,
		expiration: expiration,
	}
}

func resultCacheKey(attemptID string) string {
	return cache.GenerateCacheKey("attempt", "result", attemptID)
}

// GetResult returns the cached result, or nil on a miss.
func (s *resultCacheServiceImpl) GetResult(ctx context.Context, attemptID string) (*dto.AttemptResultResponse, error) {
	if s.cache == nil {
		return nil, nil
	}

	key := resultCacheKey(attemptID)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == domain.ErrCacheMiss {
			return nil, nil
		}
		logger.Get().Error("ResultCache: Get failed", zap.Error(err), zap.String("key", key))
		return nil, err
	}

	var result dto.AttemptResultResponse
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.Get().Warn("ResultCache: failed to unmarshal cached result, treating as miss",
			zap.Error(err), zap.String("attemptID", attemptID))
		return nil, nil
	}
	return &result, nil
}

func (s *resultCacheServiceImpl) PutResult(ctx context.Context, attemptID string, result *dto.AttemptResultResponse) error {
	if s.cache == nil || result == nil {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, resultCacheKey(attemptID), string(raw), s.expiration); err != nil {
		logger.Get().Error("ResultCache: Set failed", zap.Error(err), zap.String("attemptID", attemptID))
		return err
	}
	return nil
}

func (s *resultCacheServiceImpl) InvalidateResult(ctx context.Context, attemptID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, resultCacheKey(attemptID))
}
