package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/fitlab-service/internal/domain"
)

const (
	sessionNamespace      = "admin_session"
	loginFailureNamespace = "admin_login_failures"
)

// SessionRepository tracks admin sessions and failed login attempts.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	IncrementLoginFailures(ctx context.Context, key string, window time.Duration) (int64, error)
	LoginFailures(ctx context.Context, key string) (int64, error)
	ResetLoginFailures(ctx context.Context, key string) error
}

type redisSessionRepository struct {
	client redis.UniversalClient
}

// NewSessionRepository returns a Redis-backed implementation.
func NewSessionRepository(client redis.UniversalClient) SessionRepository {
	return &redisSessionRepository{client: client}
}

func (r *redisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	return r.client.Set(ctx, namespaced(sessionNamespace, session.ID), session.SubjectID, ttl).Err()
}

func (r *redisSessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, namespaced(sessionNamespace, id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, namespaced(sessionNamespace, id)).Err()
}

// IncrementLoginFailures bumps the counter and starts the window on the first failure.
// INCR and EXPIRE NX run in one MULTI so a crash between them cannot leave a counter without a TTL.
func (r *redisSessionRepository) IncrementLoginFailures(ctx context.Context, key string, window time.Duration) (int64, error) {
	countKey := namespaced(loginFailureNamespace, key)
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, countKey)
		pipe.ExpireNX(ctx, countKey, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *redisSessionRepository) LoginFailures(ctx context.Context, key string) (int64, error) {
	cnt, err := r.client.Get(ctx, namespaced(loginFailureNamespace, key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return cnt, err
}

func (r *redisSessionRepository) ResetLoginFailures(ctx context.Context, key string) error {
	return r.client.Del(ctx, namespaced(loginFailureNamespace, key)).Err()
}

func namespaced(namespace, key string) string {
	return namespace + ":" + key
}
