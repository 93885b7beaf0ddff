package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/accountsvc/domain"
)

// SessionRepositoryImpl implements domain.SessionRepository using Redis.
// Three key families are kept in step: the session blob, a refresh-hash
// index pointing at the session id, and a per-account set of session ids.
type SessionRepositoryImpl struct {
	client *redis.Client
	clock  domain.Clock
	prefix string
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client *redis.Client, clock domain.Clock) domain.SessionRepository {
	return &SessionRepositoryImpl{
		client: client,
		clock:  clock,
		prefix: "session:",
	}
}

func (r *SessionRepositoryImpl) sessionKey(id string) string   { return r.prefix + id }
func (r *SessionRepositoryImpl) hashKey(hash string) string    { return r.prefix + "hash:" + hash }
func (r *SessionRepositoryImpl) accountKey(id uint) string     { return fmt.Sprintf("%sacct:%d", r.prefix, id) }

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := session.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return domain.ErrSessionNotFound
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), data, ttl)
	pipe.Set(ctx, r.hashKey(session.RefreshHash), session.ID, ttl)
	pipe.SAdd(ctx, r.accountKey(session.AccountID), session.ID)
	// The account set outlives individual sessions; stale ids fall out
	// lazily in FindAllActive.
	pipe.Expire(ctx, r.accountKey(session.AccountID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	// Lazy expiry: treat an expired-but-not-yet-evicted row as absent.
	if !session.Active(r.clock.Now()) {
		r.removeKeys(ctx, &session)
		return nil, domain.ErrSessionNotFound
	}

	return &session, nil
}

// FindByRefreshHash implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByRefreshHash(ctx context.Context, hash string) (*domain.Session, error) {
	sessionID, err := r.client.Get(ctx, r.hashKey(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, sessionID)
}

// FindAllActive implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindAllActive(ctx context.Context, accountID uint) ([]*domain.Session, error) {
	ids, err := r.client.SMembers(ctx, r.accountKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := r.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				r.client.SRem(ctx, r.accountKey(accountID), id)
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Touch implements domain.SessionRepository
func (r *SessionRepositoryImpl) Touch(ctx context.Context, sessionID string, at time.Time) error {
	session, err := r.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	session.LastActiveAt = at

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(sessionID), data, redis.KeepTTL).Err()
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return r.client.Del(ctx, r.sessionKey(sessionID)).Err()
	}
	r.removeKeys(ctx, &session)
	return nil
}

// DeleteAll implements domain.SessionRepository
func (r *SessionRepositoryImpl) DeleteAll(ctx context.Context, accountID uint) error {
	ids, err := r.client.SMembers(ctx, r.accountKey(accountID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return r.client.Del(ctx, r.accountKey(accountID)).Err()
}

func (r *SessionRepositoryImpl) removeKeys(ctx context.Context, session *domain.Session) {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(session.ID))
	pipe.Del(ctx, r.hashKey(session.RefreshHash))
	pipe.SRem(ctx, r.accountKey(session.AccountID), session.ID)
	pipe.Exec(ctx)
}
