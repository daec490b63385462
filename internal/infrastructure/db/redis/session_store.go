package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/user-admin/internal/core/domain"
)

const (
	sessionPrefix   = "session:"
	userIndexPrefix = "user_sessions:"
)

// SessionStore keeps sessions in Redis with a TTL derived from ExpiresAt,
// plus a per-user set of session IDs so role changes and account deletion
// can reach every live session of a user.
//
// Keys:
//
//	session:<id>         JSON-encoded domain.Session
//	user_sessions:<uid>  set of session IDs
type SessionStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	uid := sess.UserID()
	indexTTL := ttl
	if uid != "" {
		// The index must outlive every session it lists, so its TTL only grows.
		current, err := s.client.TTL(ctx, userIndexPrefix+uid).Result()
		if err != nil {
			return fmt.Errorf("redis index ttl: %w", err)
		}
		if current > indexTTL {
			indexTTL = current
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionPrefix+sess.ID, data, ttl)
		if uid != "" {
			pipe.SAdd(ctx, userIndexPrefix+uid, sess.ID)
			pipe.Expire(ctx, userIndexPrefix+uid, indexTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	if id == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return domain.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return sess, nil
}

// Delete removes a session and its index entry. Deleting an unknown
// session is a no-op.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis get: %w", err)
	}

	var sess domain.Session
	_ = json.Unmarshal(data, &sess)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionPrefix+id)
		if uid := sess.UserID(); uid != "" {
			pipe.SRem(ctx, userIndexPrefix+uid, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// ListByUser returns the live sessions of userID, pruning index entries
// whose session has expired.
func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	ids, err := s.client.SMembers(ctx, userIndexPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}

	out := make([]domain.Session, 0, len(ids))
	var stale []interface{}
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				stale = append(stale, id)
				continue
			}
			return nil, err
		}
		out = append(out, sess)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, userIndexPrefix+userID, stale...).Err(); err != nil {
			return nil, fmt.Errorf("redis prune index: %w", err)
		}
	}
	return out, nil
}

// DeleteByUser removes every session of userID together with the index.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, userIndexPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionPrefix+id)
	}
	keys = append(keys, userIndexPrefix+userID)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete user sessions: %w", err)
	}
	return nil
}
