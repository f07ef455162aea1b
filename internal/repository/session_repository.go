package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"learno_backend/internal/session"
	"learno_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// SessionRepository stores in-progress learn sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	state   session.State
	expires time.Time
}

// MemorySessionRepository keeps snapshots in process memory, so callers never
// share a *Session with the store.
type MemorySessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Create(ctx context.Context, s *session.Session) error {
	return r.Save(ctx, s)
}

func (r *MemorySessionRepository) Get(_ context.Context, id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if r.ttl > 0 && r.now().After(entry.expires) {
		delete(r.sessions, id)
		return nil, util.ErrSessionNotFound
	}
	return session.Restore(entry.state), nil
}

func (r *MemorySessionRepository) Save(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID()] = memoryEntry{state: s.Snapshot(), expires: r.now().Add(r.ttl)}
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return util.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (r *MemorySessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	now := r.now()
	for id, entry := range r.sessions {
		if r.ttl > 0 && now.After(entry.expires) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RedisSessionRepository stores sessions as JSON so several API instances can
// serve the same learner.
type RedisSessionRepository struct {
	Redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{Redis: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return "learno:session:" + id
}

func (r *RedisSessionRepository) Create(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	return r.Redis.SetNX(ctx, sessionKey(s.ID()), data, r.ttl).Err()
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := r.Redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var st session.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return session.Restore(st), nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, sessionKey(s.ID()), data, r.ttl).Err()
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.Redis.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrSessionNotFound
	}
	return nil
}
