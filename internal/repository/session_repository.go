package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "quiz:session:"

// RedisSessionRepository 以 jti 为键记录有效会话，过期时间与令牌一致
type RedisSessionRepository struct {
	Redis *redis.Client
}

func NewRedisSessionRepository(rdb *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{Redis: rdb}
}

func (r *RedisSessionRepository) key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (r *RedisSessionRepository) Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	return r.Redis.Set(ctx, r.key(sessionID), userID, ttl).Err()
}

// Lookup 返回会话对应的用户；会话不存在时 ok 为 false
func (r *RedisSessionRepository) Lookup(ctx context.Context, sessionID string) (uint, bool, error) {
	val, err := r.Redis.Get(ctx, r.key(sessionID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	return uint(id), true, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.Redis.Del(ctx, r.key(sessionID)).Err()
}

type memorySession struct {
	userID    uint
	expiresAt time.Time
}

// MemorySessionRepository 进程内会话存储，用于单实例部署和测试
type MemorySessionRepository struct {
	mu        sync.Mutex
	sessions  map[string]memorySession
	now       func() time.Time
	stopSweep chan struct{}
	stopOnce  sync.Once
}

// NewMemorySessionRepository 后台按 sweepInterval 清理过期会话
func NewMemorySessionRepository(sweepInterval time.Duration) *MemorySessionRepository {
	r := &MemorySessionRepository{
		sessions:  make(map[string]memorySession),
		now:       time.Now,
		stopSweep: make(chan struct{}),
	}
	if sweepInterval > 0 {
		go r.sweepLoop(sweepInterval)
	}
	return r
}

func (r *MemorySessionRepository) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stopSweep:
			return
		}
	}
}

// Sweep 删除所有已过期的会话，返回删除数量
func (r *MemorySessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if !now.Before(s.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *MemorySessionRepository) Stop() {
	r.stopOnce.Do(func() { close(r.stopSweep) })
}

func (r *MemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *MemorySessionRepository) Save(_ context.Context, sessionID string, userID uint, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = memorySession{userID: userID, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemorySessionRepository) Lookup(_ context.Context, sessionID string) (uint, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return 0, false, nil
	}
	if !r.now().Before(s.expiresAt) {
		delete(r.sessions, sessionID)
		return 0, false, nil
	}
	return s.userID, true, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
