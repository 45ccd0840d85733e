package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"buzzer-game-service/internal/app"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - Live sessions stay in a local in-process map; the single-writer
//     game loop per session only works in-process.
//   - Redis marks session liveness so operators (and a future cross-node
//     router) can discover which games are running where.
type SessionRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Add(session *app.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(session.ID()), session.Code(), r.ttl).Err()
}

func (r *SessionRegistry) Get(sessionID string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	_ = r.client.Del(context.Background(), r.key(sessionID)).Err()
}

func (r *SessionRegistry) key(sessionID string) string {
	return "game:session:" + sessionID
}
