package memory

import (
	"time"

	"ai-knowledge-bot/pkg/store"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultSessionTTL      = 1 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// SessionRepository caches live sessions by user id. Reads refresh the
// expiry so active users keep their bot loaded.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepository{
		cache: cache.New(ttl, DefaultCleanupInterval),
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.UserID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(userID string) (*store.Session, bool) {
	x, found := r.cache.Get(userID)
	if !found {
		return nil, false
	}
	session := x.(*store.Session)
	r.cache.Set(userID, session, cache.DefaultExpiration)
	return session, true
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// OnEvicted registers f to run when a session expires or is deleted.
func (r *SessionRepository) OnEvicted(f func(userID string)) {
	r.cache.OnEvicted(func(key string, _ interface{}) {
		f(key)
	})
}
