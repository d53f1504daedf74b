package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// AdminSession is one issued admin login. Sessions live server-side so
// a token can be revoked before its JWT expiry.
type AdminSession struct {
	Id       string
	Username string
	IssuedAt time.Time
}

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	// Purge expired sessions every 10 minutes.
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *AdminSession) {
	r.cache.Set(session.Id, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionId string) (*AdminSession, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*AdminSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
