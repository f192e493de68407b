package cache

import (
	"sync"

	"setuptrack/models"
)

// SessionCache keeps authenticated sessions in memory keyed by token so the
// request path rarely touches sqlite.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionCache() *SessionCache {
	return &SessionCache{sessions: make(map[string]*models.Session)}
}

func (c *SessionCache) Get(token string) (*models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[token]
	return s, ok
}

func (c *SessionCache) Set(s *models.Session) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = s
}

func (c *SessionCache) Delete(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

// DeleteByUsername evicts every session belonging to the user. Used when a
// user is removed or their profile changes.
func (c *SessionCache) DeleteByUsername(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for token, s := range c.sessions {
		if s.Username == username {
			delete(c.sessions, token)
		}
	}
}
