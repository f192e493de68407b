package cache

import (
	"sync"

	"setuptrack/models"
)

// UserCache mirrors users.json in memory for cheap profile lookups on the
// request path.
type UserCache struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserCache() *UserCache {
	return &UserCache{users: make(map[string]models.User)}
}

func (c *UserCache) Get(username string) (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[username]
	return u, ok
}

func (c *UserCache) Set(u models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.Username] = u
}

func (c *UserCache) Delete(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, username)
}

// Replace swaps the whole cache contents, used after reloading users.json.
func (c *UserCache) Replace(users []models.User) {
	next := make(map[string]models.User, len(users))
	for _, u := range users {
		next[u.Username] = u
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = next
}
