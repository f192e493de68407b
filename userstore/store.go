package userstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"setuptrack/infrastructure/argon"
	"setuptrack/infrastructure/jsonstore"
	"setuptrack/models"
)

// Bootstrap credentials, created only when users.json is missing or empty.
const (
	AdminUsername   = "admin"
	defaultPassword = "admin123"
)

// Store owns users.json. The file holds a list of users; in memory they are
// keyed by username.
type Store struct {
	path string
	mu   sync.RWMutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() map[string]models.User {
	var list []models.User
	jsonstore.ReadFile(s.path, &list)

	users := make(map[string]models.User, len(list))
	for _, u := range list {
		if u.Username == "" {
			continue
		}
		if u.Profile != models.ProfileAuditor && u.Profile != models.ProfileSupplier {
			u.Profile = models.ProfileAuditor
		}
		users[u.Username] = u
	}
	return users
}

func (s *Store) save(users map[string]models.User) error {
	list := make([]models.User, 0, len(users))
	for _, u := range users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return jsonstore.WriteFile(s.path, list)
}

// EnsureAdmin creates the default admin account when no users exist yet.
func (s *Store) EnsureAdmin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	if len(users) > 0 {
		return nil
	}
	hash, err := argon.CreateHash(defaultPassword, argon.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	users[AdminUsername] = models.User{
		Username:    AdminUsername,
		Password:    hash,
		Profile:     models.ProfileAuditor,
		LastUpdated: time.Now().Format("2006-01-02 15:04:05"),
	}
	return s.save(users)
}

// Upsert adds a user or replaces an existing one's password and profile.
// Unknown profiles fall back to auditor and the admin account is always an
// auditor.
func (s *Store) Upsert(username, password, profile string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}
	if profile != models.ProfileAuditor && profile != models.ProfileSupplier {
		profile = models.ProfileAuditor
	}
	if username == AdminUsername {
		profile = models.ProfileAuditor
	}

	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.load()
	users[username] = models.User{
		Username:    username,
		Password:    hash,
		Profile:     profile,
		LastUpdated: time.Now().Format("2006-01-02 15:04:05"),
	}
	return s.save(users)
}

// Delete removes a user. The admin account, the last remaining user and the
// requesting user themselves are protected.
func (s *Store) Delete(username, requestedBy string) error {
	if username == AdminUsername {
		return fmt.Errorf("the admin account cannot be deleted")
	}
	if username == requestedBy {
		return fmt.Errorf("you cannot delete your own account")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.load()
	if _, ok := users[username]; !ok {
		return fmt.Errorf("user %q not found", username)
	}
	if len(users) <= 1 {
		return fmt.Errorf("the last user cannot be deleted")
	}
	delete(users, username)
	return s.save(users)
}

// Authenticate checks a username/password pair against the stored hash.
func (s *Store) Authenticate(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.load()[username]
	if !ok {
		return false
	}
	match, err := argon.ComparePasswordAndHash(password, u.Password)
	return err == nil && match
}

// Get returns one user by name.
func (s *Store) Get(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.load()[username]
	return u, ok
}

// Profile returns the user's profile, defaulting to supplier for unknown
// users so a stale session can never gain auditor access.
func (s *Store) Profile(username string) string {
	u, ok := s.Get(username)
	if !ok {
		return models.ProfileSupplier
	}
	return u.Profile
}

// List returns all users ordered by username, password hashes blanked.
func (s *Store) List() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.load()
	list := make([]models.User, 0, len(users))
	for _, u := range users {
		u.Password = ""
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list
}
