package rbac

import (
	"strings"
	"sync"
)

// Profiles known to the authorization layer.
const (
	ProfileAuditor  = "auditor"
	ProfileSupplier = "supplier"
)

// Resource is one routable operation a profile may reach.
type Resource struct {
	Code   string
	Method string
	Path   string
}

// Rbac maps profiles to the resources they are allowed to reach. Routes are
// registered at startup and only read afterwards.
type Rbac struct {
	mu        sync.RWMutex
	resources map[string][]Resource
}

func New() *Rbac {
	return &Rbac{resources: make(map[string][]Resource)}
}

// Add grants profile access to the method+path pair. Path segments equal to
// "*" match any single segment; a trailing "*" matches the rest of the path.
func (r *Rbac) Add(profile, code, method, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[profile] = append(r.resources[profile], Resource{
		Code:   code,
		Method: method,
		Path:   path,
	})
}

// ValidateResourceAccess reports whether the profile may call method+path.
func (r *Rbac) ValidateResourceAccess(profile, method, path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.resources[profile] {
		if res.Method == method && matchPath(res.Path, path) {
			return true
		}
	}
	return false
}

// Resources returns the registered resources for a profile.
func (r *Rbac) Resources(profile string) []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Resource, len(r.resources[profile]))
	copy(out, r.resources[profile])
	return out
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	for i, pp := range patternParts {
		if pp == "*" && i == len(patternParts)-1 {
			return len(pathParts) >= i
		}
		if i >= len(pathParts) {
			return false
		}
		if pp != "*" && pp != pathParts[i] {
			return false
		}
	}
	return len(patternParts) == len(pathParts)
}
