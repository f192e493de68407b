package userstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"setuptrack/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "users.json"))
}

func TestEnsureAdmin(t *testing.T) {
	s := newTestStore(t)

	if err := s.EnsureAdmin(); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	u, ok := s.Get(AdminUsername)
	if !ok || u.Profile != models.ProfileAuditor {
		t.Fatalf("admin missing or wrong profile: %+v ok=%v", u, ok)
	}
	if !s.Authenticate(AdminUsername, "admin123") {
		t.Fatalf("default credentials must authenticate")
	}

	// Second run must not touch existing users.
	if err := s.Upsert("carla", "secret-pass", models.ProfileSupplier); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.EnsureAdmin(); err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}
	if _, ok := s.Get("carla"); !ok {
		t.Fatalf("existing users must survive EnsureAdmin")
	}
}

func TestUpsertProfileRules(t *testing.T) {
	s := newTestStore(t)

	if err := s.Upsert("carla", "pw", "bogus"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got := s.Profile("carla"); got != models.ProfileAuditor {
		t.Fatalf("unknown profile must coerce to auditor, got %q", got)
	}

	if err := s.Upsert(AdminUsername, "pw", models.ProfileSupplier); err != nil {
		t.Fatalf("upsert admin: %v", err)
	}
	if got := s.Profile(AdminUsername); got != models.ProfileAuditor {
		t.Fatalf("admin must stay auditor, got %q", got)
	}

	if err := s.Upsert("", "pw", models.ProfileSupplier); err == nil {
		t.Fatalf("blank username must be rejected")
	}
	if err := s.Upsert("x", "", models.ProfileSupplier); err == nil {
		t.Fatalf("blank password must be rejected")
	}
}

func TestUpsertReplacesPassword(t *testing.T) {
	s := newTestStore(t)

	if err := s.Upsert("carla", "first-pass", models.ProfileSupplier); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert("carla", "second-pass", models.ProfileAuditor); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if s.Authenticate("carla", "first-pass") {
		t.Fatalf("old password must stop working")
	}
	if !s.Authenticate("carla", "second-pass") {
		t.Fatalf("new password must work")
	}
	if got := s.Profile("carla"); got != models.ProfileAuditor {
		t.Fatalf("profile must update, got %q", got)
	}
}

func TestDeleteGuards(t *testing.T) {
	s := newTestStore(t)
	if err := s.EnsureAdmin(); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := s.Upsert("carla", "pw1234", models.ProfileSupplier); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.Delete(AdminUsername, "carla"); err == nil {
		t.Fatalf("admin must not be deletable")
	}
	if err := s.Delete("carla", "carla"); err == nil {
		t.Fatalf("self-deletion must be rejected")
	}
	if err := s.Delete("nobody", AdminUsername); err == nil {
		t.Fatalf("unknown user must error")
	}

	if err := s.Delete("carla", AdminUsername); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get("carla"); ok {
		t.Fatalf("deleted user must be gone")
	}
}

func TestProfileDefaultsToSupplier(t *testing.T) {
	s := newTestStore(t)
	if got := s.Profile("ghost"); got != models.ProfileSupplier {
		t.Fatalf("unknown user must default to supplier, got %q", got)
	}
}

func TestListOmitsHashesAndSorts(t *testing.T) {
	s := newTestStore(t)
	if err := s.Upsert("zoe", "pw1234", models.ProfileSupplier); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert("ana", "pw1234", models.ProfileAuditor); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	list := s.List()
	if len(list) != 2 || list[0].Username != "ana" || list[1].Username != "zoe" {
		t.Fatalf("list must be sorted: %+v", list)
	}
	for _, u := range list {
		if u.Password != "" {
			t.Fatalf("password hash must be blanked: %+v", u)
		}
	}
}

func TestFileIsListShaped(t *testing.T) {
	s := newTestStore(t)
	if err := s.Upsert("carla", "pw1234", models.ProfileSupplier); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("read users file: %v", err)
	}
	var list []models.User
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("users.json must hold a list: %v", err)
	}
	if len(list) != 1 || list[0].Username != "carla" || list[0].Password == "" {
		t.Fatalf("unexpected on-disk shape: %+v", list)
	}
	if list[0].LastUpdated == "" {
		t.Fatalf("last_updated must be stamped")
	}
}
