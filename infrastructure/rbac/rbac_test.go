package rbac

import "testing"

func TestValidateResourceAccess(t *testing.T) {
	r := New()
	r.Add(ProfileSupplier, "setup-page", "GET", "/app/setup")
	r.Add(ProfileSupplier, "cell-lookup", "GET", "/app/api/cells/*")
	r.Add(ProfileSupplier, "photos", "GET", "/app/photos/*")
	r.Add(ProfileAuditor, "audit-page", "GET", "/app/audit")

	if !r.ValidateResourceAccess(ProfileSupplier, "GET", "/app/setup") {
		t.Fatalf("expected supplier to reach /app/setup")
	}
	if !r.ValidateResourceAccess(ProfileSupplier, "GET", "/app/api/cells/CELL_05") {
		t.Fatalf("expected wildcard segment to match")
	}
	if !r.ValidateResourceAccess(ProfileSupplier, "GET", "/app/photos/CELL_05/ORD1_supply/img.jpg") {
		t.Fatalf("expected trailing wildcard to match nested path")
	}
	if r.ValidateResourceAccess(ProfileSupplier, "POST", "/app/setup") {
		t.Fatalf("method must be part of the match")
	}
	if r.ValidateResourceAccess(ProfileSupplier, "GET", "/app/audit") {
		t.Fatalf("supplier must not reach auditor routes")
	}
	if r.ValidateResourceAccess("unknown", "GET", "/app/setup") {
		t.Fatalf("unregistered profile must be denied")
	}
}

func TestMatchPathExactLength(t *testing.T) {
	r := New()
	r.Add(ProfileAuditor, "item-list", "GET", "/app/api/cells/*/products/*/items")

	if !r.ValidateResourceAccess(ProfileAuditor, "GET", "/app/api/cells/CELL_01/products/P100/items") {
		t.Fatalf("expected mid-path wildcards to match")
	}
	if r.ValidateResourceAccess(ProfileAuditor, "GET", "/app/api/cells/CELL_01/products/P100") {
		t.Fatalf("shorter path must not match")
	}
}
