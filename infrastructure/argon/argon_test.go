package argon

import (
	"strings"
	"testing"
)

func TestCreateHashAndCompare(t *testing.T) {
	hash, err := CreateHash("Operator123!Pass", DefaultParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash encoding: %s", hash)
	}

	ok, err := ComparePasswordAndHash("Operator123!Pass", hash)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching password to verify")
	}

	ok, err = ComparePasswordAndHash("wrong-password", hash)
	if err != nil {
		t.Fatalf("compare wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestCreateHashRejectsEmptyPassword(t *testing.T) {
	if _, err := CreateHash("   ", nil); err == nil {
		t.Fatalf("expected error for blank password")
	}
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	if _, err := ComparePasswordAndHash("pw", "$bcrypt$whatever"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

func TestHashesAreSalted(t *testing.T) {
	a, err := CreateHash("SamePassword1!", nil)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	b, err := CreateHash("SamePassword1!", nil)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
}
