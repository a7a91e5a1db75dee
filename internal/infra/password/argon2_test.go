package password

import (
	"strings"
	"testing"
)

func TestHashVerify(t *testing.T) {
	h := NewArgon2()
	encoded, err := h.Hash("correct-pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	ok, err := h.Verify(encoded, "correct-pw")
	if err != nil || !ok {
		t.Fatalf("Verify correct = %v, %v; want true, nil", ok, err)
	}
	ok, err = h.Verify(encoded, "wrong-pw")
	if err != nil || ok {
		t.Fatalf("Verify wrong = %v, %v; want false, nil", ok, err)
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	h := NewArgon2()
	a, err := h.Hash("same-pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same-pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must not share a salt")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	h := NewArgon2()
	if _, err := h.Verify("not-a-phc-string", "pw"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
