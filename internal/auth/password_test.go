package auth

import (
	"errors"
	"strings"
	"testing"
)

// cheap parameters keep the test suite fast; correctness does not depend on cost
var testParams = HashParams{Time: 1, Memory: 16 * 1024, Threads: 1}

func TestHash_Format(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Verify PHC format: $argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Errorf("Hash should have 6 parts, got: %d", len(parts))
	}

	if parts[3] != "m=16384,t=1,p=1" {
		t.Errorf("Expected m=16384,t=1,p=1, got: %s", parts[3])
	}
}

func TestHash_Uniqueness(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	password := "the_same_password_12345"

	hash1, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	hash2, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Same password should produce different hashes (different salts)
	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	// But both should be valid and verify correctly
	match1, _ := h.Verify(password, hash1)
	match2, _ := h.Verify(password, hash2)

	if !match1 || !match2 {
		t.Error("Both hashes should verify correctly")
	}
}

func TestVerify_Correct(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	password := "pw1"

	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := h.Verify(password, hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !match {
		t.Error("Correct password should match")
	}
}

func TestVerify_Incorrect(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)

	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := h.Verify("pw2", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestVerify_CostChangeStillVerifies(t *testing.T) {
	t.Parallel()

	// hash with one set of parameters, verify with a hasher configured
	// differently; parameters are read back from the stored hash
	hash, err := NewHasher(testParams).Hash("pw1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := NewHasher(HashParams{Time: 2, Memory: 32 * 1024, Threads: 2}).Verify("pw1", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !match {
		t.Error("Hash should verify regardless of the hasher's configured cost")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)

	cases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not a hash", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=16384,t=1,p=1$c2FsdA$aGFzaA"},
		{"truncated", "$argon2id$v=19$m=16384"},
		{"bad base64 salt", "$argon2id$v=19$m=16384,t=1,p=1$!!!$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=x,t=y,p=z$c2FsdA$aGFzaA"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			match, err := h.Verify("pw1", tc.hash)
			if match {
				t.Error("malformed hash must never match")
			}
			if err == nil {
				t.Error("malformed hash should report an error")
			}
		})
	}
}

func TestVerify_IncompatibleVersion(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	_, err := h.Verify("pw1", "$argon2id$v=18$m=16384,t=1,p=1$c2FsdA$aGFzaA")
	if !errors.Is(err, ErrIncompatibleVersion) {
		t.Errorf("expected ErrIncompatibleVersion, got %v", err)
	}
}

func TestTokenDigest_Deterministic(t *testing.T) {
	t.Parallel()

	if TokenDigest("abc") != TokenDigest("abc") {
		t.Error("digest should be deterministic")
	}
	if TokenDigest("abc") == TokenDigest("abd") {
		t.Error("different inputs should produce different digests")
	}
	if len(TokenDigest("abc")) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(TokenDigest("abc")))
	}
}
