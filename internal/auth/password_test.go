package auth

import "testing"

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("abcdef", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "abcdef" {
		t.Fatalf("expected hashed value, got plaintext")
	}
	if err := ComparePassword(hash, "abcdef"); err != nil {
		t.Fatalf("expected verify to succeed: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected verify to fail for wrong password")
	}
}

func TestHashPassword_SaltedVariance(t *testing.T) {
	first, err := HashPassword("abcdef", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("abcdef", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct salted hashes")
	}
	if err := ComparePassword(second, "abcdef"); err != nil {
		t.Fatalf("second hash should still verify: %v", err)
	}
}
