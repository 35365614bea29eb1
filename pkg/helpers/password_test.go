package helpers

import "testing"

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the raw password")
	}
	if !CompareHashAndPassword(hash, "secret1") {
		t.Error("correct password did not verify")
	}
	if CompareHashAndPassword(hash, "wrongpass") {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ by salt")
	}
}
