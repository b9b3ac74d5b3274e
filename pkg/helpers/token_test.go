package helpers

import (
	"testing"
	"time"
)

func TestGenerateAccountNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		n, err := GenerateAccountNumber()
		if err != nil {
			t.Fatal(err)
		}
		if len(n) != 10 {
			t.Fatalf("len(%q)=%d want=10", n, len(n))
		}
		if n[0] == '0' {
			t.Fatalf("leading zero: %q", n)
		}
		for _, c := range n {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in %q", n)
			}
		}
		seen[n] = true
	}
	// with 9e9 possibilities, 200 draws colliding would mean a broken RNG
	if len(seen) < 199 {
		t.Fatalf("distinct=%d, generator looks biased", len(seen))
	}
}

func TestGenerateResetToken(t *testing.T) {
	a, err := GenerateResetToken(32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateResetToken(32)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("len=%d,%d want=64", len(a), len(b))
	}
	if a == b {
		t.Fatal("tokens must be unique")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, exp, err := m.GenerateToken("acct-1", "user", "sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("exp in the past: %v", exp)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "acct-1" || claims.Role != "user" || claims.SessionID != "sid-1" {
		t.Fatalf("claims=%+v", claims)
	}

	other := &JWTManager{Secret: []byte("different"), TTL: time.Hour}
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must fail")
	}
}
