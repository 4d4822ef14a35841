package dsdk

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenStr
}

func mintUserToken(t *testing.T, sub, email string, exp int64) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"iss":   "supabase",
		"iat":   float64(time.Now().Unix()),
	}
	if exp != 0 {
		claims["exp"] = float64(exp)
	}
	return mintToken(t, claims)
}

func TestClaimsFromTokenRoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tokenStr := mintUserToken(t, "user-1", "alice@example.com", exp)

	tc, err := ClaimsFromToken(tokenStr)
	if err != nil {
		t.Fatalf("ClaimsFromToken error: %v", err)
	}

	if tc.ID != "user-1" {
		t.Errorf("expected ID user-1, got %s", tc.ID)
	}
	if tc.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", tc.Email)
	}
	if tc.Iss != "supabase" {
		t.Errorf("expected iss supabase, got %s", tc.Iss)
	}
	if tc.Exp != exp {
		t.Errorf("expected exp %d, got %d", exp, tc.Exp)
	}
}

func TestClaimsFromTokenHandlesNumericSub(t *testing.T) {
	tokenStr := mintToken(t, jwt.MapClaims{
		"sub": float64(42),
		"exp": float64(2000),
		"iat": float64(1000),
	})

	tc, err := ClaimsFromToken(tokenStr)
	if err != nil {
		t.Fatalf("ClaimsFromToken error: %v", err)
	}
	if tc.ID != "42" {
		t.Errorf("expected ID 42, got %s", tc.ID)
	}
	if tc.Iat != 1000 || tc.Exp != 2000 {
		t.Errorf("unexpected timestamps: iat=%d exp=%d", tc.Iat, tc.Exp)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Unix()
	tokenStr := mintUserToken(t, "u", "u@example.com", exp)

	got, err := TokenExpiry(tokenStr)
	if err != nil {
		t.Fatalf("TokenExpiry error: %v", err)
	}
	if got != exp {
		t.Errorf("expected %d, got %d", exp, got)
	}

	if _, err := TokenExpiry("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenExpiryNoExpClaim(t *testing.T) {
	tokenStr := mintToken(t, jwt.MapClaims{"sub": "u"})
	got, err := TokenExpiry(tokenStr)
	if err != nil {
		t.Fatalf("TokenExpiry error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for missing exp, got %d", got)
	}
}

func TestIsTokenExpired(t *testing.T) {
	live := mintUserToken(t, "u", "u@example.com", time.Now().Add(time.Hour).Unix())
	dead := mintUserToken(t, "u", "u@example.com", time.Now().Add(-time.Hour).Unix())

	expired, err := IsTokenExpired(live, 0)
	if err != nil {
		t.Fatalf("IsTokenExpired error: %v", err)
	}
	if expired {
		t.Error("live token reported expired")
	}

	expired, err = IsTokenExpired(dead, 0)
	if err != nil {
		t.Fatalf("IsTokenExpired error: %v", err)
	}
	if !expired {
		t.Error("dead token reported live")
	}

	// Skew pushes a soon-to-expire token over the line.
	soon := mintUserToken(t, "u", "u@example.com", time.Now().Add(30*time.Second).Unix())
	expired, err = IsTokenExpired(soon, time.Minute)
	if err != nil {
		t.Fatalf("IsTokenExpired error: %v", err)
	}
	if !expired {
		t.Error("token inside the skew window reported live")
	}

	if expired, _ := IsTokenExpired("", 0); !expired {
		t.Error("empty token should count as expired")
	}
}
