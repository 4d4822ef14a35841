package dsdk

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is a minimal view of the access token payload. It is parsed
// without signature verification: the client has no signing key, and these
// values drive local expiry bookkeeping and display only, never authorization.
type TokenClaims struct {
	ID    string
	Email string
	Iss   string
	Iat   int64
	Exp   int64
}

// ParseTokenClaims extracts raw claims from a JWT without verifying its
// signature. The returned MapClaims carry numeric timestamps as float64 per
// the jwt library behavior.
func ParseTokenClaims(tokenStr string) (jwt.MapClaims, error) {
	var claims jwt.MapClaims
	parser := new(jwt.Parser)
	_, _, err := parser.ParseUnverified(tokenStr, &claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ClaimsFromToken parses a token and maps its claims into TokenClaims,
// tolerating both string and numeric forms of sub/iat/exp.
func ClaimsFromToken(tokenStr string) (*TokenClaims, error) {
	mc, err := ParseTokenClaims(tokenStr)
	if err != nil {
		return nil, err
	}

	tc := &TokenClaims{}

	if sub, ok := mc["sub"]; ok {
		switch v := sub.(type) {
		case string:
			tc.ID = v
		case float64:
			tc.ID = strconv.FormatInt(int64(v), 10)
		default:
			tc.ID = fmt.Sprintf("%v", v)
		}
	}
	if email, ok := mc["email"].(string); ok {
		tc.Email = email
	}
	if iss, ok := mc["iss"].(string); ok {
		tc.Iss = iss
	}
	if iat, ok := mc["iat"]; ok {
		switch v := iat.(type) {
		case float64:
			tc.Iat = int64(v)
		case int64:
			tc.Iat = v
		}
	}
	if exp, ok := mc["exp"]; ok {
		switch v := exp.(type) {
		case float64:
			tc.Exp = int64(v)
		case int64:
			tc.Exp = v
		}
	}

	return tc, nil
}

// TokenExpiry returns the token's embedded exp claim in unix seconds, or an
// error when the token cannot be parsed. A token without an exp claim
// returns 0.
func TokenExpiry(tokenStr string) (int64, error) {
	tc, err := ClaimsFromToken(tokenStr)
	if err != nil {
		return 0, err
	}
	return tc.Exp, nil
}

// IsTokenExpired returns true when the token is expired or within the skew
// window. Unparseable tokens count as expired.
func IsTokenExpired(tokenStr string, skew time.Duration) (bool, error) {
	if tokenStr == "" {
		return true, nil
	}
	exp, err := TokenExpiry(tokenStr)
	if err != nil {
		return true, err
	}
	if exp == 0 {
		return false, nil
	}
	expiresAt := time.Unix(exp, 0).Add(-skew)
	return time.Now().After(expiresAt), nil
}
