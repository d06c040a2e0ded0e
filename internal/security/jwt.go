package security

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier resolves bearer credentials issued by the external identity provider
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier creates a new JWT verifier. An empty issuer disables the issuer check.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify validates a bearer token and returns the caller it identifies.
// Every failure is reported as Unauthorized.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*domain.Caller, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, domain.Unauthorized("missing bearer token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, domain.Unauthorized("invalid bearer token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.Unauthorized("invalid bearer token")
	}

	uid := stringClaim(claims, "uid")
	if uid == "" {
		uid = stringClaim(claims, "sub")
	}
	if uid == "" {
		return nil, domain.Unauthorized("token has no subject")
	}

	return &domain.Caller{
		UserID: uid,
		Email:  stringClaim(claims, "email"),
		Claims: map[string]any(claims),
	}, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}
