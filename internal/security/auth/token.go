package auth

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the minimum signing key length in bytes for HS256.
const MinSecretLen = 32

// TokenManager issues and validates stateless bearer tokens. The subject
// claim is the decimal user id: immutable even if the email changes, and
// resolved by the authentication gate with a single GetByID lookup.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	logger *slog.Logger
}

// NewTokenManager creates a token manager. It refuses keys shorter than
// MinSecretLen so a misconfigured deployment fails at startup, not at the
// first forged token.
func NewTokenManager(secret, issuer string, ttl time.Duration, logger *slog.Logger) (*TokenManager, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}
	if issuer == "" {
		issuer = "campus-map"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Issue builds and signs a token for the given user id. Pure computation,
// nothing is persisted server-side.
func (tm *TokenManager) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    tm.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer and expiry and returns the subject
// user id. On any failure it returns (0, false); the specific cause is only
// logged. Callers treat an invalid token exactly like an absent one.
func (tm *TokenManager) Validate(tokenString string) (int64, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithExpirationRequired())
	if err != nil {
		tm.logger.Warn("token validation failed", slog.String("error", err.Error()))
		return 0, false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		tm.logger.Warn("token has invalid claims")
		return 0, false
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		tm.logger.Warn("token subject is not a user id", slog.String("subject", claims.Subject))
		return 0, false
	}

	return userID, true
}

// ExtractBearer pulls the token out of an Authorization header value.
// It expects the literal "Bearer " scheme prefix.
func ExtractBearer(authHeader string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}
	token := authHeader[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
