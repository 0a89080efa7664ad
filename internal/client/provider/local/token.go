package local

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keySigningKey = "local.signing_key"
	keySession    = "local.session_token"

	signingKeySize = 32
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

// Claims are the session token claims. Version must match the user's token
// version for the token to be accepted.
type Claims struct {
	jwt.RegisteredClaims
	Version int64 `json:"ver"`
}

func generateToken(userID string, version int64, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Version: version,
	})
	return token.SignedString(secret)
}

func parseToken(tokenString string, secret []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// signingKey returns the database's signing key, creating it on first use.
func signingKey(ctx context.Context, db dbx.DBTX) ([]byte, error) {
	repo := metadata.NewSQLiteRepository(db)

	key, err := repo.Get(ctx, keySigningKey)
	if err != nil {
		return nil, err
	}
	if len(key) == signingKeySize {
		return key, nil
	}

	key = make([]byte, signingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	if err := repo.Set(ctx, keySigningKey, key); err != nil {
		return nil, err
	}
	return key, nil
}
