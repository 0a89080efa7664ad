package cognito

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the persisted session of the signed-in user.
type Tokens struct {
	Username     string
	AccessToken  string
	IDToken      string
	RefreshToken string
}

var errMalformedToken = errors.New("malformed token")

// TokenStore keeps Tokens in the metadata table under keys scoped by the app
// client id.
type TokenStore struct {
	db     *sql.DB
	prefix string
}

func NewTokenStore(db *sql.DB, clientID string) *TokenStore {
	return &TokenStore{db: db, prefix: "cognito." + clientID + "."}
}

func (s *TokenStore) keys() (username, access, id, refresh string) {
	return s.prefix + "username", s.prefix + "access_token", s.prefix + "id_token", s.prefix + "refresh_token"
}

// Load returns the stored tokens, or nil when there is no stored session.
func (s *TokenStore) Load(ctx context.Context) (*Tokens, error) {
	repo := metadata.NewSQLiteRepository(s.db)
	kUser, kAccess, kID, kRefresh := s.keys()

	access, err := repo.Get(ctx, kAccess)
	if err != nil {
		return nil, err
	}
	if len(access) == 0 {
		return nil, nil
	}

	t := &Tokens{AccessToken: string(access)}
	for key, dst := range map[string]*string{kUser: &t.Username, kID: &t.IDToken, kRefresh: &t.RefreshToken} {
		v, err := repo.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		*dst = string(v)
	}
	return t, nil
}

// Save replaces the stored tokens atomically.
func (s *TokenStore) Save(ctx context.Context, t Tokens) error {
	kUser, kAccess, kID, kRefresh := s.keys()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for key, value := range map[string]string{kUser: t.Username, kAccess: t.AccessToken, kID: t.IDToken, kRefresh: t.RefreshToken} {
			if err := repo.Set(ctx, key, []byte(value)); err != nil {
				return fmt.Errorf("save tokens: %w", err)
			}
		}
		return nil
	})
}

// Clear removes the stored tokens.
func (s *TokenStore) Clear(ctx context.Context) error {
	kUser, kAccess, kID, kRefresh := s.keys()
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, kUser, kAccess, kID, kRefresh)
}

// unverifiedClaims decodes a Cognito JWT without checking its signature. The
// tokens come straight from Cognito over TLS and are only inspected for
// scheduling and display; Cognito validates them on every API call.
func unverifiedClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedToken, err)
	}
	return claims, nil
}

// expiresAt returns the exp claim of token.
func expiresAt(token string) (time.Time, error) {
	claims, err := unverifiedClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", errMalformedToken)
	}
	return exp.Time, nil
}

// usernameFromIDToken returns the cognito:username claim, if any.
func usernameFromIDToken(token string) string {
	claims, err := unverifiedClaims(token)
	if err != nil {
		return ""
	}
	name, _ := claims["cognito:username"].(string)
	return name
}
