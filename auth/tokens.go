package auth

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/mbolis/survey-desk/config"
	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

var ErrInvalidToken = errors.New("invalid token")

// Principal is the authenticated caller carried by a token.
type Principal struct {
	UserID string
	Role   model.Role
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == model.RoleSuperAdmin
}

// Tokens signs access tokens with HS256 and refresh tokens with HS512,
// each with its own secret.
type Tokens struct {
	access     *jwtauth.JWTAuth
	refresh    *jwtauth.JWTAuth
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewTokens(cfg config.Config) *Tokens {
	return &Tokens{
		access:     jwtauth.New("HS256", []byte(cfg.AccessSecret), nil),
		refresh:    jwtauth.New("HS512", []byte(cfg.RefreshSecret), nil),
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
}

// Access is the verifier used by the authentication middleware.
func (t *Tokens) Access() *jwtauth.JWTAuth {
	return t.access
}

func (t *Tokens) IssueAccess(p Principal) (string, error) {
	return issue(t.access, p, t.AccessTTL)
}

func (t *Tokens) IssueRefresh(p Principal) (string, error) {
	return issue(t.refresh, p, t.RefreshTTL)
}

func issue(ja *jwtauth.JWTAuth, p Principal, ttl time.Duration) (string, error) {
	claims := map[string]any{
		"sub":  p.UserID,
		"role": string(p.Role),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)
	_, token, err := ja.Encode(claims)
	if err != nil {
		return "", errors.Wrap(err, "auth.issue")
	}
	return token, nil
}

func (t *Tokens) VerifyRefresh(token string) (Principal, error) {
	return verify(t.refresh, token)
}

func (t *Tokens) VerifyAccess(token string) (Principal, error) {
	return verify(t.access, token)
}

func verify(ja *jwtauth.JWTAuth, tokenString string) (Principal, error) {
	token, err := jwtauth.VerifyToken(ja, tokenString)
	if err != nil {
		return Principal{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	claims := map[string]any{"sub": token.Subject()}
	if role, ok := token.Get("role"); ok {
		claims["role"] = role
	}
	return PrincipalFromClaims(claims)
}

// PrincipalFromClaims reads the sub and role claims.
func PrincipalFromClaims(claims map[string]any) (Principal, error) {
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return Principal{}, errors.Wrap(ErrInvalidToken, "missing sub")
	}
	switch model.Role(role) {
	case model.RoleAdmin, model.RoleSuperAdmin:
	default:
		return Principal{}, errors.Wrapf(ErrInvalidToken, "unknown role %q", role)
	}
	return Principal{UserID: sub, Role: model.Role(role)}, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
