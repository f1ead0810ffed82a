// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	claimEmail = "email"
	claimKind  = "kind"

	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Identity is the authenticated owner resolved from a bearer token.
type Identity struct {
	UserID string
	Email  string
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type IssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Clock         clock.Clock
}

// Issuer signs HS256 tokens. Access and refresh tokens use separate keys
// so one can never be replayed as the other.
type Issuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.AccessSecret == "" {
		return nil, errors.NotValidf("empty access secret")
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret + ".refresh"
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 7 * 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	return &Issuer{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		clock:      cfg.Clock,
	}, nil
}

// Issue returns a fresh access/refresh pair for the identity.
func (i *Issuer) Issue(id Identity) (Tokens, error) {
	access, err := i.sign(id, kindAccess, i.accessKey, i.accessTTL)
	if err != nil {
		return Tokens{}, errors.Annotate(err, "signing access token")
	}
	refresh, err := i.sign(id, kindRefresh, i.refreshKey, i.refreshTTL)
	if err != nil {
		return Tokens{}, errors.Annotate(err, "signing refresh token")
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(id Identity, kind string, key []byte, ttl time.Duration) (string, error) {
	now := i.clock.Now()
	tok, err := jwt.NewBuilder().
		Subject(id.UserID).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(claimEmail, id.Email).
		Claim(claimKind, kind).
		Build()
	if err != nil {
		return "", errors.Trace(err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, key))
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(signed), nil
}

// VerifyAccess validates an access token.
func (i *Issuer) VerifyAccess(token string) (Identity, error) {
	return i.verify(token, kindAccess, i.accessKey)
}

// VerifyRefresh validates a refresh token.
func (i *Issuer) VerifyRefresh(token string) (Identity, error) {
	return i.verify(token, kindRefresh, i.refreshKey)
}

func (i *Issuer) verify(token, kind string, key []byte) (Identity, error) {
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(i.clock.Now)),
	)
	if err != nil {
		return Identity{}, errors.Unauthorizedf("invalid token")
	}

	if got, _ := parsed.Get(claimKind); got != kind {
		return Identity{}, errors.Unauthorizedf("invalid token")
	}
	if parsed.Subject() == "" {
		return Identity{}, errors.Unauthorizedf("invalid token")
	}

	email, _ := parsed.Get(claimEmail)
	emailStr, _ := email.(string)
	return Identity{UserID: parsed.Subject(), Email: emailStr}, nil
}
