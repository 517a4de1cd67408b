package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	purposeSession = "session"
	purposeReset   = "password_reset"
)

// Claims identify the account a token was issued to.
type Claims struct {
	AccountID uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Purpose   string    `json:"purpose"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens. Session and password-reset
// tokens share the key and are told apart by their purpose claim.
type Tokens struct {
	secret   []byte
	ttl      time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

func NewTokens(secret string, ttl, resetTTL time.Duration) *Tokens {
	return &Tokens{
		secret:   []byte(secret),
		ttl:      ttl,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

func (t *Tokens) Issue(accountID uuid.UUID, email string) (string, error) {
	return t.sign(Claims{AccountID: accountID, Email: email, Purpose: purposeSession}, t.ttl)
}

func (t *Tokens) Verify(token string) (*Claims, error) {
	return t.parse(token, purposeSession)
}

func (t *Tokens) IssueReset(email string) (string, error) {
	return t.sign(Claims{Email: email, Purpose: purposeReset}, t.resetTTL)
}

// VerifyReset returns the email a password-reset token was issued for.
func (t *Tokens) VerifyReset(token string) (string, error) {
	claims, err := t.parse(token, purposeReset)
	if err != nil {
		return "", err
	}

	return claims.Email, nil
}

func (t *Tokens) sign(claims Claims, ttl time.Duration) (string, error) {
	now := t.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (t *Tokens) parse(token, purpose string) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
