package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/faktura/internal/model"
)

const issuer = "faktura"

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the account by subject (its UUID).
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an HS256 access token issued by this service and resolves
// its principal.
func (p *Parser) Parse(raw string) (model.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Principal{}, ErrInvalidToken
	}

	claims := &Claims{}
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}
	token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return model.Principal{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return model.Principal{UserID: userID, Email: claims.Email}, nil
}

type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// Issue signs an access token for the principal valid for ttl.
func (i *Issuer) Issue(principal model.Principal, ttl time.Duration) (string, error) {
	if !principal.IsAuthenticated() {
		return "", errors.New("issue token: user id is required")
	}
	now := i.now()
	claims := Claims{
		Email: principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principal.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}
