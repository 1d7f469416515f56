package memory

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core/exam"
)

const issuer = "repoprovas"

// Claims represents the session claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	key        []byte
	expiration time.Duration
	NowFunc    func() time.Time // mockable
}

func NewSessions(secretKey string, expiration time.Duration) *Sessions {
	return &Sessions{key: []byte(secretKey), expiration: expiration, NowFunc: time.Now}
}

// Issue generates a signed token for the given account email.
func (s *Sessions) Issue(email string) (string, error) {
	now := s.NowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   email,
			ExpiresAt: now.Add(s.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify parses token and returns its claims, or exam.ErrUnauthorized.
func (s *Sessions) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, exam.ErrUnauthorized
	}
	claims := new(Claims)
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, exam.ErrUnauthorized
	}
	// expiry is checked against NowFunc
	if !claims.VerifyExpiresAt(s.NowFunc().Unix(), true) || claims.Issuer != issuer {
		return nil, exam.ErrUnauthorized
	}
	return claims, nil
}
