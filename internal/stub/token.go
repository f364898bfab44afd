package stub

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// tokenIssuer mints and validates the bearer tokens the stub hands out.
// The client side keeps treating them as opaque strings.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

type userClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func newTokenIssuer(secret string) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret), ttl: time.Hour}
}

// Issue creates a signed token for the given user
func (t *tokenIssuer) Issue(userID, email string) (string, error) {
	claims := userClaims{
		Email:  email,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses a token and returns its claims
func (t *tokenIssuer) Validate(tokenString string) (*userClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &userClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*userClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
