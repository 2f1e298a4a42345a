package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService wraps JWT creation and validation for session tokens issued
// after GitHub sign-in. The "ght" claim carries the user's GitHub OAuth
// token, encrypted with the application key so the signed (but readable)
// JWT never exposes it.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// CreateForUser creates a session JWT for the given GitHub username.
// encryptedGithubToken may be empty when no OAuth token should be attached.
func (t *TokenService) CreateForUser(githubUsername, encryptedGithubToken string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": githubUsername,
		"iat": now.Unix(),
		"exp": now.Add(t.expiresIn).Unix(),
	}
	if encryptedGithubToken != "" {
		claims["ght"] = encryptedGithubToken
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns its claims.
func (t *TokenService) Parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}
