// Package auth issues and verifies the credentials accepted by the API:
// short-lived bearer access tokens and long-lived refresh tokens for the
// mobile client, and session tokens carried in a cookie by the web console.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hearth/internal/models"
)

// Token types embedded in claims so one kind can never stand in for another.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSession = "session"
)

const issuerName = "hearth-api"

// Claims represents the claims in a Hearth JWT.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer mints signed tokens for authenticated users.
type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration
}

// AccessToken generates a short-lived bearer access token for a user.
func (i *Issuer) AccessToken(user *models.User) (string, error) {
	return i.sign(user, TokenTypeAccess, i.AccessTTL)
}

// RefreshToken generates a long-lived refresh token for a user.
func (i *Issuer) RefreshToken(user *models.User) (string, error) {
	return i.sign(user, TokenTypeRefresh, i.RefreshTTL)
}

// SessionToken generates a web session token, delivered as a cookie.
func (i *Issuer) SessionToken(user *models.User) (string, error) {
	return i.sign(user, TokenTypeSession, i.SessionTTL)
}

func (i *Issuer) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuerName,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.Secret)
}

// ValidateRefreshToken parses and validates a refresh token JWT.
// Returns the claims if valid, or an error if the token is invalid,
// expired, or not a refresh token.
func (i *Issuer) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := parseToken(i.Secret, tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("token is not a refresh token")
	}
	return claims, nil
}

// parseToken verifies the signature and expiry of a token against the secret.
func parseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a token string. Refresh tokens
// are stored hashed so a database leak cannot replay them.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
