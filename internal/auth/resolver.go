package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the web console's session token.
const SessionCookieName = "hearth_session"

// Resolver maps an inbound request to a user ID. Resolvers are tried in a
// fixed order by the authentication middleware; a resolver whose credential
// is absent or invalid returns ok=false so the next one can be consulted.
type Resolver interface {
	Resolve(c *gin.Context) (userID string, ok bool)
}

// SessionResolver resolves the web console's session cookie.
type SessionResolver struct {
	Secret []byte
}

// Resolve decodes the session cookie and extracts the subject user ID.
func (r *SessionResolver) Resolve(c *gin.Context) (string, bool) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie == "" {
		return "", false
	}

	claims, err := parseToken(r.Secret, cookie)
	if err != nil || claims.TokenType != TokenTypeSession {
		return "", false
	}
	return claims.UserID, true
}

// BearerResolver resolves the mobile client's Authorization header.
type BearerResolver struct {
	Secret []byte
}

// Resolve verifies a "Bearer <token>" access token and extracts the subject
// user ID. Refresh tokens presented as access tokens are rejected.
func (r *BearerResolver) Resolve(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	claims, err := parseToken(r.Secret, parts[1])
	if err != nil || claims.TokenType != TokenTypeAccess {
		return "", false
	}
	return claims.UserID, true
}
