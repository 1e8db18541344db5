// jwt.go provides JWT bearer authentication middleware.
//
// Tokens are verified with the shared secret alone; there is no user table.
// The token subject becomes the client identity used for rate limiting and
// for scoping extraction history.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/models"
)

const subjectContextKey = "jwt_subject"

// DefaultTokenTTL is how long a minted token stays valid.
const DefaultTokenTTL = 72 * time.Hour

// GenerateJWT creates a signed HS256 token for subject.
func GenerateJWT(subject, secret string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates a token string and returns its claims.
// Only HS256 is accepted, so a token cannot pick its own algorithm.
func ParseJWT(tokenString, secret string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JWTAuth returns middleware that requires a valid Bearer token.
// An empty secret disables authentication entirely.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing or invalid Authorization header. Use 'Bearer <token>'",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		claims, err := ParseJWT(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		c.Set(subjectContextKey, claims.Subject)
		c.Next()
	}
}

// GetSubject returns the authenticated token subject, or "" when the
// request was not authenticated.
func GetSubject(c *gin.Context) string {
	return c.GetString(subjectContextKey)
}

// ClientID identifies the caller: the token subject when authenticated,
// otherwise the client IP.
func ClientID(c *gin.Context) string {
	if sub := GetSubject(c); sub != "" {
		return "sub:" + sub
	}
	return "ip:" + c.ClientIP()
}
