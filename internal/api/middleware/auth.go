package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "user_id"
)

var ErrMissingToken = errors.New("missing token")

// JWTClaims are the claims the portal issues
type JWTClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// NewToken signs an HS256 token for userID
func NewToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns its claims
func ParseToken(secret, token string) (*JWTClaims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// BearerToken extracts a token from the Authorization header or the token query parameter
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

// JWTAuth requires a valid bearer token. With an empty secret authentication is disabled.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		claims, err := ParseToken(secret, BearerToken(c))
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, ErrMissingToken) {
				msg = "Missing token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}
