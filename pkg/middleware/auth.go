package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/travel-booking/pkg/response"
)

const (
	// ContextKeyUserID is the context key for the authenticated subject
	ContextKeyUserID = "user_id"
	// ContextKeyRole is the context key for the authenticated role
	ContextKeyRole = "role"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the subset of token claims the service relies on
type Claims struct {
	UserID string
	Role   string
}

// AuthConfig configures bearer token validation
type AuthConfig struct {
	Secret string
	Issuer string
}

// ParseToken validates an HMAC-signed token and extracts its claims
func ParseToken(cfg AuthConfig, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	role, _ := claims["role"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: userID, Role: role}, nil
}

// RequireRole rejects requests without a valid bearer token carrying one of roles
func RequireRole(cfg AuthConfig, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, ErrMissingToken.Error())
			return
		}

		claims, err := ParseToken(cfg, tokenString)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
			return
		}

		if !hasRole(claims.Role, roles) {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "insufficient role")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// GetUserID returns the authenticated subject, if any
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}

func hasRole(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if strings.EqualFold(role, r) {
			return true
		}
	}
	return false
}
