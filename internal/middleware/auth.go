package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/pkg/response"
)

// Context keys set by Auth
const (
	SubjectKey     = "subject"
	PermissionsKey = "permissions"
)

// Permission names accepted by RequirePermission
const (
	PermAdd    = "add"
	PermEdit   = "edit"
	PermDelete = "delete"
	PermView   = "view"
)

// Claims is the JWT payload of an API token
type Claims struct {
	Role        string             `json:"role"`
	Permissions models.Permissions `json:"permissions"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject carrying the permissions of role
func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:        role,
		Permissions: models.PermissionsForRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies a token and returns its claims
func ParseToken(secret, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Auth reads a bearer token and stores its subject and permissions on the
// context. When required is false, requests without a token get full
// permissions as "anonymous"; a token that is present must still be valid.
func Auth(secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				response.Unauthorized(c, "missing bearer token")
				c.Abort()
				return
			}
			c.Set(SubjectKey, "anonymous")
			c.Set(PermissionsKey, models.PermissionsForRole(models.RoleAdmin))
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Unauthorized(c, "authorization header must be a bearer token")
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(PermissionsKey, claims.Permissions)
		c.Next()
	}
}

// RequirePermission rejects the request with 403 unless the caller holds perm
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(PermissionsKey)
		p, _ := v.(models.Permissions)

		var allowed bool
		switch perm {
		case PermAdd:
			allowed = p.Add
		case PermEdit:
			allowed = p.Edit
		case PermDelete:
			allowed = p.Delete
		case PermView:
			allowed = p.View
		}

		if !allowed {
			response.Forbidden(c, "missing permission: "+perm)
			c.Abort()
			return
		}
		c.Next()
	}
}
