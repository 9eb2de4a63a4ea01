package handler

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"finreport/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Authenticator checks a username and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (dto.User, error)
}

// Auth issues and verifies HS256 bearer tokens.
type Auth struct {
	users  Authenticator
	secret []byte
	ttl    time.Duration
}

func NewAuth(users Authenticator, secret []byte, ttl time.Duration) *Auth {
	return &Auth{users: users, secret: secret, ttl: ttl}
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (a *Auth) login(c *gin.Context) {
	var req dto.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := a.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := a.issue(user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token})
}

func (a *Auth) issue(user dto.User, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"roles":    user.Roles,
		"iat":      now.Unix(),
		"exp":      now.Add(a.ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

// Middleware rejects requests without a valid bearer token and stores the
// username and roles claims on the context.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		username, _ := claims["username"].(string)
		c.Set("username", username)
		var roles []string
		if list, ok := claims["roles"].([]interface{}); ok {
			for _, r := range list {
				if s, ok := r.(string); ok {
					roles = append(roles, s)
				}
			}
		}
		c.Set("roles", roles)
		c.Next()
	}
}

// RequireRole lets the request through only when Middleware stored role
// among the token's roles.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("roles")
		roles, _ := v.([]string)
		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
