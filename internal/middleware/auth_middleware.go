package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// SuperPasswordHeader carries the admin super password for destructive routes
const SuperPasswordHeader = "X-Admin-Password"

// JWTAuthMiddleware creates a gin middleware for JWT authentication.
func JWTAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.JWT.Secret == "" {
		logrus.Error("JWTAuthMiddleware: JWT secret is not configured, every request will be rejected")
	}
	jwtSecret := []byte(cfg.JWT.Secret)

	return func(c *gin.Context) {
		if len(jwtSecret) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication is not configured"})
			return
		}

		const BearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logrus.WithField("path", c.FullPath()).Warn("JWTAuthMiddleware: Authorization header is missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			logrus.Warn("JWTAuthMiddleware: Authorization header format is invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}
		tokenString := authHeader[len(BearerSchema):]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil {
			logrus.WithError(err).Warn("JWTAuthMiddleware: Token parsing/validation failed")
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			logrus.Warn("JWTAuthMiddleware: Token claims invalid or token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		c.Set(models.ContextUserID, sub)
		c.Set(models.ContextUserEmail, email)
		c.Set(models.ContextUserRole, role)
		c.Next()
	}
}

// RequireRole lets the request through only when the token carries one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(models.ContextUserRole)
		if !allowed[role] {
			logrus.WithFields(logrus.Fields{
				"user_id": c.GetString(models.ContextUserID),
				"role":    role,
				"path":    c.FullPath(),
			}).Warn("RequireRole: Access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// SuperPasswordMiddleware guards destructive admin routes with a second
// secret checked against a bcrypt hash. Without a configured hash the
// routes stay closed.
func SuperPasswordMiddleware(cfg *config.Config) gin.HandlerFunc {
	hash := []byte(cfg.Admin.SuperPasswordHash)
	return func(c *gin.Context) {
		if len(hash) == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Super password is not configured"})
			return
		}
		password := c.GetHeader(SuperPasswordHeader)
		if password == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Super password is required"})
			return
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
			logrus.WithField("user_id", c.GetString(models.ContextUserID)).Warn("SuperPasswordMiddleware: Wrong super password")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid super password"})
			return
		}
		c.Next()
	}
}
