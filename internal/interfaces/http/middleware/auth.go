package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"devhub.backend/pkg/jwt"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// ActorIDKey is the context key for the actor's user ID
	ActorIDKey = "actorId"
	// ActorEmailKey is the context key for the actor's email
	ActorEmailKey = "actorEmail"
	// ActorRoleKey is the context key for the actor's role
	ActorRoleKey = "actorRole"
)

// AuthMiddleware validates the bearer token and attaches the actor's
// identity claims to the request context. Authentication itself happens
// upstream; this only reads the claims the core authorizes against.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if err == jwt.ErrExpiredToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(ActorIDKey, claims.UserID)
		c.Set(ActorEmailKey, claims.Email)
		c.Set(ActorRoleKey, claims.Role)

		c.Next()
	}
}

// GatekeeperOnly rejects requests whose actor does not hold the
// gatekeeper role
func GatekeeperOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetActorRole(c)
		if !ok || role != jwt.RoleGatekeeper {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Gatekeeper role required",
			})
			return
		}
		c.Next()
	}
}

// GetActorID gets the actor's user ID from context
func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	id, exists := c.Get(ActorIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return id.(uuid.UUID), true
}

// GetActorEmail gets the actor's email from context
func GetActorEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(ActorEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetActorRole gets the actor's role from context
func GetActorRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ActorRoleKey)
	if !exists {
		return "", false
	}
	return role.(string), true
}
