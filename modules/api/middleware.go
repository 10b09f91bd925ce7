package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIDKey is the Fiber locals key holding the authenticated user id.
	UserIDKey = "user_id"
	// AdminKey holds true when the token carries the admin claim.
	AdminKey = "admin"
)

var errInvalidToken = errors.New("invalid token")

// Claims are the claims of tokens issued by the account service.
type Claims struct {
	UserID string `json:"user_id"`
	Admin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// AuthMiddleware requires a valid Bearer token and stores its user id.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			// browsers cannot set headers on websocket upgrades
			authHeader = "Bearer " + c.Query("token")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") || strings.TrimPrefix(authHeader, "Bearer ") == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required. Use: Bearer <token>",
			})
		}

		claims, err := ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(AdminKey, claims.Admin)
		return c.Next()
	}
}

// actingUser returns the authenticated user. An explicit id from the body
// or query acts for someone else only with an admin token, or when the API
// runs without authentication.
func actingUser(c *fiber.Ctx, explicit string) string {
	explicit = strings.TrimSpace(explicit)
	id, _ := c.Locals(UserIDKey).(string)
	if id == "" {
		return explicit
	}
	if admin, _ := c.Locals(AdminKey).(bool); admin && explicit != "" {
		return explicit
	}
	return id
}
