package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"

	tests := []struct {
		name           string
		authHeader     string
		query          string
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "missing authorization header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid authorization format",
			authHeader:     "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "token signed with another secret",
			authHeader:     "Bearer " + signToken(t, "other", "u1", time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + signToken(t, secret, "u1", -time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer " + signToken(t, secret, "u1", time.Hour),
			expectedStatus: http.StatusOK,
			expectedUser:   "u1",
		},
		{
			name:           "token in query",
			query:          "?token=" + signToken(t, secret, "u2", time.Hour),
			expectedStatus: http.StatusOK,
			expectedUser:   "u2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			app := fiber.New()
			app.Use(AuthMiddleware(secret))
			app.Get("/protected", func(c *fiber.Ctx) error {
				gotUser = actingUser(c, "")
				return c.SendString("ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}
			if gotUser != tt.expectedUser {
				t.Errorf("expected user %q, got %q", tt.expectedUser, gotUser)
			}
		})
	}
}

func TestActingUser(t *testing.T) {
	tests := []struct {
		name      string
		tokenUser string
		admin     bool
		explicit  string
		expected  string
	}{
		{name: "token user", tokenUser: "token-user", expected: "token-user"},
		{name: "body cannot override token", tokenUser: "token-user", explicit: "body-user", expected: "token-user"},
		{name: "admin may act for another user", tokenUser: "token-user", admin: true, explicit: " body-user ", expected: "body-user"},
		{name: "admin without explicit id", tokenUser: "token-user", admin: true, expected: "token-user"},
		{name: "auth disabled", explicit: " body-user ", expected: "body-user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				if tt.tokenUser != "" {
					c.Locals(UserIDKey, tt.tokenUser)
					c.Locals(AdminKey, tt.admin)
				}
				got = actingUser(c, tt.explicit)
				return nil
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
