package middleware

import (
	"strings"

	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const callerKey = "caller"

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. ok is false when the header is missing or malformed.
func bearerToken(c *fiber.Ctx) (token string, present bool, ok bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", true, false
	}
	return parts[1], true, true
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"rule":    services.RuleAuthenticationRequired,
	})
}

// authenticate resolves the bearer token to a caller and stores it.
func authenticate(c *fiber.Ctx, authService *services.AuthService, tokenString string) error {
	claims, err := authService.ValidateToken(tokenString)
	if err != nil {
		zap.L().Debug("JWT validation failed", zap.Error(err))
		return unauthorized(c, "Invalid or expired token")
	}
	caller, err := services.CallerFromClaims(claims)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	c.Locals(callerKey, caller)
	c.Locals("user_id", caller.UserID)
	c.Locals("username", claims["username"])
	return c.Next()
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// JWT.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, ok := bearerToken(c)
		if !present {
			return unauthorized(c, "Authorization header is required")
		}
		if !ok {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}
		return authenticate(c, authService, token)
	}
}

// OptionalAuth identifies the caller when a token is sent and lets
// anonymous requests through. A token that is sent but invalid is still
// rejected.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, ok := bearerToken(c)
		if !present {
			return c.Next()
		}
		if !ok {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}
		return authenticate(c, authService, token)
	}
}

// CallerFrom returns the caller stored by the auth middleware, or the
// anonymous caller.
func CallerFrom(c *fiber.Ctx) services.Caller {
	if caller, ok := c.Locals(callerKey).(services.Caller); ok {
		return caller
	}
	return services.Anonymous
}
