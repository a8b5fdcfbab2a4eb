package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultHeader is the header carrying the API key.
const DefaultHeader = "X-API-Key"

// Config configures the API key middleware.
type Config struct {
	// ApiKey is the expected key. Empty disables the check.
	ApiKey string
	// Header overrides DefaultHeader.
	Header string
	// Public reports requests that do not need a key.
	Public func(c *fiber.Ctx) bool
}

// ReadOnly treats safe methods as public.
func ReadOnly(c *fiber.Ctx) bool {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}

// Destructive reports reset routes, which wipe a resource even though they
// are served on GET.
func Destructive(c *fiber.Ctx) bool {
	return strings.HasSuffix(strings.TrimRight(c.Path(), "/"), "/reset")
}

// New returns a middleware rejecting requests without the configured key.
func New(cfg Config) fiber.Handler {
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" || (cfg.Public != nil && cfg.Public(c)) {
			return c.Next()
		}
		key := c.Get(header)
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "unauthorized"})
		}
		return c.Next()
	}
}
