package middleware

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// adminEmails is the static allow-list, loaded once from ADMIN_EMAILS
// (comma-separated). Admin status is decided here, not by the identity
// provider. Guarded by adminEmailsOnce: fiber serves requests on
// concurrent goroutines.
var (
	adminEmails     map[string]bool
	adminEmailsOnce sync.Once
)

func loadAdminEmails() map[string]bool {
	adminEmailsOnce.Do(func() {
		adminEmails = make(map[string]bool)
		for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				adminEmails[e] = true
			}
		}
	})
	return adminEmails
}

// IsAdminEmail reports allow-list membership (case-insensitive).
func IsAdminEmail(email string) bool {
	return loadAdminEmails()[strings.ToLower(strings.TrimSpace(email))]
}

// UserContextMiddleware extracts the identity set by the Gateway
// (X-User-ID, X-User-Name, X-User-Email) and attaches it to the request
// context. Secured paths require a user id.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		userName := c.Get("X-User-Name")
		userEmail := c.Get("X-User-Email")

		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("user_name", userName)
		c.Locals("user_email", userEmail)
		c.Locals("is_admin", IsAdminEmail(userEmail))

		return c.Next()
	}
}

// AdminOnlyMiddleware rejects callers whose email is not on the allow-list.
// Runs after UserContextMiddleware.
func AdminOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, _ := c.Locals("is_admin").(bool)
		if !isAdmin {
			userID, _ := c.Locals("user_id").(string)
			log.Printf("🚫 [ADMIN] User %s denied on admin route %s", userID, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}
