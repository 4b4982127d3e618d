package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"
)

// CredentialsProvider resolves the effective basic auth pair at request
// time so settings changes apply without a restart. An empty username
// means the instance runs open.
type CredentialsProvider func() (username, password string)

// BasicAuth guards the API with HTTP basic auth when credentials are
// configured.
func BasicAuth(credentials CredentialsProvider) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Next: func(c *fiber.Ctx) bool {
			username, _ := credentials()
			return username == ""
		},
		Realm: "echo-journal",
		Authorizer: func(user, pass string) bool {
			wantUser, wantPass := credentials()
			if subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) != 1 {
				return false
			}
			return passwordMatches(pass, wantPass)
		},
		Unauthorized: func(c *fiber.Ctx) error {
			log.Printf("❌ [AUTH] Rejected request from %s to %s", c.IP(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid credentials",
			})
		},
	})
}

// passwordMatches accepts either a bcrypt hash or a plain secret in the
// configured password slot.
func passwordMatches(candidate, configured string) bool {
	if strings.HasPrefix(configured, "$2a$") || strings.HasPrefix(configured, "$2b$") || strings.HasPrefix(configured, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(configured)) == 1
}
