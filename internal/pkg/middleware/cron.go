package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// CronSecret guards scheduler endpoints with a shared bearer secret.
// Without a configured secret the endpoints stay closed.
func CronSecret(secret string) fiber.Handler {
	expected := []byte(secret)
	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			log.Error("[Cron] CRON_SECRET is not configured, rejecting request")
			return unauthorized(c, "cron endpoints disabled")
		}
		got := []byte(extractBearerToken(c))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			log.Warnf("[Cron] rejected call to %s from %s", c.Path(), c.IP())
			return unauthorized(c, "invalid cron secret")
		}
		return c.Next()
	}
}
