package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	icuser "github.com/doulando/ventre/internal/pkg/usercontext"
)

// accessClaims mirrors the claims Supabase puts into its access tokens.
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth verifies HS256 access tokens signed with secret and stores the
// caller in the user context. An empty secret rejects every request.
func JWTAuth(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		if len(key) == 0 {
			log.Error("[Auth] JWT_SECRET is not configured")
			return unauthorized(c, "authentication unavailable")
		}

		token := extractBearerToken(c)
		if token == "" {
			return unauthorized(c, "missing bearer token")
		}

		claims := &accessClaims{}
		_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return unauthorized(c, "token expired")
			}
			log.Debugf("[Auth] rejected token: %v", err)
			return unauthorized(c, "invalid token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil || userID == uuid.Nil {
			return unauthorized(c, "invalid token subject")
		}

		icuser.SetUserContext(c, icuser.UserContext{
			UserID:     userID,
			Email:      claims.Email,
			Role:       claims.Role,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

// RequireAPISessionAuth ensures an authenticated caller and returns JSON 401 otherwise.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !icuser.IsLoggedIn(c) {
		return unauthorized(c, "login required")
	}
	return c.Next()
}
