package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "session_id"
	sessionLocalsKey  = "session_id"
)

// SessionMiddleware gives every client its own conversation. The session id is
// a random UUID carried as the subject of an HS256-signed cookie; a missing,
// forged or malformed cookie gets a fresh id.
func SessionMiddleware(secret []byte, secure bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sessionID, ok := parseSessionToken(ctx.Cookies(SessionCookieName), secret)
		if !ok {
			sessionID = uuid.NewString()
			token, err := signSessionToken(sessionID, secret, time.Now())
			if err != nil {
				return err
			}
			ctx.Cookie(&fiber.Cookie{
				Name:     SessionCookieName,
				Value:    token,
				Path:     "/",
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		ctx.Locals(sessionLocalsKey, sessionID)
		return ctx.Next()
	}
}

// SessionID returns the id set by SessionMiddleware, "" outside it.
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(sessionLocalsKey).(string)
	return id
}

func signSessionToken(sessionID string, secret []byte, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  sessionID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSessionToken(tokenStr string, secret []byte) (string, bool) {
	if tokenStr == "" {
		return "", false
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", false
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", false
	}
	return claims.Subject, true
}
