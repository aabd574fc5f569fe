package middleware

import (
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// VisitorClaims identifies an anonymous storefront visitor. There are no
// accounts: the visitor id only scopes durable client storage (cart,
// checkout session) to one browser.
type VisitorClaims struct {
	VisitorID string `json:"visitorid"`
	jwt.RegisteredClaims
}

const visitorCookie = "visitor_token"

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-please-change"
	}
	jwtSecret = []byte(secret)
}

// GenerateVisitorToken creates a signed token for the given visitor id.
func GenerateVisitorToken(visitorID string) (string, error) {
	claims := &VisitorClaims{
		VisitorID: visitorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(90 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "oillabz-api",
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(jwtSecret)
}

// VisitorMiddleware resolves the visitor id from the visitor cookie,
// issuing a fresh one when the cookie is missing or invalid. Handlers read
// the id with GetVisitorID.
func VisitorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := parseVisitorCookie(c); id != "" {
				c.Set("visitor_id", id)
				return next(c)
			}

			id := uuid.NewString()
			token, err := GenerateVisitorToken(id)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start session"})
			}
			c.SetCookie(&http.Cookie{
				Name:     visitorCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(90 * 24 * time.Hour),
			})
			c.Set("visitor_id", id)
			return next(c)
		}
	}
}

func parseVisitorCookie(c echo.Context) string {
	cookie, err := c.Cookie(visitorCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	token, err := jwt.ParseWithClaims(cookie.Value, &VisitorClaims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(*VisitorClaims)
	if !ok {
		return ""
	}
	return claims.VisitorID
}

// GetVisitorID extracts the visitor id set by VisitorMiddleware.
func GetVisitorID(c echo.Context) string {
	v := c.Get("visitor_id")
	if v == nil {
		return ""
	}
	if id, ok := v.(string); ok {
		return id
	}
	return ""
}
