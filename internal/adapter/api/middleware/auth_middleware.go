package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"campuschat/internal/domain/entity"
	"campuschat/pkg/utils"
)

const identityKey = "identity"

type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{
		secret: secret,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		identity, err := m.IdentityFromToken(parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(identityKey, identity)
		return next(c)
	}
}

// IdentityFromToken verifies a raw token. The websocket endpoint uses it
// directly since browsers cannot set headers on the upgrade request.
func (m *AuthMiddleware) IdentityFromToken(token string) (entity.Identity, error) {
	claims, err := utils.ValidateToken(token, m.secret)
	if err != nil {
		return entity.Identity{}, err
	}
	return entity.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Token:  token,
	}, nil
}

// SetIdentity stores identity on c the way Authenticate does.
func SetIdentity(c echo.Context, identity entity.Identity) {
	c.Set(identityKey, identity)
}

func IdentityFrom(c echo.Context) (entity.Identity, bool) {
	identity, ok := c.Get(identityKey).(entity.Identity)
	return identity, ok && identity.Email != ""
}
