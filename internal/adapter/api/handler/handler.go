package handler

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/adapter/api/middleware"
	"campuschat/internal/domain/entity"
	"campuschat/pkg/errors"
)

func callerIdentity(c echo.Context) (entity.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return entity.Identity{}, errors.Unauthorized("Authentication required", nil)
	}
	return identity, nil
}
