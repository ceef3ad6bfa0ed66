package handler

import (
	"taskpoints-service/internal/apperr"

	"github.com/labstack/echo/v4"
)

// respondError maps a service error onto the wire. Backend details are logged
// upstream and never leak to the client.
func respondError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.UserMessage(err)})
}
