package handler

import (
	"net/http"
	"strconv"

	"bookstore/internal/middleware"
	"bookstore/internal/service"

	"github.com/labstack/echo/v4"
)

// bind decodes the body and runs the struct validator registered on echo.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid req body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid %s", name)
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}

func identity(c echo.Context) (service.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	return id, nil
}
