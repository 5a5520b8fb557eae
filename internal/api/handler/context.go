package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. A
// missing user id or role means the route was mounted without Auth.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	userID, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(domain.Role)
	if userID <= 0 || role == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Principal{UserID: userID, Role: role}, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64(name, &id).BindError(); err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be a positive integer")
	}
	return id, nil
}
