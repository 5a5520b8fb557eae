package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

// ProfileHandler serves /me/profile.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get handles GET /me/profile.
//
// @Summary      Read my profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /me/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	profile, err := h.service.Get(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Upsert handles POST and PUT /me/profile.
//
// @Summary      Create or replace my profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileBody  true  "Profile"
// @Success      200   {object}  profileResponse
// @Failure      422   {object}  errorResponse
// @Router       /me/profile [post]
func (h *ProfileHandler) Upsert(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req profileBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	profile, err := h.service.Upsert(c.Request().Context(), p, domain.ProfileDraft{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      req.DateOfBirth,
		Phone:            req.Phone,
		Income:           req.Income,
		MainGoal:         req.MainGoal,
		TimeHorizonYears: req.TimeHorizonYears,
		RiskProfile:      req.RiskProfile,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

func toProfileResponse(p *domain.ClientProfile) profileResponse {
	resp := profileResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		DateOfBirth:      p.DateOfBirth,
		Phone:            p.Phone,
		Income:           p.Income,
		MainGoal:         p.MainGoal,
		TimeHorizonYears: p.TimeHorizonYears,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.RiskProfile != nil {
		rp := string(*p.RiskProfile)
		resp.RiskProfile = &rp
	}
	return resp
}
