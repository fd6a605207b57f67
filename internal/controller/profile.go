package controller

import (
	"errors"
	"net/http"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type profileRoutesHandler struct {
	profileService service.Profile
	validate       *validator.Validate
}

func newProfileRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *profileRoutesHandler {
	h := &profileRoutesHandler{profileService: services.Profile, validate: v}

	outer.GET("/profile", h.GetProfile)
	outer.PUT("/profile", h.PutProfile)

	return h
}

type putProfileInput struct {
	MinValue        float64  `json:"minValue" validate:"gte=0"`
	MaxValue        float64  `json:"maxValue" validate:"gte=0"`
	Countries       []string `json:"countries" validate:"dive,len=2"`
	CpvCodes        []string `json:"cpvCodes" validate:"dive,len=8"`
	CompanySize     string   `json:"companySize" validate:"required,oneof=micro small medium large"`
	ExperienceLevel string   `json:"experienceLevel" validate:"required,oneof=beginner intermediate advanced expert"`
}

// /profile
func (h *profileRoutesHandler) PutProfile(c echo.Context) error {
	account := accountId(c)
	if account == "" {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Missing account identity"}); e != nil {
			return e
		}

		return nil
	}

	var input putProfileInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	model := &entity.UpsertProfileInput{
		AccountId: account,
		MinValue:  input.MinValue, MaxValue: input.MaxValue,
		Countries: input.Countries, CpvCodes: input.CpvCodes,
		CompanySize: input.CompanySize, ExperienceLevel: input.ExperienceLevel,
	}

	profile, err := h.profileService.SaveProfile(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, profile); e != nil {
			return e
		}

		return nil
	}

	var invalid *service.InvalidProfileError
	if errors.As(err, &invalid) {
		if e := c.JSON(http.StatusBadRequest, errorResponse{invalid.Error()}); e != nil {
			return e
		}

		return err
	}

	if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
		return e
	}

	return err
}

// /profile
func (h *profileRoutesHandler) GetProfile(c echo.Context) error {
	account := accountId(c)
	if account == "" {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Missing account identity"}); e != nil {
			return e
		}

		return nil
	}

	profile, err := h.profileService.GetProfile(c.Request().Context(), account)
	if err == nil {
		if e := c.JSON(http.StatusOK, profile); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrProfileNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"Profile is not configured yet"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}
