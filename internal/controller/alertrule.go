package controller

import (
	"net/http"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type alertRuleRoutesHandler struct {
	alertRuleService service.AlertRule
	validate         *validator.Validate
}

func newAlertRuleRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *alertRuleRoutesHandler {
	h := &alertRuleRoutesHandler{alertRuleService: services.AlertRule, validate: v}

	outer.GET("/alerts/rules", h.GetRules)
	outer.PUT("/alerts/rules/:template", h.PutRule)

	return h
}

// /alerts/rules
func (h *alertRuleRoutesHandler) GetRules(c echo.Context) error {
	account := accountId(c)
	if account == "" {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Missing account identity"}); e != nil {
			return e
		}

		return nil
	}

	rules, err := h.alertRuleService.ListRules(c.Request().Context(), account)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}

		return err
	}

	if e := c.JSON(http.StatusOK, rules); e != nil {
		return e
	}

	return nil
}

type putRuleInput struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency" validate:"required,oneof=instant daily weekly"`
}

// /alerts/rules/:template
func (h *alertRuleRoutesHandler) PutRule(c echo.Context) error {
	account := accountId(c)
	if account == "" {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Missing account identity"}); e != nil {
			return e
		}

		return nil
	}

	var input putRuleInput
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

	model := &entity.SetAlertRuleInput{
		AccountId: account,
		Template:  c.Param("template"),
		Enabled:   input.Enabled,
		Frequency: input.Frequency,
	}

	rule, err := h.alertRuleService.SetRule(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, rule); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrUnknownTemplate:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no alert template with given name"}); e != nil {
			return e
		}
	case service.ErrInvalidFrequency:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Frequency should be one of: instant, daily, weekly"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}
