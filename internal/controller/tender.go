package controller

import (
	"errors"
	"net/http"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/scoring"
	"tender-alert-engine/internal/service"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type tenderRoutesHandler struct {
	tenderService service.Tender
	validate      *validator.Validate
}

func newTenderRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *tenderRoutesHandler {
	h := &tenderRoutesHandler{tenderService: services.Tender, validate: v}

	outer.POST("/tenders/evaluate", h.EvaluateTender)

	return h
}

type evaluateTenderInput struct {
	Ref              string     `json:"ref" validate:"required,max=100"`
	Title            string     `json:"title" validate:"max=200"`
	BuyerCountry     string     `json:"buyerCountry" validate:"omitempty,len=2"`
	Deadline         *time.Time `json:"deadline"`
	ValueAmount      *float64   `json:"valueAmount"`
	CpvCodes         []string   `json:"cpvCodes" validate:"dive,len=8"`
	CompetitionLevel string     `json:"competitionLevel"`
}

// /tenders/evaluate
func (h *tenderRoutesHandler) EvaluateTender(c echo.Context) error {
	account := accountId(c)
	if account == "" {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Missing account identity"}); e != nil {
			return e
		}

		return nil
	}

	var input evaluateTenderInput
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

	tender := &entity.Tender{
		Ref:              input.Ref,
		Title:            input.Title,
		BuyerCountry:     input.BuyerCountry,
		Deadline:         input.Deadline,
		ValueAmount:      input.ValueAmount,
		CpvCodes:         input.CpvCodes,
		CompetitionLevel: input.CompetitionLevel,
	}

	score, err := h.tenderService.EvaluateTender(c.Request().Context(), account, tender)
	if err == nil {
		if e := c.JSON(http.StatusOK, score); e != nil {
			return e
		}

		return nil
	}

	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"Profile is not configured yet"}); e != nil {
			return e
		}
	case errors.Is(err, scoring.ErrDegenerateMatch):
		if e := c.JSON(http.StatusUnprocessableEntity, errorResponse{"Tender has no value amount and the profile configures no other criteria"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}
