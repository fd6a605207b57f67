package controller

import (
	"net/http"
	"tender-alert-engine/internal/entity"
	"tender-alert-engine/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type notificationRoutesHandler struct {
	notificationService service.Notification
	validate            *validator.Validate
}

func newNotificationRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *notificationRoutesHandler {
	h := &notificationRoutesHandler{notificationService: services.Notification, validate: v}

	outer.GET("/notifications", h.GetNotifications)

	return h
}

type getNotificationsInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=50"`
	Offset int32 `query:"offset" validate:"gte=0"`
}

func newGetNotificationsInput() getNotificationsInput {
	return getNotificationsInput{Limit: defaultLimit, Offset: defaultOffset}
}

// /notifications
func (h *notificationRoutesHandler) GetNotifications(c echo.Context) error {
	account := accountId(c)
	if account == "" {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Missing account identity"}); e != nil {
			return e
		}

		return nil
	}

	var input = newGetNotificationsInput()
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

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	events, err := h.notificationService.GetAccountNotifications(c.Request().Context(), account, pg)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}

		return err
	}

	if e := c.JSON(http.StatusOK, events); e != nil {
		return e
	}

	return nil
}
