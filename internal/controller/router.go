package controller

import (
	"tender-alert-engine/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newProfileRoutesHandler(api, services, validate)
	newAlertRuleRoutesHandler(api, services, validate)
	newNotificationRoutesHandler(api, services, validate)
	newTenderRoutesHandler(api, services, validate)
}
