package controllers

import (
	"net/http"
	"strconv"

	"project-management/internal/dto"
	"project-management/internal/services"
	"project-management/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TransitionController обслуживает переводы проектов между департаментами,
// статусы работ и историю перемещений.
type TransitionController struct {
	transitionService services.TransitionServiceInterface
	logger            *zap.Logger
}

func NewTransitionController(service services.TransitionServiceInterface, logger *zap.Logger) *TransitionController {
	return &TransitionController{transitionService: service, logger: logger}
}

func (c *TransitionController) Transition(ctx echo.Context) error {
	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID проекта"), c.logger)
	}
	var payload dto.TransitionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.transitionService.Transition(ctx.Request().Context(), projectID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Проект успешно передан в следующий департамент", http.StatusOK)
}

func (c *TransitionController) UpdateWorkStatus(ctx echo.Context) error {
	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID проекта"), c.logger)
	}
	var payload dto.UpdateWorkStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.transitionService.UpdateWorkStatus(ctx.Request().Context(), projectID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус работ успешно обновлен", http.StatusOK)
}

func (c *TransitionController) GetHistory(ctx echo.Context) error {
	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID проекта"), c.logger)
	}
	res, err := c.transitionService.GetHistory(ctx.Request().Context(), projectID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "История перемещений успешно получена", http.StatusOK)
}
