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

type CorrectionController struct {
	correctionService services.CorrectionServiceInterface
	logger            *zap.Logger
}

func NewCorrectionController(service services.CorrectionServiceInterface, logger *zap.Logger) *CorrectionController {
	return &CorrectionController{correctionService: service, logger: logger}
}

func (c *CorrectionController) CreateCorrection(ctx echo.Context) error {
	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID проекта"), c.logger)
	}
	var payload dto.CreateCorrectionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.correctionService.CreateCorrection(ctx.Request().Context(), projectID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запрос на корректировку успешно создан", http.StatusCreated)
}

func (c *CorrectionController) UpdateCorrection(ctx echo.Context) error {
	correctionID, err := strconv.ParseUint(ctx.Param("correctionId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID корректировки"), c.logger)
	}
	var payload dto.UpdateCorrectionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.correctionService.UpdateCorrection(ctx.Request().Context(), correctionID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Корректировка успешно обновлена", http.StatusOK)
}

// GetCorrections возвращает корректировки проекта, опционально фильтруя по статусу (?status=OPEN).
func (c *CorrectionController) GetCorrections(ctx echo.Context) error {
	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID проекта"), c.logger)
	}
	status := ctx.QueryParam("status")
	res, err := c.correctionService.ListForProject(ctx.Request().Context(), projectID, status)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Корректировки успешно получены", http.StatusOK)
}
