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

// ChecklistController обслуживает шаблоны чеклистов департаментов
// и прогресс чеклистов по конкретным проектам.
type ChecklistController struct {
	checklistService services.ChecklistServiceInterface
	logger           *zap.Logger
}

func NewChecklistController(service services.ChecklistServiceInterface, logger *zap.Logger) *ChecklistController {
	return &ChecklistController{checklistService: service, logger: logger}
}

// --- Шаблоны ---

func (c *ChecklistController) GetTemplate(ctx echo.Context) error {
	departmentID, err := strconv.ParseUint(ctx.Param("departmentId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID департамента"), c.logger)
	}
	res, err := c.checklistService.GetTemplate(ctx.Request().Context(), departmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Шаблон чеклиста успешно получен", http.StatusOK)
}

func (c *ChecklistController) CreateTemplateItem(ctx echo.Context) error {
	var payload dto.CreateTemplateItemDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.checklistService.CreateTemplateItem(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Пункт шаблона успешно создан", http.StatusCreated)
}

func (c *ChecklistController) UpdateTemplateItem(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID"), c.logger)
	}
	var payload dto.UpdateTemplateItemDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.checklistService.UpdateTemplateItem(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Пункт шаблона успешно обновлен", http.StatusOK)
}

func (c *ChecklistController) DeleteTemplateItem(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID"), c.logger)
	}
	if err := c.checklistService.DeleteTemplateItem(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Пункт шаблона успешно удален", http.StatusOK)
}

func (c *ChecklistController) ReorderTemplate(ctx echo.Context) error {
	departmentID, err := strconv.ParseUint(ctx.Param("departmentId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID департамента"), c.logger)
	}
	var payload dto.ReorderTemplateDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.checklistService.ReorderTemplate(ctx.Request().Context(), departmentID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Порядок пунктов шаблона успешно изменен", http.StatusOK)
}

// --- Чеклисты проектов ---

// GetProjectChecklist возвращает чеклист проекта в текущем (или указанном) департаменте,
// при необходимости создавая его из шаблона.
func (c *ChecklistController) GetProjectChecklist(ctx echo.Context) error {
	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID проекта"), c.logger)
	}
	departmentID, err := strconv.ParseUint(ctx.Param("departmentId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID департамента"), c.logger)
	}
	res, err := c.checklistService.GetOrInitializeProgress(ctx.Request().Context(), projectID, departmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Чеклист проекта успешно получен", http.StatusOK)
}

func (c *ChecklistController) UpdateChecklistItem(ctx echo.Context) error {
	itemID, err := strconv.ParseUint(ctx.Param("itemId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID пункта"), c.logger)
	}
	var payload dto.UpdateChecklistItemDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.checklistService.UpdateItem(ctx.Request().Context(), itemID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Пункт чеклиста успешно обновлен", http.StatusOK)
}
