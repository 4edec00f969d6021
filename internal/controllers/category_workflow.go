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

// CategoryWorkflowController обслуживает категории проектов и их маршруты
// по департаментам.
type CategoryWorkflowController struct {
	workflowService services.CategoryWorkflowServiceInterface
	logger          *zap.Logger
}

func NewCategoryWorkflowController(service services.CategoryWorkflowServiceInterface, logger *zap.Logger) *CategoryWorkflowController {
	return &CategoryWorkflowController{workflowService: service, logger: logger}
}

func (c *CategoryWorkflowController) GetCategories(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	categories, total, err := c.workflowService.GetCategories(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, categories, "Категории успешно получены", http.StatusOK, total)
}

func (c *CategoryWorkflowController) FindCategory(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID"), c.logger)
	}
	res, err := c.workflowService.FindCategory(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Категория успешно найдена", http.StatusOK)
}

func (c *CategoryWorkflowController) CreateCategory(ctx echo.Context) error {
	var payload dto.CreateCategoryDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.workflowService.CreateCategory(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Категория успешно создана", http.StatusCreated)
}

func (c *CategoryWorkflowController) UpdateCategory(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID"), c.logger)
	}
	var payload dto.UpdateCategoryDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.workflowService.UpdateCategory(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Категория успешно обновлена", http.StatusOK)
}

func (c *CategoryWorkflowController) DeleteCategory(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID"), c.logger)
	}
	if err := c.workflowService.DeleteCategory(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Категория успешно удалена", http.StatusOK)
}

// GetWorkflow возвращает упорядоченный маршрут категории по департаментам.
func (c *CategoryWorkflowController) GetWorkflow(ctx echo.Context) error {
	categoryID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID категории"), c.logger)
	}
	res, err := c.workflowService.GetWorkflow(ctx.Request().Context(), categoryID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Маршрут категории успешно получен", http.StatusOK)
}

// GetNextDepartment отвечает на вопрос "куда дальше" для заданного департамента маршрута.
// Параметр current_department_id опционален: без него возвращается первый шаг маршрута.
func (c *CategoryWorkflowController) GetNextDepartment(ctx echo.Context) error {
	categoryID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID категории"), c.logger)
	}

	var currentDepartmentID *uint64
	if raw := ctx.QueryParam("current_department_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат current_department_id"), c.logger)
		}
		currentDepartmentID = &id
	}

	res, err := c.workflowService.GetNextDepartment(ctx.Request().Context(), categoryID, currentDepartmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if res == nil {
		return utils.SuccessResponse(ctx, nil, "Маршрут завершен: следующего департамента нет", http.StatusOK)
	}
	return utils.SuccessResponse(ctx, res, "Следующий департамент успешно определен", http.StatusOK)
}

// BulkReplaceSteps полностью заменяет маршрут категории одним запросом.
func (c *CategoryWorkflowController) BulkReplaceSteps(ctx echo.Context) error {
	categoryID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID категории"), c.logger)
	}
	var payload dto.BulkReplaceStepsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.workflowService.BulkReplaceSteps(ctx.Request().Context(), categoryID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Маршрут категории успешно заменен", http.StatusOK)
}

func (c *CategoryWorkflowController) CreateStep(ctx echo.Context) error {
	categoryID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID категории"), c.logger)
	}
	var payload dto.CreateWorkflowStepDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.workflowService.CreateStep(ctx.Request().Context(), categoryID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Шаг маршрута успешно создан", http.StatusCreated)
}

func (c *CategoryWorkflowController) UpdateStep(ctx echo.Context) error {
	stepID, err := strconv.ParseUint(ctx.Param("stepId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID шага"), c.logger)
	}
	var payload dto.UpdateWorkflowStepDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.workflowService.UpdateStep(ctx.Request().Context(), stepID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Шаг маршрута успешно обновлен", http.StatusOK)
}

func (c *CategoryWorkflowController) DeleteStep(ctx echo.Context) error {
	stepID, err := strconv.ParseUint(ctx.Param("stepId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID шага"), c.logger)
	}
	if err := c.workflowService.DeleteStep(ctx.Request().Context(), stepID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Шаг маршрута успешно удален", http.StatusOK)
}
