package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"project-management/internal/dto"
	"project-management/internal/services"
	"project-management/pkg/utils"
)

type AnalyticsController struct {
	analyticsService services.AnalyticsServiceInterface
	logger           *zap.Logger
}

func NewAnalyticsController(analyticsService services.AnalyticsServiceInterface, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService, logger: logger}
}

func (c *AnalyticsController) GetProjectTimeline(ctx echo.Context) error {
	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID проекта"), c.logger)
	}

	res, err := c.analyticsService.GetProjectTimeline(ctx.Request().Context(), projectID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if ctx.QueryParam("format") == "xlsx" {
		return c.respondWithXLSX(ctx, res)
	}

	return utils.SuccessResponse(ctx, res, "Аналитика по проекту успешно сформирована", http.StatusOK)
}

var timelineHeaders = []string{
	"Департамент", "Статус работ", "Вход", "Выход", "Длительность (дни)", "Оценка (дни)",
	"Факт (дни)", "Точность оценки (%)", "Корректировки", "Ср. время решения (часы)", "Узкое место",
}

func timelineRowToSlice(item dto.DepartmentTimelineDTO) []interface{} {
	var estimated, actual, accuracy, resolution string
	if item.EstimatedDays != nil {
		estimated = strconv.Itoa(*item.EstimatedDays)
	}
	if item.ActualDays != nil {
		actual = strconv.Itoa(*item.ActualDays)
	}
	if item.EstimateAccuracy != nil {
		accuracy = fmt.Sprintf("%.1f", *item.EstimateAccuracy)
	}
	if item.AverageResolutionHours != nil {
		resolution = fmt.Sprintf("%.2f", *item.AverageResolutionHours)
	}
	bottleneck := "нет"
	if item.IsBottleneck {
		bottleneck = "да"
	}

	return []interface{}{
		item.DepartmentCode, item.WorkStatus, item.EnteredAt, item.LeftAt,
		fmt.Sprintf("%.2f", item.DurationDays), estimated, actual, accuracy,
		item.CorrectionCount, resolution, bottleneck,
	}
}

func (c *AnalyticsController) respondWithXLSX(ctx echo.Context, data *dto.ProjectTimelineAnalyticsDTO) error {
	f := excelize.NewFile()
	sheet := "Таймлайн проекта"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &timelineHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "K1", style)

	for i, item := range data.Departments {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := timelineRowToSlice(item)
		f.SetSheetRow(sheet, cell, &row)
	}

	// Итоговая строка под таблицей
	summaryCell, _ := excelize.CoordinatesToCellName(1, len(data.Departments)+3)
	summary := []interface{}{
		fmt.Sprintf("Проект: %s", data.ProjectName),
		fmt.Sprintf("Всего дней: %.2f", data.TotalDurationDays),
		fmt.Sprintf("Корректировок: %d", data.TotalCorrections),
		fmt.Sprintf("Эффективность: %.1f%%", data.EfficiencyPercentage),
	}
	f.SetSheetRow(sheet, summaryCell, &summary)

	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "C", "D", 22)
	f.SetColWidth(sheet, "E", "K", 18)

	fileName := fmt.Sprintf("project_%d_timeline_%s.xlsx", data.ProjectID, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
