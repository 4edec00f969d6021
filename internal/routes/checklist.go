package routes

import (
	"github.com/labstack/echo/v4"

	"project-management/internal/controllers"
)

func runChecklistRouter(g *echo.Group, ctrl *controllers.ChecklistController) {
	// Шаблоны чеклистов департаментов
	g.GET("/departments/:departmentId/checklist-template", ctrl.GetTemplate)
	g.PUT("/departments/:departmentId/checklist-template/reorder", ctrl.ReorderTemplate)
	g.POST("/checklist-template-items", ctrl.CreateTemplateItem)
	g.PUT("/checklist-template-items/:id", ctrl.UpdateTemplateItem)
	g.DELETE("/checklist-template-items/:id", ctrl.DeleteTemplateItem)

	// Пункты чеклистов проектов
	g.PATCH("/checklist-items/:itemId", ctrl.UpdateChecklistItem)
}
