package routes

import (
	"github.com/labstack/echo/v4"

	"project-management/internal/controllers"
)

func runCategoryWorkflowRouter(g *echo.Group, ctrl *controllers.CategoryWorkflowController) {
	g.GET("/categories", ctrl.GetCategories)
	g.GET("/categories/:id", ctrl.FindCategory)
	g.POST("/categories", ctrl.CreateCategory)
	g.PUT("/categories/:id", ctrl.UpdateCategory)
	g.DELETE("/categories/:id", ctrl.DeleteCategory)

	// Маршрут категории по департаментам
	g.GET("/categories/:id/workflow", ctrl.GetWorkflow)
	g.GET("/categories/:id/workflow/next", ctrl.GetNextDepartment)
	g.PUT("/categories/:id/workflow", ctrl.BulkReplaceSteps)
	g.POST("/categories/:id/workflow/steps", ctrl.CreateStep)
	g.PUT("/workflow-steps/:stepId", ctrl.UpdateStep)
	g.DELETE("/workflow-steps/:stepId", ctrl.DeleteStep)
}
