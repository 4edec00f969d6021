package routes

import (
	"github.com/labstack/echo/v4"

	"project-management/internal/controllers"
)

func runProjectRouter(
	g *echo.Group,
	projectCtrl *controllers.ProjectController,
	transitionCtrl *controllers.TransitionController,
	correctionCtrl *controllers.CorrectionController,
	checklistCtrl *controllers.ChecklistController,
	analyticsCtrl *controllers.AnalyticsController,
) {
	g.GET("/projects", projectCtrl.GetProjects)
	g.GET("/projects/:id", projectCtrl.FindProject)
	g.POST("/projects", projectCtrl.CreateProject)
	g.PUT("/projects/:id", projectCtrl.UpdateProject)

	// Движение проекта по маршруту
	g.POST("/projects/:id/transition", transitionCtrl.Transition)
	g.PATCH("/projects/:id/work-status", transitionCtrl.UpdateWorkStatus)
	g.GET("/projects/:id/history", transitionCtrl.GetHistory)

	// Чеклист проекта в департаменте
	g.GET("/projects/:id/departments/:departmentId/checklist", checklistCtrl.GetProjectChecklist)

	// Корректировки
	g.POST("/projects/:id/corrections", correctionCtrl.CreateCorrection)
	g.GET("/projects/:id/corrections", correctionCtrl.GetCorrections)
	g.PATCH("/corrections/:correctionId", correctionCtrl.UpdateCorrection)

	// Аналитика
	g.GET("/projects/:id/analytics/timeline", analyticsCtrl.GetProjectTimeline)
}
