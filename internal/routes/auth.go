package routes

import (
	"github.com/labstack/echo/v4"

	"project-management/internal/controllers"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, ctrl *controllers.AuthController) {
	api.POST("/auth/login", ctrl.Login)
	api.POST("/auth/refresh-token", ctrl.RefreshToken)
	secureGroup.GET("/auth/me", ctrl.Me)
}
