package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"project-management/internal/authz"
	"project-management/internal/controllers"
	"project-management/internal/listeners"
	"project-management/internal/repositories"
	"project-management/internal/services"
	"project-management/pkg/config"
	"project-management/pkg/eventbus"
	"project-management/pkg/middleware"
	"project-management/pkg/service"
)

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	logger *zap.Logger,
	authPermissionService services.AuthPermissionServiceInterface,
	cfg *config.Config,
) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, authPermissionService, logger)
	txManager := repositories.NewTxManager(dbConn)
	gatekeeper := authz.NewGatekeeper()
	bus := eventbus.New(logger)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	departmentRepo := repositories.NewDepartmentRepository(dbConn, logger)
	workflowRepo := repositories.NewCategoryWorkflowRepository(dbConn, logger)
	templateRepo := repositories.NewChecklistTemplateRepository(dbConn, logger)
	checklistRepo := repositories.NewProjectChecklistRepository(dbConn, logger)
	projectRepo := repositories.NewProjectRepository(dbConn, logger)
	historyRepo := repositories.NewDepartmentHistoryRepository(dbConn, logger)
	correctionRepo := repositories.NewCorrectionRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. СЕРВИСЫ ---
	authService := services.NewAuthService(userRepo, jwtSvc, logger)
	departmentService := services.NewDepartmentService(departmentRepo, logger)
	workflowService := services.NewCategoryWorkflowService(workflowRepo, cacheRepo, txManager, gatekeeper, logger, cfg.Workflow.WorkflowCacheTTL)
	checklistService := services.NewChecklistService(templateRepo, checklistRepo, projectRepo, txManager, gatekeeper, logger)
	projectService := services.NewProjectService(projectRepo, workflowRepo, historyRepo, txManager, gatekeeper, logger)
	transitionService := services.NewTransitionService(
		projectRepo, historyRepo, workflowRepo, checklistRepo, templateRepo, correctionRepo,
		txManager, gatekeeper, bus, logger,
	)
	correctionService := services.NewCorrectionService(
		correctionRepo, historyRepo, projectRepo, txManager, gatekeeper, bus, logger,
		cfg.Workflow.CorrectionDeniedDepartments,
	)
	analyticsService := services.NewAnalyticsService(projectRepo, historyRepo, correctionRepo, gatekeeper, logger)
	notificationService := services.NewMockNotificationService(logger)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	notificationListener := listeners.NewNotificationListener(notificationService, userRepo, departmentRepo, logger)
	notificationListener.Register(bus)

	// --- 4. КОНТРОЛЛЕРЫ ---
	authController := controllers.NewAuthController(authService, logger)
	departmentController := controllers.NewDepartmentController(departmentService, logger)
	workflowController := controllers.NewCategoryWorkflowController(workflowService, logger)
	checklistController := controllers.NewChecklistController(checklistService, logger)
	projectController := controllers.NewProjectController(projectService, logger)
	transitionController := controllers.NewTransitionController(transitionService, logger)
	correctionController := controllers.NewCorrectionController(correctionService, logger)
	analyticsController := controllers.NewAnalyticsController(analyticsService, logger)

	// --- 5. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authController)
	runDepartmentRouter(secureGroup, departmentController)
	runCategoryWorkflowRouter(secureGroup, workflowController)
	runChecklistRouter(secureGroup, checklistController)
	runProjectRouter(secureGroup, projectController, transitionController, correctionController, checklistController, analyticsController)

	logger.Info("InitRouter: Создание маршрутов завершено")
}
