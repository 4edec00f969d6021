package middleware

import (
	"context"
	"strings"

	"project-management/pkg/contextkeys"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/service"
	"project-management/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PermissionProvider отдаёт список привилегий роли (с кешем на стороне сервиса).
type PermissionProvider interface {
	GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error)
}

type AuthMiddleware struct {
	jwtService         service.JWTService
	permissionProvider PermissionProvider
	logger             *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, permissionProvider PermissionProvider, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:         jwtSvc,
		permissionProvider: permissionProvider,
		logger:             logger,
	}
}

// Auth - это основная функция middleware.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		permissions, err := m.permissionProvider.GetRolePermissionsNames(c.Request().Context(), claims.RoleID)
		if err != nil {
			m.logger.Error("AuthMiddleware: Не удалось получить привилегии роли", zap.Uint64("roleID", claims.RoleID), zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
		permissionsMap := make(map[string]bool, len(permissions))
		for _, p := range permissions {
			permissionsMap[p] = true
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleIDKey, claims.RoleID)
		ctx = context.WithValue(ctx, contextkeys.UserPermissionsMapKey, permissionsMap)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
