package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"project-management/internal/repositories"
	"project-management/pkg/constants"
	apperrors "project-management/pkg/errors"

	"go.uber.org/zap"
)

type AuthPermissionServiceInterface interface {
	GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error)
	InvalidateRolePermissionsCache(ctx context.Context, roleID uint64) error
}

type AuthPermissionService struct {
	permissionRepo repositories.PermissionRepositoryInterface
	cacheRepo      repositories.CacheRepositoryInterface
	logger         *zap.Logger
	cacheTTL       time.Duration
}

func NewAuthPermissionService(
	permissionRepo repositories.PermissionRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) AuthPermissionServiceInterface {
	return &AuthPermissionService{
		permissionRepo: permissionRepo,
		cacheRepo:      cacheRepo,
		logger:         logger,
		cacheTTL:       cacheTTL,
	}
}

func (s *AuthPermissionService) GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyRolePermissions, roleID)
	var permissions []string

	// 1. Попытка получить данные из Redis-кеша
	cachedJSON, errGet := s.cacheRepo.Get(ctx, cacheKey)
	if errGet == nil {
		if err := json.Unmarshal([]byte(cachedJSON), &permissions); err == nil {
			return permissions, nil
		}
		s.logger.Warn("Ошибка при десериализации привилегий из кеша", zap.Error(errGet), zap.Uint64("roleID", roleID))
	}

	// 2. Кеш пуст или повреждён - идём в базу
	permissions, errDB := s.permissionRepo.GetPermissionsNamesByRoleID(ctx, roleID)
	if errDB != nil {
		s.logger.Error("Не удалось получить привилегии роли из БД", zap.Uint64("roleID", roleID), zap.Error(errDB))
		return nil, apperrors.ErrInternalServer
	}

	// 3. Кешируем обратно
	if len(permissions) > 0 {
		if payload, errMarshal := json.Marshal(permissions); errMarshal == nil {
			if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); errSet != nil {
				s.logger.Error("Не удалось сохранить привилегии роли в кеш", zap.Uint64("roleID", roleID), zap.Error(errSet))
			}
		}
	}
	return permissions, nil
}

func (s *AuthPermissionService) InvalidateRolePermissionsCache(ctx context.Context, roleID uint64) error {
	cacheKey := fmt.Sprintf(constants.CacheKeyRolePermissions, roleID)
	if err := s.cacheRepo.Del(ctx, cacheKey); err != nil {
		s.logger.Error("Ошибка инвалидации кеша привилегий роли", zap.Uint64("roleID", roleID), zap.Error(err))
		return err
	}
	return nil
}
