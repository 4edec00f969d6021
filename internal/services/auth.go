package services

import (
	"context"
	"errors"

	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	apperrors "project-management/pkg/errors"
	jwtservice "project-management/pkg/service"
	"project-management/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	RefreshTokens(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error)
	GetUserByID(ctx context.Context, userID uint64) (*entities.User, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	jwtService jwtservice.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	jwtService jwtservice.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Не раскрываем, существует ли учётная запись
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error("Ошибка при поиске пользователя", zap.Error(err))
		return nil, err
	}

	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.logger.Warn("Неудачная попытка входа", zap.String("email", payload.Email))
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) RefreshTokens(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindUser(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.buildAuthResponse(user)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint64) (*entities.User, error) {
	return s.userRepo.FindUser(ctx, userID)
}

func (s *AuthService) buildAuthResponse(user *entities.User) (*dto.AuthResponseDTO, error) {
	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user.ID, user.RoleID)
	if err != nil {
		s.logger.Error("Не удалось сгенерировать токены", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	return &dto.AuthResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserPublicDTO{
			ID:       user.ID,
			Email:    user.Email,
			Fio:      user.Fio,
			RoleID:   user.RoleID,
			RoleCode: user.RoleCode,
		},
	}, nil
}
