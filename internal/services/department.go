package services

import (
	"context"

	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	"project-management/pkg/types"
	"project-management/pkg/utils"

	"go.uber.org/zap"
)

type DepartmentServiceInterface interface {
	GetDepartments(ctx context.Context, filter types.Filter) ([]dto.DepartmentDTO, uint64, error)
	FindDepartment(ctx context.Context, id uint64) (*dto.DepartmentDTO, error)
	CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*dto.DepartmentDTO, error)
	UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*dto.DepartmentDTO, error)
	DeleteDepartment(ctx context.Context, id uint64) error
}

type DepartmentService struct {
	departmentRepository repositories.DepartmentRepositoryInterface
	logger               *zap.Logger
}

func NewDepartmentService(departmentRepository repositories.DepartmentRepositoryInterface, logger *zap.Logger) DepartmentServiceInterface {
	return &DepartmentService{
		departmentRepository: departmentRepository,
		logger:               logger,
	}
}

func (s *DepartmentService) GetDepartments(ctx context.Context, filter types.Filter) ([]dto.DepartmentDTO, uint64, error) {
	departments, total, err := s.departmentRepository.GetDepartments(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка департаментов", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.DepartmentDTO, 0, len(departments))
	for i := range departments {
		result = append(result, departmentToDTO(&departments[i]))
	}
	return result, total, nil
}

func (s *DepartmentService) FindDepartment(ctx context.Context, id uint64) (*dto.DepartmentDTO, error) {
	department, err := s.departmentRepository.FindDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	result := departmentToDTO(department)
	return &result, nil
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*dto.DepartmentDTO, error) {
	department, err := s.departmentRepository.CreateDepartment(ctx, entities.Department{Code: payload.Code, Name: payload.Name})
	if err != nil {
		s.logger.Error("Ошибка при создании департамента", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Департамент создан", zap.Uint64("id", department.ID), zap.String("code", department.Code))
	result := departmentToDTO(department)
	return &result, nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*dto.DepartmentDTO, error) {
	department, err := s.departmentRepository.UpdateDepartment(ctx, id, payload)
	if err != nil {
		s.logger.Error("Ошибка при обновлении департамента", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	result := departmentToDTO(department)
	return &result, nil
}

func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uint64) error {
	err := s.departmentRepository.DeleteDepartment(ctx, id)
	if err != nil {
		s.logger.Error("Ошибка при удалении департамента", zap.Uint64("id", id), zap.Error(err))
	}
	return err
}

func departmentToDTO(d *entities.Department) dto.DepartmentDTO {
	result := dto.DepartmentDTO{
		ID:   d.ID,
		Code: d.Code,
		Name: d.Name,
	}
	if d.CreatedAt != nil {
		result.CreatedAt = utils.FormatTime(*d.CreatedAt)
	}
	if d.UpdatedAt != nil {
		result.UpdatedAt = utils.FormatTime(*d.UpdatedAt)
	}
	return result
}
