package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	"project-management/pkg/constants"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/types"
	"project-management/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CategoryWorkflowServiceInterface interface {
	GetCategories(ctx context.Context, filter types.Filter) ([]dto.CategoryDTO, uint64, error)
	FindCategory(ctx context.Context, id uint64) (*dto.CategoryDTO, error)
	CreateCategory(ctx context.Context, payload dto.CreateCategoryDTO) (*dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateCategoryDTO) (*dto.CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uint64) error

	GetWorkflow(ctx context.Context, categoryID uint64) (*dto.WorkflowDTO, error)
	GetNextDepartment(ctx context.Context, categoryID uint64, currentDepartmentID *uint64) (*dto.WorkflowStepDTO, error)
	BulkReplaceSteps(ctx context.Context, categoryID uint64, payload dto.BulkReplaceStepsDTO) (*dto.WorkflowDTO, error)
	CreateStep(ctx context.Context, categoryID uint64, payload dto.CreateWorkflowStepDTO) (*dto.WorkflowStepDTO, error)
	UpdateStep(ctx context.Context, stepID uint64, payload dto.UpdateWorkflowStepDTO) (*dto.WorkflowStepDTO, error)
	DeleteStep(ctx context.Context, stepID uint64) error
}

type CategoryWorkflowService struct {
	workflowRepo repositories.CategoryWorkflowRepositoryInterface
	cacheRepo    repositories.CacheRepositoryInterface
	txManager    repositories.TxManagerInterface
	gatekeeper   *authz.Gatekeeper
	logger       *zap.Logger
	cacheTTL     time.Duration
}

func NewCategoryWorkflowService(
	workflowRepo repositories.CategoryWorkflowRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	txManager repositories.TxManagerInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
	cacheTTL time.Duration,
) CategoryWorkflowServiceInterface {
	return &CategoryWorkflowService{
		workflowRepo: workflowRepo,
		cacheRepo:    cacheRepo,
		txManager:    txManager,
		gatekeeper:   gatekeeper,
		logger:       logger,
		cacheTTL:     cacheTTL,
	}
}

func (s *CategoryWorkflowService) requireManage(ctx context.Context) error {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, authz.WorkflowManage, nil) {
		return apperrors.ErrForbidden
	}
	return nil
}

// --- КАТЕГОРИИ ---

func (s *CategoryWorkflowService) GetCategories(ctx context.Context, filter types.Filter) ([]dto.CategoryDTO, uint64, error) {
	categories, total, err := s.workflowRepo.GetCategories(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка категорий", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.CategoryDTO, 0, len(categories))
	for i := range categories {
		result = append(result, categoryToDTO(&categories[i]))
	}
	return result, total, nil
}

func (s *CategoryWorkflowService) FindCategory(ctx context.Context, id uint64) (*dto.CategoryDTO, error) {
	category, err := s.workflowRepo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	result := categoryToDTO(category)
	return &result, nil
}

func (s *CategoryWorkflowService) CreateCategory(ctx context.Context, payload dto.CreateCategoryDTO) (*dto.CategoryDTO, error) {
	if err := s.requireManage(ctx); err != nil {
		return nil, err
	}
	category, err := s.workflowRepo.CreateCategory(ctx, payload)
	if err != nil {
		s.logger.Error("Ошибка при создании категории", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Категория создана", zap.Uint64("id", category.ID), zap.String("code", category.Code))
	result := categoryToDTO(category)
	return &result, nil
}

func (s *CategoryWorkflowService) UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateCategoryDTO) (*dto.CategoryDTO, error) {
	if err := s.requireManage(ctx); err != nil {
		return nil, err
	}
	category, err := s.workflowRepo.UpdateCategory(ctx, id, payload)
	if err != nil {
		s.logger.Error("Ошибка при обновлении категории", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	result := categoryToDTO(category)
	return &result, nil
}

func (s *CategoryWorkflowService) DeleteCategory(ctx context.Context, id uint64) error {
	if err := s.requireManage(ctx); err != nil {
		return err
	}
	if err := s.workflowRepo.DeleteCategory(ctx, id); err != nil {
		s.logger.Error("Ошибка при удалении категории", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	s.invalidateWorkflowCache(ctx, id)
	return nil
}

// --- ВОРКФЛОУ ---

// GetWorkflow возвращает категорию с упорядоченными активными шагами.
// Список шагов кешируется в Redis.
func (s *CategoryWorkflowService) GetWorkflow(ctx context.Context, categoryID uint64) (*dto.WorkflowDTO, error) {
	category, err := s.workflowRepo.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	steps, err := s.getCachedSteps(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	orderedSteps := make([]dto.WorkflowStepDTO, 0, len(steps))
	for i := range steps {
		orderedSteps = append(orderedSteps, mappingToDTO(&steps[i]))
	}
	return &dto.WorkflowDTO{
		Category:     categoryToDTO(category),
		OrderedSteps: orderedSteps,
	}, nil
}

// GetNextDepartment - следующий шаг маршрута после currentDepartmentID.
// При nil возвращается первый шаг. Nil без ошибки означает, что следующего
// шага нет: маршрут пуст, текущий департамент вне маршрута или последний в нём.
func (s *CategoryWorkflowService) GetNextDepartment(ctx context.Context, categoryID uint64, currentDepartmentID *uint64) (*dto.WorkflowStepDTO, error) {
	steps, err := s.getCachedSteps(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, nil
	}

	if currentDepartmentID == nil {
		first := mappingToDTO(&steps[0])
		return &first, nil
	}

	for i := range steps {
		if steps[i].DepartmentID == *currentDepartmentID {
			if i+1 < len(steps) {
				next := mappingToDTO(&steps[i+1])
				return &next, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

// BulkReplaceSteps атомарно заменяет маршрут категории.
// Последовательность обязана быть непрерывной: 1..N без дыр и дублей.
func (s *CategoryWorkflowService) BulkReplaceSteps(ctx context.Context, categoryID uint64, payload dto.BulkReplaceStepsDTO) (*dto.WorkflowDTO, error) {
	if err := s.requireManage(ctx); err != nil {
		return nil, err
	}
	if _, err := s.workflowRepo.FindCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	if err := validateStepSequence(payload.Steps); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.workflowRepo.BulkReplaceStepsInTx(ctx, tx, categoryID, payload.Steps)
	})
	if err != nil {
		s.logger.Error("Ошибка при замене воркфлоу категории", zap.Uint64("categoryID", categoryID), zap.Error(err))
		return nil, err
	}

	s.invalidateWorkflowCache(ctx, categoryID)
	s.logger.Info("Воркфлоу категории заменён", zap.Uint64("categoryID", categoryID), zap.Int("steps", len(payload.Steps)))
	return s.GetWorkflow(ctx, categoryID)
}

func (s *CategoryWorkflowService) CreateStep(ctx context.Context, categoryID uint64, payload dto.CreateWorkflowStepDTO) (*dto.WorkflowStepDTO, error) {
	if err := s.requireManage(ctx); err != nil {
		return nil, err
	}
	step, err := s.workflowRepo.CreateStep(ctx, categoryID, payload)
	if err != nil {
		s.logger.Error("Ошибка при добавлении шага воркфлоу", zap.Uint64("categoryID", categoryID), zap.Error(err))
		return nil, err
	}
	s.invalidateWorkflowCache(ctx, categoryID)
	result := mappingToDTO(step)
	return &result, nil
}

func (s *CategoryWorkflowService) UpdateStep(ctx context.Context, stepID uint64, payload dto.UpdateWorkflowStepDTO) (*dto.WorkflowStepDTO, error) {
	if err := s.requireManage(ctx); err != nil {
		return nil, err
	}
	step, err := s.workflowRepo.UpdateStep(ctx, stepID, payload)
	if err != nil {
		s.logger.Error("Ошибка при обновлении шага воркфлоу", zap.Uint64("stepID", stepID), zap.Error(err))
		return nil, err
	}
	s.invalidateWorkflowCache(ctx, step.CategoryID)
	result := mappingToDTO(step)
	return &result, nil
}

func (s *CategoryWorkflowService) DeleteStep(ctx context.Context, stepID uint64) error {
	if err := s.requireManage(ctx); err != nil {
		return err
	}
	step, err := s.workflowRepo.FindStep(ctx, stepID)
	if err != nil {
		return err
	}
	if err := s.workflowRepo.DeleteStep(ctx, stepID); err != nil {
		s.logger.Error("Ошибка при удалении шага воркфлоу", zap.Uint64("stepID", stepID), zap.Error(err))
		return err
	}
	s.invalidateWorkflowCache(ctx, step.CategoryID)
	return nil
}

// --- ВНУТРЕННЕЕ ---

func (s *CategoryWorkflowService) getCachedSteps(ctx context.Context, categoryID uint64) ([]entities.CategoryDepartmentMapping, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyCategoryWorkflow, categoryID)

	var steps []entities.CategoryDepartmentMapping
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		if err := json.Unmarshal([]byte(cached), &steps); err == nil {
			return steps, nil
		}
		s.logger.Warn("Повреждённый кеш воркфлоу категории", zap.Uint64("categoryID", categoryID))
	}

	steps, err := s.workflowRepo.GetWorkflowSteps(ctx, categoryID)
	if err != nil {
		s.logger.Error("Ошибка при получении шагов воркфлоу", zap.Uint64("categoryID", categoryID), zap.Error(err))
		return nil, err
	}

	if payload, err := json.Marshal(steps); err == nil {
		if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); errSet != nil {
			s.logger.Warn("Не удалось закешировать воркфлоу категории", zap.Uint64("categoryID", categoryID), zap.Error(errSet))
		}
	}
	return steps, nil
}

func (s *CategoryWorkflowService) invalidateWorkflowCache(ctx context.Context, categoryID uint64) {
	cacheKey := fmt.Sprintf(constants.CacheKeyCategoryWorkflow, categoryID)
	if err := s.cacheRepo.Del(ctx, cacheKey); err != nil {
		s.logger.Warn("Не удалось инвалидировать кеш воркфлоу", zap.Uint64("categoryID", categoryID), zap.Error(err))
	}
}

func validateStepSequence(steps []dto.WorkflowStepInput) error {
	if len(steps) == 0 {
		return nil
	}
	sequences := make([]int, 0, len(steps))
	seenDepartments := make(map[uint64]bool, len(steps))
	for _, step := range steps {
		if seenDepartments[step.DepartmentID] {
			return apperrors.NewInvalidInputError("департамент %d встречается в маршруте дважды", step.DepartmentID)
		}
		seenDepartments[step.DepartmentID] = true
		sequences = append(sequences, step.Sequence)
	}
	sort.Ints(sequences)
	for i, seq := range sequences {
		if seq != i+1 {
			return apperrors.NewInvalidInputError("последовательность шагов должна быть непрерывной от 1 до %d", len(steps))
		}
	}
	return nil
}

func categoryToDTO(c *entities.Category) dto.CategoryDTO {
	result := dto.CategoryDTO{
		ID:                       c.ID,
		Code:                     c.Code,
		Name:                     c.Name,
		DefaultStartDepartmentID: c.DefaultStartDepartmentID,
	}
	if c.CreatedAt != nil {
		result.CreatedAt = utils.FormatTime(*c.CreatedAt)
	}
	if c.UpdatedAt != nil {
		result.UpdatedAt = utils.FormatTime(*c.UpdatedAt)
	}
	return result
}

func mappingToDTO(m *entities.CategoryDepartmentMapping) dto.WorkflowStepDTO {
	return dto.WorkflowStepDTO{
		ID:             m.ID,
		CategoryID:     m.CategoryID,
		DepartmentID:   m.DepartmentID,
		DepartmentCode: m.DepartmentCode,
		Sequence:       m.Sequence,
		IsRequired:     m.IsRequired,
		EstimatedHours: m.EstimatedHours,
		EstimatedDays:  m.EstimatedDays,
		IsActive:       m.IsActive,
	}
}
