package services

import (
	"context"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	"project-management/pkg/constants"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/types"
	"project-management/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProjectServiceInterface interface {
	GetProjects(ctx context.Context, filter types.Filter) ([]dto.ProjectDTO, uint64, error)
	FindProject(ctx context.Context, id uint64) (*dto.ProjectDTO, error)
	CreateProject(ctx context.Context, payload dto.CreateProjectDTO) (*dto.ProjectDTO, error)
	UpdateProject(ctx context.Context, id uint64, payload dto.UpdateProjectDTO) (*dto.ProjectDTO, error)
}

type ProjectService struct {
	projectRepo  repositories.ProjectRepositoryInterface
	workflowRepo repositories.CategoryWorkflowRepositoryInterface
	historyRepo  repositories.DepartmentHistoryRepositoryInterface
	txManager    repositories.TxManagerInterface
	gatekeeper   *authz.Gatekeeper
	logger       *zap.Logger
}

func NewProjectService(
	projectRepo repositories.ProjectRepositoryInterface,
	workflowRepo repositories.CategoryWorkflowRepositoryInterface,
	historyRepo repositories.DepartmentHistoryRepositoryInterface,
	txManager repositories.TxManagerInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) ProjectServiceInterface {
	return &ProjectService{
		projectRepo:  projectRepo,
		workflowRepo: workflowRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		gatekeeper:   gatekeeper,
		logger:       logger,
	}
}

func (s *ProjectService) GetProjects(ctx context.Context, filter types.Filter) ([]dto.ProjectDTO, uint64, error) {
	projects, total, err := s.projectRepo.GetProjects(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка проектов", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.ProjectDTO, 0, len(projects))
	for i := range projects {
		result = append(result, projectRecordToDTO(&projects[i]))
	}
	return result, total, nil
}

func (s *ProjectService) FindProject(ctx context.Context, id uint64) (*dto.ProjectDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	record, err := s.projectRepo.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, authz.ProjectsView, &record.Project) {
		return nil, apperrors.ErrForbidden
	}
	result := projectRecordToDTO(record)
	return &result, nil
}

// CreateProject создаёт проект. Если у категории задан стартовый департамент,
// проект сразу помещается туда с первой записью истории.
func (s *ProjectService) CreateProject(ctx context.Context, payload dto.CreateProjectDTO) (*dto.ProjectDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, authz.ProjectsCreate, nil) {
		return nil, apperrors.ErrForbidden
	}

	category, err := s.workflowRepo.FindCategory(ctx, payload.CategoryID)
	if err != nil {
		return nil, err
	}
	steps, err := s.workflowRepo.GetWorkflowSteps(ctx, payload.CategoryID)
	if err != nil {
		return nil, err
	}

	project := &entities.Project{
		Name:       payload.Name,
		CategoryID: payload.CategoryID,
		Status:     constants.ProjectStatusActive,
		CreatedBy:  userID,
	}

	startDeptID := category.DefaultStartDepartmentID
	if startDeptID != nil && findStep(steps, *startDeptID) == nil {
		return nil, apperrors.NewConflictError("Стартовый департамент категории не входит в её маршрут.")
	}
	if startDeptID != nil {
		project.CurrentDepartmentID = startDeptID
		if after := nextStep(steps, startDeptID); after != nil {
			project.NextDepartmentID = &after.DepartmentID
		}
	} else if first := nextStep(steps, nil); first != nil {
		project.NextDepartmentID = &first.DepartmentID
	}

	var projectID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		projectID, err = s.projectRepo.CreateProjectInTx(ctx, tx, project)
		if err != nil {
			return err
		}
		if startDeptID != nil {
			txID := uuid.NewString()
			step := findStep(steps, *startDeptID)
			_, err = s.historyRepo.CreateInTx(ctx, tx, &entities.ProjectDepartmentHistory{
				ProjectID:      projectID,
				ToDepartmentID: *startDeptID,
				WorkStatus:     constants.WorkStatusNotStarted,
				EstimatedDays:  step.EstimatedDays,
				MovedBy:        userID,
				TxID:           &txID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при создании проекта", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Проект создан", zap.Uint64("id", projectID), zap.String("name", payload.Name))
	record, err := s.projectRepo.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	result := projectRecordToDTO(record)
	return &result, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id uint64, payload dto.UpdateProjectDTO) (*dto.ProjectDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	record, err := s.projectRepo.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, authz.ProjectsUpdate, &record.Project) {
		return nil, apperrors.ErrForbidden
	}

	if err := s.projectRepo.UpdateProject(ctx, id, payload); err != nil {
		s.logger.Error("Ошибка при обновлении проекта", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	updated, err := s.projectRepo.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	result := projectRecordToDTO(updated)
	return &result, nil
}

func projectRecordToDTO(rec *repositories.ProjectRecord) dto.ProjectDTO {
	result := dto.ProjectDTO{
		ID:                  rec.ID,
		Name:                rec.Name,
		CategoryID:          rec.CategoryID,
		CategoryName:        rec.CategoryName,
		CurrentDepartmentID: rec.CurrentDepartmentID,
		NextDepartmentID:    rec.NextDepartmentID,
		Status:              rec.Status,
		CreatedBy:           rec.CreatedBy,
	}
	if rec.CurrentDepartmentCode != nil {
		result.CurrentDepartmentCode = *rec.CurrentDepartmentCode
	}
	if rec.NextDepartmentCode != nil {
		result.NextDepartmentCode = *rec.NextDepartmentCode
	}
	if rec.CreatedAt != nil {
		result.CreatedAt = utils.FormatTime(*rec.CreatedAt)
	}
	if rec.UpdatedAt != nil {
		result.UpdatedAt = utils.FormatTime(*rec.UpdatedAt)
	}
	return result
}
