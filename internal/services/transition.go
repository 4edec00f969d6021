package services

import (
	"context"
	"math"
	"time"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/events"
	"project-management/internal/repositories"
	"project-management/pkg/constants"
	"project-management/pkg/eventbus"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TransitionServiceInterface interface {
	Transition(ctx context.Context, projectID uint64, payload dto.TransitionDTO) (*dto.DepartmentHistoryDTO, error)
	UpdateWorkStatus(ctx context.Context, projectID uint64, payload dto.UpdateWorkStatusDTO) (*dto.DepartmentHistoryDTO, error)
	GetHistory(ctx context.Context, projectID uint64) ([]dto.DepartmentHistoryDTO, error)
}

type TransitionService struct {
	projectRepo   repositories.ProjectRepositoryInterface
	historyRepo   repositories.DepartmentHistoryRepositoryInterface
	workflowRepo  repositories.CategoryWorkflowRepositoryInterface
	checklistRepo repositories.ProjectChecklistRepositoryInterface
	templateRepo  repositories.ChecklistTemplateRepositoryInterface
	correctionRepo repositories.CorrectionRepositoryInterface
	txManager     repositories.TxManagerInterface
	gatekeeper    *authz.Gatekeeper
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewTransitionService(
	projectRepo repositories.ProjectRepositoryInterface,
	historyRepo repositories.DepartmentHistoryRepositoryInterface,
	workflowRepo repositories.CategoryWorkflowRepositoryInterface,
	checklistRepo repositories.ProjectChecklistRepositoryInterface,
	templateRepo repositories.ChecklistTemplateRepositoryInterface,
	correctionRepo repositories.CorrectionRepositoryInterface,
	txManager repositories.TxManagerInterface,
	gatekeeper *authz.Gatekeeper,
	bus *eventbus.Bus,
	logger *zap.Logger,
) TransitionServiceInterface {
	return &TransitionService{
		projectRepo:    projectRepo,
		historyRepo:    historyRepo,
		workflowRepo:   workflowRepo,
		checklistRepo:  checklistRepo,
		templateRepo:   templateRepo,
		correctionRepo: correctionRepo,
		txManager:      txManager,
		gatekeeper:     gatekeeper,
		bus:            bus,
		logger:         logger,
	}
}

// Transition переводит проект в департамент payload.ToDepartmentID.
// Весь переход выполняется в одной транзакции с блокировкой строки проекта:
// проверка маршрута, гейтинг чеклиста и замечаний, закрытие текущей записи
// истории, создание новой и обновление указателей проекта.
func (s *TransitionService) Transition(ctx context.Context, projectID uint64, payload dto.TransitionDTO) (*dto.DepartmentHistoryDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	actor := &entities.User{ID: userID}

	var (
		newHistoryID uint64
		fromDeptID   *uint64
		isOverride   bool
	)

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		project, err := s.projectRepo.FindProjectInTx(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !s.gatekeeper.Can(perms, actor, authz.ProjectsTransition, project) {
			return apperrors.ErrForbidden
		}
		if project.Status != constants.ProjectStatusActive {
			return apperrors.NewConflictError("Переходы возможны только для активных проектов.")
		}

		steps, err := s.workflowRepo.GetWorkflowSteps(ctx, project.CategoryID)
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			return apperrors.NewBadRequestError("У категории проекта не настроен маршрут по департаментам.")
		}

		targetStep := findStep(steps, payload.ToDepartmentID)
		if targetStep == nil {
			return apperrors.NewBadRequestError("Целевой департамент не входит в маршрут категории.")
		}
		expectedNext := nextStep(steps, project.CurrentDepartmentID)

		isOverride = expectedNext == nil || expectedNext.DepartmentID != payload.ToDepartmentID
		if isOverride {
			if !s.gatekeeper.Can(perms, actor, authz.ProjectsTransitionOverride, project) {
				return apperrors.NewForbiddenError("Переход вне порядка маршрута требует отдельного разрешения.")
			}
			if payload.PermissionGrantedByID == nil {
				return apperrors.NewBadRequestError("Для перехода вне порядка маршрута укажите, кто выдал разрешение.")
			}
		}

		// Гейтинг действует при выходе из департамента и не отключается override-ом:
		// разрешение меняет маршрут, но не снимает требования к готовности.
		if project.CurrentDepartmentID != nil {
			current, err := s.historyRepo.FindCurrentInTx(ctx, tx, projectID)
			if err != nil {
				return err
			}
			if err := s.checkGating(ctx, tx, project, current); err != nil {
				return err
			}
			if err := s.closeHistoryRecord(ctx, tx, current); err != nil {
				return err
			}
		}

		fromDeptID = project.CurrentDepartmentID

		estimatedDays := payload.EstimatedDays
		if estimatedDays == nil {
			estimatedDays = targetStep.EstimatedDays
		}

		txID := uuid.NewString()
		newHistoryID, err = s.historyRepo.CreateInTx(ctx, tx, &entities.ProjectDepartmentHistory{
			ProjectID:           projectID,
			FromDepartmentID:    project.CurrentDepartmentID,
			ToDepartmentID:      payload.ToDepartmentID,
			WorkStatus:          constants.WorkStatusNotStarted,
			EstimatedDays:       estimatedDays,
			MovedBy:             userID,
			PermissionGrantedBy: payload.PermissionGrantedByID,
			Notes:               payload.Notes,
			TxID:                &txID,
		})
		if err != nil {
			return err
		}

		var nextDeptID *uint64
		if after := nextStep(steps, &payload.ToDepartmentID); after != nil {
			nextDeptID = &after.DepartmentID
		}
		return s.projectRepo.UpdateDepartmentsInTx(ctx, tx, projectID, payload.ToDepartmentID, nextDeptID)
	})
	if err != nil {
		s.logger.Warn("Переход проекта отклонён",
			zap.Uint64("projectID", projectID),
			zap.Uint64("toDepartmentID", payload.ToDepartmentID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Проект переведён в департамент",
		zap.Uint64("projectID", projectID),
		zap.Uint64("toDepartmentID", payload.ToDepartmentID),
		zap.Bool("override", isOverride))

	s.bus.Publish(ctx, events.ProjectTransitionedEvent{
		ProjectID:        projectID,
		FromDepartmentID: fromDeptID,
		ToDepartmentID:   payload.ToDepartmentID,
		HistoryID:        newHistoryID,
		MovedBy:          userID,
		IsOverride:       isOverride,
	})

	return s.historyDTOByID(ctx, newHistoryID)
}

// checkGating запрещает покидать департамент, пока не выполнены обязательные
// пункты чеклиста и остаются незакрытые замечания.
func (s *TransitionService) checkGating(ctx context.Context, tx pgx.Tx, project *entities.Project, current *entities.ProjectDepartmentHistory) error {
	items, err := s.checklistRepo.GetProjectItemsInTx(ctx, tx, project.ID, *project.CurrentDepartmentID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		// Чеклист мог ещё не инстанцироваться - требования берём из активного шаблона
		templates, err := s.templateRepo.GetActiveTemplateItemsInTx(ctx, tx, *project.CurrentDepartmentID)
		if err != nil {
			return err
		}
		for _, t := range templates {
			if t.IsRequired {
				return apperrors.NewConflictError("Обязательные пункты чеклиста текущего департамента не выполнены.")
			}
		}
	} else {
		progress := ComputeProgress(items)
		if !progress.CanProceedToNext {
			return apperrors.NewConflictError("Обязательные пункты чеклиста текущего департамента не выполнены.")
		}
	}

	openCorrections, err := s.correctionRepo.CountOpenForHistoryInTx(ctx, tx, current.ID)
	if err != nil {
		return err
	}
	if openCorrections > 0 {
		return apperrors.NewConflictError("По текущему департаменту остались незакрытые замечания.")
	}
	return nil
}

// closeHistoryRecord фиксирует окончание пребывания в департаменте.
func (s *TransitionService) closeHistoryRecord(ctx context.Context, tx pgx.Tx, current *entities.ProjectDepartmentHistory) error {
	now := time.Now()
	if current.WorkEndDate == nil {
		current.WorkEndDate = &now
	}
	if current.ActualDays == nil {
		start := current.CreatedAt
		if current.WorkStartDate != nil {
			start = *current.WorkStartDate
		}
		days := int(math.Round(current.WorkEndDate.Sub(start).Hours() / 24))
		if days < 0 {
			days = 0
		}
		current.ActualDays = &days
	}
	return s.historyRepo.UpdateWorkInTx(ctx, tx, current)
}

// UpdateWorkStatus меняет статус работы текущей записи истории по таблице переходов.
func (s *TransitionService) UpdateWorkStatus(ctx context.Context, projectID uint64, payload dto.UpdateWorkStatusDTO) (*dto.DepartmentHistoryDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	if !constants.IsValidWorkStatus(payload.WorkStatus) {
		return nil, apperrors.NewInvalidInputError("неизвестный статус работы: %s", payload.WorkStatus)
	}

	var historyID uint64
	var fromStatus string
	var departmentID uint64

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		project, err := s.projectRepo.FindProjectInTx(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, authz.ProjectsUpdate, project) {
			return apperrors.ErrForbidden
		}

		current, err := s.historyRepo.FindCurrentInTx(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if current.WorkStatus != payload.WorkStatus && !constants.CanChangeWorkStatus(current.WorkStatus, payload.WorkStatus) {
			return apperrors.NewConflictError("Недопустимая смена статуса работы: " + current.WorkStatus + " -> " + payload.WorkStatus)
		}

		fromStatus = current.WorkStatus
		historyID = current.ID
		departmentID = current.ToDepartmentID
		now := time.Now()

		current.WorkStatus = payload.WorkStatus
		if payload.WorkStartDate != nil {
			parsed, err := time.Parse(time.RFC3339, *payload.WorkStartDate)
			if err != nil {
				return apperrors.NewInvalidInputError("неверный формат work_start_date: %s", *payload.WorkStartDate)
			}
			current.WorkStartDate = &parsed
		} else if payload.WorkStatus == constants.WorkStatusInProgress && current.WorkStartDate == nil {
			current.WorkStartDate = &now
		}

		if payload.WorkEndDate != nil {
			parsed, err := time.Parse(time.RFC3339, *payload.WorkEndDate)
			if err != nil {
				return apperrors.NewInvalidInputError("неверный формат work_end_date: %s", *payload.WorkEndDate)
			}
			current.WorkEndDate = &parsed
		} else if constants.IsFinalWorkStatus(payload.WorkStatus) && current.WorkEndDate == nil {
			current.WorkEndDate = &now
		}

		if payload.ActualDays != nil {
			current.ActualDays = payload.ActualDays
		} else if current.WorkStartDate != nil && current.WorkEndDate != nil && current.ActualDays == nil {
			days := int(math.Round(current.WorkEndDate.Sub(*current.WorkStartDate).Hours() / 24))
			if days < 0 {
				days = 0
			}
			current.ActualDays = &days
		}

		if payload.Notes != nil {
			current.Notes = payload.Notes
		}
		return s.historyRepo.UpdateWorkInTx(ctx, tx, current)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.WorkStatusChangedEvent{
		ProjectID:    projectID,
		HistoryID:    historyID,
		DepartmentID: departmentID,
		FromStatus:   fromStatus,
		ToStatus:     payload.WorkStatus,
		ChangedBy:    userID,
	})

	return s.historyDTOByID(ctx, historyID)
}

func (s *TransitionService) GetHistory(ctx context.Context, projectID uint64) ([]dto.DepartmentHistoryDTO, error) {
	if _, err := s.projectRepo.FindProject(ctx, projectID); err != nil {
		return nil, err
	}
	records, err := s.historyRepo.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("Ошибка при получении истории проекта", zap.Uint64("projectID", projectID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DepartmentHistoryDTO, 0, len(records))
	for i := range records {
		result = append(result, historyRecordToDTO(&records[i]))
	}
	return result, nil
}

func (s *TransitionService) historyDTOByID(ctx context.Context, historyID uint64) (*dto.DepartmentHistoryDTO, error) {
	h, err := s.historyRepo.FindHistory(ctx, historyID)
	if err != nil {
		return nil, err
	}
	result := historyToDTO(h)
	return &result, nil
}

func findStep(steps []entities.CategoryDepartmentMapping, departmentID uint64) *entities.CategoryDepartmentMapping {
	for i := range steps {
		if steps[i].DepartmentID == departmentID {
			return &steps[i]
		}
	}
	return nil
}

// nextStep - шаг маршрута после current; при nil current - первый шаг.
func nextStep(steps []entities.CategoryDepartmentMapping, current *uint64) *entities.CategoryDepartmentMapping {
	if current == nil {
		if len(steps) == 0 {
			return nil
		}
		return &steps[0]
	}
	for i := range steps {
		if steps[i].DepartmentID == *current {
			if i+1 < len(steps) {
				return &steps[i+1]
			}
			return nil
		}
	}
	return nil
}

func historyToDTO(h *entities.ProjectDepartmentHistory) dto.DepartmentHistoryDTO {
	result := dto.DepartmentHistoryDTO{
		ID:                  h.ID,
		ProjectID:           h.ProjectID,
		FromDepartmentID:    h.FromDepartmentID,
		ToDepartmentID:      h.ToDepartmentID,
		WorkStatus:          h.WorkStatus,
		EstimatedDays:       h.EstimatedDays,
		ActualDays:          h.ActualDays,
		CorrectionCount:     h.CorrectionCount,
		MovedBy:             h.MovedBy,
		PermissionGrantedBy: h.PermissionGrantedBy,
		Notes:               h.Notes,
		CreatedAt:           utils.FormatTime(h.CreatedAt),
	}
	if h.WorkStartDate != nil {
		result.WorkStartDate = utils.FormatTime(*h.WorkStartDate)
	}
	if h.WorkEndDate != nil {
		result.WorkEndDate = utils.FormatTime(*h.WorkEndDate)
	}
	return result
}

func historyRecordToDTO(rec *repositories.HistoryRecord) dto.DepartmentHistoryDTO {
	result := historyToDTO(&rec.ProjectDepartmentHistory)
	if rec.FromDepartmentCode != nil {
		result.FromDepartmentCode = *rec.FromDepartmentCode
	}
	result.ToDepartmentCode = rec.ToDepartmentCode
	return result
}
