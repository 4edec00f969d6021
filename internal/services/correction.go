package services

import (
	"context"
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

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CorrectionServiceInterface interface {
	CreateCorrection(ctx context.Context, projectID uint64, payload dto.CreateCorrectionDTO) (*dto.CorrectionDTO, error)
	UpdateCorrection(ctx context.Context, correctionID uint64, payload dto.UpdateCorrectionDTO) (*dto.CorrectionDTO, error)
	ListForProject(ctx context.Context, projectID uint64, status string) ([]dto.CorrectionDTO, error)
}

type CorrectionService struct {
	correctionRepo repositories.CorrectionRepositoryInterface
	historyRepo    repositories.DepartmentHistoryRepositoryInterface
	projectRepo    repositories.ProjectRepositoryInterface
	txManager      repositories.TxManagerInterface
	gatekeeper     *authz.Gatekeeper
	bus            *eventbus.Bus
	logger         *zap.Logger

	// Коды департаментов, по которым замечания заводить нельзя.
	deniedDepartments map[string]bool
}

func NewCorrectionService(
	correctionRepo repositories.CorrectionRepositoryInterface,
	historyRepo repositories.DepartmentHistoryRepositoryInterface,
	projectRepo repositories.ProjectRepositoryInterface,
	txManager repositories.TxManagerInterface,
	gatekeeper *authz.Gatekeeper,
	bus *eventbus.Bus,
	logger *zap.Logger,
	deniedDepartmentCodes []string,
) CorrectionServiceInterface {
	denied := make(map[string]bool, len(deniedDepartmentCodes))
	for _, code := range deniedDepartmentCodes {
		denied[code] = true
	}
	return &CorrectionService{
		correctionRepo:    correctionRepo,
		historyRepo:       historyRepo,
		projectRepo:       projectRepo,
		txManager:         txManager,
		gatekeeper:        gatekeeper,
		bus:               bus,
		logger:            logger,
		deniedDepartments: denied,
	}
}

// CreateCorrection заводит замечание по текущему департаменту проекта.
// Счётчик correction_count записи истории увеличивается в той же транзакции.
func (s *CorrectionService) CreateCorrection(ctx context.Context, projectID uint64, payload dto.CreateCorrectionDTO) (*dto.CorrectionDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, authz.CorrectionsCreate, nil) {
		return nil, apperrors.ErrForbidden
	}

	project, err := s.projectRepo.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.CurrentDepartmentID == nil {
		return nil, apperrors.NewConflictError("Проект ещё не находится ни в одном департаменте.")
	}
	if project.CurrentDepartmentCode != nil && s.deniedDepartments[*project.CurrentDepartmentCode] {
		return nil, apperrors.NewConflictError("По департаменту " + *project.CurrentDepartmentCode + " замечания не заводятся.")
	}

	priority := payload.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	}

	correction := &entities.DepartmentCorrection{
		CorrectionType: payload.CorrectionType,
		Description:    payload.Description,
		RequestedBy:    userID,
		Status:         constants.CorrectionStatusOpen,
		Priority:       priority,
	}
	if payload.AssignedTo.Valid {
		assignedTo := uint64(payload.AssignedTo.Int)
		correction.AssignedTo = &assignedTo
	}
	if payload.EstimatedHours.Valid {
		hours := int(payload.EstimatedHours.Int)
		correction.EstimatedHours = &hours
	}

	var correctionID uint64
	var historyID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.historyRepo.FindCurrentInTx(ctx, tx, projectID)
		if err != nil {
			return err
		}
		historyID = current.ID
		correction.HistoryID = current.ID

		correctionID, err = s.correctionRepo.CreateInTx(ctx, tx, correction)
		if err != nil {
			return err
		}
		return s.historyRepo.IncrementCorrectionCountInTx(ctx, tx, current.ID)
	})
	if err != nil {
		s.logger.Error("Ошибка при создании замечания", zap.Uint64("projectID", projectID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Замечание создано",
		zap.Uint64("correctionID", correctionID),
		zap.Uint64("projectID", projectID),
		zap.String("priority", priority))

	s.bus.Publish(ctx, events.CorrectionCreatedEvent{
		CorrectionID: correctionID,
		ProjectID:    projectID,
		HistoryID:    historyID,
		DepartmentID: *project.CurrentDepartmentID,
		Priority:     priority,
		RequestedBy:  userID,
		AssignedTo:   correction.AssignedTo,
	})

	return s.findDTO(ctx, correctionID)
}

// UpdateCorrection меняет параметры замечания. Статус движется только вперёд:
// OPEN -> IN_PROGRESS -> RESOLVED/REJECTED, возвратов нет.
func (s *CorrectionService) UpdateCorrection(ctx context.Context, correctionID uint64, payload dto.UpdateCorrectionDTO) (*dto.CorrectionDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.correctionRepo.FindCorrection(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	correction := record.DepartmentCorrection

	actor := &entities.User{ID: userID}
	if !s.gatekeeper.Can(perms, actor, authz.CorrectionsUpdate, &correction) {
		return nil, apperrors.ErrForbidden
	}

	var resolvedEvent *events.CorrectionResolvedEvent

	if payload.Status.Valid {
		newStatus := payload.Status.String
		if newStatus != correction.Status {
			if !constants.CanChangeCorrectionStatus(correction.Status, newStatus) {
				return nil, apperrors.NewConflictError("Недопустимая смена статуса замечания: " + correction.Status + " -> " + newStatus)
			}
			if constants.IsFinalCorrectionStatus(newStatus) {
				if !s.gatekeeper.Can(perms, actor, authz.CorrectionsResolve, &correction) {
					return nil, apperrors.ErrForbidden
				}
				if newStatus == constants.CorrectionStatusResolved &&
					!payload.ResolutionNotes.Valid && correction.ResolutionNotes == nil {
					return nil, apperrors.NewBadRequestError("Для закрытия замечания укажите, как оно было устранено.")
				}
				now := time.Now()
				correction.ResolvedAt = &now
				resolvedEvent = &events.CorrectionResolvedEvent{
					CorrectionID: correction.ID,
					ProjectID:    record.ProjectID,
					HistoryID:    correction.HistoryID,
					Status:       newStatus,
					ResolvedBy:   userID,
				}
			}
			correction.Status = newStatus
		}
	}
	if payload.Priority.Valid {
		correction.Priority = payload.Priority.String
	}
	if payload.AssignedTo.Valid {
		assignedTo := uint64(payload.AssignedTo.Int)
		correction.AssignedTo = &assignedTo
	}
	if payload.EstimatedHours.Valid {
		hours := int(payload.EstimatedHours.Int)
		correction.EstimatedHours = &hours
	}
	if payload.ActualHours.Valid {
		hours := int(payload.ActualHours.Int)
		correction.ActualHours = &hours
	}
	if payload.ResolutionNotes.Valid {
		notes := payload.ResolutionNotes.String
		correction.ResolutionNotes = &notes
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.correctionRepo.UpdateInTx(ctx, tx, &correction)
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении замечания", zap.Uint64("correctionID", correctionID), zap.Error(err))
		return nil, err
	}

	if resolvedEvent != nil {
		s.bus.Publish(ctx, *resolvedEvent)
	}
	return s.findDTO(ctx, correctionID)
}

func (s *CorrectionService) ListForProject(ctx context.Context, projectID uint64, status string) ([]dto.CorrectionDTO, error) {
	if status != "" && !constants.IsValidCorrectionStatus(status) {
		return nil, apperrors.NewInvalidInputError("неизвестный статус замечания: %s", status)
	}
	if _, err := s.projectRepo.FindProject(ctx, projectID); err != nil {
		return nil, err
	}

	records, err := s.correctionRepo.ListForProject(ctx, projectID, status)
	if err != nil {
		s.logger.Error("Ошибка при получении замечаний проекта", zap.Uint64("projectID", projectID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.CorrectionDTO, 0, len(records))
	for i := range records {
		result = append(result, correctionRecordToDTO(&records[i]))
	}
	return result, nil
}

func (s *CorrectionService) findDTO(ctx context.Context, correctionID uint64) (*dto.CorrectionDTO, error) {
	record, err := s.correctionRepo.FindCorrection(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	result := correctionRecordToDTO(record)
	return &result, nil
}

func correctionRecordToDTO(rec *repositories.CorrectionRecord) dto.CorrectionDTO {
	result := dto.CorrectionDTO{
		ID:              rec.ID,
		HistoryID:       rec.HistoryID,
		ProjectID:       rec.ProjectID,
		DepartmentID:    rec.DepartmentID,
		DepartmentCode:  rec.DepartmentCode,
		CorrectionType:  rec.CorrectionType,
		Description:     rec.Description,
		Status:          rec.Status,
		Priority:        rec.Priority,
		RequestedBy:     rec.RequestedBy,
		AssignedTo:      rec.AssignedTo,
		EstimatedHours:  rec.EstimatedHours,
		ActualHours:     rec.ActualHours,
		ResolutionNotes: rec.ResolutionNotes,
		CreatedAt:       utils.FormatTime(rec.CreatedAt),
	}
	if rec.ResolvedAt != nil {
		result.ResolvedAt = utils.FormatTime(*rec.ResolvedAt)
	}
	if rec.UpdatedAt != nil {
		result.UpdatedAt = utils.FormatTime(*rec.UpdatedAt)
	}
	return result
}
