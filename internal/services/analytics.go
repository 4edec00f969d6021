package services

import (
	"context"
	"time"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/utils"

	"go.uber.org/zap"
)

type AnalyticsServiceInterface interface {
	GetProjectTimeline(ctx context.Context, projectID uint64) (*dto.ProjectTimelineAnalyticsDTO, error)
}

type AnalyticsService struct {
	projectRepo    repositories.ProjectRepositoryInterface
	historyRepo    repositories.DepartmentHistoryRepositoryInterface
	correctionRepo repositories.CorrectionRepositoryInterface
	gatekeeper     *authz.Gatekeeper
	logger         *zap.Logger

	// Подменяется в тестах для детерминированных расчётов.
	now func() time.Time
}

func NewAnalyticsService(
	projectRepo repositories.ProjectRepositoryInterface,
	historyRepo repositories.DepartmentHistoryRepositoryInterface,
	correctionRepo repositories.CorrectionRepositoryInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) AnalyticsServiceInterface {
	return &AnalyticsService{
		projectRepo:    projectRepo,
		historyRepo:    historyRepo,
		correctionRepo: correctionRepo,
		gatekeeper:     gatekeeper,
		logger:         logger,
		now:            time.Now,
	}
}

// GetProjectTimeline строит аналитику прохождения проекта по департаментам.
// Длительность пребывания считается от создания записи истории до создания
// следующей, для текущего департамента - до настоящего момента.
func (s *AnalyticsService) GetProjectTimeline(ctx context.Context, projectID uint64) (*dto.ProjectTimelineAnalyticsDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, authz.AnalyticsView, nil) {
		return nil, apperrors.ErrForbidden
	}

	project, err := s.projectRepo.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	records, err := s.historyRepo.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("Ошибка при получении истории для аналитики", zap.Uint64("projectID", projectID), zap.Error(err))
		return nil, err
	}

	resolutionHours, err := s.correctionRepo.AverageResolutionHoursByHistory(ctx, projectID)
	if err != nil {
		s.logger.Error("Ошибка при расчёте времени устранения замечаний", zap.Uint64("projectID", projectID), zap.Error(err))
		return nil, err
	}

	result := BuildTimelineAnalytics(records, resolutionHours, s.now())
	result.ProjectID = project.ID
	result.ProjectName = project.Name
	result.CurrentDepartmentID = project.CurrentDepartmentID
	return result, nil
}

// BuildTimelineAnalytics - чистый расчёт агрегатов по записям истории.
// Узкое место - департамент, где проект провёл больше среднего.
func BuildTimelineAnalytics(records []repositories.HistoryRecord, resolutionHours map[uint64]float64, now time.Time) *dto.ProjectTimelineAnalyticsDTO {
	result := &dto.ProjectTimelineAnalyticsDTO{
		Departments: make([]dto.DepartmentTimelineDTO, 0, len(records)),
		Bottlenecks: make([]string, 0),
	}
	if len(records) == 0 {
		return result
	}

	durations := make([]float64, len(records))
	var totalDuration float64
	for i := range records {
		end := now
		if i+1 < len(records) {
			end = records[i+1].CreatedAt
		}
		durations[i] = end.Sub(records[i].CreatedAt).Hours() / 24
		if durations[i] < 0 {
			durations[i] = 0
		}
		totalDuration += durations[i]
	}
	mean := totalDuration / float64(len(records))

	var withEstimate, withinEstimate int
	for i := range records {
		rec := &records[i]
		entry := dto.DepartmentTimelineDTO{
			HistoryID:       rec.ID,
			DepartmentID:    rec.ToDepartmentID,
			DepartmentCode:  rec.ToDepartmentCode,
			WorkStatus:      rec.WorkStatus,
			EnteredAt:       utils.FormatTime(rec.CreatedAt),
			DurationDays:    durations[i],
			EstimatedDays:   rec.EstimatedDays,
			ActualDays:      rec.ActualDays,
			CorrectionCount: rec.CorrectionCount,
			IsBottleneck:    len(records) > 1 && durations[i] > mean,
		}
		if i+1 < len(records) {
			entry.LeftAt = utils.FormatTime(records[i+1].CreatedAt)
		}
		if rec.EstimatedDays != nil && rec.ActualDays != nil && *rec.ActualDays > 0 {
			accuracy := float64(*rec.EstimatedDays) / float64(*rec.ActualDays) * 100
			entry.EstimateAccuracy = &accuracy
		}
		if rec.EstimatedDays != nil && rec.ActualDays != nil {
			withEstimate++
			if *rec.ActualDays <= *rec.EstimatedDays {
				withinEstimate++
			}
		}
		if avg, ok := resolutionHours[rec.ID]; ok {
			avgCopy := avg
			entry.AverageResolutionHours = &avgCopy
		}
		result.TotalCorrections += rec.CorrectionCount
		if entry.IsBottleneck {
			result.Bottlenecks = append(result.Bottlenecks, rec.ToDepartmentCode)
		}
		result.Departments = append(result.Departments, entry)
	}

	result.TotalDurationDays = totalDuration
	result.AverageDurationDays = mean
	if withEstimate > 0 {
		result.EfficiencyPercentage = float64(withinEstimate) / float64(withEstimate) * 100
	}
	return result
}
