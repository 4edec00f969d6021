package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	"project-management/pkg/constants"
	"project-management/pkg/contextkeys"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/eventbus"
	"project-management/pkg/types"
)

// --- Фейки репозиториев для юнит-тестов сервиса ---

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeProjectRepo struct {
	project *repositories.ProjectRecord
}

func (f *fakeProjectRepo) GetProjects(ctx context.Context, filter types.Filter) ([]repositories.ProjectRecord, uint64, error) {
	return nil, 0, nil
}

func (f *fakeProjectRepo) FindProject(ctx context.Context, id uint64) (*repositories.ProjectRecord, error) {
	if f.project == nil || f.project.ID != id {
		return nil, apperrors.ErrNotFound
	}
	return f.project, nil
}

func (f *fakeProjectRepo) FindProjectInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, apperrors.ErrNotFound
	}
	project := f.project.Project
	return &project, nil
}

func (f *fakeProjectRepo) CreateProjectInTx(ctx context.Context, tx pgx.Tx, project *entities.Project) (uint64, error) {
	return 0, apperrors.ErrInternalServer
}

func (f *fakeProjectRepo) UpdateProject(ctx context.Context, id uint64, payload dto.UpdateProjectDTO) error {
	return nil
}

func (f *fakeProjectRepo) UpdateDepartmentsInTx(ctx context.Context, tx pgx.Tx, projectID uint64, currentID uint64, nextID *uint64) error {
	if f.project == nil || f.project.ID != projectID {
		return apperrors.ErrNotFound
	}
	f.project.CurrentDepartmentID = &currentID
	f.project.NextDepartmentID = nextID
	return nil
}

func (f *fakeProjectRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, projectID uint64, status string) error {
	return nil
}

type fakeHistoryRepo struct {
	current    *entities.ProjectDepartmentHistory
	created    []*entities.ProjectDepartmentHistory
	nextID     uint64
	increments int
}

func (f *fakeHistoryRepo) CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.ProjectDepartmentHistory) (uint64, error) {
	f.nextID++
	history.ID = f.nextID
	f.created = append(f.created, history)
	f.current = history
	return history.ID, nil
}

func (f *fakeHistoryRepo) FindHistory(ctx context.Context, id uint64) (*entities.ProjectDepartmentHistory, error) {
	for _, h := range f.created {
		if h.ID == id {
			return h, nil
		}
	}
	if f.current != nil && f.current.ID == id {
		return f.current, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeHistoryRepo) FindCurrentInTx(ctx context.Context, tx pgx.Tx, projectID uint64) (*entities.ProjectDepartmentHistory, error) {
	if f.current == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.current, nil
}

func (f *fakeHistoryRepo) FindCurrent(ctx context.Context, projectID uint64) (*entities.ProjectDepartmentHistory, error) {
	return f.FindCurrentInTx(ctx, nil, projectID)
}

func (f *fakeHistoryRepo) UpdateWorkInTx(ctx context.Context, tx pgx.Tx, history *entities.ProjectDepartmentHistory) error {
	return nil
}

func (f *fakeHistoryRepo) IncrementCorrectionCountInTx(ctx context.Context, tx pgx.Tx, historyID uint64) error {
	f.increments++
	return nil
}

func (f *fakeHistoryRepo) ListByProject(ctx context.Context, projectID uint64) ([]repositories.HistoryRecord, error) {
	return nil, nil
}

type fakeCorrectionRepo struct {
	nextID  uint64
	records map[uint64]*repositories.CorrectionRecord
}

func newFakeCorrectionRepo() *fakeCorrectionRepo {
	return &fakeCorrectionRepo{records: make(map[uint64]*repositories.CorrectionRecord)}
}

func (f *fakeCorrectionRepo) CreateInTx(ctx context.Context, tx pgx.Tx, correction *entities.DepartmentCorrection) (uint64, error) {
	f.nextID++
	correction.ID = f.nextID
	f.records[f.nextID] = &repositories.CorrectionRecord{DepartmentCorrection: *correction}
	return f.nextID, nil
}

func (f *fakeCorrectionRepo) FindCorrection(ctx context.Context, id uint64) (*repositories.CorrectionRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return rec, nil
}

func (f *fakeCorrectionRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, correction *entities.DepartmentCorrection) error {
	rec, ok := f.records[correction.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	rec.DepartmentCorrection = *correction
	return nil
}

func (f *fakeCorrectionRepo) ListForProject(ctx context.Context, projectID uint64, status string) ([]repositories.CorrectionRecord, error) {
	var result []repositories.CorrectionRecord
	for _, rec := range f.records {
		if status == "" || rec.Status == status {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (f *fakeCorrectionRepo) CountOpenForHistoryInTx(ctx context.Context, tx pgx.Tx, historyID uint64) (uint64, error) {
	var count uint64
	for _, rec := range f.records {
		if rec.HistoryID == historyID && !constants.IsFinalCorrectionStatus(rec.Status) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCorrectionRepo) AverageResolutionHoursByHistory(ctx context.Context, projectID uint64) (map[uint64]float64, error) {
	return nil, nil
}

// --- Вспомогательные конструкторы ---

func actorCtx(userID uint64, perms ...string) context.Context {
	permsMap := make(map[string]bool, len(perms))
	for _, p := range perms {
		permsMap[p] = true
	}
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, userID)
	return context.WithValue(ctx, contextkeys.UserPermissionsMapKey, permsMap)
}

func projectInDepartment(departmentID uint64, code string) *repositories.ProjectRecord {
	return &repositories.ProjectRecord{
		Project: entities.Project{
			ID:                  1,
			Name:                "Сайт клиента",
			CategoryID:          1,
			CurrentDepartmentID: &departmentID,
			Status:              constants.ProjectStatusActive,
			CreatedBy:           100,
		},
		CurrentDepartmentCode: &code,
	}
}

func newCorrectionService(t *testing.T, projectRepo *fakeProjectRepo, historyRepo *fakeHistoryRepo, correctionRepo *fakeCorrectionRepo) CorrectionServiceInterface {
	t.Helper()
	logger := zap.NewNop()
	return NewCorrectionService(
		correctionRepo, historyRepo, projectRepo,
		&fakeTxManager{}, authz.NewGatekeeper(), eventbus.New(logger), logger,
		[]string{constants.DepartmentDelivery, constants.DepartmentQA, constants.DepartmentPMO},
	)
}

// --- Тесты ---

func TestCreateCorrection_HappyPath(t *testing.T) {
	projectRepo := &fakeProjectRepo{project: projectInDepartment(5, constants.DepartmentPHP)}
	historyRepo := &fakeHistoryRepo{current: &entities.ProjectDepartmentHistory{ID: 42, ProjectID: 1, ToDepartmentID: 5}}
	correctionRepo := newFakeCorrectionRepo()
	svc := newCorrectionService(t, projectRepo, historyRepo, correctionRepo)

	ctx := actorCtx(7, authz.CorrectionsCreate)
	result, err := svc.CreateCorrection(ctx, 1, dto.CreateCorrectionDTO{
		CorrectionType: "BUG",
		Description:    "Ошибка в форме заказа",
	})

	require.NoError(t, err)
	assert.Equal(t, constants.CorrectionStatusOpen, result.Status)
	// Приоритет по умолчанию
	assert.Equal(t, constants.PriorityMedium, result.Priority)
	assert.Equal(t, uint64(42), result.HistoryID)
	assert.Equal(t, uint64(7), result.RequestedBy)
	// Счётчик замечаний текущей записи истории увеличен в той же транзакции
	assert.Equal(t, 1, historyRepo.increments)
}

func TestCreateCorrection_DeniedDepartment(t *testing.T) {
	projectRepo := &fakeProjectRepo{project: projectInDepartment(8, constants.DepartmentQA)}
	historyRepo := &fakeHistoryRepo{current: &entities.ProjectDepartmentHistory{ID: 42, ProjectID: 1}}
	correctionRepo := newFakeCorrectionRepo()
	svc := newCorrectionService(t, projectRepo, historyRepo, correctionRepo)

	ctx := actorCtx(7, authz.CorrectionsCreate)
	_, err := svc.CreateCorrection(ctx, 1, dto.CreateCorrectionDTO{
		CorrectionType: "BUG",
		Description:    "Ошибка",
	})

	require.Error(t, err)
	assert.Empty(t, correctionRepo.records)
	assert.Zero(t, historyRepo.increments)
}

func TestCreateCorrection_RequiresPermission(t *testing.T) {
	projectRepo := &fakeProjectRepo{project: projectInDepartment(5, constants.DepartmentPHP)}
	historyRepo := &fakeHistoryRepo{current: &entities.ProjectDepartmentHistory{ID: 42}}
	svc := newCorrectionService(t, projectRepo, historyRepo, newFakeCorrectionRepo())

	ctx := actorCtx(7) // без пермишенов
	_, err := svc.CreateCorrection(ctx, 1, dto.CreateCorrectionDTO{CorrectionType: "BUG", Description: "x"})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateCorrection_StatusOnlyMovesForward(t *testing.T) {
	projectRepo := &fakeProjectRepo{project: projectInDepartment(5, constants.DepartmentPHP)}
	historyRepo := &fakeHistoryRepo{current: &entities.ProjectDepartmentHistory{ID: 42}}
	correctionRepo := newFakeCorrectionRepo()
	correctionRepo.records[1] = &repositories.CorrectionRecord{
		DepartmentCorrection: entities.DepartmentCorrection{
			ID: 1, HistoryID: 42, RequestedBy: 7,
			Status: constants.CorrectionStatusInProgress, Priority: constants.PriorityHigh,
		},
		ProjectID: 1,
	}
	correctionRepo.nextID = 1
	svc := newCorrectionService(t, projectRepo, historyRepo, correctionRepo)

	ctx := actorCtx(7, authz.CorrectionsUpdate, authz.ScopeOwn)
	_, err := svc.UpdateCorrection(ctx, 1, dto.UpdateCorrectionDTO{
		Status: null.StringFrom(constants.CorrectionStatusOpen),
	})

	require.Error(t, err)
	assert.Equal(t, constants.CorrectionStatusInProgress, correctionRepo.records[1].Status)
}

func TestUpdateCorrection_ResolveRequiresNotes(t *testing.T) {
	projectRepo := &fakeProjectRepo{project: projectInDepartment(5, constants.DepartmentPHP)}
	historyRepo := &fakeHistoryRepo{current: &entities.ProjectDepartmentHistory{ID: 42}}
	correctionRepo := newFakeCorrectionRepo()
	correctionRepo.records[1] = &repositories.CorrectionRecord{
		DepartmentCorrection: entities.DepartmentCorrection{
			ID: 1, HistoryID: 42, RequestedBy: 7,
			Status: constants.CorrectionStatusOpen, Priority: constants.PriorityMedium,
		},
		ProjectID: 1,
	}
	correctionRepo.nextID = 1
	svc := newCorrectionService(t, projectRepo, historyRepo, correctionRepo)

	ctx := actorCtx(7, authz.CorrectionsUpdate, authz.CorrectionsResolve, authz.ScopeOwn)

	// Без описания устранения закрыть нельзя
	_, err := svc.UpdateCorrection(ctx, 1, dto.UpdateCorrectionDTO{
		Status: null.StringFrom(constants.CorrectionStatusResolved),
	})
	require.Error(t, err)

	// С описанием - можно, проставляется время решения
	result, err := svc.UpdateCorrection(ctx, 1, dto.UpdateCorrectionDTO{
		Status:          null.StringFrom(constants.CorrectionStatusResolved),
		ResolutionNotes: null.StringFrom("Поправили шаблон письма"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.CorrectionStatusResolved, result.Status)
	assert.NotEmpty(t, result.ResolvedAt)
}

func TestUpdateCorrection_ResolveRequiresResolvePermission(t *testing.T) {
	projectRepo := &fakeProjectRepo{project: projectInDepartment(5, constants.DepartmentPHP)}
	historyRepo := &fakeHistoryRepo{current: &entities.ProjectDepartmentHistory{ID: 42}}
	correctionRepo := newFakeCorrectionRepo()
	correctionRepo.records[1] = &repositories.CorrectionRecord{
		DepartmentCorrection: entities.DepartmentCorrection{
			ID: 1, HistoryID: 42, RequestedBy: 7,
			Status: constants.CorrectionStatusOpen, Priority: constants.PriorityMedium,
		},
		ProjectID: 1,
	}
	correctionRepo.nextID = 1
	svc := newCorrectionService(t, projectRepo, historyRepo, correctionRepo)

	ctx := actorCtx(7, authz.CorrectionsUpdate, authz.ScopeOwn)
	_, err := svc.UpdateCorrection(ctx, 1, dto.UpdateCorrectionDTO{
		Status:          null.StringFrom(constants.CorrectionStatusRejected),
		ResolutionNotes: null.StringFrom("Не воспроизводится"),
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
