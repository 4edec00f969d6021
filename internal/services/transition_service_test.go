package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	"project-management/pkg/constants"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/eventbus"
	"project-management/pkg/types"
)

type fakeWorkflowRepo struct {
	steps []entities.CategoryDepartmentMapping
}

func (f *fakeWorkflowRepo) GetCategories(ctx context.Context, filter types.Filter) ([]entities.Category, uint64, error) {
	return nil, 0, nil
}

func (f *fakeWorkflowRepo) FindCategory(ctx context.Context, id uint64) (*entities.Category, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeWorkflowRepo) CreateCategory(ctx context.Context, payload dto.CreateCategoryDTO) (*entities.Category, error) {
	return nil, apperrors.ErrInternalServer
}

func (f *fakeWorkflowRepo) UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateCategoryDTO) (*entities.Category, error) {
	return nil, apperrors.ErrInternalServer
}

func (f *fakeWorkflowRepo) DeleteCategory(ctx context.Context, id uint64) error {
	return apperrors.ErrNotFound
}

func (f *fakeWorkflowRepo) GetWorkflowSteps(ctx context.Context, categoryID uint64) ([]entities.CategoryDepartmentMapping, error) {
	return f.steps, nil
}

func (f *fakeWorkflowRepo) FindStep(ctx context.Context, stepID uint64) (*entities.CategoryDepartmentMapping, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeWorkflowRepo) CreateStep(ctx context.Context, categoryID uint64, payload dto.CreateWorkflowStepDTO) (*entities.CategoryDepartmentMapping, error) {
	return nil, apperrors.ErrInternalServer
}

func (f *fakeWorkflowRepo) UpdateStep(ctx context.Context, stepID uint64, payload dto.UpdateWorkflowStepDTO) (*entities.CategoryDepartmentMapping, error) {
	return nil, apperrors.ErrInternalServer
}

func (f *fakeWorkflowRepo) DeleteStep(ctx context.Context, stepID uint64) error {
	return apperrors.ErrNotFound
}

func (f *fakeWorkflowRepo) BulkReplaceStepsInTx(ctx context.Context, tx pgx.Tx, categoryID uint64, steps []dto.WorkflowStepInput) error {
	return nil
}

type fakeChecklistRepo struct {
	itemsByDepartment map[uint64][]entities.ProjectChecklistItem
	byID              map[uint64]*entities.ProjectChecklistItem
	logs              []entities.ChecklistItemUpdate
}

func newFakeChecklistRepo() *fakeChecklistRepo {
	return &fakeChecklistRepo{
		itemsByDepartment: make(map[uint64][]entities.ProjectChecklistItem),
		byID:              make(map[uint64]*entities.ProjectChecklistItem),
	}
}

func (f *fakeChecklistRepo) GetProjectItems(ctx context.Context, projectID, departmentID uint64) ([]entities.ProjectChecklistItem, error) {
	return f.itemsByDepartment[departmentID], nil
}

func (f *fakeChecklistRepo) GetProjectItemsInTx(ctx context.Context, tx pgx.Tx, projectID, departmentID uint64) ([]entities.ProjectChecklistItem, error) {
	return f.itemsByDepartment[departmentID], nil
}

func (f *fakeChecklistRepo) InstantiateFromTemplateInTx(ctx context.Context, tx pgx.Tx, projectID uint64, templates []entities.ChecklistTemplate) error {
	return nil
}

func (f *fakeChecklistRepo) FindProjectItem(ctx context.Context, itemID uint64) (*entities.ProjectChecklistItem, error) {
	item, ok := f.byID[itemID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	found := *item
	return &found, nil
}

func (f *fakeChecklistRepo) UpdateItemInTx(ctx context.Context, tx pgx.Tx, item *entities.ProjectChecklistItem) error {
	if _, ok := f.byID[item.ID]; !ok {
		return apperrors.ErrNotFound
	}
	stored := *item
	f.byID[item.ID] = &stored
	return nil
}

func (f *fakeChecklistRepo) GetLinks(ctx context.Context, itemIDs []uint64) (map[uint64][]entities.ChecklistItemLink, error) {
	return map[uint64][]entities.ChecklistItemLink{}, nil
}

func (f *fakeChecklistRepo) ReplaceLinksInTx(ctx context.Context, tx pgx.Tx, itemID uint64, links []entities.ChecklistItemLink) error {
	return nil
}

func (f *fakeChecklistRepo) LogUpdateInTx(ctx context.Context, tx pgx.Tx, update entities.ChecklistItemUpdate) error {
	update.ID = uint64(len(f.logs) + 1)
	update.CreatedAt = time.Now()
	f.logs = append(f.logs, update)
	return nil
}

func (f *fakeChecklistRepo) GetItemUpdates(ctx context.Context, itemIDs []uint64) (map[uint64][]entities.ChecklistItemUpdate, error) {
	result := make(map[uint64][]entities.ChecklistItemUpdate)
	for _, id := range itemIDs {
		for _, log := range f.logs {
			if log.ItemID == id {
				result[id] = append(result[id], log)
			}
		}
	}
	return result, nil
}

type fakeTemplateRepo struct {
	activeByDepartment map[uint64][]entities.ChecklistTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{activeByDepartment: make(map[uint64][]entities.ChecklistTemplate)}
}

func (f *fakeTemplateRepo) GetTemplateItems(ctx context.Context, departmentID uint64, onlyActive bool) ([]entities.ChecklistTemplate, error) {
	return f.activeByDepartment[departmentID], nil
}

func (f *fakeTemplateRepo) GetActiveTemplateItemsInTx(ctx context.Context, tx pgx.Tx, departmentID uint64) ([]entities.ChecklistTemplate, error) {
	return f.activeByDepartment[departmentID], nil
}

func (f *fakeTemplateRepo) FindTemplateItem(ctx context.Context, id uint64) (*entities.ChecklistTemplate, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeTemplateRepo) CreateTemplateItem(ctx context.Context, payload dto.CreateTemplateItemDTO, sortOrder int) (*entities.ChecklistTemplate, error) {
	return nil, apperrors.ErrInternalServer
}

func (f *fakeTemplateRepo) NextSortOrder(ctx context.Context, departmentID uint64) (int, error) {
	return 1, nil
}

func (f *fakeTemplateRepo) UpdateTemplateItem(ctx context.Context, id uint64, payload dto.UpdateTemplateItemDTO) (*entities.ChecklistTemplate, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeTemplateRepo) DeleteTemplateItem(ctx context.Context, id uint64) error {
	return apperrors.ErrNotFound
}

func (f *fakeTemplateRepo) ReorderInTx(ctx context.Context, tx pgx.Tx, departmentID uint64, orderedItemIDs []uint64) error {
	return nil
}

func (f *fakeTemplateRepo) CountProjectUsages(ctx context.Context, templateItemID uint64) (uint64, error) {
	return 0, nil
}

type fakeCacheRepo struct{}

func (f *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	return "", apperrors.ErrNotFound
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (f *fakeCacheRepo) Del(ctx context.Context, key ...string) error {
	return nil
}

// --- Фикстура сервиса переходов ---

type transitionFixture struct {
	svc            TransitionServiceInterface
	projectRepo    *fakeProjectRepo
	historyRepo    *fakeHistoryRepo
	correctionRepo *fakeCorrectionRepo
	checklistRepo  *fakeChecklistRepo
	templateRepo   *fakeTemplateRepo
}

func newTransitionFixture(project *repositories.ProjectRecord, steps []entities.CategoryDepartmentMapping) *transitionFixture {
	logger := zap.NewNop()
	fx := &transitionFixture{
		projectRepo:    &fakeProjectRepo{project: project},
		historyRepo:    &fakeHistoryRepo{nextID: 100},
		correctionRepo: newFakeCorrectionRepo(),
		checklistRepo:  newFakeChecklistRepo(),
		templateRepo:   newFakeTemplateRepo(),
	}
	fx.svc = NewTransitionService(
		fx.projectRepo, fx.historyRepo, &fakeWorkflowRepo{steps: steps},
		fx.checklistRepo, fx.templateRepo, fx.correctionRepo,
		&fakeTxManager{}, authz.NewGatekeeper(), eventbus.New(logger), logger,
	)
	return fx
}

func activeProject() *repositories.ProjectRecord {
	return &repositories.ProjectRecord{
		Project: entities.Project{
			ID:         1,
			Name:       "Сайт клиента",
			CategoryID: 1,
			Status:     constants.ProjectStatusActive,
			CreatedBy:  100,
		},
	}
}

func projectAtDepartment(departmentID uint64) *repositories.ProjectRecord {
	project := activeProject()
	project.CurrentDepartmentID = &departmentID
	return project
}

func openHistoryAt(departmentID uint64) *entities.ProjectDepartmentHistory {
	return &entities.ProjectDepartmentHistory{
		ID:             42,
		ProjectID:      1,
		ToDepartmentID: departmentID,
		WorkStatus:     constants.WorkStatusInProgress,
		CreatedAt:      time.Now().Add(-48 * time.Hour),
	}
}

// --- Тесты ---

func TestTransition_FirstDepartmentOfRoute(t *testing.T) {
	project := activeProject()
	fx := newTransitionFixture(project, routeSteps(1, 2, 3))
	ctx := actorCtx(7, authz.ProjectsTransition, authz.ScopeAll)

	result, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 1})

	require.NoError(t, err)
	assert.Equal(t, constants.WorkStatusNotStarted, result.WorkStatus)
	assert.Nil(t, result.FromDepartmentID)
	assert.Equal(t, uint64(1), result.ToDepartmentID)
	// Указатели проекта обновлены в той же транзакции
	require.NotNil(t, project.CurrentDepartmentID)
	assert.Equal(t, uint64(1), *project.CurrentDepartmentID)
	require.NotNil(t, project.NextDepartmentID)
	assert.Equal(t, uint64(2), *project.NextDepartmentID)
}

func TestTransition_RequiredChecklistItemBlocks(t *testing.T) {
	project := projectAtDepartment(1)
	fx := newTransitionFixture(project, routeSteps(1, 2, 3))
	fx.historyRepo.current = openHistoryAt(1)
	fx.checklistRepo.itemsByDepartment[1] = []entities.ProjectChecklistItem{
		{ID: 10, ProjectID: 1, DepartmentID: 1, Title: "Согласовать ТЗ", IsRequired: true, IsCompleted: false},
	}
	ctx := actorCtx(7, authz.ProjectsTransition, authz.ScopeAll)

	_, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 2})

	require.Error(t, err)
	assert.Empty(t, fx.historyRepo.created)
	assert.Equal(t, uint64(1), *project.CurrentDepartmentID)
}

func TestTransition_RequiredTemplateBlocksBeforeChecklistInit(t *testing.T) {
	project := projectAtDepartment(1)
	fx := newTransitionFixture(project, routeSteps(1, 2, 3))
	fx.historyRepo.current = openHistoryAt(1)
	// Чеклист ещё не инстанцирован, но в активном шаблоне есть обязательный пункт
	fx.templateRepo.activeByDepartment[1] = []entities.ChecklistTemplate{
		{ID: 1, DepartmentID: 1, Title: "Бриф от клиента", IsRequired: true, IsActive: true},
	}
	ctx := actorCtx(7, authz.ProjectsTransition, authz.ScopeAll)

	_, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 2})

	require.Error(t, err)
	assert.Empty(t, fx.historyRepo.created)
}

func TestTransition_OpenCorrectionBlocks(t *testing.T) {
	project := projectAtDepartment(1)
	fx := newTransitionFixture(project, routeSteps(1, 2, 3))
	fx.historyRepo.current = openHistoryAt(1)
	fx.correctionRepo.records[1] = &repositories.CorrectionRecord{
		DepartmentCorrection: entities.DepartmentCorrection{
			ID: 1, HistoryID: 42, Status: constants.CorrectionStatusOpen, Priority: constants.PriorityHigh,
		},
	}
	ctx := actorCtx(7, authz.ProjectsTransition, authz.ScopeAll)

	_, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 2})

	require.Error(t, err)
	assert.Empty(t, fx.historyRepo.created)
}

func TestTransition_GatePassMovesForward(t *testing.T) {
	project := projectAtDepartment(1)
	fx := newTransitionFixture(project, routeSteps(1, 2, 3))
	current := openHistoryAt(1)
	fx.historyRepo.current = current
	fx.checklistRepo.itemsByDepartment[1] = []entities.ProjectChecklistItem{
		{ID: 10, ProjectID: 1, DepartmentID: 1, Title: "Согласовать ТЗ", IsRequired: true, IsCompleted: true},
	}
	// Закрытое замечание переходу не мешает
	fx.correctionRepo.records[1] = &repositories.CorrectionRecord{
		DepartmentCorrection: entities.DepartmentCorrection{
			ID: 1, HistoryID: 42, Status: constants.CorrectionStatusResolved, Priority: constants.PriorityLow,
		},
	}
	ctx := actorCtx(7, authz.ProjectsTransition, authz.ScopeAll)

	result, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 2})

	require.NoError(t, err)
	require.NotNil(t, result.FromDepartmentID)
	assert.Equal(t, uint64(1), *result.FromDepartmentID)
	assert.Equal(t, uint64(2), result.ToDepartmentID)
	assert.Equal(t, constants.WorkStatusNotStarted, result.WorkStatus)
	// Предыдущая запись истории закрыта
	assert.NotNil(t, current.WorkEndDate)
	assert.NotNil(t, current.ActualDays)
	// Указатели проекта: текущий 2, следующий 3
	assert.Equal(t, uint64(2), *project.CurrentDepartmentID)
	require.NotNil(t, project.NextDepartmentID)
	assert.Equal(t, uint64(3), *project.NextDepartmentID)
}

func TestTransition_OverrideOutOfOrder(t *testing.T) {
	grantor := uint64(99)

	t.Run("без отдельного разрешения переход вне маршрута запрещён", func(t *testing.T) {
		fx := newTransitionFixture(projectAtDepartment(1), routeSteps(1, 2, 3))
		fx.historyRepo.current = openHistoryAt(1)
		ctx := actorCtx(7, authz.ProjectsTransition, authz.ScopeAll)

		_, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 3})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("с разрешением, но без указания кто его выдал", func(t *testing.T) {
		fx := newTransitionFixture(projectAtDepartment(1), routeSteps(1, 2, 3))
		fx.historyRepo.current = openHistoryAt(1)
		ctx := actorCtx(7, authz.ProjectsTransition, authz.ProjectsTransitionOverride, authz.ScopeAll)

		_, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 3})

		require.Error(t, err)
		assert.Empty(t, fx.historyRepo.created)
	})

	t.Run("переход через шаг с разрешением и гейтингом", func(t *testing.T) {
		project := projectAtDepartment(1)
		fx := newTransitionFixture(project, routeSteps(1, 2, 3))
		fx.historyRepo.current = openHistoryAt(1)
		ctx := actorCtx(7, authz.ProjectsTransition, authz.ProjectsTransitionOverride, authz.ScopeAll)

		result, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{
			ToDepartmentID:        3,
			PermissionGrantedByID: &grantor,
		})

		require.NoError(t, err)
		require.NotNil(t, result.PermissionGrantedBy)
		assert.Equal(t, grantor, *result.PermissionGrantedBy)
		assert.Equal(t, uint64(3), *project.CurrentDepartmentID)
		// Третий департамент - последний, следующего нет
		assert.Nil(t, project.NextDepartmentID)
	})

	t.Run("override не отключает гейтинг чеклиста", func(t *testing.T) {
		fx := newTransitionFixture(projectAtDepartment(1), routeSteps(1, 2, 3))
		fx.historyRepo.current = openHistoryAt(1)
		fx.checklistRepo.itemsByDepartment[1] = []entities.ProjectChecklistItem{
			{ID: 10, ProjectID: 1, DepartmentID: 1, Title: "Согласовать ТЗ", IsRequired: true, IsCompleted: false},
		}
		ctx := actorCtx(7, authz.ProjectsTransition, authz.ProjectsTransitionOverride, authz.ScopeAll)

		_, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{
			ToDepartmentID:        3,
			PermissionGrantedByID: &grantor,
		})

		require.Error(t, err)
		assert.Empty(t, fx.historyRepo.created)
	})
}

func TestTransition_InactiveProjectRejected(t *testing.T) {
	project := activeProject()
	project.Status = constants.ProjectStatusHold
	fx := newTransitionFixture(project, routeSteps(1, 2, 3))
	ctx := actorCtx(7, authz.ProjectsTransition, authz.ScopeAll)

	_, err := fx.svc.Transition(ctx, 1, dto.TransitionDTO{ToDepartmentID: 1})

	require.Error(t, err)
	assert.Empty(t, fx.historyRepo.created)
}
