package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
)

func newChecklistFixture(items ...entities.ProjectChecklistItem) (*fakeChecklistRepo, ChecklistServiceInterface) {
	checklistRepo := newFakeChecklistRepo()
	for i := range items {
		item := items[i]
		checklistRepo.byID[item.ID] = &item
	}
	svc := NewChecklistService(
		newFakeTemplateRepo(), checklistRepo, &fakeProjectRepo{},
		&fakeTxManager{}, authz.NewGatekeeper(), zap.NewNop(),
	)
	return checklistRepo, svc
}

func TestUpdateChecklistItem_CompletionStampsAndLogs(t *testing.T) {
	checklistRepo, svc := newChecklistFixture(entities.ProjectChecklistItem{
		ID: 10, ProjectID: 1, DepartmentID: 5, Title: "Проверить макеты", IsRequired: true,
	})
	ctx := actorCtx(7, authz.ChecklistsUpdate, authz.ScopeAll)

	completed := true
	result, err := svc.UpdateItem(ctx, 10, dto.UpdateChecklistItemDTO{IsCompleted: &completed})

	require.NoError(t, err)
	assert.True(t, result.IsCompleted)
	require.NotNil(t, result.CompletedBy)
	assert.Equal(t, uint64(7), *result.CompletedBy)
	require.NotNil(t, result.LastUpdatedBy)
	assert.Equal(t, uint64(7), *result.LastUpdatedBy)

	// Строка журнала пишется и без заметки
	require.Len(t, checklistRepo.logs, 1)
	assert.Equal(t, uint64(10), checklistRepo.logs[0].ItemID)
	assert.Empty(t, checklistRepo.logs[0].Notes)
	assert.Equal(t, uint64(7), checklistRepo.logs[0].UpdatedBy)
	require.Len(t, result.UpdateHistory, 1)
	assert.Equal(t, uint64(7), result.UpdateHistory[0].UpdatedBy)
}

func TestUpdateChecklistItem_EveryEditAppendsLog(t *testing.T) {
	checklistRepo, svc := newChecklistFixture(entities.ProjectChecklistItem{
		ID: 10, ProjectID: 1, DepartmentID: 5, Title: "Проверить макеты",
	})
	ctx := actorCtx(7, authz.ChecklistsUpdate, authz.ScopeAll)

	notes := "Шрифты заменены по замечанию клиента"
	_, err := svc.UpdateItem(ctx, 10, dto.UpdateChecklistItemDTO{Notes: &notes})
	require.NoError(t, err)

	completed := true
	_, err = svc.UpdateItem(ctx, 10, dto.UpdateChecklistItemDTO{IsCompleted: &completed})
	require.NoError(t, err)

	require.Len(t, checklistRepo.logs, 2)
	assert.Equal(t, notes, checklistRepo.logs[0].Notes)
	assert.Empty(t, checklistRepo.logs[1].Notes)
}
