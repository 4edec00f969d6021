package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"project-management/internal/entities"
)

func checklistItem(required, completed bool) entities.ProjectChecklistItem {
	return entities.ProjectChecklistItem{IsRequired: required, IsCompleted: completed}
}

func TestComputeProgress_EmptyChecklist(t *testing.T) {
	progress := ComputeProgress(nil)

	assert.Equal(t, 0, progress.TotalItems)
	assert.Equal(t, float64(0), progress.CompletionPercentage)
	assert.Equal(t, float64(100), progress.RequiredCompletionPercentage)
	// Пустой чеклист не должен блокировать переход
	assert.True(t, progress.CanProceedToNext)
}

func TestComputeProgress_RequiredGating(t *testing.T) {
	items := []entities.ProjectChecklistItem{
		checklistItem(true, true),
		checklistItem(true, false),
		checklistItem(false, false),
	}

	progress := ComputeProgress(items)

	assert.Equal(t, 3, progress.TotalItems)
	assert.Equal(t, 1, progress.CompletedItems)
	assert.Equal(t, 2, progress.RequiredItems)
	assert.Equal(t, 1, progress.CompletedRequiredItems)
	assert.InDelta(t, 33.33, progress.CompletionPercentage, 0.01)
	assert.InDelta(t, 50.0, progress.RequiredCompletionPercentage, 0.01)
	assert.False(t, progress.CanProceedToNext)
}

func TestComputeProgress_OptionalItemsDoNotBlock(t *testing.T) {
	items := []entities.ProjectChecklistItem{
		checklistItem(true, true),
		checklistItem(false, false),
		checklistItem(false, false),
	}

	progress := ComputeProgress(items)

	assert.Equal(t, float64(100), progress.RequiredCompletionPercentage)
	assert.True(t, progress.CanProceedToNext)
	assert.InDelta(t, 33.33, progress.CompletionPercentage, 0.01)
}

func TestComputeProgress_AllCompleted(t *testing.T) {
	items := []entities.ProjectChecklistItem{
		checklistItem(true, true),
		checklistItem(false, true),
	}

	progress := ComputeProgress(items)

	assert.Equal(t, float64(100), progress.CompletionPercentage)
	assert.True(t, progress.CanProceedToNext)
}
