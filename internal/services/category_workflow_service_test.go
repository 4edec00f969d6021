package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"project-management/internal/authz"
	"project-management/internal/entities"
)

func newWorkflowService(steps []entities.CategoryDepartmentMapping) CategoryWorkflowServiceInterface {
	return NewCategoryWorkflowService(
		&fakeWorkflowRepo{steps: steps}, &fakeCacheRepo{}, &fakeTxManager{},
		authz.NewGatekeeper(), zap.NewNop(), time.Minute,
	)
}

func TestGetNextDepartment_ReturnsSteps(t *testing.T) {
	svc := newWorkflowService(routeSteps(10, 20, 30))
	ctx := context.Background()

	// Без текущего департамента - первый шаг маршрута
	next, err := svc.GetNextDepartment(ctx, 1, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, uint64(10), next.DepartmentID)

	// Из середины маршрута - следующий по sequence
	current := uint64(10)
	next, err = svc.GetNextDepartment(ctx, 1, &current)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, uint64(20), next.DepartmentID)
}

func TestGetNextDepartment_NilWithoutError(t *testing.T) {
	ctx := context.Background()

	t.Run("последний департамент маршрута", func(t *testing.T) {
		svc := newWorkflowService(routeSteps(10, 20, 30))
		last := uint64(30)
		next, err := svc.GetNextDepartment(ctx, 1, &last)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("департамент вне маршрута", func(t *testing.T) {
		svc := newWorkflowService(routeSteps(10, 20, 30))
		foreign := uint64(77)
		next, err := svc.GetNextDepartment(ctx, 1, &foreign)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("пустой маршрут", func(t *testing.T) {
		svc := newWorkflowService(nil)
		current := uint64(10)
		next, err := svc.GetNextDepartment(ctx, 1, &current)
		require.NoError(t, err)
		assert.Nil(t, next)

		next, err = svc.GetNextDepartment(ctx, 1, nil)
		require.NoError(t, err)
		assert.Nil(t, next)
	})
}
