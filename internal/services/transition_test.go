package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-management/internal/entities"
)

func routeSteps(departmentIDs ...uint64) []entities.CategoryDepartmentMapping {
	steps := make([]entities.CategoryDepartmentMapping, 0, len(departmentIDs))
	for i, id := range departmentIDs {
		steps = append(steps, entities.CategoryDepartmentMapping{
			DepartmentID: id,
			Sequence:     i + 1,
		})
	}
	return steps
}

func TestFindStep(t *testing.T) {
	steps := routeSteps(10, 20, 30)

	require.NotNil(t, findStep(steps, 20))
	assert.Equal(t, 2, findStep(steps, 20).Sequence)
	assert.Nil(t, findStep(steps, 99))
	assert.Nil(t, findStep(nil, 10))
}

func TestNextStep(t *testing.T) {
	steps := routeSteps(10, 20, 30)

	// Проект еще не в маршруте: первый шаг
	first := nextStep(steps, nil)
	require.NotNil(t, first)
	assert.Equal(t, uint64(10), first.DepartmentID)

	// Середина маршрута
	current := uint64(10)
	next := nextStep(steps, &current)
	require.NotNil(t, next)
	assert.Equal(t, uint64(20), next.DepartmentID)

	// Последний шаг: дальше некуда
	last := uint64(30)
	assert.Nil(t, nextStep(steps, &last))

	// Департамент вне маршрута
	unknown := uint64(99)
	assert.Nil(t, nextStep(steps, &unknown))

	// Пустой маршрут
	assert.Nil(t, nextStep(nil, nil))
}
