package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"project-management/internal/dto"
)

func step(departmentID uint64, sequence int) dto.WorkflowStepInput {
	return dto.WorkflowStepInput{DepartmentID: departmentID, Sequence: sequence}
}

func TestValidateStepSequence(t *testing.T) {
	testCases := []struct {
		name    string
		steps   []dto.WorkflowStepInput
		wantErr bool
	}{
		{"пустой маршрут допустим", nil, false},
		{"один шаг", []dto.WorkflowStepInput{step(1, 1)}, false},
		{"корректная цепочка", []dto.WorkflowStepInput{step(1, 1), step(2, 2), step(3, 3)}, false},
		{"порядок в запросе не важен", []dto.WorkflowStepInput{step(3, 3), step(1, 1), step(2, 2)}, false},

		{"нумерация не с единицы", []dto.WorkflowStepInput{step(1, 2), step(2, 3)}, true},
		{"пропуск в последовательности", []dto.WorkflowStepInput{step(1, 1), step(2, 3)}, true},
		{"дубликат последовательности", []dto.WorkflowStepInput{step(1, 1), step(2, 1)}, true},
		{"департамент встречается дважды", []dto.WorkflowStepInput{step(1, 1), step(1, 2)}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateStepSequence(tc.steps)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
