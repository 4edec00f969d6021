package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanChangeWorkStatus(t *testing.T) {
	testCases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"начало работ", WorkStatusNotStarted, WorkStatusInProgress, true},
		{"пауза до начала работ", WorkStatusNotStarted, WorkStatusOnHold, true},
		{"из работы в QA", WorkStatusInProgress, WorkStatusQATesting, true},
		{"из работы сразу в завершение", WorkStatusInProgress, WorkStatusCompleted, true},
		{"возврат из паузы", WorkStatusOnHold, WorkStatusInProgress, true},
		{"отказ клиента ведет в багфикс", WorkStatusClientRejected, WorkStatusBugfixInProgress, true},
		{"багфикс возвращается в QA", WorkStatusBugfixInProgress, WorkStatusQATesting, true},
		{"готово к передаче только в завершение", WorkStatusReadyForDelivery, WorkStatusCompleted, true},

		{"нельзя перескочить из NOT_STARTED в QA", WorkStatusNotStarted, WorkStatusQATesting, false},
		{"нельзя вернуться из завершенного", WorkStatusCompleted, WorkStatusInProgress, false},
		{"из паузы нельзя сразу в завершение", WorkStatusOnHold, WorkStatusCompleted, false},
		{"неизвестный исходный статус", "UNKNOWN", WorkStatusInProgress, false},
		{"неизвестный целевой статус", WorkStatusInProgress, "UNKNOWN", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanChangeWorkStatus(tc.from, tc.to))
		})
	}
}

func TestIsValidWorkStatus(t *testing.T) {
	assert.True(t, IsValidWorkStatus(WorkStatusNotStarted))
	assert.True(t, IsValidWorkStatus(WorkStatusBugfixInProgress))
	assert.False(t, IsValidWorkStatus("DONE"))
	assert.False(t, IsValidWorkStatus(""))
}

func TestIsFinalWorkStatus(t *testing.T) {
	assert.True(t, IsFinalWorkStatus(WorkStatusCompleted))
	assert.False(t, IsFinalWorkStatus(WorkStatusReadyForDelivery))
}
