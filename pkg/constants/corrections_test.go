package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Замечания движутся только вперёд: откаты в OPEN и переоткрытие финальных запрещены.
func TestCanChangeCorrectionStatus(t *testing.T) {
	testCases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"взятие в работу", CorrectionStatusOpen, CorrectionStatusInProgress, true},
		{"решение напрямую из OPEN", CorrectionStatusOpen, CorrectionStatusResolved, true},
		{"отклонение из OPEN", CorrectionStatusOpen, CorrectionStatusRejected, true},
		{"решение из работы", CorrectionStatusInProgress, CorrectionStatusResolved, true},
		{"отклонение из работы", CorrectionStatusInProgress, CorrectionStatusRejected, true},

		{"откат в OPEN запрещен", CorrectionStatusInProgress, CorrectionStatusOpen, false},
		{"переоткрытие решенного запрещено", CorrectionStatusResolved, CorrectionStatusOpen, false},
		{"переоткрытие отклоненного запрещено", CorrectionStatusRejected, CorrectionStatusInProgress, false},
		{"неизвестный статус", "CLOSED", CorrectionStatusResolved, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanChangeCorrectionStatus(tc.from, tc.to))
		})
	}
}

func TestIsFinalCorrectionStatus(t *testing.T) {
	assert.True(t, IsFinalCorrectionStatus(CorrectionStatusResolved))
	assert.True(t, IsFinalCorrectionStatus(CorrectionStatusRejected))
	assert.False(t, IsFinalCorrectionStatus(CorrectionStatusOpen))
	assert.False(t, IsFinalCorrectionStatus(CorrectionStatusInProgress))
}

func TestIsValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		assert.True(t, IsValidPriority(p), p)
	}
	assert.False(t, IsValidPriority("URGENT"))
	assert.False(t, IsValidPriority(""))
}
