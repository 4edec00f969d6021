package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-management/internal/entities"
	"project-management/internal/repositories"
)

func historyRecord(id uint64, deptID uint64, code string, createdAt time.Time) repositories.HistoryRecord {
	return repositories.HistoryRecord{
		ProjectDepartmentHistory: entities.ProjectDepartmentHistory{
			ID:             id,
			ToDepartmentID: deptID,
			CreatedAt:      createdAt,
		},
		ToDepartmentCode: code,
	}
}

func TestBuildTimelineAnalytics_Empty(t *testing.T) {
	result := BuildTimelineAnalytics(nil, nil, time.Now())

	assert.Empty(t, result.Departments)
	assert.Empty(t, result.Bottlenecks)
	assert.Equal(t, float64(0), result.TotalDurationDays)
}

func TestBuildTimelineAnalytics_DurationsAndBottleneck(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []repositories.HistoryRecord{
		historyRecord(1, 10, "PMO", start),
		historyRecord(2, 20, "DESIGN", start.Add(48*time.Hour)), // PMO: 2 дня
		historyRecord(3, 30, "QA", start.Add(240*time.Hour)),    // DESIGN: 8 дней
	}
	now := start.Add(288 * time.Hour) // QA: 2 дня

	result := BuildTimelineAnalytics(records, nil, now)

	require.Len(t, result.Departments, 3)
	assert.InDelta(t, 2.0, result.Departments[0].DurationDays, 0.001)
	assert.InDelta(t, 8.0, result.Departments[1].DurationDays, 0.001)
	assert.InDelta(t, 2.0, result.Departments[2].DurationDays, 0.001)

	assert.InDelta(t, 12.0, result.TotalDurationDays, 0.001)
	assert.InDelta(t, 4.0, result.AverageDurationDays, 0.001)

	// Узкое место - только DESIGN (8 > 4)
	assert.False(t, result.Departments[0].IsBottleneck)
	assert.True(t, result.Departments[1].IsBottleneck)
	assert.False(t, result.Departments[2].IsBottleneck)
	assert.Equal(t, []string{"DESIGN"}, result.Bottlenecks)

	// Выход из департамента совпадает со входом в следующий
	assert.NotEmpty(t, result.Departments[0].LeftAt)
	assert.Empty(t, result.Departments[2].LeftAt)
}

func TestBuildTimelineAnalytics_SingleRecordIsNotBottleneck(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []repositories.HistoryRecord{historyRecord(1, 10, "PMO", start)}

	result := BuildTimelineAnalytics(records, nil, start.Add(72*time.Hour))

	require.Len(t, result.Departments, 1)
	assert.False(t, result.Departments[0].IsBottleneck)
	assert.Empty(t, result.Bottlenecks)
}

func TestBuildTimelineAnalytics_EstimateAccuracyAndEfficiency(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	within := historyRecord(1, 10, "PMO", start)
	est1, act1 := 5, 4
	within.EstimatedDays, within.ActualDays = &est1, &act1

	over := historyRecord(2, 20, "DESIGN", start.Add(24*time.Hour))
	est2, act2 := 2, 4
	over.EstimatedDays, over.ActualDays = &est2, &act2

	noEstimate := historyRecord(3, 30, "QA", start.Add(48*time.Hour))

	result := BuildTimelineAnalytics([]repositories.HistoryRecord{within, over, noEstimate}, nil, start.Add(72*time.Hour))

	require.NotNil(t, result.Departments[0].EstimateAccuracy)
	assert.InDelta(t, 125.0, *result.Departments[0].EstimateAccuracy, 0.001) // 5/4*100

	require.NotNil(t, result.Departments[1].EstimateAccuracy)
	assert.InDelta(t, 50.0, *result.Departments[1].EstimateAccuracy, 0.001) // 2/4*100

	assert.Nil(t, result.Departments[2].EstimateAccuracy)

	// Эффективность считается только по записям с оценкой и фактом: 1 из 2
	assert.InDelta(t, 50.0, result.EfficiencyPercentage, 0.001)
}

func TestBuildTimelineAnalytics_CorrectionAggregates(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := historyRecord(1, 10, "PHP", start)
	first.CorrectionCount = 2
	second := historyRecord(2, 20, "QA", start.Add(24*time.Hour))
	second.CorrectionCount = 1

	resolutionHours := map[uint64]float64{1: 6.5}

	result := BuildTimelineAnalytics([]repositories.HistoryRecord{first, second}, resolutionHours, start.Add(48*time.Hour))

	assert.Equal(t, 3, result.TotalCorrections)
	require.NotNil(t, result.Departments[0].AverageResolutionHours)
	assert.InDelta(t, 6.5, *result.Departments[0].AverageResolutionHours, 0.001)
	assert.Nil(t, result.Departments[1].AverageResolutionHours)
}
