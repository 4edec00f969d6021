package dto

// DepartmentTimelineDTO - агрегат по одному пребыванию проекта в департаменте.
type DepartmentTimelineDTO struct {
	HistoryID              uint64   `json:"history_id"`
	DepartmentID           uint64   `json:"department_id"`
	DepartmentCode         string   `json:"department_code"`
	WorkStatus             string   `json:"work_status"`
	EnteredAt              string   `json:"entered_at"`
	LeftAt                 string   `json:"left_at,omitempty"`
	DurationDays           float64  `json:"duration_days"`
	EstimatedDays          *int     `json:"estimated_days,omitempty"`
	ActualDays             *int     `json:"actual_days,omitempty"`
	EstimateAccuracy       *float64 `json:"estimate_accuracy,omitempty"`
	CorrectionCount        int      `json:"correction_count"`
	AverageResolutionHours *float64 `json:"average_resolution_hours,omitempty"`
	IsBottleneck           bool     `json:"is_bottleneck"`
}

type ProjectTimelineAnalyticsDTO struct {
	ProjectID            uint64                  `json:"project_id"`
	ProjectName          string                  `json:"project_name"`
	CurrentDepartmentID  *uint64                 `json:"current_department_id,omitempty"`
	TotalDurationDays    float64                 `json:"total_duration_days"`
	AverageDurationDays  float64                 `json:"average_duration_days"`
	TotalCorrections     int                     `json:"total_corrections"`
	EfficiencyPercentage float64                 `json:"efficiency_percentage"`
	Departments          []DepartmentTimelineDTO `json:"departments"`
	Bottlenecks          []string                `json:"bottlenecks"`
}
