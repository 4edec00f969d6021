package dto

// TransitionDTO - запрос на перевод проекта в следующий департамент.
type TransitionDTO struct {
	ToDepartmentID        uint64  `json:"to_department_id" validate:"required,gt=0"`
	EstimatedDays         *int    `json:"estimated_days" validate:"omitempty,gte=0"`
	PermissionGrantedByID *uint64 `json:"permission_granted_by_id" validate:"omitempty,gt=0"`
	Notes                 *string `json:"notes"`
}

type UpdateWorkStatusDTO struct {
	WorkStatus    string  `json:"work_status" validate:"required"`
	WorkStartDate *string `json:"work_start_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	WorkEndDate   *string `json:"work_end_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ActualDays    *int    `json:"actual_days" validate:"omitempty,gte=0"`
	Notes         *string `json:"notes"`
}

type DepartmentHistoryDTO struct {
	ID                  uint64  `json:"id"`
	ProjectID           uint64  `json:"project_id"`
	FromDepartmentID    *uint64 `json:"from_department_id,omitempty"`
	FromDepartmentCode  string  `json:"from_department_code,omitempty"`
	ToDepartmentID      uint64  `json:"to_department_id"`
	ToDepartmentCode    string  `json:"to_department_code"`
	WorkStatus          string  `json:"work_status"`
	WorkStartDate       string  `json:"work_start_date,omitempty"`
	WorkEndDate         string  `json:"work_end_date,omitempty"`
	EstimatedDays       *int    `json:"estimated_days,omitempty"`
	ActualDays          *int    `json:"actual_days,omitempty"`
	CorrectionCount     int     `json:"correction_count"`
	MovedBy             uint64  `json:"moved_by"`
	PermissionGrantedBy *uint64 `json:"permission_granted_by,omitempty"`
	Notes               *string `json:"notes,omitempty"`
	CreatedAt           string  `json:"created_at"`
}
