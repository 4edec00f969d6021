package entities

import "time"

// ProjectDepartmentHistory - запись о переводе проекта в департамент.
// После создания неизменяема, кроме статуса работы, дат и счётчика замечаний.
type ProjectDepartmentHistory struct {
	ID                  uint64     `json:"id" db:"id"`
	ProjectID           uint64     `json:"project_id" db:"project_id"`
	FromDepartmentID    *uint64    `json:"from_department_id" db:"from_department_id"`
	ToDepartmentID      uint64     `json:"to_department_id" db:"to_department_id"`
	WorkStatus          string     `json:"work_status" db:"work_status"`
	WorkStartDate       *time.Time `json:"work_start_date" db:"work_start_date"`
	WorkEndDate         *time.Time `json:"work_end_date" db:"work_end_date"`
	EstimatedDays       *int       `json:"estimated_days" db:"estimated_days"`
	ActualDays          *int       `json:"actual_days" db:"actual_days"`
	CorrectionCount     int        `json:"correction_count" db:"correction_count"`
	MovedBy             uint64     `json:"moved_by" db:"moved_by"`
	PermissionGrantedBy *uint64    `json:"permission_granted_by" db:"permission_granted_by"`
	Notes               *string    `json:"notes" db:"notes"`
	TxID                *string    `json:"tx_id" db:"tx_id"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}
