package entities

import "project-management/pkg/types"

type Category struct {
	ID                       uint64  `json:"id" db:"id"`
	Code                     string  `json:"code" db:"code"`
	Name                     string  `json:"name" db:"name"`
	DefaultStartDepartmentID *uint64 `json:"default_start_department_id" db:"default_start_department_id"`

	types.BaseEntity
}

// CategoryDepartmentMapping - один шаг воркфлоу категории.
// sequence уникален в рамках категории и задаёт порядок прохождения.
type CategoryDepartmentMapping struct {
	ID             uint64 `json:"id" db:"id"`
	CategoryID     uint64 `json:"category_id" db:"category_id"`
	DepartmentID   uint64 `json:"department_id" db:"department_id"`
	DepartmentCode string `json:"department_code" db:"department_code"`
	Sequence       int    `json:"sequence" db:"sequence"`
	IsRequired     bool   `json:"is_required" db:"is_required"`
	EstimatedHours *int   `json:"estimated_hours" db:"estimated_hours"`
	EstimatedDays  *int   `json:"estimated_days" db:"estimated_days"`
	IsActive       bool   `json:"is_active" db:"is_active"`

	types.BaseEntity
}
