package entities

import "project-management/pkg/types"

type Project struct {
	ID                  uint64  `json:"id" db:"id"`
	Name                string  `json:"name" db:"name"`
	CategoryID          uint64  `json:"category_id" db:"category_id"`
	CurrentDepartmentID *uint64 `json:"current_department_id" db:"current_department_id"`
	NextDepartmentID    *uint64 `json:"next_department_id" db:"next_department_id"`
	Status              string  `json:"status" db:"status"`
	CreatedBy           uint64  `json:"created_by" db:"created_by"`

	types.BaseEntity
	types.SoftDelete
}
