package dto

import "github.com/aarondl/null/v8"

type CreateProjectDTO struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	CategoryID uint64 `json:"category_id" validate:"required,gt=0"`
}

type UpdateProjectDTO struct {
	Name   null.String `json:"name" validate:"omitempty,min=2,max=255"`
	Status null.String `json:"status" validate:"omitempty,project_status"`
}

type ProjectDTO struct {
	ID                    uint64  `json:"id"`
	Name                  string  `json:"name"`
	CategoryID            uint64  `json:"category_id"`
	CategoryName          string  `json:"category_name,omitempty"`
	CurrentDepartmentID   *uint64 `json:"current_department_id,omitempty"`
	CurrentDepartmentCode string  `json:"current_department_code,omitempty"`
	NextDepartmentID      *uint64 `json:"next_department_id,omitempty"`
	NextDepartmentCode    string  `json:"next_department_code,omitempty"`
	Status                string  `json:"status"`
	CreatedBy             uint64  `json:"created_by"`
	CreatedAt             string  `json:"created_at,omitempty"`
	UpdatedAt             string  `json:"updated_at,omitempty"`
}
