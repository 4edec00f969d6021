package dto

import "github.com/aarondl/null/v8"

// CreateCorrectionDTO - регистрация замечания по текущему департаменту проекта.
type CreateCorrectionDTO struct {
	CorrectionType string   `json:"correction_type" validate:"required,min=2,max=64"`
	Description    string   `json:"description" validate:"required,min=3"`
	Priority       string   `json:"priority" validate:"omitempty,priority"`
	AssignedTo     null.Int `json:"assigned_to" validate:"omitempty,gt=0"`
	EstimatedHours null.Int `json:"estimated_hours" validate:"omitempty,gte=0"`
}

type UpdateCorrectionDTO struct {
	Status          null.String `json:"status" validate:"omitempty,correction_status"`
	Priority        null.String `json:"priority" validate:"omitempty,priority"`
	AssignedTo      null.Int    `json:"assigned_to" validate:"omitempty,gt=0"`
	EstimatedHours  null.Int    `json:"estimated_hours" validate:"omitempty,gte=0"`
	ActualHours     null.Int    `json:"actual_hours" validate:"omitempty,gte=0"`
	ResolutionNotes null.String `json:"resolution_notes"`
}

type CorrectionDTO struct {
	ID              uint64  `json:"id"`
	HistoryID       uint64  `json:"history_id"`
	ProjectID       uint64  `json:"project_id,omitempty"`
	DepartmentID    uint64  `json:"department_id,omitempty"`
	DepartmentCode  string  `json:"department_code,omitempty"`
	CorrectionType  string  `json:"correction_type"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	Priority        string  `json:"priority"`
	RequestedBy     uint64  `json:"requested_by"`
	AssignedTo      *uint64 `json:"assigned_to,omitempty"`
	EstimatedHours  *int    `json:"estimated_hours,omitempty"`
	ActualHours     *int    `json:"actual_hours,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
	ResolvedAt      string  `json:"resolved_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}
