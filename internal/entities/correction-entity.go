package entities

import "time"

// DepartmentCorrection - замечание, заведённое по записи истории департамента.
type DepartmentCorrection struct {
	ID              uint64     `json:"id" db:"id"`
	HistoryID       uint64     `json:"history_id" db:"history_id"`
	CorrectionType  string     `json:"correction_type" db:"correction_type"`
	Description     string     `json:"description" db:"description"`
	RequestedBy     uint64     `json:"requested_by" db:"requested_by"`
	AssignedTo      *uint64    `json:"assigned_to" db:"assigned_to"`
	Status          string     `json:"status" db:"status"`
	Priority        string     `json:"priority" db:"priority"`
	EstimatedHours  *int       `json:"estimated_hours" db:"estimated_hours"`
	ActualHours     *int       `json:"actual_hours" db:"actual_hours"`
	ResolutionNotes *string    `json:"resolution_notes" db:"resolution_notes"`
	ResolvedAt      *time.Time `json:"resolved_at" db:"resolved_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at" db:"updated_at"`
}
