package dto

// WorkflowStepInput - один шаг в запросе на полную замену воркфлоу категории.
type WorkflowStepInput struct {
	DepartmentID   uint64 `json:"department_id" validate:"required,gt=0"`
	Sequence       int    `json:"sequence" validate:"required,gt=0"`
	IsRequired     bool   `json:"is_required"`
	EstimatedHours *int   `json:"estimated_hours" validate:"omitempty,gte=0"`
	EstimatedDays  *int   `json:"estimated_days" validate:"omitempty,gte=0"`
}

type BulkReplaceStepsDTO struct {
	Steps []WorkflowStepInput `json:"steps" validate:"dive"`
}

type CreateWorkflowStepDTO struct {
	DepartmentID   uint64 `json:"department_id" validate:"required,gt=0"`
	Sequence       int    `json:"sequence" validate:"required,gt=0"`
	IsRequired     *bool  `json:"is_required"`
	EstimatedHours *int   `json:"estimated_hours" validate:"omitempty,gte=0"`
	EstimatedDays  *int   `json:"estimated_days" validate:"omitempty,gte=0"`
}

type UpdateWorkflowStepDTO struct {
	Sequence       *int  `json:"sequence" validate:"omitempty,gt=0"`
	IsRequired     *bool `json:"is_required"`
	EstimatedHours *int  `json:"estimated_hours" validate:"omitempty,gte=0"`
	EstimatedDays  *int  `json:"estimated_days" validate:"omitempty,gte=0"`
	IsActive       *bool `json:"is_active"`
}

type WorkflowStepDTO struct {
	ID             uint64 `json:"id"`
	CategoryID     uint64 `json:"category_id"`
	DepartmentID   uint64 `json:"department_id"`
	DepartmentCode string `json:"department_code"`
	Sequence       int    `json:"sequence"`
	IsRequired     bool   `json:"is_required"`
	EstimatedHours *int   `json:"estimated_hours,omitempty"`
	EstimatedDays  *int   `json:"estimated_days,omitempty"`
	IsActive       bool   `json:"is_active"`
}

type WorkflowDTO struct {
	Category     CategoryDTO       `json:"category"`
	OrderedSteps []WorkflowStepDTO `json:"ordered_steps"`
}

type CreateCategoryDTO struct {
	Code                     string  `json:"code" validate:"required,uppercase,min=2"`
	Name                     string  `json:"name" validate:"required"`
	DefaultStartDepartmentID *uint64 `json:"default_start_department_id" validate:"omitempty,gt=0"`
}

type UpdateCategoryDTO struct {
	Code                     *string `json:"code" validate:"omitempty,uppercase,min=2"`
	Name                     *string `json:"name" validate:"omitempty,min=1"`
	DefaultStartDepartmentID *uint64 `json:"default_start_department_id" validate:"omitempty,gt=0"`
}

type CategoryDTO struct {
	ID                       uint64  `json:"id"`
	Code                     string  `json:"code"`
	Name                     string  `json:"name"`
	DefaultStartDepartmentID *uint64 `json:"default_start_department_id,omitempty"`
	CreatedAt                string  `json:"created_at"`
	UpdatedAt                string  `json:"updated_at,omitempty"`
}
