package dto

// --- ШАБЛОНЫ ---

type CreateTemplateItemDTO struct {
	DepartmentID uint64  `json:"department_id" validate:"required,gt=0"`
	Title        string  `json:"title" validate:"required"`
	Description  *string `json:"description"`
	IsRequired   *bool   `json:"is_required"`
	SortOrder    *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

type UpdateTemplateItemDTO struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	IsRequired  *bool   `json:"is_required"`
	IsActive    *bool   `json:"is_active"`
}

type ReorderTemplateDTO struct {
	OrderedItemIDs []uint64 `json:"ordered_item_ids" validate:"required,min=1,dive,gt=0"`
}

type TemplateItemDTO struct {
	ID           uint64  `json:"id"`
	DepartmentID uint64  `json:"department_id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	IsRequired   bool    `json:"is_required"`
	SortOrder    int     `json:"sort_order"`
	IsActive     bool    `json:"is_active"`
}

// --- ПУНКТЫ ПРОЕКТА ---

type ChecklistLinkDTO struct {
	URL      string `json:"url" validate:"required,url"`
	Title    string `json:"title" validate:"required"`
	LinkType string `json:"link_type" validate:"required,oneof=document link reference"`
}

type UpdateChecklistItemDTO struct {
	IsCompleted   *bool              `json:"is_completed"`
	CompletedDate *string            `json:"completed_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Notes         *string            `json:"notes"`
	Links         []ChecklistLinkDTO `json:"links" validate:"omitempty,dive"`
}

type ChecklistItemUpdateDTO struct {
	Date      string `json:"date"`
	Notes     string `json:"notes"`
	UpdatedBy uint64 `json:"updated_by"`
}

type ProjectChecklistItemDTO struct {
	ID             uint64                   `json:"id"`
	ProjectID      uint64                   `json:"project_id"`
	TemplateItemID uint64                   `json:"template_item_id"`
	DepartmentID   uint64                   `json:"department_id"`
	Title          string                   `json:"title"`
	Description    *string                  `json:"description,omitempty"`
	IsRequired     bool                     `json:"is_required"`
	IsCompleted    bool                     `json:"is_completed"`
	CompletedAt    string                   `json:"completed_at,omitempty"`
	CompletedBy    *uint64                  `json:"completed_by,omitempty"`
	Notes          *string                  `json:"notes,omitempty"`
	Links          []ChecklistLinkDTO       `json:"links"`
	UpdateHistory  []ChecklistItemUpdateDTO `json:"update_history"`
	LastUpdatedAt  string                   `json:"last_updated_at,omitempty"`
	LastUpdatedBy  *uint64                  `json:"last_updated_by,omitempty"`
}

// DepartmentChecklistProgressDTO - агрегат готовности чеклиста департамента.
type DepartmentChecklistProgressDTO struct {
	ProjectID                    uint64                    `json:"project_id"`
	DepartmentID                 uint64                    `json:"department_id"`
	Items                        []ProjectChecklistItemDTO `json:"items"`
	TotalItems                   int                       `json:"total_items"`
	CompletedItems               int                       `json:"completed_items"`
	RequiredItems                int                       `json:"required_items"`
	CompletedRequiredItems       int                       `json:"completed_required_items"`
	CompletionPercentage         float64                   `json:"completion_percentage"`
	RequiredCompletionPercentage float64                   `json:"required_completion_percentage"`
	CanProceedToNext             bool                      `json:"can_proceed_to_next"`
}
