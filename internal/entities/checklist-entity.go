package entities

import (
	"time"

	"project-management/pkg/types"
)

// ChecklistTemplate - пункт шаблона чеклиста департамента.
type ChecklistTemplate struct {
	ID           uint64  `json:"id" db:"id"`
	DepartmentID uint64  `json:"department_id" db:"department_id"`
	Title        string  `json:"title" db:"title"`
	Description  *string `json:"description" db:"description"`
	IsRequired   bool    `json:"is_required" db:"is_required"`
	SortOrder    int     `json:"sort_order" db:"sort_order"`
	IsActive     bool    `json:"is_active" db:"is_active"`

	types.BaseEntity
}

// ProjectChecklistItem - снапшот пункта шаблона для конкретного проекта.
// Создаётся лениво при первом обращении к прогрессу департамента.
type ProjectChecklistItem struct {
	ID             uint64     `json:"id" db:"id"`
	ProjectID      uint64     `json:"project_id" db:"project_id"`
	TemplateItemID uint64     `json:"template_item_id" db:"template_item_id"`
	DepartmentID   uint64     `json:"department_id" db:"department_id"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description" db:"description"`
	IsRequired     bool       `json:"is_required" db:"is_required"`
	IsCompleted    bool       `json:"is_completed" db:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at" db:"completed_at"`
	CompletedBy    *uint64    `json:"completed_by" db:"completed_by"`
	Notes          *string    `json:"notes" db:"notes"`
	LastUpdatedAt  *time.Time `json:"last_updated_at" db:"last_updated_at"`
	LastUpdatedBy  *uint64    `json:"last_updated_by" db:"last_updated_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

type ChecklistItemLink struct {
	ID       uint64 `json:"id" db:"id"`
	ItemID   uint64 `json:"item_id" db:"item_id"`
	URL      string `json:"url" db:"url"`
	Title    string `json:"title" db:"title"`
	LinkType string `json:"link_type" db:"link_type"`
}

// ChecklistItemUpdate - append-only журнал изменений пункта.
type ChecklistItemUpdate struct {
	ID        uint64    `json:"id" db:"id"`
	ItemID    uint64    `json:"item_id" db:"item_id"`
	Notes     string    `json:"notes" db:"notes"`
	UpdatedBy uint64    `json:"updated_by" db:"updated_by"`
	TxID      *string   `json:"tx_id" db:"tx_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
