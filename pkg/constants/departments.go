package constants

// --- КОДЫ ДЕПАРТАМЕНТОВ (Совпадают с кодами в БД) ---
const (
	DepartmentPMO       = "PMO"
	DepartmentDesign    = "DESIGN"
	DepartmentHTML      = "HTML"
	DepartmentPHP       = "PHP"
	DepartmentReact     = "REACT"
	DepartmentWordPress = "WORDPRESS"
	DepartmentQA        = "QA"
	DepartmentDelivery  = "DELIVERY"
)

// --- СТАТУСЫ ПРОЕКТОВ ---
const (
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusHold      = "HOLD"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusCancelled = "CANCELLED"
)

var ProjectStatuses = []string{
	ProjectStatusActive,
	ProjectStatusHold,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

func IsValidProjectStatus(code string) bool {
	for _, s := range ProjectStatuses {
		if s == code {
			return true
		}
	}
	return false
}

// --- ТИПЫ ССЫЛОК ЧЕКЛИСТА ---
const (
	LinkTypeDocument  = "document"
	LinkTypeLink      = "link"
	LinkTypeReference = "reference"
)

func IsValidLinkType(linkType string) bool {
	return linkType == LinkTypeDocument || linkType == LinkTypeLink || linkType == LinkTypeReference
}

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Кеш активных шагов воркфлоу категории.
	// Формат: workflow:category:<categoryID> -> JSON со списком шагов
	CacheKeyCategoryWorkflow = "workflow:category:%d"

	// Кеш привилегий роли.
	// Формат: auth:permissions:role:<roleID> -> JSON со списком привилегий
	CacheKeyRolePermissions = "auth:permissions:role:%d"
)
