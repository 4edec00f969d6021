package authz

import (
	"strings"

	"project-management/internal/entities"
)

// Gatekeeper - "контейнер" для методов проверки доступа, состояния не хранит
type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

// Can - принимает `perms` отдельно от `actor`:
// пермишены берутся из контекста запроса (кэш), а не из сущности.
func (g *Gatekeeper) Can(
	perms map[string]bool,
	actor *entities.User,
	permission string,
	target interface{},
) bool {
	// Этап 1: Superuser может всё
	if perms[Superuser] {
		return true
	}

	// Этап 2: базовый пермишен обязателен
	if !perms[permission] {
		return false
	}

	// Этап 3: справочники и настройки маршрутов не имеют владельца
	isSimpleEntity := strings.HasPrefix(permission, "workflow:") ||
		strings.HasPrefix(permission, "checklist-templates:") ||
		strings.HasPrefix(permission, "users:") ||
		strings.HasPrefix(permission, "analytics:")

	if isSimpleEntity {
		if strings.HasSuffix(permission, ":view") {
			return true
		}
		return perms[ScopeAll]
	}

	// Этап 4: проверка области для проектных сущностей

	if target == nil {
		return perms[ScopeAll] || perms[ScopeOwn]
	}

	if perms[ScopeAll] {
		return true
	}

	switch t := target.(type) {
	case *entities.Project:
		if perms[ScopeOwn] && actor != nil && actor.ID == t.CreatedBy {
			return true
		}

	case *entities.DepartmentCorrection:
		if perms[ScopeOwn] && actor != nil &&
			(actor.ID == t.RequestedBy || (t.AssignedTo != nil && actor.ID == *t.AssignedTo)) {
			return true
		}

	case *entities.User:
		if perms[ScopeOwn] && actor != nil && actor.ID == t.ID {
			return true
		}
	}

	return false
}
