package authz

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Глобальные
	Superuser = "superuser"

	// Проекты (Projects)
	ProjectsCreate             = "projects:create"
	ProjectsView               = "projects:view"
	ProjectsUpdate             = "projects:update"
	ProjectsTransition         = "projects:transition"
	ProjectsTransitionOverride = "projects:transition:override"

	// Маршруты категорий (Workflow)
	WorkflowView   = "workflow:view"
	WorkflowManage = "workflow:manage"

	// Чек-листы (Checklists)
	ChecklistsView           = "checklists:view"
	ChecklistsUpdate         = "checklists:update"
	ChecklistTemplatesManage = "checklist-templates:manage"

	// Замечания (Corrections)
	CorrectionsCreate  = "corrections:create"
	CorrectionsUpdate  = "corrections:update"
	CorrectionsResolve = "corrections:resolve"

	// Аналитика (Analytics)
	AnalyticsView   = "analytics:view"
	AnalyticsExport = "analytics:export"

	// Пользователи (Users)
	UsersView = "users:view"

	// Модификаторы Области (Scopes)
	ScopeOwn = "scope:own"
	ScopeAll = "scope:all"
)
