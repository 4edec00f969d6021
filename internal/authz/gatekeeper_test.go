package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"project-management/internal/entities"
)

func permsOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func TestGatekeeper_Superuser(t *testing.T) {
	g := NewGatekeeper()
	actor := &entities.User{ID: 1}

	assert.True(t, g.Can(permsOf(Superuser), actor, ProjectsUpdate, &entities.Project{CreatedBy: 99}))
	assert.True(t, g.Can(permsOf(Superuser), actor, WorkflowManage, nil))
}

func TestGatekeeper_RequiresBasePermission(t *testing.T) {
	g := NewGatekeeper()
	actor := &entities.User{ID: 1}

	assert.False(t, g.Can(permsOf(ScopeAll), actor, ProjectsUpdate, nil))
	assert.False(t, g.Can(permsOf(ProjectsView), actor, ProjectsUpdate, nil))
}

func TestGatekeeper_SimpleEntities(t *testing.T) {
	g := NewGatekeeper()
	actor := &entities.User{ID: 1}

	// :view у справочников не требует области
	assert.True(t, g.Can(permsOf(WorkflowView), actor, WorkflowView, nil))
	assert.True(t, g.Can(permsOf(AnalyticsView), actor, AnalyticsView, nil))

	// изменение справочников требует scope:all
	assert.False(t, g.Can(permsOf(WorkflowManage), actor, WorkflowManage, nil))
	assert.True(t, g.Can(permsOf(WorkflowManage, ScopeAll), actor, WorkflowManage, nil))
	assert.False(t, g.Can(permsOf(ChecklistTemplatesManage, ScopeOwn), actor, ChecklistTemplatesManage, nil))
}

func TestGatekeeper_ProjectScope(t *testing.T) {
	g := NewGatekeeper()
	owner := &entities.User{ID: 7}
	stranger := &entities.User{ID: 8}
	project := &entities.Project{CreatedBy: 7}

	// scope:all видит любой проект
	assert.True(t, g.Can(permsOf(ProjectsUpdate, ScopeAll), stranger, ProjectsUpdate, project))

	// scope:own - только свой
	assert.True(t, g.Can(permsOf(ProjectsUpdate, ScopeOwn), owner, ProjectsUpdate, project))
	assert.False(t, g.Can(permsOf(ProjectsUpdate, ScopeOwn), stranger, ProjectsUpdate, project))

	// без области доступ закрыт даже с базовым пермишеном
	assert.False(t, g.Can(permsOf(ProjectsUpdate), owner, ProjectsUpdate, project))
}

func TestGatekeeper_CorrectionScope(t *testing.T) {
	g := NewGatekeeper()
	author := &entities.User{ID: 3}
	assignee := &entities.User{ID: 4}
	stranger := &entities.User{ID: 5}

	assignedTo := uint64(4)
	correction := &entities.DepartmentCorrection{RequestedBy: 3, AssignedTo: &assignedTo}

	assert.True(t, g.Can(permsOf(CorrectionsUpdate, ScopeOwn), author, CorrectionsUpdate, correction))
	assert.True(t, g.Can(permsOf(CorrectionsUpdate, ScopeOwn), assignee, CorrectionsUpdate, correction))
	assert.False(t, g.Can(permsOf(CorrectionsUpdate, ScopeOwn), stranger, CorrectionsUpdate, correction))

	unassigned := &entities.DepartmentCorrection{RequestedBy: 3}
	assert.True(t, g.Can(permsOf(CorrectionsUpdate, ScopeOwn), author, CorrectionsUpdate, unassigned))
	assert.False(t, g.Can(permsOf(CorrectionsUpdate, ScopeOwn), assignee, CorrectionsUpdate, unassigned))
}

func TestGatekeeper_NilTarget(t *testing.T) {
	g := NewGatekeeper()
	actor := &entities.User{ID: 1}

	// Без цели достаточно любой области: список отфильтруется на уровне запроса
	assert.True(t, g.Can(permsOf(ProjectsView, ScopeOwn), actor, ProjectsView, nil))
	assert.True(t, g.Can(permsOf(ProjectsView, ScopeAll), actor, ProjectsView, nil))
	assert.False(t, g.Can(permsOf(ProjectsView), actor, ProjectsView, nil))
}
