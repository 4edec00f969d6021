package events

const (
	ProjectTransitionedEventName = "project.transitioned"
	WorkStatusChangedEventName   = "project.work_status_changed"
	CorrectionCreatedEventName   = "correction.created"
	CorrectionResolvedEventName  = "correction.resolved"
)

// ProjectTransitionedEvent - проект переведён в другой департамент.
type ProjectTransitionedEvent struct {
	ProjectID        uint64
	FromDepartmentID *uint64
	ToDepartmentID   uint64
	HistoryID        uint64
	MovedBy          uint64
	IsOverride       bool
}

func (e ProjectTransitionedEvent) Name() string { return ProjectTransitionedEventName }

type WorkStatusChangedEvent struct {
	ProjectID    uint64
	HistoryID    uint64
	DepartmentID uint64
	FromStatus   string
	ToStatus     string
	ChangedBy    uint64
}

func (e WorkStatusChangedEvent) Name() string { return WorkStatusChangedEventName }

type CorrectionCreatedEvent struct {
	CorrectionID uint64
	ProjectID    uint64
	HistoryID    uint64
	DepartmentID uint64
	Priority     string
	RequestedBy  uint64
	AssignedTo   *uint64
}

func (e CorrectionCreatedEvent) Name() string { return CorrectionCreatedEventName }

type CorrectionResolvedEvent struct {
	CorrectionID uint64
	ProjectID    uint64
	HistoryID    uint64
	Status       string
	ResolvedBy   uint64
}

func (e CorrectionResolvedEvent) Name() string { return CorrectionResolvedEventName }
