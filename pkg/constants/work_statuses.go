package constants

// --- СТАТУСЫ РАБОТЫ ПО ЗАПИСИ ИСТОРИИ (Совпадают с кодами в БД) ---
const (
	WorkStatusNotStarted            = "NOT_STARTED"
	WorkStatusInProgress            = "IN_PROGRESS"
	WorkStatusCorrectionsNeeded     = "CORRECTIONS_NEEDED"
	WorkStatusPendingClientApproval = "PENDING_CLIENT_APPROVAL"
	WorkStatusQATesting             = "QA_TESTING"
	WorkStatusBeforeLiveQA          = "BEFORE_LIVE_QA"
	WorkStatusOnHold                = "ON_HOLD"
	WorkStatusClientRejected        = "CLIENT_REJECTED"
	WorkStatusQARejected            = "QA_REJECTED"
	WorkStatusBugfixInProgress      = "BUGFIX_IN_PROGRESS"
	WorkStatusReadyForDelivery      = "READY_FOR_DELIVERY"
	WorkStatusCompleted             = "COMPLETED"
)

// workStatusTransitions - явная таблица переходов.
// Любой переход, которого здесь нет, отклоняется валидацией.
var workStatusTransitions = map[string][]string{
	WorkStatusNotStarted: {WorkStatusInProgress, WorkStatusOnHold},
	WorkStatusInProgress: {
		WorkStatusCorrectionsNeeded,
		WorkStatusPendingClientApproval,
		WorkStatusQATesting,
		WorkStatusBeforeLiveQA,
		WorkStatusOnHold,
		WorkStatusCompleted,
	},
	WorkStatusCorrectionsNeeded:     {WorkStatusInProgress, WorkStatusBugfixInProgress},
	WorkStatusPendingClientApproval: {WorkStatusCompleted, WorkStatusClientRejected, WorkStatusInProgress},
	WorkStatusQATesting:             {WorkStatusReadyForDelivery, WorkStatusQARejected, WorkStatusBeforeLiveQA, WorkStatusCompleted},
	WorkStatusBeforeLiveQA:          {WorkStatusReadyForDelivery, WorkStatusQARejected, WorkStatusCompleted},
	WorkStatusOnHold:                {WorkStatusInProgress},
	WorkStatusClientRejected:        {WorkStatusInProgress, WorkStatusBugfixInProgress},
	WorkStatusQARejected:            {WorkStatusInProgress, WorkStatusBugfixInProgress},
	WorkStatusBugfixInProgress:      {WorkStatusQATesting, WorkStatusBeforeLiveQA, WorkStatusInProgress},
	WorkStatusReadyForDelivery:      {WorkStatusCompleted},
	WorkStatusCompleted:             {},
}

func IsValidWorkStatus(code string) bool {
	_, ok := workStatusTransitions[code]
	return ok
}

// CanChangeWorkStatus проверяет, разрешён ли переход from -> to по таблице.
func CanChangeWorkStatus(from, to string) bool {
	allowed, ok := workStatusTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsFinalWorkStatus - терминальный статус записи истории.
func IsFinalWorkStatus(code string) bool {
	return code == WorkStatusCompleted
}
