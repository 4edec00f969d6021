package constants

// --- СТАТУСЫ ЗАМЕЧАНИЙ ---
const (
	CorrectionStatusOpen       = "OPEN"
	CorrectionStatusInProgress = "IN_PROGRESS"
	CorrectionStatusResolved   = "RESOLVED"
	CorrectionStatusRejected   = "REJECTED"
)

// correctionStatusTransitions - переходы только вперёд,
// REJECTED терминален из любого нефинального статуса.
var correctionStatusTransitions = map[string][]string{
	CorrectionStatusOpen:       {CorrectionStatusInProgress, CorrectionStatusResolved, CorrectionStatusRejected},
	CorrectionStatusInProgress: {CorrectionStatusResolved, CorrectionStatusRejected},
	CorrectionStatusResolved:   {},
	CorrectionStatusRejected:   {},
}

func IsValidCorrectionStatus(code string) bool {
	_, ok := correctionStatusTransitions[code]
	return ok
}

func CanChangeCorrectionStatus(from, to string) bool {
	allowed, ok := correctionStatusTransitions[from]
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

func IsFinalCorrectionStatus(code string) bool {
	return code == CorrectionStatusResolved || code == CorrectionStatusRejected
}

// --- ПРИОРИТЕТЫ ЗАМЕЧАНИЙ ---
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

func IsValidPriority(code string) bool {
	switch code {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
