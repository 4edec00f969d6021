package validation

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
)

type workStatusPayload struct {
	WorkStatus string `validate:"required,work_status"`
}

type correctionPayload struct {
	Status   null.String `validate:"omitempty,correction_status"`
	Priority null.String `validate:"omitempty,priority"`
}

func TestValidator_WorkStatusRule(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&workStatusPayload{WorkStatus: "IN_PROGRESS"}))
	assert.NoError(t, v.Validate(&workStatusPayload{WorkStatus: "QA_TESTING"}))

	assert.Error(t, v.Validate(&workStatusPayload{WorkStatus: "DONE"}))
	assert.Error(t, v.Validate(&workStatusPayload{WorkStatus: ""}))
}

func TestValidator_NullTypesWithDomainRules(t *testing.T) {
	v := New()

	// Невалидные null-поля пропускаются как пустые
	assert.NoError(t, v.Validate(&correctionPayload{}))

	assert.NoError(t, v.Validate(&correctionPayload{
		Status:   null.StringFrom("RESOLVED"),
		Priority: null.StringFrom("HIGH"),
	}))

	assert.Error(t, v.Validate(&correctionPayload{Status: null.StringFrom("CLOSED")}))
	assert.Error(t, v.Validate(&correctionPayload{Priority: null.StringFrom("URGENT")}))
}
