package validation

import (
	"github.com/go-playground/validator/v10"

	"project-management/pkg/constants"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("work_status", isWorkStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("correction_status", isCorrectionStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("priority", isPriority); err != nil {
		return err
	}
	if err := v.RegisterValidation("project_status", isProjectStatus); err != nil {
		return err
	}
	return nil
}

// isWorkStatus - статус работы из справочника
func isWorkStatus(fl validator.FieldLevel) bool {
	return constants.IsValidWorkStatus(fl.Field().String())
}

// isCorrectionStatus - статус корректировки из справочника
func isCorrectionStatus(fl validator.FieldLevel) bool {
	return constants.IsValidCorrectionStatus(fl.Field().String())
}

// isPriority - приоритет корректировки
func isPriority(fl validator.FieldLevel) bool {
	return constants.IsValidPriority(fl.Field().String())
}

// isProjectStatus - статус проекта
func isProjectStatus(fl validator.FieldLevel) bool {
	return constants.IsValidProjectStatus(fl.Field().String())
}
