package errors

import "fmt"

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
	ErrInvalidUserID           = fmt.Errorf("недопустимый UserID")
	ErrUserNotFound            = fmt.Errorf("пользователь не найден")

	// Общие
	ErrNotFound       = fmt.Errorf("запись не найдена")
	ErrBadRequest     = fmt.Errorf("неверный запрос")
	ErrConflict       = fmt.Errorf("конфликт уникальности данных")
	ErrInternalServer = fmt.Errorf("внутренняя ошибка сервера")

	// Доменные
	ErrDepartmentInUse   = fmt.Errorf("департамент используется и не может быть удалён")
	ErrStepInUse         = fmt.Errorf("шаг воркфлоу используется и не может быть удалён")
	ErrTemplateItemInUse = fmt.Errorf("пункт чеклиста используется проектами и не может быть удалён")
)

// HttpError - ошибка с HTTP-кодом, пользовательским сообщением и внутренним
// контекстом для логов. Именно её разворачивает utils.ErrorResponse.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func NewBadRequestError(message string) *HttpError {
	return &HttpError{Code: 400, Message: message, Err: ErrBadRequest}
}

func NewNotFoundError(message string) *HttpError {
	return &HttpError{Code: 404, Message: message, Err: ErrNotFound}
}

func NewConflictError(message string) *HttpError {
	return &HttpError{Code: 409, Message: message, Err: ErrConflict}
}

func NewForbiddenError(message string) *HttpError {
	return &HttpError{Code: 403, Message: message, Err: ErrForbidden}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
