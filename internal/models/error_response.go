package models

import (
	"fmt"
	"net/http"
)

type ErrorKind string // Вид ошибки

const (
	KindValidation        ErrorKind = "validation"         // Некорректный ввод, детали можно показывать по полям
	KindAuthorization     ErrorKind = "authorization"      // Недостаточно прав, не раскрывает существование ресурса
	KindInvalidTransition ErrorKind = "invalid_transition" // Недопустимый переход статуса
	KindConflict          ErrorKind = "conflict"           // Проигранная гонка, нужно перечитать состояние
	KindNotFound          ErrorKind = "not_found"          // Ресурс не найден
	KindInternal          ErrorKind = "internal"           // Внутренняя ошибка
)

// ErrorResponse описывает ошибку с кодом, видом и сообщением.
type ErrorResponse struct {
	StatusCode int               `json:"-"`
	Kind       ErrorKind         `json:"kind"`
	Message    string            `json:"reason"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       KindInternal,
		Message:    message}
}

// NewValidationError создает ошибку валидации ввода.
func NewValidationError(message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Kind:       KindValidation,
		Message:    message}
}

// NewFieldValidationError создает ошибку валидации с сообщением по каждому полю.
func NewFieldValidationError(fields map[string]string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Kind:       KindValidation,
		Message:    "invalid registration data",
		Fields:     fields}
}

// NewAuthorizationError создает ошибку авторизации.
// Сообщение всегда одно и то же, чтобы не раскрывать существование ресурса.
func NewAuthorizationError() *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusForbidden,
		Kind:       KindAuthorization,
		Message:    "operation is not permitted for this user"}
}

// NewInvalidTransition создает ошибку недопустимого перехода статуса,
// называя текущий и запрошенный статусы.
func NewInvalidTransition(current, attempted string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusConflict,
		Kind:       KindInvalidTransition,
		Message:    fmt.Sprintf("invalid transition from %s to %s", current, attempted)}
}

// NewInvalidTransitionReason создает ошибку недопустимого перехода статуса
// с пояснением, какое предусловие не выполнено.
func NewInvalidTransitionReason(current, attempted, reason string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusConflict,
		Kind:       KindInvalidTransition,
		Message:    fmt.Sprintf("invalid transition from %s to %s: %s", current, attempted, reason)}
}

// NewInvalidEdit создает ошибку редактирования поля, запрещённого в текущем статусе.
func NewInvalidEdit(field, status string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusConflict,
		Kind:       KindInvalidTransition,
		Message:    fmt.Sprintf("field %s cannot be edited while status is %s", field, status)}
}

// NewConflict создает ошибку проигранной гонки за состояние.
func NewConflict(message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusConflict,
		Kind:       KindConflict,
		Message:    message}
}

// NewNotFound создает ошибку отсутствующего ресурса.
func NewNotFound(message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusNotFound,
		Kind:       KindNotFound,
		Message:    message}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}
