package models

import (
	"errors"
	"fmt"
)

// Errores centinela del servicio. Todos los consumidores deben comparar
// con errors.Is, nunca con el texto del mensaje.
var (
	// ErrNotFound indica que la búsqueda por clave no encontró ninguna fila
	ErrNotFound = errors.New("registro no encontrado")

	// ErrConflict indica que ya existe una fila con la misma clave natural
	ErrConflict = errors.New("el registro ya existe")

	// ErrStoreUnavailable indica un fallo de conectividad, autenticación o
	// respuesta malformada del almacén remoto
	ErrStoreUnavailable = errors.New("almacén remoto no disponible")

	// ErrAssetMissing indica que falta un recurso requerido (plantilla)
	ErrAssetMissing = errors.New("recurso de plantilla no encontrado")
)

// PartialWriteError indica que la escritura secundaria (vista denormalizada)
// falló después de que la escritura principal ya se confirmó. La operación
// global no falla; el caller decide cómo reportarla.
type PartialWriteError struct {
	Collection string
	Err        error
}

// Error implementa la interfaz error
func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("escritura secundaria en %q falló: %v", e.Collection, e.Err)
}

// Unwrap permite errors.Is/errors.As sobre la causa
func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// ErrorCode representa el código de error de la API
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict       ErrorCode = "CONFLICT"
	ErrorCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrorCodeUnavailable    ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewConflictError crea un error de conflicto (clave duplicada)
func NewConflictError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeConflict, message)
}

// NewUnauthorizedError crea un error de autenticación
func NewUnauthorizedError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeUnauthorized, message)
}

// NewForbiddenError crea un error de permisos
func NewForbiddenError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeForbidden, message)
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeNotFound, message)
}

// NewRateLimitedError crea un error de rate limiting
func NewRateLimitedError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeRateLimited, message)
}

// NewUnavailableError crea un error de servicio externo no disponible
func NewUnavailableError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeUnavailable, message)
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeInternal, message)
}
