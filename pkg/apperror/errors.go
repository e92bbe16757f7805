package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Settlement (SET) ----

func ErrRecordNotFound(reference string) *AppError {
	return New("SET_001", fmt.Sprintf("settlement record %s not found", reference), http.StatusNotFound)
}

func ErrAlreadySettled(reference string) *AppError {
	return New("SET_002", fmt.Sprintf("settlement record %s already finalized", reference), http.StatusConflict)
}

func ErrUnknownHolderKind(kind string) *AppError {
	return New("SET_003", fmt.Sprintf("no balance holder registered for kind %q", kind), http.StatusUnprocessableEntity)
}

func ErrHolderNotFound(id string) *AppError {
	return New("SET_004", fmt.Sprintf("balance holder %s not found", id), http.StatusNotFound)
}

// ---- Fees & Conversion (FX) ----

func ErrRateUnavailable(err error) *AppError {
	return Wrap("FX_001", "Exchange rate lookup failed", http.StatusServiceUnavailable, err)
}

// ---- Gateway (GW) ----

func ErrGatewayLookup(err error) *AppError {
	return Wrap("GW_001", "Gateway transfer lookup failed", http.StatusBadGateway, err)
}

func ErrInvalidSignature() *AppError {
	return New("GW_002", "Invalid webhook signature", http.StatusUnauthorized)
}

func ErrMalformedEvent(err error) *AppError {
	return Wrap("GW_003", "Malformed gateway event payload", http.StatusBadRequest, err)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("SYS_002", message, http.StatusBadRequest)
}
