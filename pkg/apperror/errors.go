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

// ---- Wallet Connection (WAL) ----

func ErrWalletNotInstalled() *AppError {
	return New("WAL_001", "Freighter wallet is not installed", http.StatusUnprocessableEntity)
}

func ErrWalletAccessDenied() *AppError {
	return New("WAL_002", "Connection rejected or failed", http.StatusForbidden)
}

func ErrWalletNotConnected() *AppError {
	return New("WAL_003", "Wallet not connected", http.StatusConflict)
}

// ---- Order Lifecycle (ORD) ----

func ErrOrderNotFound(id string) *AppError {
	return New("ORD_001", fmt.Sprintf("order %s not found", id), http.StatusNotFound)
}

func ErrInvalidAmount() *AppError {
	return New("ORD_002", "Invalid amount", http.StatusBadRequest)
}

func ErrOrderExists(id string) *AppError {
	return New("ORD_003", fmt.Sprintf("order %s already exists", id), http.StatusConflict)
}

func ErrVersionConflict(id string) *AppError {
	return New("ORD_004", fmt.Sprintf("order %s was modified concurrently", id), http.StatusConflict)
}

func ErrInvalidTransition(from, to string) *AppError {
	return New("ORD_005", fmt.Sprintf("illegal status transition %s -> %s", from, to), http.StatusConflict)
}

func ErrUnsupportedCurrency(code string) *AppError {
	return New("ORD_006", fmt.Sprintf("no exchange rate for %s", code), http.StatusBadRequest)
}

// ---- Settlement (SET) ----

func ErrSettlementFailure(err error) *AppError {
	return Wrap("SET_001", "Settlement operation failed", http.StatusBadGateway, err)
}

func ErrConfirmationTimeout(txRef string) *AppError {
	return New("SET_002", fmt.Sprintf("transaction %s not confirmed in time", txRef), http.StatusGatewayTimeout)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorage(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_002 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_002", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("ORD_002", message, http.StatusBadRequest)
}
