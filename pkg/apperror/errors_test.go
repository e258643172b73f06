package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("ORD_002", "Invalid amount", http.StatusBadRequest),
			expected: "[ORD_002] Invalid amount",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] Internal storage error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("ORD_002", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestWalletErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"WalletNotInstalled", ErrWalletNotInstalled(), "WAL_001", 422},
		{"WalletAccessDenied", ErrWalletAccessDenied(), "WAL_002", 403},
		{"WalletNotConnected", ErrWalletNotConnected(), "WAL_003", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestOrderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"OrderNotFound", ErrOrderNotFound("ord_1"), "ORD_001", 404},
		{"InvalidAmount", ErrInvalidAmount(), "ORD_002", 400},
		{"OrderExists", ErrOrderExists("ord_1"), "ORD_003", 409},
		{"VersionConflict", ErrVersionConflict("ord_1"), "ORD_004", 409},
		{"InvalidTransition", ErrInvalidTransition("created", "completed"), "ORD_005", 409},
		{"UnsupportedCurrency", ErrUnsupportedCurrency("EUR"), "ORD_006", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestOrderErrors_IncludeContext(t *testing.T) {
	assert.Contains(t, ErrOrderNotFound("ord_42").Message, "ord_42")
	assert.Contains(t, ErrInvalidTransition("created", "completed").Message, "created -> completed")
	assert.Contains(t, ErrUnsupportedCurrency("EUR").Message, "EUR")
}

func TestSettlementAndSystemErrors(t *testing.T) {
	inner := fmt.Errorf("boom")

	setErr := ErrSettlementFailure(inner)
	assert.Equal(t, "SET_001", setErr.Code)
	assert.Equal(t, http.StatusBadGateway, setErr.HTTPStatus)
	assert.True(t, errors.Is(setErr, inner))

	timeout := ErrConfirmationTimeout("tx_abc")
	assert.Equal(t, "SET_002", timeout.Code)
	assert.Contains(t, timeout.Message, "tx_abc")

	storage := ErrStorage(inner)
	assert.Equal(t, "SYS_001", storage.Code)
	assert.True(t, errors.Is(storage, inner))

	internal := InternalError(inner)
	assert.Equal(t, "SYS_002", internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
}

func TestValidation(t *testing.T) {
	err := Validation("walletAddress is required")
	assert.Equal(t, "ORD_002", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "walletAddress is required", err.Message)
}
