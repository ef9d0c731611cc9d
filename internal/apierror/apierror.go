package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"

	// Compliance rejections. Surfaced to the caller, audit-logged, and
	// guaranteed to have produced no provider or ledger side effects.
	ErrAccountRestricted       ErrorCode = "ACCOUNT_RESTRICTED"
	ErrTierLimitExceeded       ErrorCode = "TIER_LIMIT_EXCEEDED"
	ErrEnhancedDueDiligence    ErrorCode = "ENHANCED_DUE_DILIGENCE_REQUIRED"
	ErrOperationNotInCountry   ErrorCode = "OPERATION_NOT_PERMITTED_IN_COUNTRY"

	// Routing and failover exhaustion. Surfaced as service-unavailable.
	ErrNoRouteConfigured   ErrorCode = "NO_ROUTE_CONFIGURED"
	ErrNoProviderAvailable ErrorCode = "NO_PROVIDER_AVAILABLE"
	ErrAllProvidersFailed  ErrorCode = "ALL_PROVIDERS_FAILED"

	// Ledger rejections. Nothing was partially written.
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrAccountNotFound   ErrorCode = "ACCOUNT_NOT_FOUND"

	// The provider executed the external transfer but the internal ledger
	// movement failed. Requires reconciliation, never silently swallowed.
	ErrSettledUnreconciled ErrorCode = "SETTLED_BUT_UNRECONCILED"

	// A request with the same idempotency key is still being processed.
	ErrDuplicateInFlight ErrorCode = "DUPLICATE_REQUEST_IN_FLIGHT"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CodeOf extracts the error code from err, or INTERNAL_SERVER_ERROR when err
// is not an APIError.
func CodeOf(err error) ErrorCode {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ErrInternalServer
}

func MapErrorToHTTPStatus(err error) int {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound, ErrAccountNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrDuplicateInFlight:
		return http.StatusConflict
	case ErrAccountRestricted, ErrTierLimitExceeded, ErrEnhancedDueDiligence, ErrOperationNotInCountry:
		return http.StatusForbidden
	case ErrInsufficientFunds:
		return http.StatusUnprocessableEntity
	case ErrNoRouteConfigured, ErrNoProviderAvailable, ErrAllProvidersFailed:
		return http.StatusServiceUnavailable
	case ErrSettledUnreconciled:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
