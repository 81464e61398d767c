package errors

import (
	"fmt"
	"net/http"

	"github.com/SaveNTravel/saventravel-backend/logger"
)

type ErrorType string

const (
	ValidationError       ErrorType = "VALIDATION_ERROR"
	NotFoundError         ErrorType = "NOT_FOUND"
	AuthError             ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError         ErrorType = "DATABASE_ERROR"
	ServerError           ErrorType = "SERVER_ERROR"
	InvalidTargetError    ErrorType = "INVALID_TARGET"
	DuplicateRequestError ErrorType = "DUPLICATE_REQUEST"
	MalformedRecordError  ErrorType = "MALFORMED_RECORD"
	InvalidRecordError    ErrorType = "INVALID_RECORD"
	FetchFailedError      ErrorType = "FETCH_FAILED"
	DivisionUndefined     ErrorType = "DIVISION_UNDEFINED"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the HTTP status code for the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper constructors for the reconciliation error taxonomy.

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidTarget signals an operation aimed at an illegal counterpart, e.g. a
// friend request sent to oneself.
func InvalidTarget(message string, detail string) *AppError {
	return &AppError{
		Type:       InvalidTargetError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

// DuplicateRequest signals that an active relationship record already exists
// between the two users, in either direction.
func DuplicateRequest(from, to string) *AppError {
	return &AppError{
		Type:       DuplicateRequestError,
		Message:    "Friend request already exists",
		Detail:     fmt.Sprintf("between %s and %s", logger.MaskEmail(from), logger.MaskEmail(to)),
		HTTPStatus: http.StatusConflict,
	}
}

// MalformedRecord signals a stored document missing required ledger fields.
// Callers aggregating batches should drop the record and continue.
func MalformedRecord(id string, detail string) *AppError {
	return &AppError{
		Type:       MalformedRecordError,
		Message:    "Malformed ledger record",
		Detail:     fmt.Sprintf("record %s: %s", id, detail),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// InvalidRecord signals a well-formed record whose values violate the ledger
// contract, e.g. a negative amount.
func InvalidRecord(detail string) *AppError {
	return &AppError{
		Type:       InvalidRecordError,
		Message:    "Invalid ledger record",
		Detail:     detail,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// FetchFailed signals that one of the constituent reads for an aggregation
// scope failed. The whole scope is indeterminate; partial sums are never
// returned.
func FetchFailed(scope string, err error) *AppError {
	return &AppError{
		Type:       FetchFailedError,
		Message:    "Failed to fetch records for aggregation",
		Detail:     scope,
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func NewDatabaseError(err error) *AppError {
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, InvalidTargetError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case DuplicateRequestError:
		return http.StatusConflict
	case MalformedRecordError, InvalidRecordError, DivisionUndefined:
		return http.StatusUnprocessableEntity
	case FetchFailedError:
		return http.StatusBadGateway
	case DatabaseError, ServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
