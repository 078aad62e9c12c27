// Package errors provides structured, localizable application errors.
package errors

import "net/http"

// Kind classifies failures for transport mapping.
type Kind string

const (
	KindInternal     Kind = "internal"
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindRateLimited  Kind = "rate_limited"
	KindUnavailable  Kind = "unavailable"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// Generic errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidJSON     Code = "INVALID_JSON"
	CodeFilterInvalid   Code = "FILTER_INVALID"
	CodePageToken       Code = "PAGE_TOKEN_INVALID"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeForbidden       Code = "FORBIDDEN"
	CodeRequestTooBig   Code = "REQUEST_TOO_LARGE"
	CodeCategoryUnknown Code = "CATEGORY_UNKNOWN"

	// Auth errors
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeTokenInvalid       Code = "TOKEN_INVALID"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeEmailTaken         Code = "EMAIL_TAKEN"
	CodePasswordTooShort   Code = "PASSWORD_TOO_SHORT"
	CodeAdminRequired      Code = "ADMIN_REQUIRED"
	CodeBusinessRequired   Code = "BUSINESS_REQUIRED"
	CodeNotOwner           Code = "NOT_OWNER"
	CodeSelfDelete         Code = "SELF_DELETE"
	CodeProfileNotFound    Code = "PROFILE_NOT_FOUND"
	CodeRoleInvalid        Code = "ROLE_INVALID"

	// Provider errors
	CodeProviderNotFound     Code = "PROVIDER_NOT_FOUND"
	CodeProviderNameRequired Code = "PROVIDER_NAME_REQUIRED"
	CodeProviderAlreadyOwned Code = "PROVIDER_ALREADY_OWNED"

	// Booking errors
	CodeBookingNotFound          Code = "BOOKING_NOT_FOUND"
	CodeBookingDisabled          Code = "BOOKING_DISABLED"
	CodeBookingInvalidTransition Code = "BOOKING_INVALID_TRANSITION"
	CodeBookingStatusChanged     Code = "BOOKING_STATUS_CHANGED"

	// Intake errors
	CodeApplicationNotFound   Code = "APPLICATION_NOT_FOUND"
	CodeApplicationDecided    Code = "APPLICATION_ALREADY_DECIDED"
	CodeApplicationDuplicate  Code = "APPLICATION_DUPLICATE_PROVIDER"
	CodeChangeRequestNotFound Code = "CHANGE_REQUEST_NOT_FOUND"
	CodeChangeRequestDecided  Code = "CHANGE_REQUEST_ALREADY_DECIDED"
	CodeChangeRequestField    Code = "CHANGE_REQUEST_FIELD_NOT_EDITABLE"
	CodeChangeRequestType     Code = "CHANGE_REQUEST_TYPE_INVALID"

	// Content errors
	CodePostNotFound        Code = "POST_NOT_FOUND"
	CodeEventNotFound       Code = "EVENT_NOT_FOUND"
	CodeEventInvalidRange   Code = "EVENT_INVALID_RANGE"
	CodeIntegrationNotFound Code = "INTEGRATION_NOT_FOUND"
	CodeIntegrationExists   Code = "INTEGRATION_ALREADY_CONNECTED"

	// Media errors
	CodeImageUnsupported Code = "IMAGE_UNSUPPORTED"
	CodeImageTooLarge    Code = "IMAGE_TOO_LARGE"
	CodeImageNotFound    Code = "IMAGE_NOT_FOUND"
	CodeImageLimit       Code = "IMAGE_LIMIT_REACHED"
)

// Kind maps a code to its failure class.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidInput,
		CodeInvalidJSON,
		CodeFilterInvalid,
		CodePageToken,
		CodeCategoryUnknown,
		CodePasswordTooShort,
		CodeRoleInvalid,
		CodeProviderNameRequired,
		CodeBookingInvalidTransition,
		CodeChangeRequestField,
		CodeChangeRequestType,
		CodeEventInvalidRange,
		CodeImageUnsupported,
		CodeImageTooLarge,
		CodeImageLimit,
		CodeRequestTooBig:
		return KindInvalidInput
	case CodeUnauthenticated,
		CodeTokenInvalid,
		CodeTokenExpired,
		CodeInvalidCredentials:
		return KindUnauthorized
	case CodeForbidden,
		CodeAdminRequired,
		CodeBusinessRequired,
		CodeNotOwner,
		CodeSelfDelete,
		CodeBookingDisabled:
		return KindForbidden
	case CodeNotFound,
		CodeProfileNotFound,
		CodeProviderNotFound,
		CodeBookingNotFound,
		CodeApplicationNotFound,
		CodeChangeRequestNotFound,
		CodePostNotFound,
		CodeEventNotFound,
		CodeIntegrationNotFound,
		CodeImageNotFound:
		return KindNotFound
	case CodeEmailTaken,
		CodeApplicationDecided,
		CodeApplicationDuplicate,
		CodeChangeRequestDecided,
		CodeProviderAlreadyOwned,
		CodeIntegrationExists,
		CodeBookingStatusChanged:
		return KindConflict
	case CodeRateLimited:
		return KindRateLimited
	case CodeUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}

// HTTPStatus maps a failure class to an HTTP status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
