package model

import (
	"errors"
	"fmt"
)

// Code categorizes a purchase failure. Transports map codes onto their own
// status space; everything else treats them as opaque tags.
type Code string

const (
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeServiceUnavailable  Code = "SERVICE_UNAVAILABLE"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodePinMismatch         Code = "PIN_MISMATCH"
	CodePinLocked           Code = "PIN_LOCKED"
	CodePlanNotFound        Code = "PLAN_NOT_FOUND"
	CodeLimitExceeded       Code = "LIMIT_EXCEEDED"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeVendorFailed        Code = "VENDOR_FULFILLMENT_FAILED"
	CodeCommitFailed        Code = "COMMIT_FAILED"
	CodeConflict            Code = "CONFLICT"
	CodeUnexpected          Code = "UNEXPECTED"
)

// Error carries a stable code plus a user-presentable message. The wrapped
// cause is for logs only and must never reach a client.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func E(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the code from err, or CodeUnexpected for plain errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnexpected
}

// MessageOf returns the user-presentable message for err. Plain errors get
// a generic message so internal detail cannot leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "An unknown error occurred"
}
