// Package errors defines the coded errors returned by the fill engine.
//
// Codes are grouped by range:
//   - 1-99: unknown and general errors
//   - 100-199: validation of parameters, configuration and orders
//   - 200-299: missing data and failed queries
//   - 500-599: order submission and market data
//   - 900-949: order state transitions and fill models
//   - 950-999: securities, the cash book and the event log
//   - 1000-1049: buying power and margin calls
//   - 1050-1099: pairing live executions and polling the brokerage
//
// A rejected order is typically reported as
//
//	errors.Newf(errors.ErrCodeSecurityNotFound, "security %s is not registered", symbol)
//
// and checked with errors.HasCode(err, errors.ErrCodeSecurityNotFound).
package errors

import (
	"errors"
	"fmt"
)

// Error carries a code next to the message so callers can branch on the kind of failure.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return Wrap(code, message, nil)
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches a code and message to cause. A nil cause gives a plain coded error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is and As forward to the standard library so callers need a single errors import.
func Is(err, target error) bool     { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }

// GetCode returns the code of the first *Error in the chain, or ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var coded *Error
	if !errors.As(err, &coded) {
		return ErrCodeUnknown
	}

	return coded.Code
}

func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientBuyingPowerError describes an order rejected by the buying power model.
type InsufficientBuyingPowerError struct {
	OrderID   int64
	Required  string
	Available string
}

func NewInsufficientBuyingPowerError(orderID int64, required, available string) *InsufficientBuyingPowerError {
	return &InsufficientBuyingPowerError{OrderID: orderID, Required: required, Available: available}
}

func (e *InsufficientBuyingPowerError) Error() string {
	return fmt.Sprintf("insufficient buying power for order %d: required %s, available %s", e.OrderID, e.Required, e.Available)
}

// IsInsufficientBuyingPowerError reports whether the chain holds a buying power rejection.
func IsInsufficientBuyingPowerError(err error) bool {
	var rejection *InsufficientBuyingPowerError

	return errors.As(err, &rejection)
}
