package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestConstructors() {
	cause := errors.New("disk full")

	testCases := []struct {
		name    string
		err     *Error
		code    ErrorCode
		message string
		cause   error
		text    string
	}{
		{
			name:    "new",
			err:     New(ErrCodeInvalidOrder, "order quantity is zero"),
			code:    ErrCodeInvalidOrder,
			message: "order quantity is zero",
			cause:   nil,
			text:    "[105] order quantity is zero",
		},
		{
			name:    "newf",
			err:     Newf(ErrCodeSecurityNotFound, "security %s is not registered", "QQQ"),
			code:    ErrCodeSecurityNotFound,
			message: "security QQQ is not registered",
			cause:   nil,
			text:    "[950] security QQQ is not registered",
		},
		{
			name:    "wrap",
			err:     Wrap(ErrCodeEventLogFailed, "failed to append order event", cause),
			code:    ErrCodeEventLogFailed,
			message: "failed to append order event",
			cause:   cause,
			text:    "[954] failed to append order event: disk full",
		},
		{
			name:    "wrapf",
			err:     Wrapf(ErrCodeQueryFailed, cause, "failed to read %s", "bars.csv"),
			code:    ErrCodeQueryFailed,
			message: "failed to read bars.csv",
			cause:   cause,
			text:    "[202] failed to read bars.csv: disk full",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.Equal(tc.code, tc.err.Code)
			suite.Equal(tc.message, tc.err.Message)
			suite.Equal(tc.cause, tc.err.Unwrap())
			suite.Equal(tc.text, tc.err.Error())
		})
	}
}

func (suite *ErrorTestSuite) TestCodeLookup() {
	inner := New(ErrCodeDataNotFound, "no bars")
	outer := Wrap(ErrCodeMarginCallUnresolved, "margin call unresolved", inner)

	// the outermost code wins
	suite.Equal(ErrCodeMarginCallUnresolved, GetCode(outer))
	suite.True(HasCode(outer, ErrCodeMarginCallUnresolved))
	suite.False(HasCode(outer, ErrCodeDataNotFound))

	suite.Equal(ErrCodeOrderNotFound, GetCode(fmt.Errorf("cancel: %w", New(ErrCodeOrderNotFound, "order 9"))))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorTestSuite) TestStandardForwarding() {
	cause := errors.New("timeout")
	err := Wrap(ErrCodeBrokerageTimeout, "poll failed", cause)

	suite.True(Is(err, cause))

	var coded *Error
	suite.True(As(fmt.Errorf("live: %w", err), &coded))
	suite.Equal(ErrCodeBrokerageTimeout, coded.Code)
}

func (suite *ErrorTestSuite) TestCodeRanges() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(500), ErrCodeOrderFailed)
	suite.Equal(ErrorCode(900), ErrCodeInvalidOrderTransition)
	suite.Equal(ErrorCode(950), ErrCodeSecurityNotFound)
	suite.Equal(ErrorCode(1000), ErrCodeInsufficientBuyingPower)
	suite.Equal(ErrorCode(1050), ErrCodeBrokerageRequestFailed)
}

func (suite *ErrorTestSuite) TestInsufficientBuyingPowerError() {
	rejection := NewInsufficientBuyingPowerError(7, "1", "0")
	suite.Equal(int64(7), rejection.OrderID)
	suite.Equal("insufficient buying power for order 7: required 1, available 0", rejection.Error())

	suite.True(IsInsufficientBuyingPowerError(rejection))
	suite.True(IsInsufficientBuyingPowerError(Wrap(ErrCodeInsufficientBuyingPower, "order rejected", rejection)))
	suite.False(IsInsufficientBuyingPowerError(errors.New("plain")))
	suite.False(IsInsufficientBuyingPowerError(nil))
}
