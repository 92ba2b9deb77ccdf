package securities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ExchangeHoursTestSuite struct {
	suite.Suite
	equity *ExchangeHours
	forex  *ExchangeHours
	ny     *time.Location
}

func TestExchangeHoursSuite(t *testing.T) {
	suite.Run(t, new(ExchangeHoursTestSuite))
}

func (suite *ExchangeHoursTestSuite) SetupTest() {
	var err error

	suite.ny, err = time.LoadLocation("America/New_York")
	suite.Require().NoError(err)

	// 2024-07-04 is a Thursday
	suite.equity, err = NewUSEquityHours(time.Date(2024, 7, 4, 0, 0, 0, 0, suite.ny))
	suite.Require().NoError(err)

	suite.forex, err = NewForexHours()
	suite.Require().NoError(err)
}

func (suite *ExchangeHoursTestSuite) at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, suite.ny)
}

func (suite *ExchangeHoursTestSuite) TestIsOpen() {
	tests := []struct {
		name     string
		time     time.Time
		extended bool
		expected bool
	}{
		{"regular hours", suite.at(2024, 7, 2, 10, 0), false, true},
		{"at open", suite.at(2024, 7, 2, 9, 30), false, true},
		{"at close", suite.at(2024, 7, 2, 16, 0), false, false},
		{"pre market without extended", suite.at(2024, 7, 2, 8, 0), false, false},
		{"pre market with extended", suite.at(2024, 7, 2, 8, 0), true, true},
		{"post market with extended", suite.at(2024, 7, 2, 19, 59), true, true},
		{"overnight with extended", suite.at(2024, 7, 2, 21, 0), true, false},
		{"saturday", suite.at(2024, 7, 6, 10, 0), false, false},
		{"holiday", suite.at(2024, 7, 4, 10, 0), false, false},
		{"utc input is converted", time.Date(2024, 7, 2, 14, 0, 0, 0, time.UTC), false, true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, suite.equity.IsOpen(tc.time, tc.extended))
		})
	}
}

func (suite *ExchangeHoursTestSuite) TestIsOpenDuringBar() {
	// daily bar spanning midnight to midnight
	suite.True(suite.equity.IsOpenDuringBar(suite.at(2024, 7, 2, 0, 0), suite.at(2024, 7, 3, 0, 0), false))
	// minute bar before the open
	suite.False(suite.equity.IsOpenDuringBar(suite.at(2024, 7, 2, 9, 0), suite.at(2024, 7, 2, 9, 1), false))
	suite.True(suite.equity.IsOpenDuringBar(suite.at(2024, 7, 2, 9, 0), suite.at(2024, 7, 2, 9, 1), true))
	// a bar ending exactly at the open does not overlap it
	suite.False(suite.equity.IsOpenDuringBar(suite.at(2024, 7, 2, 9, 29), suite.at(2024, 7, 2, 9, 30), false))
}

func (suite *ExchangeHoursTestSuite) TestIsDateOpen() {
	suite.True(suite.equity.IsDateOpen(suite.at(2024, 7, 2, 0, 0)))
	suite.False(suite.equity.IsDateOpen(suite.at(2024, 7, 4, 0, 0)))
	suite.False(suite.equity.IsDateOpen(suite.at(2024, 7, 7, 0, 0)))
}

func (suite *ExchangeHoursTestSuite) TestGetNextMarketClose() {
	tests := []struct {
		name     string
		from     time.Time
		extended bool
		expected time.Time
	}{
		{"during session", suite.at(2024, 7, 2, 10, 0), false, suite.at(2024, 7, 2, 16, 0)},
		{"at close moves to next day", suite.at(2024, 7, 2, 16, 0), false, suite.at(2024, 7, 3, 16, 0)},
		{"before open", suite.at(2024, 7, 2, 8, 0), false, suite.at(2024, 7, 2, 16, 0)},
		{"extended hours close", suite.at(2024, 7, 2, 10, 0), true, suite.at(2024, 7, 2, 20, 0)},
		{"skips holiday", suite.at(2024, 7, 3, 17, 0), false, suite.at(2024, 7, 5, 16, 0)},
		{"skips weekend", suite.at(2024, 7, 5, 17, 0), false, suite.at(2024, 7, 8, 16, 0)},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			marketClose, err := suite.equity.GetNextMarketClose(tc.from, tc.extended)
			suite.NoError(err)
			suite.True(tc.expected.Equal(marketClose), "expected %s got %s", tc.expected, marketClose)
		})
	}
}

func (suite *ExchangeHoursTestSuite) TestForexWeekClosesOnFriday() {
	marketClose, err := suite.forex.GetNextMarketClose(suite.at(2024, 7, 2, 10, 0), false)
	suite.NoError(err)
	suite.True(suite.at(2024, 7, 5, 17, 0).Equal(marketClose))

	suite.True(suite.forex.IsOpen(suite.at(2024, 7, 7, 18, 0), false))
	suite.False(suite.forex.IsOpen(suite.at(2024, 7, 7, 16, 0), false))
	suite.False(suite.forex.IsOpen(suite.at(2024, 7, 6, 12, 0), false))
}

func (suite *ExchangeHoursTestSuite) TestGetNextMarketOpen() {
	open, err := suite.equity.GetNextMarketOpen(suite.at(2024, 7, 2, 10, 0), false)
	suite.NoError(err)
	suite.True(suite.at(2024, 7, 3, 9, 30).Equal(open))

	open, err = suite.equity.GetNextMarketOpen(suite.at(2024, 7, 2, 10, 0), true)
	suite.NoError(err)
	suite.True(suite.at(2024, 7, 3, 4, 0).Equal(open))
}

func (suite *ExchangeHoursTestSuite) TestAddTradingDays() {
	suite.True(suite.at(2024, 7, 3, 0, 0).Equal(suite.equity.AddTradingDays(suite.at(2024, 7, 2, 15, 0), 1)))
	// skips the holiday and the weekend
	suite.True(suite.at(2024, 7, 8, 0, 0).Equal(suite.equity.AddTradingDays(suite.at(2024, 7, 3, 15, 0), 2)))
	suite.True(suite.at(2024, 7, 2, 0, 0).Equal(suite.equity.AddTradingDays(suite.at(2024, 7, 2, 15, 0), 0)))
}

func (suite *ExchangeHoursTestSuite) TestAlwaysOpen() {
	hours := NewAlwaysOpenHours(nil)
	suite.True(hours.IsOpen(time.Date(2024, 7, 6, 3, 0, 0, 0, time.UTC), false))
	suite.True(hours.IsDateOpen(time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC)))
}
