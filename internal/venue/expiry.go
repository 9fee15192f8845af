package venue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/SignalBridge/models"
)

// TimeInForce is how the terminal keeps a pending order alive
type TimeInForce string

const (
	TimeDay       TimeInForce = "day"
	TimeSpecified TimeInForce = "specified"
	TimeGTC       TimeInForce = "gtc"
)

// WeekCloseHour is the local hour the trading week ends on Friday
const WeekCloseHour = 17

// FridayClose returns the coming Friday at WeekCloseHour in now's location.
// From Friday WeekCloseHour onwards it is the following week's Friday.
func FridayClose(now time.Time) time.Time {
	days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	if days == 0 && now.Hour() >= WeekCloseHour {
		days = 7
	}
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), WeekCloseHour, 0, 0, 0, now.Location())
}

// Expiration maps a policy to a time in force and a unix expiration.
// The expiration is zero unless the time in force is TimeSpecified.
func Expiration(policy models.ExpiryPolicy, now time.Time) (TimeInForce, int64) {
	switch policy {
	case models.ExpiryDay:
		return TimeDay, 0
	case models.ExpiryWeek:
		return TimeSpecified, FridayClose(now).Unix()
	}
	return TimeGTC, 0
}

// RoundPrice rounds v to the instrument's price digits
func RoundPrice(v float64, digits int32) float64 {
	return decimal.NewFromFloat(v).Round(digits).InexactFloat64()
}
