package venue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/SignalBridge/models"
)

func TestFridayClose(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	friday := time.Date(2024, time.March, 15, 17, 0, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"monday", time.Date(2024, time.March, 11, 9, 30, 0, 0, loc), friday},
		{"friday morning", time.Date(2024, time.March, 15, 8, 0, 0, 0, loc), friday},
		{"friday close", time.Date(2024, time.March, 15, 17, 0, 0, 0, loc), friday.AddDate(0, 0, 7)},
		{"saturday", time.Date(2024, time.March, 16, 12, 0, 0, 0, loc), friday.AddDate(0, 0, 7)},
		{"month end", time.Date(2024, time.February, 28, 12, 0, 0, 0, loc), time.Date(2024, time.March, 1, 17, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(FridayClose(tt.now)), "got %s", FridayClose(tt.now))
		})
	}
}

func TestExpiration(t *testing.T) {
	now := time.Date(2024, time.March, 11, 9, 30, 0, 0, time.UTC)

	tif, exp := Expiration(models.ExpiryDay, now)
	assert.Equal(t, TimeDay, tif)
	assert.Zero(t, exp)

	tif, exp = Expiration(models.ExpiryWeek, now)
	assert.Equal(t, TimeSpecified, tif)
	assert.Equal(t, time.Date(2024, time.March, 15, 17, 0, 0, 0, time.UTC).Unix(), exp)

	tif, exp = Expiration(models.ExpiryAlien, now)
	assert.Equal(t, TimeGTC, tif)
	assert.Zero(t, exp)
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 1.08513, RoundPrice(1.085126, 5))
	assert.Equal(t, 149.12, RoundPrice(149.1199, 2))
	assert.Equal(t, 39001.0, RoundPrice(39000.6, 0))
}
