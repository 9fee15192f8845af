package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SignalBridge/models"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndQueryLegs(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	tp := 1960.5
	created := time.Date(2024, time.March, 11, 9, 30, 0, 0, time.UTC)

	legs := []models.OrderRecord{
		{
			CorrelationID: "sig-1", ClientOrderID: "c-1", LegIndex: 0, Symbol: "XAUUSD",
			Direction: models.Long, Kind: models.OrderLimit, Volume: 0.1, EntryPrice: 1950.5, StopLoss: 1949,
			TakeProfit: &tp, Expiry: models.ExpiryWeek, Comment: "vth HOT", Profile: "default", Mode: "risk",
			Status: models.LegPlaced, Ticket: 7, CreatedAt: created,
		},
		{
			CorrelationID: "sig-1", ClientOrderID: "c-2", LegIndex: 1, Symbol: "XAUUSD",
			Direction: models.Long, Kind: models.OrderLimit, Volume: 0.1, EntryPrice: 1949.5, StopLoss: 1949,
			Expiry: models.ExpiryWeek, Profile: "default", Mode: "risk",
			Status: models.LegFailed, Reason: "order rejected (10016): Invalid stops", CreatedAt: created,
		},
		{
			CorrelationID: "sig-2", ClientOrderID: "c-3", Symbol: "EURUSD", Direction: models.Short,
			Kind: models.OrderLimit, Volume: 1, EntryPrice: 1.1, StopLoss: 1.11, Expiry: models.ExpiryDay,
			Profile: "default", Mode: "fixed", Status: models.LegPlaced,
		},
	}
	for i := range legs {
		require.NoError(t, db.RecordLeg(ctx, &legs[i]))
		assert.NotZero(t, legs[i].ID)
	}

	got, err := db.OrdersByCorrelation(ctx, "sig-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "c-1", got[0].ClientOrderID)
	assert.Equal(t, models.Long, got[0].Direction)
	require.NotNil(t, got[0].TakeProfit)
	assert.Equal(t, 1960.5, *got[0].TakeProfit)
	assert.Equal(t, int64(7), got[0].Ticket)
	assert.True(t, created.Equal(got[0].CreatedAt))

	assert.Nil(t, got[1].TakeProfit)
	assert.Equal(t, models.LegFailed, got[1].Status)
	assert.Contains(t, got[1].Reason, "Invalid stops")

	recent, err := db.RecentOrders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c-3", recent[0].ClientOrderID)
	assert.False(t, recent[0].CreatedAt.IsZero())
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind("SELECT a FROM t WHERE b = ? AND c = ?"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "WHERE b = ?", lite.rebind("WHERE b = ?"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.Error(t, err)
}

func TestConnectionParamsDSN(t *testing.T) {
	p := ConnectionParams{Host: "db", Port: "5432", User: "bot", Password: "pw", DBName: "journal", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=bot password=pw dbname=journal sslmode=disable", p.DSN())
}
