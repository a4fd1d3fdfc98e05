package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	at, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return at
}

func buy(t *testing.T, date string, qty, price float64) *Transaction {
	t.Helper()
	return &Transaction{
		Date: day(t, date), Symbol: "BTC", Action: Buy,
		Quantity: qty, Price: price, Amount: -qty * price,
	}
}

func sell(t *testing.T, date string, qty, price float64) *Transaction {
	t.Helper()
	return &Transaction{
		Date: day(t, date), Symbol: "BTC", Action: Sell,
		Quantity: -qty, Price: price, Amount: qty * price,
	}
}

func TestSlice(t *testing.T) {
	lot := buy(t, "2021-01-04", 2, 30000)
	lot.Fee = 10

	assert.True(t, lot.Slice(0.5))
	assert.InDelta(t, 1.5, lot.Quantity, tolerance)
	assert.InDelta(t, 7.5, lot.Fee, tolerance)
	assert.InDelta(t, -45000, lot.Amount, tolerance)

	assert.False(t, lot.Slice(1.5))
	assert.InDelta(t, 0, lot.Quantity, tolerance)
	assert.InDelta(t, 0, lot.Amount, tolerance)
}

func TestComputePnLMethods(t *testing.T) {
	// the three methods pick different lots for the same sale
	history := []*Transaction{
		buy(t, "2021-01-04", 1, 10000),
		buy(t, "2021-02-01", 1, 20000),
		sell(t, "2021-03-01", 1, 30000),
	}
	testCases := []struct {
		method   Method
		realized float64
		openCost float64
	}{
		{FIFO, 30000 - 10000, -20000},
		{LIFO, 30000 - 20000, -10000},
		{HIFO, 30000 - 20000, -10000},
	}
	for _, tc := range testCases {
		t.Run(tc.method.String(), func(t *testing.T) {
			res, err := ComputePnL(history, tc.method, false)
			require.NoError(t, err)
			assert.InDelta(t, tc.realized, res.Realized, tolerance)
			assert.InDelta(t, tc.openCost, res.OpenCost, tolerance)
			assert.InDelta(t, 1.0, res.Position, tolerance)
			assert.InDelta(t, 30000.0, res.Proceeds, tolerance)
			// realized = proceeds + cost consumed
			assert.InDelta(t, res.Realized, res.Proceeds+res.CostBasis, tolerance)
		})
	}
}

func TestComputePnLPartialLots(t *testing.T) {
	history := []*Transaction{
		buy(t, "2021-01-04", 2, 10000),
		sell(t, "2021-02-01", 0.5, 40000),
		sell(t, "2021-03-01", 1.7, 40000), // exceeds the 1.5 still held
	}
	_, err := ComputePnL(history, FIFO, false)
	assert.Error(t, err)

	history[2] = sell(t, "2021-03-01", 1.5, 40000)
	res, err := ComputePnL(history, FIFO, false)
	require.NoError(t, err)
	assert.InDelta(t, 80000-20000, res.Realized, tolerance)
	assert.InDelta(t, 0, res.Position, tolerance)
	assert.InDelta(t, 0, res.OpenCost, tolerance)
}

func TestComputePnLSaleSpansLots(t *testing.T) {
	history := []*Transaction{
		buy(t, "2021-01-04", 1, 10000),
		buy(t, "2021-02-01", 1, 20000),
		sell(t, "2021-03-01", 1.5, 30000),
	}
	res, err := ComputePnL(history, FIFO, false)
	require.NoError(t, err)
	// sells all of lot one and half of lot two
	assert.InDelta(t, 45000-10000-10000, res.Realized, tolerance)
	assert.InDelta(t, 0.5, res.Position, tolerance)
	assert.InDelta(t, -10000, res.OpenCost, tolerance)
}

func TestComputePnLTransfers(t *testing.T) {
	history := []*Transaction{
		{Date: day(t, "2021-01-04"), Symbol: "BTC", Action: Transfer, Quantity: 1},
		sell(t, "2021-02-01", 1, 30000),
	}
	_, err := ComputePnL(history, FIFO, false)
	assert.Error(t, err, "sale against a skipped transfer has no lots")

	res, err := ComputePnL(history, FIFO, true)
	require.NoError(t, err)
	// transferred-in coin is a zero cost lot
	assert.InDelta(t, 30000.0, res.Realized, tolerance)
	assert.InDelta(t, 0, res.Position, tolerance)
}

func TestComputePnLNonSaleDisposal(t *testing.T) {
	history := []*Transaction{
		buy(t, "2021-01-04", 1, 10000),
		{Date: day(t, "2021-02-01"), Symbol: "BTC", Action: Transfer, Quantity: -1},
	}
	_, err := ComputePnL(history, FIFO, true)
	assert.Error(t, err)
}

func TestPnLFromLast(t *testing.T) {
	history := []*Transaction{
		buy(t, "2021-01-04", 1, 10000),
		buy(t, "2021-02-01", 1, 20000),
		sell(t, "2021-03-01", 1, 30000),
	}
	res := PnLFromLast(history, false)
	// the open coin is priced at the newest buy
	assert.InDelta(t, 1.0, res.Position, tolerance)
	assert.InDelta(t, -20000, res.OpenCost, tolerance)
	assert.InDelta(t, 30000-10000-20000+20000, res.Realized, tolerance)
	assert.InDelta(t, 30000.0, res.Proceeds, tolerance)
}

func TestPnLFromLastClosed(t *testing.T) {
	history := []*Transaction{
		buy(t, "2021-01-04", 1, 10000),
		sell(t, "2021-02-01", 1, 30000),
	}
	res := PnLFromLast(history, false)
	assert.InDelta(t, 20000.0, res.Realized, tolerance)
	assert.InDelta(t, 0, res.Position, tolerance)
	assert.InDelta(t, -10000, res.CostBasis, tolerance)
}
