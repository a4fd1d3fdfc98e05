package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coinbaseStatement = `portfolio,type,time,amount,balance,unit,transfer id,trade id,order id
default,deposit,2021-01-04T10:00:00.000Z,1000,1000,USD,tid-1,,
default,match,2021-01-05T10:00:00.000Z,-500,500,USD,,1,order-1
default,match,2021-01-05T10:00:00.000Z,0.01,0.01,BTC,,1,order-1
default,fee,2021-01-05T10:00:00.000Z,-5,495,USD,,1,order-1
default,match,2021-02-01T10:00:00.000Z,-100,395,USD,,2,order-2
default,match,2021-02-01T10:00:00.000Z,-100,295,USD,,3,order-2
default,match,2021-02-01T10:00:00.000Z,0.002,0.012,BTC,,2,order-2
default,match,2021-02-01T10:00:00.000Z,0.002,0.014,BTC,,3,order-2
default,fee,2021-02-01T10:00:00.000Z,-2,293,USD,,2,order-2
default,match,2021-03-01T10:00:00.000Z,-0.01,0.004,BTC,,4,order-3
default,match,2021-03-01T10:00:00.000Z,550,843,USD,,4,order-3
default,withdrawal,2021-03-02T10:00:00.000Z,-800,43,USD,tid-2,,
`

func TestParseCoinbase(t *testing.T) {
	txs, symbols, err := ParseCoinbase(strings.NewReader(coinbaseStatement), "test.csv", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "USD"}, symbols)
	require.Len(t, txs, 5)

	deposit := txs[0]
	assert.Equal(t, Transfer, deposit.Action)
	assert.Equal(t, "USD", deposit.Symbol)
	assert.InDelta(t, 1000.0, deposit.Quantity, tolerance)
	assert.InDelta(t, 1000.0, deposit.Amount, tolerance)

	// the match and fee rows of one order fold into a single buy
	first := txs[1]
	assert.Equal(t, Buy, first.Action)
	assert.Equal(t, "BTC", first.Symbol)
	assert.InDelta(t, 0.01, first.Quantity, tolerance)
	assert.InDelta(t, 50000.0, first.Price, tolerance)
	assert.InDelta(t, -5.0, first.Fee, tolerance)
	assert.InDelta(t, -505.0, first.Amount, tolerance)

	// partial fills accumulate quantity and cash across rows
	second := txs[2]
	assert.Equal(t, Buy, second.Action)
	assert.InDelta(t, 0.004, second.Quantity, tolerance)
	assert.InDelta(t, 50000.0, second.Price, tolerance)
	assert.InDelta(t, -202.0, second.Amount, tolerance)

	sale := txs[3]
	assert.Equal(t, Sell, sale.Action)
	assert.InDelta(t, -0.01, sale.Quantity, tolerance)
	assert.InDelta(t, 55000.0, sale.Price, tolerance)
	assert.InDelta(t, 550.0, sale.Amount, tolerance)

	withdrawal := txs[4]
	assert.Equal(t, Transfer, withdrawal.Action)
	assert.InDelta(t, -800.0, withdrawal.Amount, tolerance)
}

func TestParseCoinbaseInitialPosition(t *testing.T) {
	initial := map[string]InitPosition{
		"ETH": {Date: day(t, "2020-06-01"), Quantity: 2, Amount: -1000},
	}
	txs, _, err := ParseCoinbase(strings.NewReader(coinbaseStatement), "test.csv", 0, initial)
	require.NoError(t, err)
	require.Len(t, txs, 6)
	seed := txs[0]
	assert.Equal(t, "ETH", seed.Symbol)
	assert.Equal(t, Buy, seed.Action)
	assert.InDelta(t, 2.0, seed.Quantity, tolerance)
	assert.InDelta(t, 500.0, seed.Price, tolerance)
}

func TestParseCoinbaseBalanceMismatch(t *testing.T) {
	statement := `portfolio,type,time,amount,balance,unit,transfer id,trade id,order id
default,deposit,2021-01-04T10:00:00.000Z,1000,999,USD,tid-1,,
`
	_, _, err := ParseCoinbase(strings.NewReader(statement), "test.csv", 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balance")
}

func TestParseCoinbaseOpeningCash(t *testing.T) {
	statement := `portfolio,type,time,amount,balance,unit,transfer id,trade id,order id
default,deposit,2021-01-04T10:00:00.000Z,1000,1500,USD,tid-1,,
`
	// the same statement balances once the carried-over cash is supplied
	_, _, err := ParseCoinbase(strings.NewReader(statement), "test.csv", 0, nil)
	require.Error(t, err)
	_, _, err = ParseCoinbase(strings.NewReader(statement), "test.csv", 500, nil)
	require.NoError(t, err)
}

func TestParseCoinbaseUnknownType(t *testing.T) {
	statement := `portfolio,type,time,amount,balance,unit,transfer id,trade id,order id
default,conversion,2021-01-04T10:00:00.000Z,1000,1000,USD,tid-1,,
`
	_, _, err := ParseCoinbase(strings.NewReader(statement), "test.csv", 0, nil)
	assert.Error(t, err)
}

func TestPnLFromStatement(t *testing.T) {
	txs, _, err := ParseCoinbase(strings.NewReader(coinbaseStatement), "test.csv", 0, nil)
	require.NoError(t, err)
	var btc []*Transaction
	for _, tx := range txs {
		if tx.Symbol == "BTC" {
			btc = append(btc, tx)
		}
	}
	res, err := ComputePnL(btc, FIFO, false)
	require.NoError(t, err)
	// the 0.01 sale consumes the first buy whole
	assert.InDelta(t, 550-505, res.Realized, tolerance)
	assert.InDelta(t, 0.004, res.Position, tolerance)
	assert.InDelta(t, -202.0, res.OpenCost, tolerance)
}
