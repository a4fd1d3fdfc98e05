package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hzheng/smartrade"
)

const schwabExport = `"Transactions  for account ...XX1234 as of 02/05/2022 21:30:15 ET"
"Date","Action","Symbol","Description","Quantity","Price","Fees & Comm","Amount"
"01/24/2022","Sell to Open","AAPL 02/04/2022 170.00 P","SOLD -1 AAPL 100 4 FEB 22 170 PUT @8.54","1","$8.54","$0.60","$853.40"
"01/28/2022 as of 01/27/2022","Buy to Open","AAPL 02/04/2022 135.00 P","BOT +1 AAPL 100 4 FEB 22 135 PUT @5.47","1","$5.47","$0.65","-$547.65"
"01/31/2022","Bank Interest","","BANK INT 123456 SCHWAB BANK","","","","$0.07"
"02/04/2022","Expired","AAPL 02/04/2022 170.00 P","EXPIRED 1 AAPL 100 4 FEB 22 170 PUT","1","","",""
"02/04/2022","Misc Credits","","UNKNOWN ADJUSTMENT","","","","$1.00"
"02/01/2022","Sell to Open","AAPL 02/04/2022 165.00 P","SOLD -1 AAPL 100 4 FEB 22 165 PUT @4.00","1","$4.00","$0.60","$400.00"
"Transactions Total","","","","","","","$706.82"
`

func TestLoad(t *testing.T) {
	res, err := Load(strings.NewReader(schwabExport), "test.csv", "XXXX1234")
	require.NoError(t, err)

	// banner, header and footer rows are not transactions
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.Valid, 4)
	require.Len(t, res.Invalid, 2)

	sto := res.Valid[0]
	assert.Equal(t, "1234", sto.Account)
	assert.Equal(t, smartrade.STO, sto.Action)
	assert.Equal(t, "AAPL_220204P170", sto.Symbol.Compact())
	assert.Equal(t, "2022-01-24", sto.Date.Format("2006-01-02"))
	assert.InDelta(t, 1.0, sto.Quantity, 1e-9)
	assert.InDelta(t, 8.54, sto.Price, 1e-9)
	assert.InDelta(t, 0.60, sto.Fee, 1e-9)
	assert.InDelta(t, 853.40, sto.Amount, 1e-9)
	assert.Equal(t, "SOLD -1 AAPL 100 4 FEB 22 170 PUT @8.54", sto.Description)

	// settlement markers use the leading trade date
	bto := res.Valid[1]
	assert.Equal(t, smartrade.BTO, bto.Action)
	assert.Equal(t, "2022-01-28", bto.Date.Format("2006-01-02"))
	assert.InDelta(t, -547.65, bto.Amount, 1e-9)

	interest := res.Valid[2]
	assert.Equal(t, smartrade.Interest, interest.Action)
	assert.InDelta(t, 0.07, interest.Amount, 1e-9)

	expired := res.Valid[3]
	assert.Equal(t, smartrade.Expired, expired.Action)
	assert.InDelta(t, 0, expired.Amount, 1e-9)

	// an unknown action and a failed amount cross-check are kept as invalid
	assert.Equal(t, smartrade.ActionInvalid, res.Invalid[0].Action)
	badAmount := res.Invalid[1]
	assert.Equal(t, smartrade.STO, badAmount.Action)
	assert.InDelta(t, 400.00, badAmount.Amount, 1e-9)
}

func TestParseMoney(t *testing.T) {
	testCases := []struct {
		text string
		want float64
	}{
		{"$853.40", 853.40},
		{"-$546.60", -546.60},
		{"$1,234.56", 1234.56},
		{"", 0},
		{"N/A", 0},
	}
	for _, tc := range testCases {
		got, err := parseMoney(tc.text)
		require.NoError(t, err, tc.text)
		assert.InDelta(t, tc.want, got, 1e-9, tc.text)
	}
}

func TestParseNumber(t *testing.T) {
	got, err := parseNumber("1,000")
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, got, 1e-9)

	got, err = parseNumber("")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)

	_, err = parseNumber("abc")
	assert.Error(t, err)
}
