// Package loader parses brokerage export files into transactions.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hzheng/smartrade"
	"github.com/hzheng/smartrade/date"
)

// Result is the outcome of loading one export file.
type Result struct {
	// Valid transactions passed the amount cross-check.
	Valid []*smartrade.Transaction
	// Invalid transactions parsed but failed validation; they are kept so
	// the gap in the history stays visible.
	Invalid []*smartrade.Transaction
	// Skipped counts rows that were not transactions at all, e.g. headers
	// and footers.
	Skipped int
}

// LoadFile parses a Schwab transaction export CSV.
func LoadFile(path, account string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f, path, account)
}

// Load parses a Schwab CSV stream. filename is for error messages only.
// Rows are: date, action, symbol, description, quantity, price, fee,
// amount, extra.
func Load(r io.Reader, filename, account string) (*Result, error) {
	account = smartrade.AccountSuffix(account)
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	res := &Result{}
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read error %s:%d: %w", filename, line+1, err)
		}
		line++
		if len(row) < 8 {
			res.Skipped++
			continue
		}
		tx, err := parseRow(row, account)
		if err != nil {
			log.Printf("skipping %s:%d: %v", filename, line, err)
			res.Skipped++
			continue
		}
		if tx.Validity == smartrade.Valid {
			res.Valid = append(res.Valid, tx)
		} else {
			res.Invalid = append(res.Invalid, tx)
		}
	}
	return res, nil
}

func parseRow(row []string, account string) (*smartrade.Transaction, error) {
	action := smartrade.ParseAction(row[1])
	// Dates like "01/28/2022 as of 01/27/2022" use the leading trade date.
	day, err := date.ParseBroker(row[0])
	if err != nil {
		return nil, err
	}
	var symbol smartrade.Symbol
	if s := strings.TrimSpace(row[2]); s != "" {
		if symbol, err = smartrade.ParseSymbol(s); err != nil {
			return nil, err
		}
	}
	quantity, err := parseNumber(row[4])
	if err != nil {
		return nil, fmt.Errorf("bad quantity %q: %w", row[4], err)
	}
	price, err := parseMoney(row[5])
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", row[5], err)
	}
	fee, err := parseMoney(row[6])
	if err != nil {
		return nil, fmt.Errorf("bad fee %q: %w", row[6], err)
	}
	amount, err := parseMoney(row[7])
	if err != nil {
		return nil, fmt.Errorf("bad amount %q: %w", row[7], err)
	}
	tx := smartrade.NewTransaction(account, day.Time(), action, symbol, quantity, price, fee, amount)
	tx.Description = strings.TrimSpace(row[3])
	return tx, nil
}

// parseMoney reads dollar figures like "$853.40" and "-$546.60". Fields
// without a leading $ or - (blanks, markers) count as zero.
func parseMoney(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" || (text[0] != '$' && text[0] != '-') {
		return 0, nil
	}
	neg := false
	if text[0] == '-' {
		neg = true
		text = text[1:]
	}
	text = strings.TrimPrefix(text, "$")
	d, err := decimal.NewFromString(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if neg {
		f = -f
	}
	return f, nil
}

func parseNumber(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
