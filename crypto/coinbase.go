package crypto

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// InitPosition seeds the history with a holding acquired before the first
// export, so cost basis stays right across statements.
type InitPosition struct {
	Date     time.Time
	Quantity float64
	// Amount is the signed USD flow that acquired the holding, negative
	// for a purchase.
	Amount float64
}

// LoadCoinbase parses a Coinbase account statement CSV. Partial fills of
// one order appear as separate match rows sharing an order id; they are
// folded into one transaction with their fee rows. cash is the USD balance
// before the first row; initial seeds coin holdings predating the export.
func LoadCoinbase(path string, cash float64, initial map[string]InitPosition) ([]*Transaction, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %q: %w", path, err)
	}
	defer f.Close()
	return ParseCoinbase(f, path, cash, initial)
}

// coinbase statement columns
const (
	cbPortfolio = iota
	cbType
	cbTime
	cbAmount
	cbBalance
	cbUnit
	cbTransferID
	cbTradeID
	cbOrderID
)

// ParseCoinbase parses a Coinbase statement stream. filename is for error
// messages only.
func ParseCoinbase(r io.Reader, filename string, cash float64, initial map[string]InitPosition) ([]*Transaction, []string, error) {
	var transactions []*Transaction
	symbols := make(map[string]bool)
	for symbol, pos := range initial {
		action := Sell
		if pos.Amount < 0 {
			action = Buy
		}
		transactions = append(transactions, &Transaction{
			Date:     pos.Date,
			Symbol:   symbol,
			Action:   action,
			Quantity: pos.Quantity,
			Price:    math.Abs(pos.Amount / pos.Quantity),
			Amount:   pos.Amount,
		})
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header := true
	total := cash
	var pending []string
	line := 0
	next := func() ([]string, error) {
		if pending != nil {
			row := pending
			pending = nil
			return row, nil
		}
		row, err := reader.Read()
		if err == io.EOF {
			return nil, nil
		}
		line++
		return row, err
	}
	for {
		row, err := next()
		if err != nil {
			return nil, nil, fmt.Errorf("read error %s:%d: %w", filename, line, err)
		}
		if row == nil {
			break
		}
		if header {
			header = false
			continue
		}
		if len(row) <= cbOrderID || strings.HasPrefix(row[cbPortfolio], "#") {
			continue
		}
		amount, err := strconv.ParseFloat(row[cbAmount], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse error %s:%d: bad amount %q: %w", filename, line, row[cbAmount], err)
		}
		at, err := parseCoinbaseTime(row[cbTime])
		if err != nil {
			return nil, nil, fmt.Errorf("parse error %s:%d: %w", filename, line, err)
		}
		unit := row[cbUnit]
		symbols[unit] = true
		if unit == "USD" {
			total += amount
			if err := checkBalance(total, row[cbBalance]); err != nil {
				return nil, nil, fmt.Errorf("parse error %s:%d: %w", filename, line, err)
			}
		}
		switch row[cbType] {
		case "deposit", "withdrawal":
			amt := 0.0
			if unit == "USD" {
				amt = amount
			}
			transactions = append(transactions, &Transaction{
				Date: at, Symbol: unit, Action: Transfer, Quantity: amount, Amount: amt,
			})
			continue
		case "match":
		default:
			return nil, nil, fmt.Errorf("parse error %s:%d: unexpected row type %q", filename, line, row[cbType])
		}

		// fold the rest of this order: more matches and its fee rows
		orderID := row[cbOrderID]
		var quantity, fee float64
		symbol := ""
		if unit != "USD" {
			symbol = unit
			quantity = amount
			amount = 0
		}
		for {
			peek, err := next()
			if err != nil {
				return nil, nil, fmt.Errorf("read error %s:%d: %w", filename, line, err)
			}
			if peek == nil {
				break
			}
			if len(peek) <= cbOrderID || peek[cbOrderID] != orderID {
				pending = peek
				break
			}
			amount2, err := strconv.ParseFloat(peek[cbAmount], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parse error %s:%d: bad amount %q: %w", filename, line, peek[cbAmount], err)
			}
			if peek[cbUnit] == "USD" {
				total += amount2
				if err := checkBalance(total, peek[cbBalance]); err != nil {
					return nil, nil, fmt.Errorf("parse error %s:%d: %w", filename, line, err)
				}
			}
			if peek[cbType] == "fee" {
				fee += amount2
				continue
			}
			if peek[cbType] != "match" {
				return nil, nil, fmt.Errorf("parse error %s:%d: unexpected row type %q in order %s", filename, line, peek[cbType], orderID)
			}
			if peek[cbUnit] == "USD" {
				amount += amount2
			} else {
				if symbol == "" {
					symbol = peek[cbUnit]
					symbols[symbol] = true
				} else if peek[cbUnit] != symbol {
					return nil, nil, fmt.Errorf("parse error %s:%d: mixed units %s and %s in order %s", filename, line, symbol, peek[cbUnit], orderID)
				}
				quantity += amount2
			}
		}
		price := math.Abs(amount / quantity)
		amount += fee
		action := Sell
		if amount < 0 {
			action = Buy
		}
		transactions = append(transactions, &Transaction{
			Date: at, Symbol: symbol, Action: action,
			Quantity: quantity, Price: price, Fee: fee, Amount: amount,
		})
	}
	var list []string
	for s := range symbols {
		list = append(list, s)
	}
	sort.Strings(list)
	return transactions, list, nil
}

func checkBalance(total float64, balance string) error {
	b, err := strconv.ParseFloat(balance, 64)
	if err != nil {
		return fmt.Errorf("bad balance %q: %w", balance, err)
	}
	if math.Abs(total-b) >= tolerance {
		return fmt.Errorf("running balance %v disagrees with statement balance %v", total, b)
	}
	return nil
}

func parseCoinbaseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999Z07", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
