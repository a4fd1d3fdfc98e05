package smartrade

import (
	"fmt"
	"strings"
)

// Action is the normalized kind of a brokerage transaction.
type Action int

const (
	ActionInvalid Action = iota
	// Trading actions. BTO/STO open positions, STC/BTC close them.
	BTO
	STC
	STO
	BTC
	Expired
	Assigned
	Exercise
	Split
	SplitFrom
	SplitTo
	// Cash movements.
	Transfer
	Interest
	Dividend
	Journal
)

var actionNames = map[Action]string{
	BTO:       "BTO",
	STC:       "STC",
	STO:       "STO",
	BTC:       "BTC",
	Expired:   "EXPIRED",
	Assigned:  "ASSIGNED",
	Exercise:  "EXERCISE",
	Split:     "SPLIT",
	SplitFrom: "SPLIT_FROM",
	SplitTo:   "SPLIT_TO",
	Transfer:  "TRANSFER",
	Interest:  "INTEREST",
	Dividend:  "DIVIDEND",
	Journal:   "JOURNAL",
}

// actionSynonyms maps every broker spelling to its Action. Keys are
// upper-cased; lookup is case-insensitive.
var actionSynonyms = map[string]Action{
	"BUY":                  BTO,
	"BUY TO OPEN":          BTO,
	"SELL":                 STC,
	"SELL TO CLOSE":        STC,
	"SELL TO OPEN":         STO,
	"BUY TO CLOSE":         BTC,
	"EXPIRED":              Expired,
	"ASSIGNED":             Assigned,
	"EXCHANGE OR EXERCISE": Exercise,
	"STOCK SPLIT":          Split,
	"MONEYLINK TRANSFER":   Transfer,
	"WIRE FUNDS":           Transfer,
	"BANK INTEREST":        Interest,
	"CREDIT INTEREST":      Interest,
	"CASH DIVIDEND":        Dividend,
	"QUALIFIED DIVIDEND":   Dividend,
	"PR YR CASH DIV":       Dividend,
	"JOURNAL":              Journal,
	"JOURNALED SHARES":     Journal,
}

func init() {
	for a, name := range actionNames {
		actionSynonyms[name] = a
	}
}

// ParseAction maps a raw broker action string to its Action.
// Unknown strings yield ActionInvalid without an error: such rows are kept
// but marked invalid, so a feed with one exotic row still loads.
func ParseAction(s string) Action {
	if a, ok := actionSynonyms[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return a
	}
	return ActionInvalid
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "INVALID"
}

// IsOpen reports whether the action opens a position. A stock split opens
// the post-split share count as a fresh position.
func (a Action) IsOpen() bool { return a == BTO || a == STO || a == Split }

// IsClose reports whether the action closes a position.
func (a Action) IsClose() bool {
	switch a {
	case STC, BTC, Expired, Assigned, Exercise, SplitFrom:
		return true
	}
	return false
}

// IsTrading reports whether the action trades an instrument, as opposed to
// moving cash or adjusting shares.
func (a Action) IsTrading() bool { return a.IsOpen() || a.IsClose() }

// CashSign is the sign of the cash flow: +1 when selling brings cash in,
// -1 when buying pays cash out.
func (a Action) CashSign() float64 {
	switch a {
	case STC, STO:
		return 1
	}
	return -1
}

// Priced reports whether the action carries a meaningful price, so that
// quantity, price, fee and amount can be cross-checked.
func (a Action) Priced() bool {
	switch a {
	case BTO, STC, STO, BTC, Expired:
		return true
	}
	return false
}

// MarshalText persists the action by name.
func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText restores an action from its persisted name.
func (a *Action) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	if s == "" || s == "INVALID" {
		*a = ActionInvalid
		return nil
	}
	act := ParseAction(s)
	if act == ActionInvalid {
		return fmt.Errorf("unknown action %q", s)
	}
	*a = act
	return nil
}
