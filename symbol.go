package smartrade

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hzheng/smartrade/date"
)

// InstrumentType distinguishes the kinds of instruments a transaction can carry.
type InstrumentType int

const (
	Stock InstrumentType = iota
	Call
	Put
	// OptionAuto is a wildcard option type. Assignment and exercise records in
	// some broker feeds omit the call/put marker; such symbols compare equal
	// to either side.
	OptionAuto
)

func (t InstrumentType) String() string {
	switch t {
	case Stock:
		return "STOCK"
	case Call:
		return "CALL"
	case Put:
		return "PUT"
	case OptionAuto:
		return "AUTO"
	default:
		return fmt.Sprintf("InstrumentType(%d)", int(t))
	}
}

// ParseInstrumentType parses the persisted form produced by String.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STOCK", "":
		return Stock, nil
	case "CALL", "C":
		return Call, nil
	case "PUT", "P":
		return Put, nil
	case "AUTO":
		return OptionAuto, nil
	default:
		return Stock, fmt.Errorf("unknown instrument type %q", s)
	}
}

// Symbol is the canonical identity of a tradable instrument: an underlying
// ticker plus, for options, type, strike and expiration.
//
// Three textual encodings are understood and round-trip through it:
//
//	AAPL 01/28/2022 140.00 P    (broker export form, String)
//	AAPL_220128P140             (compact form, Compact)
//	AAPL  220128P00140000       (21-character OCC form, OCC)
type Symbol struct {
	Underlying string
	Type       InstrumentType
	Strike     float64
	Expiration date.Date
}

var (
	compactRe = regexp.MustCompile(`^([A-Z][A-Z0-9.]*)_(\d{6})([CP])(\d+(?:\.\d+)?)$`)
	tickerRe  = regexp.MustCompile(`^[A-Z][A-Z0-9.]*$`)
)

// StockSymbol returns the Symbol of a plain stock ticker.
func StockSymbol(ticker string) Symbol {
	return Symbol{Underlying: ticker, Type: Stock}
}

// OptionSymbol builds an option Symbol from its parts.
func OptionSymbol(ticker string, typ InstrumentType, strike float64, expiration date.Date) Symbol {
	return Symbol{Underlying: ticker, Type: typ, Strike: strike, Expiration: expiration}
}

// ParseSymbol parses any of the three supported encodings.
func ParseSymbol(text string) (Symbol, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Symbol{}, fmt.Errorf("empty symbol")
	}
	if len(text) == 21 && isOCC(text) {
		return parseOCC(text)
	}
	fields := strings.Fields(text)
	switch len(fields) {
	case 1:
		if strings.ContainsRune(fields[0], '_') {
			return parseCompact(fields[0])
		}
		if !tickerRe.MatchString(fields[0]) {
			return Symbol{}, fmt.Errorf("unrecognized symbol %q", text)
		}
		return StockSymbol(fields[0]), nil
	case 3:
		// Assignment/exercise feeds omit the option type: wildcard.
		sym, err := parseSpaced(fields[0], fields[1], fields[2], "")
		return sym, err
	case 4:
		return parseSpaced(fields[0], fields[1], fields[2], fields[3])
	default:
		return Symbol{}, fmt.Errorf("unrecognized symbol %q", text)
	}
}

func isOCC(s string) bool {
	// TTTTTTYYMMDD{C|P}SSSSSSSS with the ticker space-padded to 6.
	for i := 6; i < 12; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	if s[12] != 'C' && s[12] != 'P' {
		return false
	}
	for i := 13; i < 21; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseOCC(s string) (Symbol, error) {
	expired, err := parseCompactDate(s[6:12])
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid OCC symbol %q: %w", s, err)
	}
	milli, err := strconv.ParseInt(s[13:21], 10, 64)
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid OCC symbol %q: %w", s, err)
	}
	typ := Call
	if s[12] == 'P' {
		typ = Put
	}
	return Symbol{
		Underlying: strings.TrimRight(s[:6], " "),
		Type:       typ,
		Strike:     float64(milli) / 1000,
		Expiration: expired,
	}, nil
}

func parseCompact(s string) (Symbol, error) {
	m := compactRe.FindStringSubmatch(s)
	if m == nil {
		return Symbol{}, fmt.Errorf("unrecognized symbol %q", s)
	}
	expired, err := parseCompactDate(m[2])
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid symbol %q: %w", s, err)
	}
	strike, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid symbol %q: %w", s, err)
	}
	typ := Call
	if m[3] == "P" {
		typ = Put
	}
	return Symbol{Underlying: m[1], Type: typ, Strike: strike, Expiration: expired}, nil
}

func parseSpaced(ticker, expired, strike, cp string) (Symbol, error) {
	day, err := date.ParseBroker(expired)
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid symbol expiration %q: %w", expired, err)
	}
	k, err := strconv.ParseFloat(strike, 64)
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid symbol strike %q: %w", strike, err)
	}
	var typ InstrumentType
	switch cp {
	case "C":
		typ = Call
	case "P":
		typ = Put
	case "":
		typ = OptionAuto
	default:
		return Symbol{}, fmt.Errorf("invalid option type %q", cp)
	}
	return Symbol{Underlying: ticker, Type: typ, Strike: k, Expiration: day}, nil
}

func parseCompactDate(yymmdd string) (date.Date, error) {
	if len(yymmdd) != 6 {
		return date.Date{}, fmt.Errorf("invalid expiration %q", yymmdd)
	}
	y, err1 := strconv.Atoi(yymmdd[0:2])
	m, err2 := strconv.Atoi(yymmdd[2:4])
	d, err3 := strconv.Atoi(yymmdd[4:6])
	if err1 != nil || err2 != nil || err3 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return date.Date{}, fmt.Errorf("invalid expiration %q", yymmdd)
	}
	return date.New(2000+y, time.Month(m), d), nil
}

// IsOption reports whether the symbol denotes an option contract.
func (s Symbol) IsOption() bool { return s.Type != Stock }

// Multiplier is the contract multiplier: 100 for options, 1 for stock.
func (s Symbol) Multiplier() float64 {
	if s.IsOption() {
		return 100
	}
	return 1
}

// Matches reports fuzzy equality: underlying, strike and expiration must
// agree, and the types must be equal or either side the OptionAuto wildcard.
func (s Symbol) Matches(o Symbol) bool {
	if s.Underlying != o.Underlying {
		return false
	}
	if s.Type == Stock || o.Type == Stock {
		return s.Type == o.Type
	}
	if s.Expiration != o.Expiration || !almostEqual(s.Strike, o.Strike) {
		return false
	}
	return s.Type == o.Type || s.Type == OptionAuto || o.Type == OptionAuto
}

// String formats the symbol in the broker export form.
func (s Symbol) String() string {
	if !s.IsOption() {
		return s.Underlying
	}
	str := fmt.Sprintf("%s %s %.2f", s.Underlying, s.Expiration.Format(date.BrokerFormat), s.Strike)
	switch s.Type {
	case Call:
		str += " C"
	case Put:
		str += " P"
	}
	return str
}

// Compact formats the symbol in the compact underscore form, the canonical
// string used as position key. Strike trailing zeros are stripped.
func (s Symbol) Compact() string {
	if !s.IsOption() {
		return s.Underlying
	}
	return fmt.Sprintf("%s_%s%s%s",
		s.Underlying, s.Expiration.Format("060102"), s.cp(), trimFloat(s.Strike))
}

// OCC formats the symbol in the 21-character OCC form.
func (s Symbol) OCC() string {
	if !s.IsOption() {
		return s.Underlying
	}
	return fmt.Sprintf("%-6s%s%s%08d",
		s.Underlying, s.Expiration.Format("060102"), s.cp(), int64(s.Strike*1000+0.5))
}

func (s Symbol) cp() string {
	if s.Type == Put {
		return "P"
	}
	return "C"
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
