package smartrade

// Quoter supplies current prices for valuing open positions. Symbols are in
// compact form, e.g. "AAPL" or "AAPL_220128P140".
type Quoter interface {
	Quote(symbol string) (float64, error)
}

// QuoterFunc adapts a function to the Quoter interface.
type QuoterFunc func(symbol string) (float64, error)

func (f QuoterFunc) Quote(symbol string) (float64, error) { return f(symbol) }
