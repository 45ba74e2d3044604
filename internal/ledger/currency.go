package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency describes how display amounts map onto the smallest integer units
// the ledger actually stores. Precision 18 covers every chain-denominated
// currency we care about; beyond that the uint64 unit space runs out anyway.
type Currency struct {
	Symbol    string
	Precision int32
}

func NewCurrency(symbol string, precision int32) (Currency, error) {
	if symbol == "" || precision < 0 || precision > 18 {
		return Currency{}, fmt.Errorf("ledger: bad currency meta %q/%d", symbol, precision)
	}
	return Currency{Symbol: symbol, Precision: precision}, nil
}

// Parse converts a display amount ("1.25") into smallest units. Negative
// amounts and amounts with more fractional digits than the currency carries
// are rejected rather than silently rounded.
func (c Currency) Parse(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("ledger: parse %s amount %q: %w", c.Symbol, s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("ledger: negative %s amount %q", c.Symbol, s)
	}
	units := d.Shift(c.Precision)
	if !units.IsInteger() {
		return 0, fmt.Errorf("ledger: %s amount %q exceeds precision %d", c.Symbol, s, c.Precision)
	}
	if !units.BigInt().IsUint64() {
		return 0, fmt.Errorf("ledger: %s amount %q overflows", c.Symbol, s)
	}
	return units.BigInt().Uint64(), nil
}

// Format renders smallest units as a display amount.
func (c Currency) Format(units uint64) string {
	return decimal.NewFromUint64(units).Shift(-c.Precision).String()
}
