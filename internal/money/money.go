// Package money converts between the decimal amounts typed by players
// and the integer cents the ledgers are kept in. All arithmetic inside
// the ledgers is int64; decimals exist only at the parsing edge.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Parse converts a decimal amount string ("12.34", "12,34", "$50") to
// cents, rounding half away from zero at the second decimal place.
func Parse(input string) (int64, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, models.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidAmount, input)
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

// ParsePositive is Parse restricted to strictly positive amounts, the
// common case for deposits, withdrawals and transfers.
func ParsePositive(input string) (int64, error) {
	cents, err := Parse(input)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, models.ErrInvalidAmount
	}
	return cents, nil
}

// Format renders cents as a dollar string, e.g. 12345 -> "$123.45".
func Format(cents int64) string {
	return "$" + decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}
