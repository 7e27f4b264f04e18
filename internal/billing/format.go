// internal/billing/format.go
package billing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyPrefix is printed before every amount
const CurrencyPrefix = "CRC "

var amountPrinter = message.NewPrinter(language.English)

// FormatCRC renders an amount with thousands separators, e.g. "CRC 9,000".
// Fractional amounts keep two decimals.
func FormatCRC(d decimal.Decimal) string {
	return CurrencyPrefix + formatGrouped(d)
}

func formatGrouped(d decimal.Decimal) string {
	s := d.String()
	if !d.IsInteger() {
		s = d.Round(2).StringFixed(2)
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	out := sign + groupDigits(whole)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// groupDigits inserts thousands separators into a run of decimal digits.
// Runs beyond int64 are grouped three at a time.
func groupDigits(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return amountPrinter.Sprintf("%d", n)
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatQuantity renders meter readings and consumption without grouping
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}
