package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders an amount with two decimals and comma thousands separators,
// prefixed by the currency code: "EUR 1,234.50".
func Format(amount decimal.Decimal, code string) string {
	negative := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	result := addThousandsSeparator(intPart, ",") + frac
	if code != "" {
		result = code + " " + result
	}
	if negative {
		result = "-" + result
	}
	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
