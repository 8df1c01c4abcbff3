package billing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCHF renders an amount the Swiss way: CHF 1'234.50.
func FormatCHF(amount float64) string {
	return "CHF " + FormatAmount(amount)
}

// FormatAmount rounds to centimes and groups thousands with an apostrophe.
func FormatAmount(amount float64) string {
	cents := int64(math.Round(amount * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, groupThousands(cents/100), cents%100)
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('\'')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
