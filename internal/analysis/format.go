package analysis

import (
	"fmt"
	"strings"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
)

// FormatAmount renders an amount with thousands separators and two
// decimals, e.g. 12345.6 -> "12,345.60".
func FormatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, fracPart, _ := strings.Cut(s, ".")
	return groupThousands(intPart) + "." + fracPart
}

// FormatWhole renders an amount rounded to whole units with thousands
// separators.
func FormatWhole(v float64) string {
	return groupThousands(fmt.Sprintf("%.0f", v))
}

func groupThousands(intPart string) string {
	var b strings.Builder
	if strings.HasPrefix(intPart, "-") {
		b.WriteByte('-')
		intPart = intPart[1:]
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// CategoryTitle turns "credit_card_payment" into "Credit Card Payment".
func CategoryTitle(c transaction.Category) string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
