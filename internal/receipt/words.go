package receipt

import (
	"strings"

	"feesbook/internal/core"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords spells out an amount in the Indian numbering system,
// e.g. ₹1,50,000 -> "Rupees One Lakh Fifty Thousand Only".
func AmountInWords(m core.Money) string {
	paise := m.Paise
	if paise < 0 {
		paise = -paise
	}
	rupees := paise / 100
	rem := paise % 100

	var b strings.Builder
	b.WriteString("Rupees ")
	b.WriteString(numberInWords(rupees))
	if rem > 0 {
		b.WriteString(" and ")
		b.WriteString(numberInWords(rem))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

// numberInWords spells a non-negative integer using crore, lakh,
// thousand and hundred groupings.
func numberInWords(n int64) string {
	if n == 0 {
		return "Zero"
	}

	var parts []string
	if crore := n / 1_00_00_000; crore > 0 {
		parts = append(parts, numberInWords(crore), "Crore")
		n %= 1_00_00_000
	}
	if lakh := n / 1_00_000; lakh > 0 {
		parts = append(parts, upToNinetyNine(lakh), "Lakh")
		n %= 1_00_000
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, upToNinetyNine(thousand), "Thousand")
		n %= 1000
	}
	if hundred := n / 100; hundred > 0 {
		parts = append(parts, onesWords[hundred], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, upToNinetyNine(n))
	}
	return strings.Join(parts, " ")
}

func upToNinetyNine(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}
