// Package core holds the fee-tracking domain: students, payments,
// fee periods and the derived monthly summary.
//
// This file contains money parsing and formatting. Amounts are kept as
// integer paise; display formatting uses the Indian numbering system.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in paise. Fees entered in whole rupees are stored
// as rupees*100.
type Money struct {
	Paise int64
}

// Rupees creates a Money from a whole-rupee amount.
func Rupees(r int64) Money {
	return Money{Paise: r * 100}
}

// ParseDecimalToPaise converts a decimal rupee string to paise with
// half-up rounding on the third decimal place. Both dot and comma are
// accepted as the decimal separator. Negative and zero amounts are
// rejected.
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	paise := iv*100 + frac
	if paise <= 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}

// String formats the amount as rupees with Indian digit grouping,
// e.g. 150000000 paise -> "₹15,00,000".
func (m Money) String() string {
	paise := m.Paise
	neg := paise < 0
	if neg {
		paise = -paise
	}
	rupees := paise / 100
	rem := paise % 100
	s := groupIndian(strconv.FormatInt(rupees, 10))
	if rem != 0 {
		s += "." + pad2(rem)
	}
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

// groupIndian inserts commas in the Indian system: last three digits,
// then groups of two (1,00,000 = one lakh).
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	var b strings.Builder
	for len(head) > 2 {
		cut := len(head) % 2
		if cut == 0 {
			cut = 2
		}
		b.WriteString(head[:cut])
		b.WriteByte(',')
		head = head[cut:]
	}
	b.WriteString(head)
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
