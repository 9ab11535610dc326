package core

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// Receipt numbers are date-derived so they sort at a glance:
// "RCP" + YYMMDD + a three-digit random suffix. The suffix alone does
// not guarantee uniqueness; the store's unique index on receipt_no is
// the final arbiter and callers retry with a fresh suffix on collision.

var receiptNoPattern = regexp.MustCompile(`^RCP\d{6}\d{3}$`)

// NewReceiptNo generates a receipt number for the given instant.
func NewReceiptNo(now time.Time, rnd *rand.Rand) string {
	return fmt.Sprintf("RCP%02d%02d%02d%03d",
		now.Year()%100, int(now.Month()), now.Day(), rnd.Intn(1000))
}

// ValidReceiptNo reports whether s has the generated receipt format.
func ValidReceiptNo(s string) bool {
	return receiptNoPattern.MatchString(s)
}
