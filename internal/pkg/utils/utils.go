package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID generates a UUID v4 string.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateOrderID generates a unique order ID for payments.
func GenerateOrderID() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), RandomHex(4))
}

// RandomHex generates a random hex string of n bytes.
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ParseAmount parses a decimal amount string, tolerating thousands
// separators ("1,000.50" style) that some gateways emit.
func ParseAmount(s string) (float64, error) {
	cleaned := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			continue
		}
		cleaned = append(cleaned, s[i])
	}
	return strconv.ParseFloat(string(cleaned), 64)
}

// FormatAmount renders an amount with thousands separators for display.
func FormatAmount(v float64) string {
	n := int64(v)
	frac := v - float64(n)

	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	str := strconv.FormatInt(n, 10)
	out := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			out += ","
		}
		out += string(c)
	}
	if frac > 0.004 {
		out += strconv.FormatFloat(frac, 'f', 2, 64)[1:]
	}
	return sign + out
}
