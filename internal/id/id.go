package id

import (
	"fmt"
	"strconv"
)

// Code returns an account's own code: its identifier in decimal.
func Code(accountID int) string {
	return strconv.Itoa(accountID)
}

// FullCode returns the hierarchical code for an account: its own code for a
// top-level account, otherwise the parent's full code followed by its own.
func FullCode(parentFullCode string, accountID int) string {
	return parentFullCode + Code(accountID)
}

// FormatTransactionID returns a zero-padded transaction ID like "000042".
func FormatTransactionID(seq int) string {
	return fmt.Sprintf("%06d", seq)
}

// FormatLegID returns a leg ID like "000042a" (leg 0='a', 1='b', etc.).
// Legs past 'z' continue with a 'z' prefix: 26='zb', 27='zc'.
func FormatLegID(transactionID, leg int) string {
	base := FormatTransactionID(transactionID)
	for leg >= 26 {
		base += "z"
		leg -= 25
	}
	return base + string(rune('a'+leg))
}

// ParseLegID parses "000042a" into the transaction ID.
func ParseLegID(legID string) (int, error) {
	base := TransactionGroup(legID)
	if base == "" {
		return 0, fmt.Errorf("invalid leg ID format: %q", legID)
	}
	seq, err := strconv.Atoi(base)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction in leg ID %q: %w", legID, err)
	}
	return seq, nil
}

// TransactionGroup strips the leg suffix from a leg ID.
// "000042a" -> "000042"
func TransactionGroup(legID string) string {
	if len(legID) == 0 {
		return ""
	}
	i := len(legID)
	for i > 0 && legID[i-1] >= 'a' && legID[i-1] <= 'z' {
		i--
	}
	return legID[:i]
}
