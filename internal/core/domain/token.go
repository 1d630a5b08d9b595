package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func base36Token(n int) string {
	// 252 is the largest multiple of 36 that fits in a byte; bytes at or
	// above it are rejected so every character is equally likely.
	const limit = 252
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		rand.Read(buf)
		for _, b := range buf {
			if len(out) == n {
				break
			}
			if b >= limit {
				continue
			}
			out = append(out, base36Alphabet[b%36])
		}
	}
	return string(out)
}

// NewBillID returns a bill identifier in the format printed on receipts,
// e.g. INV-2026-7KQ3Z. Uniqueness is not checked against the ledger; the
// unique key on (tenant_id, bill_id) catches the astronomically rare clash.
func NewBillID(now time.Time) string {
	return fmt.Sprintf("INV-%04d-%s", now.Year(), base36Token(5))
}

// NewSKU generates a stock keeping code for items created without one.
func NewSKU() string {
	return "SKU-" + base36Token(5)
}
