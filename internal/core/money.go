// Package core provides the expense domain and money parsing utilities.
//
// Amounts are whole Rupiah stored as int64; there is no fractional unit.
package core

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseAmount parses a strictly positive whole amount such as "15000".
//
// Signs, separators and trailing garbage are rejected:
//
//	ParseAmount("15000")  -> 15000, nil
//	ParseAmount("15.000") -> 0, ErrInvalidAmount
//	ParseAmount("-5")     -> 0, ErrInvalidAmount
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseEntry splits "15000 Makan siang" into the leading amount and the trimmed description.
func ParseEntry(text string) (int64, string, error) {
	text = strings.TrimSpace(text)
	token, rest, _ := strings.Cut(text, " ")
	amount, err := ParseAmount(token)
	if err != nil {
		return 0, "", err
	}
	desc := strings.TrimSpace(rest)
	if !ValidDescription(desc) {
		return 0, "", ErrShortDescription
	}
	return amount, desc, nil
}

// FormatRupiah renders an amount the way id-ID locales do, e.g. Rp15.000.
func FormatRupiah(amount int64) string {
	if amount < 0 {
		return "-Rp" + strings.ReplaceAll(humanize.Comma(-amount), ",", ".")
	}
	return "Rp" + strings.ReplaceAll(humanize.Comma(amount), ",", ".")
}
