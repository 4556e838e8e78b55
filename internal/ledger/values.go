// Package ledger turns raw spreadsheet ledger rows into per-device balances.
// Everything here is pure: no I/O, no shared state.
package ledger

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a loosely formatted number. When both '.' and ',' occur
// the last one is the decimal mark. A lone separator followed by exactly three
// digits is a thousands group, matching sheets that group with '.'. Anything
// unreadable is zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	switch s[0] {
	case '-':
		negative, s = true, s[1:]
	case '+':
		s = s[1:]
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		s = resolveSeparator(s, ".")
	case lastComma >= 0:
		s = resolveSeparator(s, ",")
	}

	if !isNumeric(s) {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		value = value.Neg()
	}
	return value
}

// resolveSeparator decides whether the only separator kind present groups
// thousands or marks decimals, and returns a plain "123.45" style string.
func resolveSeparator(s, sep string) string {
	parts := strings.Split(s, sep)
	if len(parts) > 2 {
		return strings.Join(parts, "")
	}

	integer, fraction := parts[0], parts[1]
	if len(fraction) == 3 && strings.TrimLeft(integer, "0") != "" {
		return integer + fraction
	}
	if integer == "" {
		integer = "0"
	}
	return integer + "." + fraction
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}
	return dots <= 1 && s != "."
}

// FormatAmount renders d the way the warehouse sheets show numbers: '.'
// between thousands, ',' before decimals. A three-digit fraction gets a
// trailing zero so ParseAmount can never read it back as a thousands group.
func FormatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	integer, fraction, _ := strings.Cut(d.String(), ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if fraction != "" {
		if len(fraction) == 3 {
			fraction += "0"
		}
		b.WriteByte(',')
		b.WriteString(fraction)
	}
	return b.String()
}
