package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TicketType is the two-letter document prefix.
type TicketType string

const (
	TicketReceipt TicketType = "PN"
	TicketIssue   TicketType = "PX"
)

// ParseTicketType normalizes user input into a TicketType. Any prefix other
// than the issue prefix is a receipt-family document, so unknown two-letter
// codes are accepted as-is.
func ParseTicketType(raw string) (TicketType, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case "IMPORT":
		return TicketReceipt, true
	case "EXPORT":
		return TicketIssue, true
	}
	if len(value) != 2 {
		return "", false
	}
	return TicketType(value), true
}

// IsIssue reports whether documents of this type decrease stock.
func (t TicketType) IsIssue() bool {
	return t == TicketIssue
}

// TicketItem is one not-yet-submitted line of a draft.
type TicketItem struct {
	DeviceCode   string          `json:"device_code"`
	DeviceName   string          `json:"device_name" binding:"required"`
	Details      string          `json:"details"`
	Unit         string          `json:"unit"`
	Manufacturer string          `json:"manufacturer"`
	Country      string          `json:"country"`
	ModelSerial  string          `json:"model_serial"`
	Warranty     string          `json:"warranty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes"`
}

// TicketDraft is the in-progress document an operator is composing.
type TicketDraft struct {
	Type    TicketType   `json:"type"`
	Number  string       `json:"number"`
	Date    string       `json:"date"`
	Partner string       `json:"partner"`
	Section string       `json:"section"`
	Items   []TicketItem `json:"items"`
}

// TicketHeader carries the editable header fields of a draft.
type TicketHeader struct {
	Number  *string `json:"number"`
	Date    *string `json:"date"`
	Partner *string `json:"partner"`
	Section *string `json:"section"`
}

// Clone returns a copy that does not share the items slice.
func (d TicketDraft) Clone() TicketDraft {
	d.Items = append([]TicketItem(nil), d.Items...)
	return d
}
