package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// NextTicketNumber suggests the next document number for prefix by scanning
// the ledger for the highest numeric suffix already used. It reserves
// nothing: two clients reading the same ledger get the same suggestion.
func NextTicketNumber(prefix string, rows []models.TransactionRow) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))

	highest := 0
	for _, row := range rows {
		if n, ok := ticketSequence(prefix, row.DocNumber); ok && n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%04d", prefix, highest+1)
}

// ticketSequence extracts the numeric part of docNumber when it belongs to
// prefix. "PN-0012" and "PN0012" both yield 12.
func ticketSequence(prefix, docNumber string) (int, bool) {
	doc := strings.ToUpper(strings.TrimSpace(docNumber))
	if prefix == "" || !strings.HasPrefix(doc, prefix) {
		return 0, false
	}

	suffix := strings.TrimLeft(doc[len(prefix):], "-/_ ")
	if suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}
