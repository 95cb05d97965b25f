package sheets

import (
	"context"
	"strconv"

	"expensetracker/internal/core"
)

// LedgerExporter mirrors a user's complete ledger to an external sheet.
// Each call replaces what was previously exported for that user.
type LedgerExporter interface {
	ExportLedger(ctx context.Context, user core.User, expenses []core.Expense) error
}

// LedgerHeader is the first row of every exported ledger.
var LedgerHeader = []string{"ID", "Date", "Category", "Amount", "Description"}

// LedgerRows renders expenses as sheet rows, header first and a trailing
// total row.
func LedgerRows(expenses []core.Expense) [][]string {
	rows := make([][]string, 0, len(expenses)+2)
	rows = append(rows, append([]string(nil), LedgerHeader...))
	var total core.Money
	for _, e := range expenses {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Date.String(),
			string(e.Category),
			e.Amount.String(),
			e.Description,
		})
		total = total.Add(e.Amount)
	}
	rows = append(rows, []string{"", "", "Total", total.String(), ""})
	return rows
}

// TabName is the sheet tab holding a user's ledger, e.g. "Ledger 7".
func TabName(prefix string, userID int64) string {
	if prefix == "" {
		prefix = "Ledger"
	}
	return prefix + " " + strconv.FormatInt(userID, 10)
}
