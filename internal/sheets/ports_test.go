package sheets

import (
	"testing"

	"expensetracker/internal/core"
)

func TestLedgerRows(t *testing.T) {
	rows := LedgerRows([]core.Expense{
		{ID: 1, Date: core.NewDate(2024, 1, 10), Category: core.Food, Amount: core.Money{Cents: 100000}, Description: "rice"},
		{ID: 4, Date: core.NewDate(2024, 2, 1), Category: core.Bills, Amount: core.Money{Cents: 200050}},
	})

	if len(rows) != 4 {
		t.Fatalf("expected header, 2 rows and total, got %d rows", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][4] != "Description" {
		t.Errorf("unexpected header %v", rows[0])
	}
	want := []string{"1", "2024-01-10", "Food", "1000.00", "rice"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row 1 col %d = %q, want %q", i, rows[1][i], v)
		}
	}
	if rows[3][2] != "Total" || rows[3][3] != "3000.50" {
		t.Errorf("unexpected total row %v", rows[3])
	}
}

func TestLedgerRowsEmpty(t *testing.T) {
	rows := LedgerRows(nil)
	if len(rows) != 2 || rows[1][3] != "0.00" {
		t.Fatalf("unexpected rows for empty ledger: %v", rows)
	}
}
