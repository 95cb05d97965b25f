// Package memory keeps exported ledgers in process, for tests and for
// running the ledger worker without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

var _ sheets.LedgerExporter = (*Ledger)(nil)

type Ledger struct {
	mu     sync.Mutex
	prefix string
	tabs   map[string][][]string
	calls  int
}

func New(prefix string) *Ledger {
	return &Ledger{prefix: prefix, tabs: make(map[string][][]string)}
}

func (l *Ledger) ExportLedger(_ context.Context, user core.User, expenses []core.Expense) error {
	if user.ID <= 0 {
		return fmt.Errorf("export ledger: invalid user id %d", user.ID)
	}
	rows := sheets.LedgerRows(expenses)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tabs[sheets.TabName(l.prefix, user.ID)] = rows
	l.calls++
	return nil
}

// Tab returns a copy of the rows last exported under name.
func (l *Ledger) Tab(name string) ([][]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows, ok := l.tabs[name]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, true
}

// Exports reports how many exports have been performed.
func (l *Ledger) Exports() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
