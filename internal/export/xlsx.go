// Package export writes the ledger to spreadsheet files.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
)

const (
	TransactionsSheet = "Transactions"
	SummarySheet      = "Summary"
)

var transactionHeader = []interface{}{
	"ID", "Date", "Type", "Title", "Amount", "Category", "Mode", "Account", "Source", "Status",
}

const amountFormat = "#,##0.00"

// Ledger lists transactions matching f and writes them as XLSX to w. It returns the
// number of exported rows.
func Ledger(ctx context.Context, repo *repository.TransactionRepo, f repository.TransactionFilters, loc *time.Location, w io.Writer) (int, error) {
	txs, err := repo.List(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	if err := WriteXLSX(w, txs, loc); err != nil {
		return 0, err
	}
	return len(txs), nil
}

// WriteXLSX writes txs to a workbook with a transactions sheet and a per-category
// summary sheet. Dates are rendered in loc.
func WriteXLSX(w io.Writer, txs []repository.Transaction, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	numFmt := amountFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(TransactionsSheet, "A1", &transactionHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(TransactionsSheet, "A1", "J1", header); err != nil {
		return err
	}
	for i, t := range txs {
		status := "approved"
		if t.PendingApproval {
			status = "pending"
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			t.ID,
			t.Date.In(loc).Format("2006-01-02 15:04"),
			string(t.Type),
			t.Title,
			t.Amount.InexactFloat64(),
			string(t.Category),
			string(t.Mode),
			t.Account,
			string(t.Source),
			status,
		}
		if err := f.SetSheetRow(TransactionsSheet, cell, &row); err != nil {
			return err
		}
	}
	if len(txs) > 0 {
		last := fmt.Sprintf("E%d", len(txs)+1)
		if err := f.SetCellStyle(TransactionsSheet, "E2", last, money); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(TransactionsSheet, "B", "B", 18)
	_ = f.SetColWidth(TransactionsSheet, "D", "D", 28)

	if err := writeSummary(f, txs, header, money); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

type categoryKey struct {
	t domain.TransactionType
	c domain.Category
}

// writeSummary adds approved totals per type and category, largest first.
func writeSummary(f *excelize.File, txs []repository.Transaction, header, money int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	totals := make(map[categoryKey]decimal.Decimal)
	for _, t := range txs {
		if t.PendingApproval {
			continue
		}
		k := categoryKey{t.Type, t.Category}
		totals[k] = totals[k].Add(t.Amount)
	}
	keys := make([]categoryKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].t != keys[j].t {
			return keys[i].t < keys[j].t
		}
		if c := totals[keys[i]].Cmp(totals[keys[j]]); c != 0 {
			return c > 0
		}
		return keys[i].c < keys[j].c
	})

	if err := f.SetSheetRow(SummarySheet, "A1", &[]interface{}{"Type", "Category", "Total"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "C1", header); err != nil {
		return err
	}
	for i, k := range keys {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &[]interface{}{string(k.t), string(k.c), totals[k].InexactFloat64()}); err != nil {
			return err
		}
	}
	if len(keys) > 0 {
		return f.SetCellStyle(SummarySheet, "C2", fmt.Sprintf("C%d", len(keys)+1), money)
	}
	return nil
}
