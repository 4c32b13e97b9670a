package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/ingest"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// column names tried in order.
var (
	amountColumns   = []string{"Amount", "Debit", "Value"}
	categoryColumns = []string{"Category", "Type"}
)

// Uncategorized labels transactions without a category.
const Uncategorized = "Uncategorized"

// Spend is the spending of one category.
type Spend struct {
	Category string
	Amount   decimal.Decimal
}

// Expenses is the analysis of a transaction table.
type Expenses struct {
	Total decimal.Decimal
	// Categories is sorted by decreasing amount.
	Categories []Spend
	// Skipped counts the rows without a readable amount.
	Skipped int
	// Credits counts the incoming amounts left out of a mixed-sign export.
	Credits int
}

// Summary renders the expenses the way the store keeps them, total first.
func (e Expenses) Summary() string {
	lines := []string{finasync.FormatTotal(finasync.USD(e.Total))}
	for _, c := range e.Categories {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Category, finasync.USD(c.Amount)))
	}
	return strings.Join(lines, "\n")
}

func column(t *ingest.Table, names []string) int {
	for _, n := range names {
		if i := t.Column(n); i >= 0 {
			return i
		}
	}
	return -1
}

// AnalyseExpenses sums the spending of t, per category.
//
// When the amounts carry both signs, only the negative ones are outflows and
// the positive ones (salary, refunds) are counted in Credits. Otherwise every
// amount is spending, whatever its sign.
func AnalyseExpenses(t *ingest.Table) (Expenses, error) {
	amount := column(t, amountColumns)
	if amount < 0 {
		return Expenses{}, fmt.Errorf("no %q column in %q", amountColumns[0], t.Header)
	}
	category := column(t, categoryColumns)

	type entry struct {
		category string
		value    decimal.Decimal
	}
	var (
		e              Expenses
		entries        []entry
		hasNeg, hasPos bool
	)
	for _, row := range t.Rows {
		v, err := finasync.ParseAmount(row[amount])
		if err != nil {
			e.Skipped++
			continue
		}
		hasNeg = hasNeg || v.IsNegative()
		hasPos = hasPos || v.IsPositive()
		c := Uncategorized
		if category >= 0 && strings.TrimSpace(row[category]) != "" {
			c = strings.TrimSpace(row[category])
		}
		entries = append(entries, entry{c, v})
	}

	mixed := hasNeg && hasPos
	sums := make(map[string]decimal.Decimal)
	for _, x := range entries {
		if mixed && !x.value.IsNegative() {
			e.Credits++
			continue
		}
		v := x.value.Abs()
		sums[x.category] = sums[x.category].Add(v)
		e.Total = e.Total.Add(v)
	}
	for c, v := range sums {
		e.Categories = append(e.Categories, Spend{Category: c, Amount: v})
	}
	slices.SortFunc(e.Categories, func(a, b Spend) int {
		if r := b.Amount.Cmp(a.Amount); r != 0 {
			return r
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return e, nil
}

// ExpenseStage sums the transactions of a spreadsheet or CSV file and records
// the spending.
type ExpenseStage struct {
	Tools *Toolbox
}

func (s *ExpenseStage) Name() string { return ExpenseName }

func (s *ExpenseStage) Run(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error) {
	ok, err := Accepts(h.File, ingest.Spreadsheet, ingest.CSV)
	if err != nil {
		return finasync.StageReport{}, err
	}
	if !ok {
		return Skip(s.Name(), h.File), nil
	}

	doc, err := s.Tools.read(h.File)
	if err != nil {
		return finasync.StageReport{}, fmt.Errorf("cannot read transactions: %w", err)
	}
	if doc.Table == nil {
		return finasync.StageReport{}, errors.New("no transaction table")
	}
	e, err := AnalyseExpenses(doc.Table)
	if err != nil {
		return finasync.StageReport{}, err
	}
	if e.Skipped > 0 {
		zlog.Warn().Int("rows", e.Skipped).Str("file", h.File).Msg("rows without amount ignored")
	}
	if e.Credits > 0 {
		zlog.Info().Int("rows", e.Credits).Str("file", h.File).Msg("credits left out of expenses")
	}

	summary := e.Summary()
	if err := s.Tools.Store.Put(ctx, finasync.Expenses, summary); err != nil {
		return finasync.StageReport{}, err
	}
	h.Say(summary)
	return finasync.StageReport{
		Stage:   s.Name(),
		Status:  finasync.StageComplete,
		Message: fmt.Sprintf("%d transactions totalling %s", len(doc.Table.Rows)-e.Skipped-e.Credits, finasync.USD(e.Total)),
	}, nil
}
