package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/ingest"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Holding is a position found in a statement.
type Holding struct {
	Ticker   string
	Quantity decimal.Decimal
}

// a holding line is a ticker followed by a quantity, e.g. "AAPL  10" or
// "BRK.B 3.5 shares".
var holdingRe = regexp.MustCompile(`^\s*([A-Z]{1,5}(?:\.[A-Z]{1,2})?)[ \t:]+(\d+(?:\.\d+)?)(?:[ \t]*(?:shares?|sh|units?))?[ \t]*$`)

// ParseHoldings returns the holding lines of a statement text, merging the
// repeated tickers.
func ParseHoldings(text string) []Holding {
	var holdings []Holding
	index := make(map[string]int)
	for _, line := range strings.Split(text, "\n") {
		m := holdingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		q, err := decimal.NewFromString(m[2])
		if err != nil || !q.IsPositive() {
			continue
		}
		if i, ok := index[m[1]]; ok {
			holdings[i].Quantity = holdings[i].Quantity.Add(q)
			continue
		}
		index[m[1]] = len(holdings)
		holdings = append(holdings, Holding{Ticker: m[1], Quantity: q})
	}
	return holdings
}

// InvestmentStage values the holdings of a PDF statement and records the
// portfolio total.
type InvestmentStage struct {
	Tools *Toolbox
}

func (s *InvestmentStage) Name() string { return InvestmentName }

func (s *InvestmentStage) Run(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error) {
	ok, err := Accepts(h.File, ingest.PDF)
	if err != nil {
		return finasync.StageReport{}, err
	}
	if !ok {
		return Skip(s.Name(), h.File), nil
	}

	doc, err := s.Tools.read(h.File)
	if err != nil {
		return finasync.StageReport{}, fmt.Errorf("cannot read statement: %w", err)
	}
	holdings := ParseHoldings(doc.Text)
	if len(holdings) == 0 {
		return finasync.StageReport{}, fmt.Errorf("no holdings found in %q", h.File)
	}

	total := finasync.USD(0)
	var lines []string
	priced := 0
	for _, hold := range holdings {
		price, err := s.Tools.Prices.Price(ctx, hold.Ticker)
		if err != nil {
			zlog.Warn().Err(err).Str("ticker", hold.Ticker).Msg("cannot price holding")
			lines = append(lines, fmt.Sprintf("%s: %s shares, price unavailable", hold.Ticker, hold.Quantity))
			continue
		}
		value := finasync.USD(price).Mul(hold.Quantity)
		total = total.Add(value)
		priced++
		lines = append(lines, fmt.Sprintf("%s: %s x %s = %s", hold.Ticker, hold.Quantity, finasync.USD(price), value))
	}
	if priced == 0 {
		return finasync.StageReport{}, fmt.Errorf("cannot price any of the %d holdings", len(holdings))
	}

	summary := finasync.FormatTotal(total) + "\n" + strings.Join(lines, "\n")
	if err := s.Tools.Store.Put(ctx, finasync.Investments, summary); err != nil {
		return finasync.StageReport{}, err
	}
	h.Say(summary)
	return finasync.StageReport{
		Stage:   s.Name(),
		Status:  finasync.StageComplete,
		Message: fmt.Sprintf("%d holdings worth %s", priced, total),
	}, nil
}
