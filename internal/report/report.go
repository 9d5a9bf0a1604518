// Package report renders positions, valuations and fetch results as markdown
// tables for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/folio/internal/models"
)

const missing = "-"

// Money formats amount in currency, e.g. "€1,234.50". Codes go-money does not
// know are printed as "1234.50 XYZ".
func Money(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}

// Percent formats a fraction as a percentage, 0.2 -> "20.00%".
func Percent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// Render turns markdown into styled terminal output. On renderer errors the
// markdown is returned unchanged.
func Render(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

type table struct {
	b strings.Builder
}

func newTable(headers ...string) *table {
	t := &table{}
	t.row(headers...)
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	t.row(seps...)
	return t
}

func (t *table) row(cells ...string) {
	for i, c := range cells {
		cells[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	t.b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func (t *table) String() string { return t.b.String() }

// Positions lists stored positions.
func Positions(positions []*models.Position) string {
	if len(positions) == 0 {
		return "_No positions yet._\n"
	}
	t := newTable("ID", "Name", "Ticker", "Type", "Platform", "Quantity", "Avg cost", "Source", "Feed symbol")
	for _, p := range positions {
		t.row(
			fmt.Sprint(p.ID),
			p.Name,
			orMissing(p.Ticker),
			orMissing(string(p.Type)),
			orMissing(p.Platform),
			p.Quantity.String(),
			Money(p.AvgCost, p.Currency),
			string(p.PriceSource),
			p.FeedSymbol(),
		)
	}
	return "## Positions\n\n" + t.String()
}

// Overview renders the valuation table followed by the totals.
func Overview(ov *models.Overview, currency string) string {
	if len(ov.Rows) == 0 {
		return "_No positions yet._\n"
	}
	t := newTable("Name", "Ticker", "Quantity", "Avg cost", "Price", "As of", "Market value", "Gain", "Gain %")
	for _, v := range ov.Rows {
		price, asOf := missing, missing
		if v.Price != nil {
			price = Money(*v.Price, v.PriceCurrency)
		}
		if v.AsOf != nil {
			asOf = v.AsOf.Format("2006-01-02")
		}
		t.row(
			v.Name,
			orMissing(v.Ticker),
			v.Quantity.String(),
			Money(v.AvgCost, v.Currency),
			price,
			asOf,
			Money(v.MarketValue, v.Currency),
			Money(v.Gain, v.Currency),
			Percent(v.GainPercent),
		)
	}

	s := ov.Summary
	var b strings.Builder
	b.WriteString("## Overview\n\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	fmt.Fprintf(&b, "**Market value:** %s  \n", Money(s.MarketValue, currency))
	fmt.Fprintf(&b, "**Cost basis:** %s  \n", Money(s.CostBasis, currency))
	fmt.Fprintf(&b, "**Gain:** %s  \n", Money(s.Gain, currency))
	fmt.Fprintf(&b, "**Priced:** %d of %d positions\n", s.Priced, s.Positions)
	return b.String()
}

// FetchReport renders one row per position of a price update.
func FetchReport(r *models.PriceUpdateReport) string {
	t := newTable("ID", "Name", "Price", "Status")
	for _, row := range r.Rows {
		price := missing
		if row.Price != nil {
			price = Money(*row.Price, row.Currency)
		}
		t.row(fmt.Sprint(row.PositionID), row.Name, price, row.Status)
	}
	return fmt.Sprintf("## Price update `%s`\n\n%s\n%d updated, %d without price\n", r.RunID, t.String(), r.Updated, r.Failed)
}

// History renders the snapshots of one symbol, oldest first.
func History(symbol string, snaps []*models.PriceSnapshot) string {
	if len(snaps) == 0 {
		return fmt.Sprintf("_No prices stored for %s._\n", symbol)
	}
	t := newTable("As of", "Price", "Source")
	for _, s := range snaps {
		t.row(s.AsOf.Format("2006-01-02"), Money(s.Price, s.Currency), orMissing(s.Source))
	}
	return fmt.Sprintf("## %s\n\n%s", symbol, t.String())
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missing
	}
	return s
}
