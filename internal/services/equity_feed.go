package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/folio/internal/models"
)

const (
	StepQuote    = "quote"
	StepHistory  = "history"
	StepDownload = "download"
)

// EquityFeed prices equities and funds from a Yahoo-style quote service.
// It tries a live quote, then the last close of a short daily chart, then a
// one-day CSV download.
type EquityFeed struct {
	baseURL string
	client  *feedClient
	steps   []Step
}

// NewEquityFeed creates an equity feed against baseURL
func NewEquityFeed(baseURL string, httpClient *http.Client, timeout time.Duration) *EquityFeed {
	f := &EquityFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newFeedClient(httpClient, timeout),
	}
	f.steps = []Step{
		{Name: StepQuote, Fetch: f.fetchQuote},
		{Name: StepHistory, Fetch: f.fetchHistory},
		{Name: StepDownload, Fetch: f.fetchDownload},
	}
	return f
}

// NewEquityFeedWithSteps builds a feed from an explicit chain.
func NewEquityFeedWithSteps(steps ...Step) *EquityFeed {
	return &EquityFeed{steps: steps}
}

func (f *EquityFeed) Source() models.PriceSource {
	return models.PriceSourceEquityFeed
}

func (f *EquityFeed) Fetch(ctx context.Context, p *models.Position) models.FetchResult {
	return runSteps(ctx, string(f.Source()), f.steps, p.FeedSymbol())
}

func (f *EquityFeed) fetchQuote(ctx context.Context, symbol string) (Quote, error) {
	addr := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.baseURL, url.QueryEscape(symbol))
	doc, ferr := f.getJSON(ctx, StepQuote, addr)
	if ferr != nil {
		return Quote{}, ferr
	}

	raw, err := jsonpath.Get("$.quoteResponse.result[0].regularMarketPrice", doc)
	if err != nil {
		return Quote{}, notFound(StepQuote, "no quote for %s: %v", symbol, err)
	}
	price, ferr := toDecimal(StepQuote, raw)
	if ferr != nil {
		return Quote{}, ferr
	}
	return Quote{Price: price, Currency: lookupString(doc, "$.quoteResponse.result[0].currency")}, nil
}

func (f *EquityFeed) fetchHistory(ctx context.Context, symbol string) (Quote, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", f.baseURL, url.PathEscape(symbol))
	doc, ferr := f.getJSON(ctx, StepHistory, addr)
	if ferr != nil {
		return Quote{}, ferr
	}

	raw, err := jsonpath.Get("$.chart.result[0].indicators.quote[0].close", doc)
	if err != nil {
		return Quote{}, notFound(StepHistory, "no daily closes for %s: %v", symbol, err)
	}
	closes, ok := raw.([]interface{})
	if !ok {
		return Quote{}, parseError(StepHistory, fmt.Errorf("closes are %T, not a list", raw))
	}
	// last non-null close; days without trading are null
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil {
			continue
		}
		price, ferr := toDecimal(StepHistory, closes[i])
		if ferr != nil {
			return Quote{}, ferr
		}
		return Quote{Price: price, Currency: lookupString(doc, "$.chart.result[0].meta.currency")}, nil
	}
	return Quote{}, notFound(StepHistory, "no close in window for %s", symbol)
}

func (f *EquityFeed) fetchDownload(ctx context.Context, symbol string) (Quote, error) {
	addr := fmt.Sprintf("%s/v7/finance/download/%s?range=1d&interval=1d", f.baseURL, url.PathEscape(symbol))
	body, ferr := f.client.get(ctx, StepDownload, addr)
	if ferr != nil {
		return Quote{}, ferr
	}
	price, ferr := lastCSVClose(body)
	if ferr != nil {
		return Quote{}, ferr
	}
	return Quote{Price: price}, nil
}

func (f *EquityFeed) getJSON(ctx context.Context, step, addr string) (interface{}, *FeedError) {
	body, ferr := f.client.get(ctx, step, addr)
	if ferr != nil {
		return nil, ferr
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, parseError(step, err)
	}
	return doc, nil
}

// lastCSVClose reads "Date,Open,High,Low,Close,..." rows and returns the last
// parseable Close.
func lastCSVClose(body []byte) (decimal.Decimal, *FeedError) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return decimal.Zero, parseError(StepDownload, fmt.Errorf("read header: %w", err))
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "Close") {
			col = i
			break
		}
	}
	if col < 0 {
		return decimal.Zero, parseError(StepDownload, fmt.Errorf("no Close column in %v", header))
	}

	var (
		last  decimal.Decimal
		found bool
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return decimal.Zero, parseError(StepDownload, err)
		}
		if col >= len(rec) {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimSpace(rec[col]))
		if err != nil {
			// "null" rows
			continue
		}
		last, found = v, true
	}
	if !found {
		return decimal.Zero, notFound(StepDownload, "no close rows")
	}
	return last, nil
}

func toDecimal(step string, v interface{}) (decimal.Decimal, *FeedError) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, parseError(step, err)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, parseError(step, err)
		}
		return d, nil
	case nil:
		return decimal.Zero, notFound(step, "price is null")
	default:
		return decimal.Zero, parseError(step, fmt.Errorf("price is %T, not a number", v))
	}
}

// lookupString returns the string at path or "" when absent.
func lookupString(doc interface{}, path string) string {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
