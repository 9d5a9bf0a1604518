package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/folio/internal/models"
)

// ReasonCryptoUnavailable is the single failure reason of the crypto feed.
const ReasonCryptoUnavailable = "crypto feed unavailable"

// CryptoFeed prices coins with one CoinGecko-style simple/price lookup.
type CryptoFeed struct {
	baseURL string
	client  *feedClient
}

// NewCryptoFeed creates a crypto feed against baseURL, e.g. https://api.coingecko.com/api/v3
func NewCryptoFeed(baseURL string, httpClient *http.Client, timeout time.Duration) *CryptoFeed {
	return &CryptoFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newFeedClient(httpClient, timeout),
	}
}

func (f *CryptoFeed) Source() models.PriceSource {
	return models.PriceSourceCryptoFeed
}

func (f *CryptoFeed) Fetch(ctx context.Context, p *models.Position) models.FetchResult {
	coinID := CoinID(p.FeedSymbol())
	vs := strings.ToLower(strings.TrimSpace(p.Currency))
	if vs == "" {
		vs = strings.ToLower(models.DefaultCurrency)
	}

	price, err := f.latest(ctx, coinID, vs)
	if err != nil {
		return models.Unavailable(ReasonCryptoUnavailable, err)
	}
	return models.Fetched(price, strings.ToUpper(vs), string(f.Source()))
}

func (f *CryptoFeed) latest(ctx context.Context, coinID, vs string) (decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, url.QueryEscape(coinID), url.QueryEscape(vs))
	body, ferr := f.client.get(ctx, "simple-price", addr)
	if ferr != nil {
		return decimal.Zero, ferr
	}

	var payload map[string]map[string]float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, parseError("simple-price", err)
	}
	m, ok := payload[coinID]
	if !ok {
		return decimal.Zero, notFound("simple-price", "id %s not found in response", coinID)
	}
	v, ok := m[vs]
	if !ok {
		return decimal.Zero, notFound("simple-price", "currency %s not found in response", vs)
	}
	if v <= 0 {
		return decimal.Zero, notFound("simple-price", "non-positive price for %s", coinID)
	}
	return decimal.NewFromFloat(v), nil
}

// common tickers users type instead of CoinGecko ids
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"DAI":   "dai",
	"PAXG":  "pax-gold",
	"SOL":   "solana",
	"ADA":   "cardano",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"ATOM":  "cosmos",
	"NEAR":  "near",
	"ALGO":  "algorand",
	"BNB":   "binancecoin",
	"UNI":   "uniswap",
	"LINK":  "chainlink",
	"AAVE":  "aave",
	"XRP":   "ripple",
	"LTC":   "litecoin",
	"DOGE":  "dogecoin",
	"SHIB":  "shiba-inu",
	"ARB":   "arbitrum",
	"OP":    "optimism",
}

// CoinID maps a ticker like "BTC" to its CoinGecko id; anything else is taken
// to already be an id and is lower-cased.
func CoinID(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if id, ok := coinIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}
