package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/tropicaldog17/folio/internal/models"
)

// ReasonNoFeed is reported for positions without automated pricing.
const ReasonNoFeed = "no feed"

const maxFeedBody = 4 << 20

// FeedErrorKind classifies why a feed step did not produce a price.
type FeedErrorKind int

const (
	KindTransport FeedErrorKind = iota
	KindTimeout
	KindHTTP
	KindParse
	KindNotFound
	KindPanic
)

// FeedError is the typed failure of one feed step.
type FeedError struct {
	Step       string
	Kind       FeedErrorKind
	StatusCode int
	Err        error
}

// Tag is the short diagnostic used in aggregate reasons, e.g. "http 503".
func (e *FeedError) Tag() string {
	switch e.Kind {
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return fmt.Sprintf("http %d", e.StatusCode)
	case KindParse:
		return "parse error"
	case KindNotFound:
		return "not found"
	case KindPanic:
		return "internal error"
	default:
		return "network error"
	}
}

func (e *FeedError) Error() string {
	msg := e.Step + ": " + e.Tag()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

func parseError(step string, err error) *FeedError {
	return &FeedError{Step: step, Kind: KindParse, Err: err}
}

func notFound(step string, format string, args ...interface{}) *FeedError {
	return &FeedError{Step: step, Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

func transportError(step string, err error) *FeedError {
	kind := KindTransport
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = KindTimeout
	}
	return &FeedError{Step: step, Kind: kind, Err: err}
}

// Quote is a price returned by a feed step. Currency may be empty when the
// upstream does not report one.
type Quote struct {
	Price    decimal.Decimal
	Currency string
}

// Step is one attempt in a provider's fallback chain.
type Step struct {
	Name  string
	Fetch func(ctx context.Context, symbol string) (Quote, error)
}

// Feed prices positions configured with its source.
type Feed interface {
	Source() models.PriceSource
	Fetch(ctx context.Context, p *models.Position) models.FetchResult
}

// runSteps tries each step in order and returns the first price found.
// When every step fails the reason lists each step's tag in order and Err
// combines the typed step errors.
func runSteps(ctx context.Context, provider string, steps []Step, symbol string) models.FetchResult {
	var (
		errs []error
		tags []string
	)
	for _, step := range steps {
		q, err := callStep(ctx, step, symbol)
		if err == nil {
			currency := strings.ToUpper(strings.TrimSpace(q.Currency))
			if currency == "" {
				currency = models.DefaultCurrency
			}
			return models.Fetched(q.Price, currency, provider)
		}
		var fe *FeedError
		if !errors.As(err, &fe) {
			fe = transportError(step.Name, err)
		}
		errs = append(errs, fe)
		tags = append(tags, fe.Step+": "+fe.Tag())
	}
	return models.Unavailable(strings.Join(tags, "; "), multierr.Combine(errs...))
}

// callStep runs a step, turning panics and non-positive prices into errors.
func callStep(ctx context.Context, step Step, symbol string) (q Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FeedError{Step: step.Name, Kind: KindPanic, Err: fmt.Errorf("%v", r)}
		}
	}()
	q, err = step.Fetch(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	if !q.Price.IsPositive() {
		return Quote{}, notFound(step.Name, "non-positive price %s", q.Price)
	}
	return q, nil
}

// feedClient performs outbound GETs with one uniform timeout.
type feedClient struct {
	http    *http.Client
	timeout time.Duration
}

func newFeedClient(httpClient *http.Client, timeout time.Duration) *feedClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &feedClient{http: httpClient, timeout: timeout}
}

func (c *feedClient) get(ctx context.Context, step, url string) ([]byte, *FeedError) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FeedError{Step: step, Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json, text/csv")
	req.Header.Set("User-Agent", "folio/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(step, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FeedError{Step: step, Kind: KindHTTP, StatusCode: resp.StatusCode, Err: fmt.Errorf("GET %s: %s", resp.Request.URL.Path, resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, transportError(step, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}
