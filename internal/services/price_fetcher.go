package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tropicaldog17/folio/internal/models"
)

// PriceFetcher dispatches a position to the feed of its configured source.
type PriceFetcher struct {
	feeds  map[models.PriceSource]Feed
	logger *zap.Logger
}

// NewPriceFetcher creates a fetcher over the given feeds
func NewPriceFetcher(logger *zap.Logger, feeds ...Feed) *PriceFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &PriceFetcher{feeds: make(map[models.PriceSource]Feed, len(feeds)), logger: logger}
	for _, feed := range feeds {
		f.feeds[feed.Source()] = feed
	}
	return f
}

func (f *PriceFetcher) Fetch(ctx context.Context, p *models.Position) (res models.FetchResult) {
	src, err := models.ParsePriceSource(string(p.PriceSource))
	if err != nil {
		return models.Unavailable(fmt.Sprintf("%s: unsupported source %q", ReasonNoFeed, p.PriceSource), err)
	}
	if src == models.PriceSourceManual {
		return models.Unavailable(ReasonNoFeed, nil)
	}
	feed, ok := f.feeds[src]
	if !ok {
		return models.Unavailable(ReasonNoFeed, nil)
	}

	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("price feed panicked", zap.String("source", string(src)), zap.Any("panic", r))
			res = models.Unavailable(fmt.Sprintf("%s unavailable", src), fmt.Errorf("panic: %v", r))
		}
	}()

	res = feed.Fetch(ctx, p)
	if res.OK {
		f.logger.Debug("price fetched",
			zap.String("symbol", p.FeedSymbol()),
			zap.String("source", string(src)),
			zap.String("price", res.Price.String()),
			zap.String("currency", res.Currency))
	}
	return res
}
