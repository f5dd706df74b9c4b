package config

import (
	"github.com/rxtech-lab/argo-grid/internal/feed"
	"github.com/rxtech-lab/argo-grid/internal/gateway"
	"github.com/rxtech-lab/argo-grid/internal/logger"
	"github.com/rxtech-lab/argo-grid/internal/runner"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

// NewVenue builds the execution venue named by the config.
func NewVenue(config *Config, log *logger.Logger) (runner.Venue, error) {
	switch config.Gateway.Type {
	case GatewayTypePaper:
		return gateway.NewPaperGateway(config.Symbol, log), nil
	case GatewayTypeBinanceFutures:
		if config.Gateway.Binance == nil {
			return nil, errors.New(errors.ErrCodeMissingParameter, "gateway.binance is required for the binance-futures gateway")
		}

		venue, err := gateway.NewBinanceFuturesGateway(config.Symbol, *config.Gateway.Binance, log)
		if err != nil {
			return nil, err
		}

		return venue, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedGateway, "unsupported gateway type %q", config.Gateway.Type)
	}
}

// NewFeed builds the quote feed named by the config.
func NewFeed(config *Config) (feed.Feed, error) {
	switch config.Feed.Type {
	case FeedTypeSynthetic:
		synthetic := feed.DefaultSyntheticConfig()
		if config.Feed.Synthetic != nil {
			synthetic = *config.Feed.Synthetic
		}

		quotes, err := feed.NewSyntheticFeed(config.Symbol, synthetic)
		if err != nil {
			return nil, err
		}

		return quotes, nil
	case FeedTypeBinanceFutures:
		return feed.NewBinanceBookTickerFeed(config.Symbol, config.Feed.Testnet), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFeed, "unsupported feed type %q", config.Feed.Type)
	}
}
