package feed

import (
	"context"
	"iter"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

const tickBufferSize = 256

// BookTickerEvent is a best bid/ask update.
type BookTickerEvent struct {
	Symbol       string
	BestBidPrice string
	BestAskPrice string
	// Time is the event time in milliseconds.
	Time int64
}

// BookTickerHandler handles book ticker events.
type BookTickerHandler func(event *BookTickerEvent)

// ErrorHandler handles websocket errors.
type ErrorHandler func(err error)

// BookTickerService abstracts the book ticker websocket for testing.
type BookTickerService interface {
	WsBookTickerServe(symbol string, handler BookTickerHandler, errHandler ErrorHandler) (doneC, stopC chan struct{}, err error)
}

// realBookTickerService serves the USDⓈ-M futures book ticker stream.
type realBookTickerService struct{}

func (realBookTickerService) WsBookTickerServe(symbol string, handler BookTickerHandler, errHandler ErrorHandler) (chan struct{}, chan struct{}, error) {
	return futures.WsBookTickerServe(symbol, func(event *futures.WsBookTickerEvent) {
		handler(&BookTickerEvent{
			Symbol:       event.Symbol,
			BestBidPrice: event.BestBidPrice,
			BestAskPrice: event.BestAskPrice,
			Time:         event.Time,
		})
	}, futures.ErrHandler(errHandler))
}

// BinanceBookTickerFeed streams futures best bid/ask quotes.
type BinanceBookTickerFeed struct {
	symbol string
	ws     BookTickerService
}

// NewBinanceBookTickerFeed creates a feed backed by the live futures websocket.
func NewBinanceBookTickerFeed(symbol string, testnet bool) *BinanceBookTickerFeed {
	if testnet {
		futures.UseTestnet = true
	}

	return NewBinanceBookTickerFeedWithService(symbol, realBookTickerService{})
}

// NewBinanceBookTickerFeedWithService creates a feed with a custom websocket service.
func NewBinanceBookTickerFeedWithService(symbol string, ws BookTickerService) *BinanceBookTickerFeed {
	return &BinanceBookTickerFeed{
		symbol: symbol,
		ws:     ws,
	}
}

// Stream yields quotes as they arrive. When the consumer falls behind, the
// oldest buffered quotes are dropped so the latest quote is always kept.
func (f *BinanceBookTickerFeed) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		ticks := make(chan types.Tick, tickBufferSize)
		errC := make(chan error, 1)

		handler := func(event *BookTickerEvent) {
			tick, err := convertBookTickerEvent(event)
			if err != nil {
				select {
				case errC <- err:
				default:
				}

				return
			}

			for {
				select {
				case ticks <- tick:
					return
				default:
				}

				select {
				case <-ticks:
				default:
				}
			}
		}

		errHandler := func(err error) {
			select {
			case errC <- errors.Wrap(errors.ErrCodeFeedDisconnected, "websocket error", err):
			default:
			}
		}

		doneC, stopC, err := f.ws.WsBookTickerServe(f.symbol, handler, errHandler)
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeFeedStartFailed, "failed to start websocket", err))

			return
		}

		defer close(stopC)

		for {
			select {
			case <-ctx.Done():
				return
			case tick := <-ticks:
				if !yield(tick, nil) {
					return
				}
			case err := <-errC:
				if !yield(types.Tick{}, err) {
					return
				}
			case <-doneC:
				yield(types.Tick{}, errors.New(errors.ErrCodeFeedDisconnected, "websocket closed"))

				return
			}
		}
	}
}

func convertBookTickerEvent(event *BookTickerEvent) (types.Tick, error) {
	bid, err := strconv.ParseFloat(event.BestBidPrice, 64)
	if err != nil {
		return types.Tick{}, errors.Wrap(errors.ErrCodeFeedParseFailed, "invalid best bid", err)
	}

	ask, err := strconv.ParseFloat(event.BestAskPrice, 64)
	if err != nil {
		return types.Tick{}, errors.Wrap(errors.ErrCodeFeedParseFailed, "invalid best ask", err)
	}

	return types.Tick{
		Symbol:  event.Symbol,
		BestBid: bid,
		BestAsk: ask,
		Time:    time.UnixMilli(event.Time),
	}, nil
}
