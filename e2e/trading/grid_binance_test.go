package trading

import (
	"context"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rxtech-lab/argo-grid/e2e/trading/mockserver"
	"github.com/rxtech-lab/argo-grid/internal/feed"
	"github.com/rxtech-lab/argo-grid/internal/gateway"
	"github.com/rxtech-lab/argo-grid/internal/grid"
	"github.com/rxtech-lab/argo-grid/internal/logger"
	"github.com/rxtech-lab/argo-grid/internal/runner"
	"github.com/stretchr/testify/suite"
)

const symbol = "BTCUSDT"

// manualTicker lets the test decide when timer ticks happen.
type manualTicker struct {
	c chan time.Time
}

func (t *manualTicker) C() <-chan time.Time {
	return t.c
}

func (t *manualTicker) Stop() {}

// GridBinanceTestSuite runs the grid engine through the real Binance futures
// client against the mock futures server.
type GridBinanceTestSuite struct {
	suite.Suite
	server        *mockserver.MockFuturesServer
	previousWsURL string
	ticker        *manualTicker
	engine        *grid.Engine
	runner        *runner.Runner
	cancel        context.CancelFunc
	done          chan error
	stopped       bool
}

func TestGridBinanceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	suite.Run(t, new(GridBinanceTestSuite))
}

func (s *GridBinanceTestSuite) SetupTest() {
	s.server = mockserver.NewMockFuturesServer(mockserver.ServerConfig{})
	s.Require().NoError(s.server.Start(":0"))

	s.previousWsURL = futures.BaseWsMainUrl
	futures.BaseWsMainUrl = s.server.WebSocketURL()

	log := logger.NewNopLogger()

	venue, err := gateway.NewBinanceFuturesGateway(symbol, gateway.BinanceConfig{
		ApiKey:            "test-key",
		SecretKey:         "test-secret",
		BaseURL:           s.server.BaseURL(),
		PricePrecision:    2,
		QuantityPrecision: 3,
	}, log)
	s.Require().NoError(err)

	s.engine, err = grid.NewEngine(symbol, grid.Config{
		GridStep:            1,
		FixedSize:           0.01,
		MaxPositionMultiple: 5,
		ProfitTriggerCount:  5,
		StopMultiplier:      2,
		Cooldown:            3 * time.Second,
		TimerInterval:       time.Second,
		LadderInterval:      1,
		ProfitInterval:      1,
		StopInterval:        1,
	}, venue, log)
	s.Require().NoError(err)

	s.stopped = false
	s.ticker = &manualTicker{c: make(chan time.Time)}
	s.runner = runner.NewRunnerWithTicker(s.engine, venue, feed.NewBinanceBookTickerFeed(symbol, false), func(time.Duration) runner.Ticker {
		return s.ticker
	}, log)

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan error, 1)

	go func() {
		s.done <- s.runner.Run(ctx)
	}()

	s.Eventually(func() bool {
		users, books := s.server.StreamCounts()
		return users == 1 && books == 1
	}, 5*time.Second, 20*time.Millisecond, "streams did not connect")
}

func (s *GridBinanceTestSuite) TearDownTest() {
	if !s.stopped {
		s.cancel()

		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
		}
	}

	futures.BaseWsMainUrl = s.previousWsURL
	s.server.Stop()
}

// tickUntil fires timer ticks until the condition holds.
func (s *GridBinanceTestSuite) tickUntil(condition func() bool) {
	s.Eventually(func() bool {
		s.ticker.c <- time.Now()
		return condition()
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *GridBinanceTestSuite) stop() {
	s.cancel()
	s.stopped = true

	select {
	case err := <-s.done:
		s.Require().NoError(err)
	case <-time.After(5 * time.Second):
		s.FailNow("runner did not stop")
	}
}

func (s *GridBinanceTestSuite) TestFlatLadderFillAndShutdown() {
	s.server.SetQuote(symbol, 100, 100.1)

	s.tickUntil(func() bool {
		return len(s.server.Orders(mockserver.OrderStatusNew)) == 2
	})

	resting := s.server.Orders(mockserver.OrderStatusNew)
	s.Equal("BUY", resting[0].Side)
	s.Equal(99.5, resting[0].Price)
	s.Equal(0.01, resting[0].Quantity)
	s.False(resting[0].ReduceOnly)
	s.Equal("SELL", resting[1].Side)
	s.Equal(100.5, resting[1].Price)
	s.False(resting[1].ReduceOnly)

	// the ask trades through the long entry
	s.server.SetQuote(symbol, 99.3, 99.4)

	s.Eventually(func() bool {
		if len(s.server.Orders(mockserver.OrderStatusFilled)) != 1 {
			return false
		}

		for _, order := range s.server.Orders(mockserver.OrderStatusNew) {
			if order.Side == "BUY" && order.Price == 98.5 {
				return true
			}
		}

		return false
	}, 5*time.Second, 20*time.Millisecond, "ladder was not re-anchored")

	s.stop()

	snapshot := s.engine.Snapshot()
	s.Equal(0.01, snapshot.Position)
	s.Equal(99.5, snapshot.AveragePrice)

	s.Eventually(func() bool {
		return len(s.server.Orders(mockserver.OrderStatusNew)) == 0 && s.server.ActiveListenKeys() == 0
	}, 5*time.Second, 20*time.Millisecond, "orders or listen key left open")
}
