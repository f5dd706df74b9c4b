package feed

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SyntheticFeedTestSuite struct {
	suite.Suite
}

func TestSyntheticFeedSuite(t *testing.T) {
	suite.Run(t, new(SyntheticFeedTestSuite))
}

func (suite *SyntheticFeedTestSuite) config() SyntheticConfig {
	config := DefaultSyntheticConfig()
	config.Seed = 42
	config.Interval = time.Millisecond

	return config
}

func (suite *SyntheticFeedTestSuite) TestQuotesAreValid() {
	feed, err := NewSyntheticFeed("BTCUSDT", suite.config())
	suite.Require().NoError(err)

	var previous time.Time
	for i := 0; i < 1000; i++ {
		tick := feed.Next()

		suite.Require().NoError(tick.Validate())
		suite.Equal("BTCUSDT", tick.Symbol)
		suite.InDelta(0.1, tick.BestAsk-tick.BestBid, 1e-6)
		suite.True(tick.Time.After(previous))

		previous = tick.Time
	}
}

func (suite *SyntheticFeedTestSuite) TestReproducibility() {
	first, err := NewSyntheticFeed("BTCUSDT", suite.config())
	suite.Require().NoError(err)
	second, err := NewSyntheticFeed("BTCUSDT", suite.config())
	suite.Require().NoError(err)

	for i := 0; i < 100; i++ {
		suite.Equal(first.Next(), second.Next())
	}
}

func (suite *SyntheticFeedTestSuite) TestDifferentSeeds() {
	config := suite.config()
	first, _ := NewSyntheticFeed("BTCUSDT", config)

	config.Seed = 7
	second, _ := NewSyntheticFeed("BTCUSDT", config)

	var differs bool
	for i := 0; i < 10; i++ {
		if first.Next().BestBid != second.Next().BestBid {
			differs = true
		}
	}

	suite.True(differs)
}

func (suite *SyntheticFeedTestSuite) TestInvalidConfig() {
	config := suite.config()
	config.InitialPrice = 0

	_, err := NewSyntheticFeed("BTCUSDT", config)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	config = suite.config()
	config.Interval = 0
	_, err = NewSyntheticFeed("BTCUSDT", config)
	suite.Error(err)
}

func (suite *SyntheticFeedTestSuite) TestStreamStopsOnBreak() {
	feed, err := NewSyntheticFeed("BTCUSDT", suite.config())
	suite.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	count := 0
	for tick, err := range feed.Stream(ctx) {
		suite.Require().NoError(err)
		suite.NotZero(tick.BestBid)

		count++
		if count == 5 {
			break
		}
	}

	suite.Equal(5, count)
}

func (suite *SyntheticFeedTestSuite) TestStreamStopsOnCancel() {
	feed, err := NewSyntheticFeed("BTCUSDT", suite.config())
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	for range feed.Stream(ctx) {
		count++
	}

	suite.LessOrEqual(count, 1)
}
