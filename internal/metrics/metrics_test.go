package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/argo-grid/internal/grid"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/stretchr/testify/suite"
)

type RecorderTestSuite struct {
	suite.Suite
	recorder *Recorder
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderTestSuite))
}

func (suite *RecorderTestSuite) SetupTest() {
	suite.recorder = NewRecorder("BTCUSDT")
}

func (suite *RecorderTestSuite) TestCounters() {
	suite.recorder.ObserveOrderUpdate(types.OrderUpdate{OrderID: "1", Side: types.SideBuy, Status: types.OrderStatusNew})
	suite.recorder.ObserveOrderUpdate(types.OrderUpdate{OrderID: "1", Side: types.SideBuy, Status: types.OrderStatusAllTraded})
	suite.recorder.ObserveOrderUpdate(types.OrderUpdate{OrderID: "2", Side: types.SideBuy, Status: types.OrderStatusAllTraded})
	suite.recorder.ObserveQuote()
	suite.recorder.ObserveFeedError()

	suite.Equal(1.0, testutil.ToFloat64(suite.recorder.orderUpdates.WithLabelValues("NEW")))
	suite.Equal(2.0, testutil.ToFloat64(suite.recorder.orderUpdates.WithLabelValues("ALL_TRADED")))
	suite.Equal(1.0, testutil.ToFloat64(suite.recorder.quotes))
	suite.Equal(1.0, testutil.ToFloat64(suite.recorder.feedErrors))
}

func (suite *RecorderTestSuite) TestSnapshot() {
	suite.recorder.ObserveSnapshot(grid.Snapshot{
		State:        grid.StateOneSided,
		Position:     -3,
		AveragePrice: 101.5,
		LongEntries:  1,
		ShortEntries: 0,
		ProfitOrders: 1,
		StopOrders:   0,
	})

	suite.Equal(-3.0, testutil.ToFloat64(suite.recorder.position))
	suite.Equal(101.5, testutil.ToFloat64(suite.recorder.averagePrice))
	suite.Equal(1.0, testutil.ToFloat64(suite.recorder.liveOrders.WithLabelValues("LONG_ENTRY")))
	suite.Equal(1.0, testutil.ToFloat64(suite.recorder.liveOrders.WithLabelValues("PROFIT")))
	suite.Equal(1.0, testutil.ToFloat64(suite.recorder.state.WithLabelValues("ONE_SIDED")))
	suite.Equal(0.0, testutil.ToFloat64(suite.recorder.state.WithLabelValues("FLAT")))

	suite.recorder.ObserveSnapshot(grid.Snapshot{State: grid.StateCooldown})
	suite.Equal(0.0, testutil.ToFloat64(suite.recorder.state.WithLabelValues("ONE_SIDED")))
	suite.Equal(1.0, testutil.ToFloat64(suite.recorder.state.WithLabelValues("COOLDOWN")))
}

func (suite *RecorderTestSuite) TestHandler() {
	suite.recorder.ObserveQuote()

	response := httptest.NewRecorder()
	suite.recorder.Handler().ServeHTTP(response, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(response.Body)
	suite.Require().NoError(err)
	suite.Contains(string(body), `grid_quotes_total{symbol="BTCUSDT"} 1`)
}
