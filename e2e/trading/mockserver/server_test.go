package mockserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type MockServerTestSuite struct {
	suite.Suite
	server *MockFuturesServer
}

func TestMockServerSuite(t *testing.T) {
	suite.Run(t, new(MockServerTestSuite))
}

func (suite *MockServerTestSuite) SetupTest() {
	suite.server = NewMockFuturesServer(ServerConfig{
		Quotes: map[string]Quote{"BTCUSDT": {Bid: 100, Ask: 100.1}},
	})
	suite.Require().NoError(suite.server.Start(":0"))
}

func (suite *MockServerTestSuite) TearDownTest() {
	if suite.server != nil {
		suite.server.Stop()
	}
}

func (suite *MockServerTestSuite) do(method, path string, form url.Values) (int, map[string]interface{}) {
	req, err := http.NewRequest(method, suite.server.BaseURL()+path, strings.NewReader(form.Encode()))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	var decoded map[string]interface{}
	suite.Require().NoError(json.Unmarshal(body, &decoded))

	return resp.StatusCode, decoded
}

func (suite *MockServerTestSuite) createOrder(side string, price string) int64 {
	status, body := suite.do(http.MethodPost, "/fapi/v1/order", url.Values{
		"symbol":      {"BTCUSDT"},
		"side":        {side},
		"type":        {"LIMIT"},
		"timeInForce": {"GTC"},
		"quantity":    {"0.010"},
		"price":       {price},
	})
	suite.Require().Equal(http.StatusOK, status)

	return int64(body["orderId"].(float64))
}

func (suite *MockServerTestSuite) TestServerAddresses() {
	suite.NotEmpty(suite.server.Address())
	suite.Contains(suite.server.BaseURL(), "http://")
	suite.Contains(suite.server.WebSocketURL(), "ws://")
}

func (suite *MockServerTestSuite) TestCreateRestingOrder() {
	orderID := suite.createOrder("BUY", "99.5")

	order := suite.server.GetOrder(orderID)
	suite.Require().NotNil(order)
	suite.Equal(OrderStatusNew, order.Status)
	suite.Equal(99.5, order.Price)
	suite.Len(suite.server.Orders(OrderStatusNew), 1)
}

func (suite *MockServerTestSuite) TestMarketableOrderFillsAtTouch() {
	orderID := suite.createOrder("BUY", "101")

	order := suite.server.GetOrder(orderID)
	suite.Require().NotNil(order)
	suite.Equal(OrderStatusFilled, order.Status)
	suite.Equal(100.1, order.AvgPrice)
}

func (suite *MockServerTestSuite) TestQuoteFillsCrossedOrders() {
	buyID := suite.createOrder("BUY", "99.5")
	sellID := suite.createOrder("SELL", "100.5")

	suite.server.SetQuote("BTCUSDT", 99.3, 99.4)

	suite.Equal(OrderStatusFilled, suite.server.GetOrder(buyID).Status)
	suite.Equal(99.5, suite.server.GetOrder(buyID).AvgPrice)
	suite.Equal(OrderStatusNew, suite.server.GetOrder(sellID).Status)
}

func (suite *MockServerTestSuite) TestCancelOrder() {
	orderID := suite.createOrder("SELL", "100.5")

	status, _ := suite.do(http.MethodDelete, "/fapi/v1/order", url.Values{
		"symbol":  {"BTCUSDT"},
		"orderId": {"999999"},
	})
	suite.Equal(http.StatusBadRequest, status)

	status, _ = suite.do(http.MethodDelete, "/fapi/v1/order", url.Values{
		"symbol":  {"BTCUSDT"},
		"orderId": {strconv.FormatInt(orderID, 10)},
	})
	suite.Equal(http.StatusOK, status)
	suite.Equal(OrderStatusCanceled, suite.server.GetOrder(orderID).Status)

	// a second cancel reports the unknown order code
	status, body := suite.do(http.MethodDelete, "/fapi/v1/order", url.Values{
		"symbol":  {"BTCUSDT"},
		"orderId": {strconv.FormatInt(orderID, 10)},
	})
	suite.Equal(http.StatusBadRequest, status)
	suite.Equal(float64(unknownOrderCode), body["code"])
}

func (suite *MockServerTestSuite) TestCancelAllOrders() {
	suite.createOrder("BUY", "99.5")
	suite.createOrder("SELL", "100.5")

	status, _ := suite.do(http.MethodDelete, "/fapi/v1/allOpenOrders", url.Values{"symbol": {"BTCUSDT"}})
	suite.Equal(http.StatusOK, status)
	suite.Empty(suite.server.Orders(OrderStatusNew))
	suite.Len(suite.server.Orders(OrderStatusCanceled), 2)
}

func (suite *MockServerTestSuite) TestUserStreamReceivesOrderUpdates() {
	status, body := suite.do(http.MethodPost, "/fapi/v1/listenKey", url.Values{})
	suite.Require().Equal(http.StatusOK, status)
	listenKey := body["listenKey"].(string)
	suite.Equal(1, suite.server.ActiveListenKeys())

	conn, _, err := websocket.DefaultDialer.Dial(suite.server.WebSocketURL()+"/"+listenKey, nil)
	suite.Require().NoError(err)
	defer conn.Close()

	suite.Eventually(func() bool {
		users, _ := suite.server.StreamCounts()
		return users == 1
	}, time.Second, 10*time.Millisecond)

	suite.createOrder("BUY", "99.5")

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))

	var event map[string]interface{}
	suite.Require().NoError(conn.ReadJSON(&event))
	suite.Equal("ORDER_TRADE_UPDATE", event["e"])

	order := event["o"].(map[string]interface{})
	suite.Equal("NEW", order["X"])
	suite.Equal("BUY", order["S"])

	status, _ = suite.do(http.MethodDelete, "/fapi/v1/listenKey", url.Values{"listenKey": {listenKey}})
	suite.Equal(http.StatusOK, status)
	suite.Equal(0, suite.server.ActiveListenKeys())
}

func (suite *MockServerTestSuite) TestBookTickerStream() {
	conn, _, err := websocket.DefaultDialer.Dial(suite.server.WebSocketURL()+"/btcusdt@bookTicker", nil)
	suite.Require().NoError(err)
	defer conn.Close()

	suite.Eventually(func() bool {
		_, books := suite.server.StreamCounts()
		return books == 1
	}, time.Second, 10*time.Millisecond)

	suite.server.SetQuote("BTCUSDT", 101.5, 101.6)

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))

	var event map[string]interface{}
	suite.Require().NoError(conn.ReadJSON(&event))
	suite.Equal("bookTicker", event["e"])
	suite.Equal("101.5", event["b"])
	suite.Equal("101.6", event["a"])
}

func (suite *MockServerTestSuite) TestUnknownListenKeyRejected() {
	_, resp, err := websocket.DefaultDialer.Dial(suite.server.WebSocketURL()+"/not-a-key", nil)
	suite.Error(err)
	if resp != nil {
		suite.Equal(http.StatusBadRequest, resp.StatusCode)
	}
}
