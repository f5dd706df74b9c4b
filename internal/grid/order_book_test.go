package grid

import (
	"testing"

	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type OrderBookTestSuite struct {
	suite.Suite
	book *OrderBook
}

func TestOrderBookSuite(t *testing.T) {
	suite.Run(t, new(OrderBookTestSuite))
}

func (s *OrderBookTestSuite) SetupTest() {
	s.book = NewOrderBook()
}

func restingOrder(id string, role types.OrderRole, side types.Side) RestingOrder {
	return RestingOrder{
		ID:    id,
		Role:  role,
		Side:  side,
		Price: 100,
		Size:  1,
	}
}

func (s *OrderBookTestSuite) TestAddAndGet() {
	s.Require().NoError(s.book.Add(restingOrder("a", types.OrderRoleLongEntry, types.SideBuy)))

	order, ok := s.book.Get("a")
	s.Require().True(ok)
	s.Equal(types.OrderRoleLongEntry, order.Role)
	s.Equal(1, s.book.Count(types.OrderRoleLongEntry))
	s.Equal(1, s.book.Len())
}

func (s *OrderBookTestSuite) TestDuplicateIDAcrossSetsIsRejected() {
	s.Require().NoError(s.book.Add(restingOrder("a", types.OrderRoleLongEntry, types.SideBuy)))

	err := s.book.Add(restingOrder("a", types.OrderRoleProfit, types.SideSell))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeDuplicateOrderID))

	s.Equal(1, s.book.Count(types.OrderRoleLongEntry))
	s.Equal(0, s.book.Count(types.OrderRoleProfit))
}

func (s *OrderBookTestSuite) TestAddRejectsEmptyIDAndUnknownRole() {
	err := s.book.Add(restingOrder("", types.OrderRoleLongEntry, types.SideBuy))
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	err = s.book.Add(restingOrder("a", types.OrderRole("HEDGE"), types.SideBuy))
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	s.Equal(0, s.book.Len())
}

func (s *OrderBookTestSuite) TestRemove() {
	s.Require().NoError(s.book.Add(restingOrder("a", types.OrderRoleStop, types.SideSell)))

	order, ok := s.book.Remove("a")
	s.Require().True(ok)
	s.Equal("a", order.ID)

	_, ok = s.book.Get("a")
	s.False(ok)
	s.Equal(0, s.book.Len())

	_, ok = s.book.Remove("a")
	s.False(ok)

	// the id may be reused once retired
	s.NoError(s.book.Add(restingOrder("a", types.OrderRoleShortEntry, types.SideShort)))
}

func (s *OrderBookTestSuite) TestOrdersAreReturnedInSubmissionOrder() {
	s.Require().NoError(s.book.Add(restingOrder("z", types.OrderRoleShortEntry, types.SideShort)))
	s.Require().NoError(s.book.Add(restingOrder("m", types.OrderRoleLongEntry, types.SideBuy)))
	s.Require().NoError(s.book.Add(restingOrder("a", types.OrderRoleProfit, types.SideSell)))
	s.Require().NoError(s.book.Add(restingOrder("b", types.OrderRoleLongEntry, types.SideBuy)))

	var ids []string
	for _, order := range s.book.Orders(types.OrderRoleLongEntry, types.OrderRoleShortEntry) {
		ids = append(ids, order.ID)
	}

	s.Equal([]string{"z", "m", "b"}, ids)
}

func (s *OrderBookTestSuite) TestEntryCounts() {
	s.Require().NoError(s.book.Add(restingOrder("a", types.OrderRoleLongEntry, types.SideBuy)))
	s.Require().NoError(s.book.Add(restingOrder("b", types.OrderRoleShortEntry, types.SideShort)))
	s.Require().NoError(s.book.Add(restingOrder("c", types.OrderRoleShortEntry, types.SideShort)))

	long, short := s.book.EntryCounts()
	s.Equal(1, long)
	s.Equal(2, short)
}

func (s *OrderBookTestSuite) TestGetReturnsLiveRecord() {
	s.Require().NoError(s.book.Add(restingOrder("a", types.OrderRoleLongEntry, types.SideBuy)))

	order, _ := s.book.Get("a")
	order.CancelRequested = true

	again, _ := s.book.Get("a")
	s.True(again.CancelRequested)
}
