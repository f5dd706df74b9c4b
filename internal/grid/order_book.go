package grid

import (
	"sort"

	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

// RestingOrder is the engine's record of a live order.
type RestingOrder struct {
	ID    string
	Role  types.OrderRole
	Side  types.Side
	Price float64
	Size  float64
	// Filled is the cumulative size already booked into the ledger.
	Filled float64
	// AverageFillPrice is the average price of Filled as last reported.
	AverageFillPrice float64
	// CancelRequested is set once a cancel intent has been sent. The order
	// stays live until a terminal update arrives.
	CancelRequested bool

	seq uint64
}

// OrderBook holds the four disjoint sets of live orders: long entries, short
// entries, profit exits and stop exits. An id lives in at most one set.
type OrderBook struct {
	longEntries  map[string]*RestingOrder
	shortEntries map[string]*RestingOrder
	profits      map[string]*RestingOrder
	stops        map[string]*RestingOrder
	index        map[string]types.OrderRole
	nextSeq      uint64
}

// NewOrderBook returns an empty order book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		longEntries:  make(map[string]*RestingOrder),
		shortEntries: make(map[string]*RestingOrder),
		profits:      make(map[string]*RestingOrder),
		stops:        make(map[string]*RestingOrder),
		index:        make(map[string]types.OrderRole),
		nextSeq:      0,
	}
}

func (b *OrderBook) set(role types.OrderRole) map[string]*RestingOrder {
	switch role {
	case types.OrderRoleLongEntry:
		return b.longEntries
	case types.OrderRoleShortEntry:
		return b.shortEntries
	case types.OrderRoleProfit:
		return b.profits
	case types.OrderRoleStop:
		return b.stops
	default:
		return nil
	}
}

// Add registers a live order in the set named by its role.
func (b *OrderBook) Add(order RestingOrder) error {
	if order.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "order id is empty")
	}

	if role, ok := b.index[order.ID]; ok {
		return errors.Newf(errors.ErrCodeDuplicateOrderID, "order %s is already live as %s", order.ID, role)
	}

	set := b.set(order.Role)
	if set == nil {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown order role %q", order.Role)
	}

	b.nextSeq++
	order.seq = b.nextSeq
	set[order.ID] = &order
	b.index[order.ID] = order.Role

	return nil
}

// Get returns the live order with the given id.
func (b *OrderBook) Get(id string) (*RestingOrder, bool) {
	role, ok := b.index[id]
	if !ok {
		return nil, false
	}

	order, ok := b.set(role)[id]

	return order, ok
}

// Remove drops the order from its set and returns it.
func (b *OrderBook) Remove(id string) (*RestingOrder, bool) {
	role, ok := b.index[id]
	if !ok {
		return nil, false
	}

	set := b.set(role)
	order := set[id]

	delete(set, id)
	delete(b.index, id)

	return order, order != nil
}

// Count returns the number of live orders with the given role.
func (b *OrderBook) Count(role types.OrderRole) int {
	return len(b.set(role))
}

// Len returns the number of live orders across all sets.
func (b *OrderBook) Len() int {
	return len(b.index)
}

// Orders returns the live orders of the given roles in submission order.
func (b *OrderBook) Orders(roles ...types.OrderRole) []*RestingOrder {
	var orders []*RestingOrder

	for _, role := range roles {
		for _, order := range b.set(role) {
			orders = append(orders, order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].seq < orders[j].seq
	})

	return orders
}

// EntryCounts returns the number of live long and short entries.
func (b *OrderBook) EntryCounts() (long int, short int) {
	return len(b.longEntries), len(b.shortEntries)
}
