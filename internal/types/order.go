package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

// Side is the direction of an order from the position's point of view.
type Side string

// OrderStatus is the lifecycle status reported by the gateway.
type OrderStatus string

// OrderRole tags which of the engine's order sets owns an order.
type OrderRole string

const (
	// SideBuy opens or adds to a long position.
	SideBuy Side = "BUY"
	// SideSell reduces a long position.
	SideSell Side = "SELL"
	// SideShort opens or adds to a short position.
	SideShort Side = "SHORT"
	// SideCover reduces a short position.
	SideCover Side = "COVER"
)

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusPartial   OrderStatus = "PARTIAL"
	OrderStatusAllTraded OrderStatus = "ALL_TRADED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

const (
	OrderRoleLongEntry  OrderRole = "LONG_ENTRY"
	OrderRoleShortEntry OrderRole = "SHORT_ENTRY"
	OrderRoleProfit     OrderRole = "PROFIT"
	OrderRoleStop       OrderRole = "STOP"
)

// Sign returns +1 for sides that increase the signed position and -1 for
// sides that decrease it.
func (s Side) Sign() float64 {
	switch s {
	case SideBuy, SideCover:
		return 1
	default:
		return -1
	}
}

// IsTerminal reports whether no further updates are expected for the order.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusAllTraded, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// IsEntry reports whether the role opens or adds to a position.
func (r OrderRole) IsEntry() bool {
	return r == OrderRoleLongEntry || r == OrderRoleShortEntry
}

// OrderIntent is a request to the gateway to place a limit order.
type OrderIntent struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side   Side      `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL SHORT COVER"`
	Price  float64   `yaml:"price" json:"price" csv:"price" validate:"required,gt=0"`
	Size   float64   `yaml:"size" json:"size" csv:"size" validate:"required,gt=0"`
	Role   OrderRole `yaml:"role" json:"role" csv:"role" validate:"required,oneof=LONG_ENTRY SHORT_ENTRY PROFIT STOP"`
}

// OrderUpdate is a status notification for a previously submitted order.
// FilledSize is the cumulative traded size of the order and Price is the
// average price across that size.
type OrderUpdate struct {
	OrderID    string      `yaml:"order_id" json:"order_id" csv:"order_id" validate:"required"`
	Side       Side        `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL SHORT COVER"`
	Price      float64     `yaml:"price" json:"price" csv:"price" validate:"gte=0"`
	FilledSize float64     `yaml:"filled_size" json:"filled_size" csv:"filled_size" validate:"gte=0"`
	Status     OrderStatus `yaml:"status" json:"status" csv:"status" validate:"required,oneof=NEW PARTIAL ALL_TRADED CANCELLED REJECTED"`
}

var validate = validator.New()

// Validate validates the OrderIntent struct.
func (o *OrderIntent) Validate() error {
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrderIntent, "invalid order intent", err)
	}

	return nil
}

// Validate validates the OrderUpdate struct.
func (u *OrderUpdate) Validate() error {
	if err := validate.Struct(u); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrderUpdate, "invalid order update", err)
	}

	return nil
}
