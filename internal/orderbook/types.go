// Package orderbook holds open orders in two insertion-ordered, per-side
// sequences and the shared order/enum vocabulary those sequences operate
// on. It is not concurrency-safe: only the simulated exchange mutates it.
package orderbook

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// PositionSide is which book/position an order belongs to.
type PositionSide string

const (
	Long  PositionSide = "LONG"
	Short PositionSide = "SHORT"
)

// OrderType is the trigger rule governing execution.
type OrderType string

const (
	Market     OrderType = "MARKET"
	Limit      OrderType = "LIMIT"
	TakeProfit OrderType = "TP"
	StopLoss   OrderType = "SL"
	CalculatedType OrderType = "CALCULATED"
)

// Action is the order's lifecycle state.
type Action string

const (
	New             Action = "NEW"
	PartiallyFilled Action = "PARTIALLY_FILLED"
	Filled          Action = "FILLED"
	Canceled        Action = "CANCELED"
	Calculated      Action = "CALCULATED"
	Liquidation     Action = "LIQUIDATION"
)

// Terminal reports whether a is a lifecycle-ending state: the order is
// removed from the open book once it reaches one of these.
func (a Action) Terminal() bool {
	return a == Filled || a == Canceled || a == Liquidation
}

// Order is a client order. Identity is (Symbol, ClientID, PositionSide,
// Side, Type); Price, StopPrice, Qty, Action, and Timestamp mutate over
// the order's life.
type Order struct {
	Symbol       string
	ClientID     string
	PositionSide PositionSide
	Side         Side
	Type         OrderType

	Price     float64
	StopPrice float64
	Qty       float64
	Action    Action
	Timestamp int64
}

// Copy returns a value copy of o, used whenever a working copy must be
// mutated without affecting the book's own entry.
func (o *Order) Copy() Order {
	return *o
}

// identity is the key DeleteLong/DeleteShort match on.
func identity(o *Order) string {
	return o.ClientID + "|" + string(o.PositionSide)
}
