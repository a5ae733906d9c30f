package exchange

import "candlesim/internal/orderbook"

// OrderIntent is what a Strategy hands back to CreateOrders/CancelOrders:
// enough to build an Order, or to identify one already on the book.
type OrderIntent struct {
	// ClientID identifies the target order for a cancel intent. Left
	// empty on a create intent; the exchange assigns a fresh one.
	ClientID     string
	PositionSide orderbook.PositionSide
	Side         orderbook.Side
	Type         orderbook.OrderType
	Price        float64
	StopPrice    float64
	Qty          float64
}
